package database

import (
	"fmt"

	"github.com/ventrath/gantry/internal/utils"
	"github.com/ventrath/gantry/pkg/errors"
	"github.com/ventrath/gantry/pkg/structs"
)

// maxJobSteps bounds the step lookup per job; the api layer rejects jobs
// with more steps than this long before they reach a worker.
const maxJobSteps = 100

type defaultQDB struct {
	db Database
}

// newDefaultQDB returns a new QueueDB
func newDefaultQDB(db Database) *defaultQDB {
	return &defaultQDB{db: db}
}

// SetJobState sets the state of the given job to the given status.
// This func is restricted to setting states a worker may report.
func (q *defaultQDB) SetJobState(in *structs.Job, st structs.Status, msg string) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w job is nil", errors.ErrInvalidArg)
	}
	// only allow setting selected states
	if !(st == structs.RUNNING || st == structs.ERRORED || st == structs.COMPLETED || st == structs.SKIPPED) {
		return "", fmt.Errorf("%w %s is not a permitted status (running, errored, completed, skipped)", errors.ErrInvalidState, st)
	}
	etag := utils.NewRandomID()
	altered, err := q.db.SetJobsStatus(st, etag, []*structs.ObjectRef{{ID: in.ID, ETag: in.ETag}}, msg)
	if err != nil {
		return "", err
	}
	if altered != 1 {
		return "", fmt.Errorf("%w update altered %d entries", errors.ErrETagMismatch, altered)
	}
	in.Status = st // we know it matches the Job in the DB if this succeeded
	in.ETag = etag
	return etag, nil
}

// SetStepState records the status & exit code of the given step.
func (q *defaultQDB) SetStepState(in *structs.Step, st structs.Status, exitCode int64, msg string) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w step is nil", errors.ErrInvalidArg)
	}
	if !(st == structs.RUNNING || st == structs.ERRORED || st == structs.COMPLETED || st == structs.SKIPPED) {
		return "", fmt.Errorf("%w %s is not a permitted status (running, errored, completed, skipped)", errors.ErrInvalidState, st)
	}
	etag := utils.NewRandomID()
	err := q.db.SetStepResult(in.ID, in.ETag, etag, st, exitCode, msg)
	if err != nil {
		return "", err
	}
	in.Status = st
	in.ETag = etag
	in.ExitCode = exitCode
	return etag, nil
}

// Jobs returns a slice of jobs matching the given ids.
func (q *defaultQDB) Jobs(ids []string) ([]*structs.Job, error) {
	uniq, err := uniqueIDs(ids, "job")
	if err != nil {
		return nil, err
	}
	return q.db.Jobs(&structs.Query{JobIDs: uniq, Limit: len(uniq)})
}

// Steps returns the steps of the given jobs.
func (q *defaultQDB) Steps(jobIDs []string) ([]*structs.Step, error) {
	uniq, err := uniqueIDs(jobIDs, "job")
	if err != nil {
		return nil, err
	}
	return q.db.Steps(&structs.Query{JobIDs: uniq, Limit: maxJobSteps * len(uniq)})
}

// InsertArtifacts records uploaded artifacts.
func (q *defaultQDB) InsertArtifacts(in []*structs.Artifact) error {
	return q.db.InsertArtifacts(in)
}

// uniqueIDs validates & dedupes the given ids, retaining order.
func uniqueIDs(ids []string, kind string) ([]string, error) {
	seen := map[string]bool{}
	uniq := []string{}
	for _, id := range ids {
		if !utils.IsValidID(id) {
			return nil, fmt.Errorf("%w %s is not a valid %s id", errors.ErrInvalidArg, id, kind)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		uniq = append(uniq, id)
	}
	return uniq, nil
}
