package database

import (
	"github.com/ventrath/gantry/pkg/database/changes"
	"github.com/ventrath/gantry/pkg/structs"
)

type Database interface {
	InsertRun(r *structs.Run, js []*structs.Job, ss []*structs.Step) error
	InsertArtifacts(in []*structs.Artifact) error

	SetJobsPaused(at int64, newTag string, ids []*structs.ObjectRef) (int64, error)

	SetRunsStatus(status structs.Status, newTag string, ids []*structs.ObjectRef, msg ...string) (int64, error)
	SetJobsStatus(status structs.Status, newTag string, ids []*structs.ObjectRef, msg ...string) (int64, error)
	SetStepsStatus(status structs.Status, newTag string, ids []*structs.ObjectRef, msg ...string) (int64, error)

	// SetJobQueueID records the queue's handle for a job along with its new status,
	// so that we can Kill() the queued work later if asked to.
	SetJobQueueID(jobID, etag, newEtag, queueTaskID string, state structs.Status) error

	// SetStepResult records the exit code of a finished step along with its status.
	SetStepResult(stepID, etag, newEtag string, status structs.Status, exitCode int64, msg string) error

	Runs(q *structs.Query) ([]*structs.Run, error)
	Jobs(q *structs.Query) ([]*structs.Job, error)
	Steps(q *structs.Query) ([]*structs.Step, error)
	Artifacts(q *structs.Query) ([]*structs.Artifact, error)

	Changes() (changes.Stream, error)

	Close() error
}

// QueueDB is the cut down view of the database handed to queue task handlers;
// a worker only ever looks up its own job and reports its state.
type QueueDB interface {
	// Jobs returned by ID
	Jobs(ids []string) ([]*structs.Job, error)

	// Steps returned by job ID
	Steps(jobIDs []string) ([]*structs.Step, error)

	// SetJobState sets the state of the given job, limited to states a
	// worker may legitimately report (running, errored, completed, skipped).
	SetJobState(in *structs.Job, st structs.Status, msg string) (string, error)

	// SetStepState records a step's status & exit code.
	SetStepState(in *structs.Step, st structs.Status, exitCode int64, msg string) (string, error)

	// InsertArtifacts records uploaded artifacts.
	InsertArtifacts(in []*structs.Artifact) error
}

func NewQueueDB(db Database) QueueDB {
	return newDefaultQDB(db)
}
