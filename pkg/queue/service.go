package queue

import (
	"github.com/ventrath/gantry/pkg/structs"
)

// Service is a cut down interface to the gantry database, that includes slimmed down and
// somewhat simplified versions of the methods the Queue is allowed to call.
type Service interface {
	// Implemented in gantry/pkg/database.QueueDB

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
