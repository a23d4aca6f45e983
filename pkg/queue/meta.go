package queue

import (
	"github.com/ventrath/gantry/pkg/structs"
)

// Meta includes all of the job / step information we need to process a job.
type Meta struct {
	Job   *structs.Job
	Steps []*structs.Step

	svc Service

	err  error
	skip bool
	msg  string
	arts []*structs.Artifact

	// delivery attempts the queue still owes this job; an error with
	// retries left must not write a final status
	retriesLeft int
}

// NewMeta builds a Meta for the given job; called by Queue implementations
// when they hand work to a registered handler.
func NewMeta(job *structs.Job, steps []*structs.Step, svc Service) *Meta {
	return &Meta{Job: job, Steps: steps, svc: svc}
}

// SetError will cause the job to be marked as errored.
//
// Errored jobs may be retried (depending on settings).
func (m *Meta) SetError(err error) {
	m.err = err
}

// SetSkip will cause the job to be marked as skipped.
//
// Skipped trumps Errored; we're essentially saying "I no longer care about this."
func (m *Meta) SetSkip() {
	m.skip = true
}

// SetMessage will set a message on the job.
func (m *Meta) SetMessage(in string) {
	m.msg = in
}

// AddArtifact records an artifact the job uploaded; it is written to the
// database when the job finishes.
func (m *Meta) AddArtifact(a *structs.Artifact) {
	m.arts = append(m.arts, a)
}

// SetRunning reports the job as picked up & running, so progress is visible
// while the steps execute.
func (m *Meta) SetRunning() error {
	_, err := m.svc.SetJobState(m.Job, structs.RUNNING, "")
	return err
}

// SetStepState reports a step result as it happens.
func (m *Meta) SetStepState(s *structs.Step, st structs.Status, exitCode int64, msg string) error {
	_, err := m.svc.SetStepState(s, st, exitCode, msg)
	return err
}
