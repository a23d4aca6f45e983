package structs

import (
	"strings"
)

// Status is the lifecycle state of a run, job, step or service.
type Status string

const (
	// transient states
	PENDING Status = "PENDING"
	READY   Status = "READY"
	QUEUED  Status = "QUEUED"
	RUNNING Status = "RUNNING"

	// end states
	KILLED    Status = "KILLED"
	COMPLETED Status = "COMPLETED"
	ERRORED   Status = "ERRORED"
	SKIPPED   Status = "SKIPPED"
)

// IsFinalStatus returns true if the given status is an end state
// (ie. nothing will move it along without outside intervention).
func IsFinalStatus(status Status) bool {
	switch status {
	case COMPLETED, SKIPPED, ERRORED, KILLED:
		return true
	default:
		return false
	}
}

// IsSuccessStatus returns true if the given status counts as "succeeded"
// for the purpose of dependency gating. SKIPPED entries don't gate their
// dependents in the service topology, but they do in the pipeline (a job
// needing a skipped job is itself skipped).
func IsSuccessStatus(status Status) bool {
	return status == COMPLETED
}

func ToStatus(s string) Status {
	switch strings.ToUpper(s) {
	case "PENDING":
		return PENDING
	case "READY":
		return READY
	case "QUEUED":
		return QUEUED
	case "RUNNING":
		return RUNNING
	case "KILLED":
		return KILLED
	case "COMPLETED":
		return COMPLETED
	case "ERRORED":
		return ERRORED
	case "SKIPPED":
		return SKIPPED
	default:
		return ""
	}
}
