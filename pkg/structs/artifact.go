package structs

// Artifact is a write-once, read-many handoff between jobs of the same run.
//
// An artifact is produced by exactly one job, named uniquely within its run,
// and never mutated after upload. Consumers copy it out by name.
type Artifact struct {
	// ID is a unique identifier for this artifact
	ID string `json:"id"`

	// Name the artifact is published (and consumed) under.
	// Unique within a run.
	Name string `json:"name"`

	// RunID is the ID of the run this artifact belongs to
	RunID string `json:"run_id"`

	// JobID is the ID of the job that produced this artifact
	JobID string `json:"job_id"`

	// Size is the stored size in bytes
	Size int64 `json:"size"`

	// CreatedAt is the time this artifact was uploaded unix time in seconds
	CreatedAt int64 `json:"created_at"`
}
