package structs

// RunSpec are fields that can be set when a run is created
type RunSpec struct {
	// Pipeline is the name of the pipeline this run executes.
	Pipeline string `json:"pipeline"`

	// Event is the trigger that created this run.
	Event Event `json:"event"`
}

// Run is a single triggered execution of a pipeline; it owns some set of jobs.
type Run struct {
	// RunSpec are fields that can be set when a run is created
	RunSpec `json:",inline"`

	// ID is a unique identifier for this run
	ID string `json:"id"`

	// Status is the current status of this run
	Status Status `json:"status"`

	// ETag is used when updating a run for optimistic locking
	ETag string `json:"etag"`

	// CreatedAt is the time this run was created unix time in seconds
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the time this run was last updated unix time in seconds
	UpdatedAt int64 `json:"updated_at"`
}
