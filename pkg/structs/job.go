package structs

// JobSpec are fields that can be set when a job is created
type JobSpec struct {
	// Key is the name of the job in the pipeline manifest. Matrix instances
	// of the same manifest job share a Key.
	//
	// Required.
	Key string `json:"key"`

	// Name is a human readable name for this job instance, eg.
	// "build (go=1.22)" for a matrix instance.
	Name string `json:"name"`

	// RunsOn is the worker label this job is dispatched to.
	RunsOn string `json:"runs_on"`

	// Needs are manifest job keys that must all succeed before this
	// job may be queued.
	Needs []string `json:"needs"`

	// Params are the matrix parameters this instance was expanded with.
	Params map[string]string `json:"params,omitempty"`

	// Env is extra environment set for every step of the job.
	Env map[string]string `json:"env,omitempty"`

	// Uploads are artifact names (with paths) the job publishes on success.
	Uploads []ArtifactUpload `json:"uploads,omitempty"`

	// Downloads are artifact names the job consumes before its steps run.
	Downloads []string `json:"downloads,omitempty"`

	// PausedAt is the time this job was paused unix time in seconds.
	// If 0, this job is not paused.
	PausedAt int64 `json:"paused_at"`

	// Retries is the number of times this job can be retried on failure(s).
	// This value is passed on to the Queue.
	Retries int64 `json:"retries"`
}

// Job is a matrix-expanded instance of a manifest job; a unit of pipeline
// work dispatched to a single worker.
type Job struct {
	// JobSpec are fields that can be set when a job is created
	JobSpec `json:",inline"`

	// ID is a unique identifier for this job
	ID string `json:"id"`

	// Status is the current status of this job
	Status Status `json:"status"`

	// ETag is used when updating a job for optimistic locking
	ETag string `json:"etag"`

	// RunID is the ID of the run this job belongs to
	RunID string `json:"run_id"`

	// QueueTaskID is the ID of the job in the Queue (ie. the ID returned when
	// we Enqueue it). Kept in order to Kill() the job if required.
	QueueTaskID string `json:"queue_task_id"`

	// Message is an optional message, eg. why the job was skipped or what
	// failed.
	Message string `json:"message"`

	// CreatedAt is the time this job was created unix time in seconds
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the time this job was last updated unix time in seconds
	UpdatedAt int64 `json:"updated_at"`
}
