package structs

// StepSpec are fields that can be set when a step is created
type StepSpec struct {
	// Name is an optional human readable name for this step
	Name string `json:"name"`

	// Command is the shell command this step runs.
	//
	// Required.
	Command string `json:"command"`

	// Env is extra environment set for the command.
	Env map[string]string `json:"env,omitempty"`

	// Workdir is the directory the command runs in (defaults to the
	// job workspace).
	Workdir string `json:"workdir,omitempty"`
}

// Step is one ordered command within a job. Steps run sequentially; the
// first non-zero exit fails the job and the remaining steps are skipped.
type Step struct {
	// StepSpec are fields that can be set when a step is created
	StepSpec `json:",inline"`

	// ID is a unique identifier for this step
	ID string `json:"id"`

	// Status is the current status of this step
	Status Status `json:"status"`

	// ETag is used when updating a step for optimistic locking
	ETag string `json:"etag"`

	// RunID is the ID of the run this step belongs to
	RunID string `json:"run_id"`

	// JobID is the ID of the job this step belongs to
	JobID string `json:"job_id"`

	// Index is the position of this step within its job (0 based).
	Index int64 `json:"index"`

	// ExitCode of the command, valid once the step is final.
	ExitCode int64 `json:"exit_code"`

	// Message is an optional message (eg. tail of command output on failure).
	Message string `json:"message"`

	// CreatedAt is the time this step was created unix time in seconds
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the time this step was last updated unix time in seconds
	UpdatedAt int64 `json:"updated_at"`
}
