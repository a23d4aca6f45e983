package structs

// RunJobRequest is an outline of one job (instance) within a CreateRunRequest.
type RunJobRequest struct {
	JobSpec `json:",inline"`

	// Skip marks the job pre-skipped: its run predicate evaluated false
	// against the triggering event. Pre-skipped jobs (and anything needing
	// them) are recorded but never queued.
	Skip bool `json:"skip,omitempty"`

	// SkipReason says why, if Skip is set.
	SkipReason string `json:"skip_reason,omitempty"`

	// Steps the job runs, in order.
	Steps []StepSpec `json:"steps"`
}

// ArtifactUpload names a path the producing job publishes.
type ArtifactUpload struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// CreateRunRequest is an outline to create a new run with all of its jobs.
type CreateRunRequest struct {
	RunSpec `json:",inline"`

	Jobs []RunJobRequest `json:"jobs"`
}

type RunJobResponse struct {
	*Job `json:",inline"`

	Steps []*Step `json:"steps"`
}

type CreateRunResponse struct {
	*Run `json:",inline"`

	Jobs []*RunJobResponse `json:"jobs"`
}
