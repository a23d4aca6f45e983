package structs

const (
	queryLimitDefault = 1000
	queryLimitMax     = 10000
)

// Query filters objects when listing runs, jobs, steps or artifacts.
type Query struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Filters
	RunIDs   []string `json:"run_ids,omitempty"`
	JobIDs   []string `json:"job_ids,omitempty"`
	StepIDs  []string `json:"step_ids,omitempty"`
	Statuses []Status `json:"statuses,omitempty"`

	// Time filters, unix time in seconds. 0 disables the filter.
	UpdatedBefore int64 `json:"updated_before,omitempty"`
	UpdatedAfter  int64 `json:"updated_after,omitempty"`
	CreatedBefore int64 `json:"created_before,omitempty"`
	CreatedAfter  int64 `json:"created_after,omitempty"`
}

func (q *Query) Sanitize() {
	if q.Limit <= 0 {
		q.Limit = queryLimitDefault
	}
	if q.Limit > queryLimitMax {
		q.Limit = queryLimitMax
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.RunIDs == nil || len(q.RunIDs) == 0 {
		q.RunIDs = nil
	}
	if q.JobIDs == nil || len(q.JobIDs) == 0 {
		q.JobIDs = nil
	}
	if q.StepIDs == nil || len(q.StepIDs) == 0 {
		q.StepIDs = nil
	}
	if q.Statuses == nil || len(q.Statuses) == 0 {
		q.Statuses = nil
	}
}
