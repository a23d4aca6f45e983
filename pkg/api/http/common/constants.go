package common

const (
	// API_RUNS is used to get or create runs
	API_RUNS = "/api/v1/runs"

	// API_JOBS is used to get jobs
	API_JOBS = "/api/v1/jobs"

	// API_STEPS is used to get steps
	API_STEPS = "/api/v1/steps"

	// API_ARTIFACTS is used to get artifacts
	API_ARTIFACTS = "/api/v1/artifacts"

	// API_PAUSE is used to pause a job
	API_PAUSE = "/api/v1/pause"

	// API_UNPAUSE is used to unpause a job
	API_UNPAUSE = "/api/v1/unpause"

	// API_SKIP is used to skip a job
	API_SKIP = "/api/v1/skip"

	// API_KILL is used to kill a run or job
	API_KILL = "/api/v1/kill"

	// API_RETRY is used to re-run an errored job
	API_RETRY = "/api/v1/retry"
)
