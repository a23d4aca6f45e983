package structs

// Kind is the type of object.
//
// We use this with our ObjectRef structs (a set of ID, ETag, Kind) to pin the exact object
// and version we're referring to.
type Kind string

const (
	// KindRun is a single triggered execution of a pipeline
	KindRun Kind = "Run"

	// KindJob is a job within a run
	KindJob Kind = "Job"

	// KindStep is an ordered command within a job
	KindStep Kind = "Step"

	// KindArtifact is a file-set handed off between jobs
	KindArtifact Kind = "Artifact"
)
