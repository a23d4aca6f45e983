package structs

// ObjectRef is a reference to a unique object & version.
type ObjectRef struct {
	// Kind is the type of object.
	Kind Kind `json:"kind"`

	// ID is the unique identifier for this object.
	ID string `json:"id"`

	// ETag is the version of this object.
	ETag string `json:"etag"`
}

// NewObjectRef creates a new ObjectRef.
func NewObjectRef(id, etag string) *ObjectRef {
	return &ObjectRef{ID: id, ETag: etag}
}

// Run tags the Ref as kind: Run
func (o *ObjectRef) Run() *ObjectRef {
	o.Kind = KindRun
	return o
}

// Job tags the Ref as kind: Job
func (o *ObjectRef) Job() *ObjectRef {
	o.Kind = KindJob
	return o
}

// Step tags the Ref as kind: Step
func (o *ObjectRef) Step() *ObjectRef {
	o.Kind = KindStep
	return o
}
