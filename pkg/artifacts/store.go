package artifacts

// Store is a write-once, read-many artifact store.
//
// An artifact is published exactly once under a (run, name) pair; later
// writes to the same pair are rejected. Reads copy data out, so a consumer
// can never mutate what another consumer sees.
type Store interface {
	// Put stores the file or directory at src under (runID, name) and
	// returns the stored size in bytes. ErrArtifactExists if already set.
	Put(runID, name, src string) (int64, error)

	// Get copies the artifact stored under (runID, name) to dst.
	// ErrArtifactMissing if it was never Put.
	Get(runID, name, dst string) error

	// Exists reports whether (runID, name) has been Put.
	Exists(runID, name string) bool

	// RemoveRun deletes every artifact of the given run.
	RemoveRun(runID string) error
}
