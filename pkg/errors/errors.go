package errors

import (
	"fmt"
)

var (
	ErrNoJobs          = fmt.Errorf("no jobs specified")
	ErrNoSteps         = fmt.Errorf("no steps specified")
	ErrNoCommand       = fmt.Errorf("no step command specified")
	ErrParentNotFound  = fmt.Errorf("parent not found")
	ErrETagMismatch    = fmt.Errorf("etag mismatch")
	ErrMaxExceeded     = fmt.Errorf("max length exceeded")
	ErrInvalidState    = fmt.Errorf("invalid state")
	ErrInvalidArg      = fmt.Errorf("invalid arg")
	ErrNotSupported    = fmt.Errorf("not supported")
	ErrCycleDetected   = fmt.Errorf("dependency cycle detected")
	ErrUnknownDep      = fmt.Errorf("unknown dependency")
	ErrNotTriggered    = fmt.Errorf("event does not trigger pipeline")
	ErrArtifactExists  = fmt.Errorf("artifact already exists")
	ErrArtifactMissing = fmt.Errorf("artifact not found")
	ErrNotHealthy      = fmt.Errorf("service did not become healthy")
	ErrDepFailed       = fmt.Errorf("dependency failed")
)
