package api

import (
	"github.com/ventrath/gantry/pkg/structs"
)

// API represents the functions Gantry servers should expose.
type API interface {
	// Implemented in gantry/internal/core.Service

	CreateRun(crr *structs.CreateRunRequest) (*structs.CreateRunResponse, error)

	Pause(r []*structs.ToggleRequest) (int64, error)
	Unpause(r []*structs.ToggleRequest) (int64, error)
	Skip(r []*structs.ToggleRequest) (int64, error)
	Kill(r []*structs.ToggleRequest) (int64, error)
	Retry(r []*structs.ToggleRequest) (int64, error)

	Runs(q *structs.Query) ([]*structs.Run, error)
	Jobs(q *structs.Query) ([]*structs.Job, error)
	Steps(q *structs.Query) ([]*structs.Step, error)
	Artifacts(q *structs.Query) ([]*structs.Artifact, error)

	Close() error
}

type Server interface {
	ServeForever(api API) error
	Close() error
}
