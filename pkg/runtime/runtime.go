package runtime

import (
	"context"

	"github.com/ventrath/gantry/pkg/manifest"
)

// Health is the observed readiness of a started service.
type Health string

const (
	// HealthStarting means the service is up but its healthcheck hasn't passed yet.
	HealthStarting Health = "starting"

	// HealthHealthy means the service is ready to accept dependents.
	HealthHealthy Health = "healthy"

	// HealthUnhealthy means the service is failing its healthcheck, or
	// its container exited.
	HealthUnhealthy Health = "unhealthy"

	// HealthUnknown means we couldn't determine the service state.
	HealthUnknown Health = "unknown"
)

// Runtime is where stack services actually run. The topology manager drives
// this interface; the only implementation that ships is Docker.
type Runtime interface {
	// EnsureVolume creates the named volume if it does not exist.
	// Volumes persist until RemoveVolume is called.
	EnsureVolume(ctx context.Context, stack, name string, v *manifest.Volume) error

	// StartService creates & starts a container for the named service of
	// the given stack, replacing any previous container of the same name.
	// Returns an id for later calls.
	StartService(ctx context.Context, stack string, st *manifest.Stack, name string) (string, error)

	// Probe reports the current health of a started service.
	Probe(ctx context.Context, id string) (Health, error)

	// StopService stops a running service. Missing services are not an error.
	StopService(ctx context.Context, stack, name string) error

	// RemoveService removes a stopped service. Named volumes are left alone.
	RemoveService(ctx context.Context, stack, name string) error

	// RemoveVolume deletes a named volume & its data.
	RemoveVolume(ctx context.Context, stack, name string) error

	Close() error
}
