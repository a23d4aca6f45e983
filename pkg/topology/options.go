package topology

import (
	"time"
)

const (
	defName          = "gantry"
	defProbeInterval = 1 * time.Second
	defStartTimeout  = 60 * time.Second
)

// Options are options for the topology manager.
type Options struct {
	// Name scopes the stack's containers & volumes, so several stacks can
	// share one runtime.
	Name string

	// ProbeInterval is how often we poll a service with no healthcheck
	// interval of its own.
	ProbeInterval time.Duration

	// StartTimeout is the minimum time we allow any service to become
	// healthy before giving up on it.
	StartTimeout time.Duration
}

func (o *Options) SetDefaults() {
	if o.Name == "" {
		o.Name = defName
	}
	if o.ProbeInterval <= 0 {
		o.ProbeInterval = defProbeInterval
	}
	if o.StartTimeout <= 0 {
		o.StartTimeout = defStartTimeout
	}
}
