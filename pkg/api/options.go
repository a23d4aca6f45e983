package api

import (
	"time"

	"github.com/ventrath/gantry/internal/core"
)

const (
	defMaxJobRuntime = 24 * time.Hour
)

// Options passed to the Gantry API on creation
type Options struct {
	// MaxJobRuntime is the absolute maximum time a job is permitted to run
	// for. After this time we will attempt to murder the job.
	MaxJobRuntime time.Duration

	// EventRoutines is the number of goroutines to spawn to handle events
	// (changes to Run(s) & Job(s))
	EventRoutines int64

	// TidyRunFrequency is how often we look over incomplete runs to check
	// they're in the right states (we do this in case event(s) were
	// dropped / errors occurred)
	TidyRunFrequency time.Duration

	// ReapJobFrequency is how often we look over jobs to check if they need
	// reaping (ie, they've been running too long & need to be killed)
	ReapJobFrequency time.Duration

	// TidyRoutines is the number of routines allocated to tidy work (above).
	TidyRoutines int64
}

// OptionsClientDefault runs a Gantry service that runs no backend worker routines.
// This is intended for clients who wish to use the API without performing
// background work.
func OptionsClientDefault() *Options {
	return &Options{
		MaxJobRuntime: defMaxJobRuntime,
	}
}

// OptionsServerDefault runs a Gantry service with background worker routines to
// ensure consistency of Gantry data & handle internal events.
func OptionsServerDefault() *Options {
	return &Options{
		MaxJobRuntime:    defMaxJobRuntime,
		EventRoutines:    4,
		TidyRoutines:     2,
		TidyRunFrequency: 7 * time.Minute,
		ReapJobFrequency: 3 * time.Minute,
	}
}

func (o *Options) toCore() *core.Options {
	return &core.Options{
		EventRoutines:    o.EventRoutines,
		TidyRoutines:     o.TidyRoutines,
		TidyRunFrequency: o.TidyRunFrequency,
		ReapJobFrequency: o.ReapJobFrequency,
		MaxJobRuntime:    o.MaxJobRuntime,
	}
}
