package core

import (
	"time"
)

const (
	defEventRoutines = 10
	defTidyRoutines  = 2
	defTidyFrequency = 2 * time.Minute
	defReapFrequency = 10 * time.Minute
	defMaxJobTime    = 24 * time.Hour
)

type Options struct {
	// EventRoutines is the number of routines processing database change
	// events. 0 disables event handling (client mode).
	EventRoutines int64

	// TidyRoutines is the number of routines re-checking incomplete runs
	// in case events were dropped. 0 disables tidying (client mode).
	TidyRoutines int64

	// TidyRunFrequency is how often incomplete runs are re-checked.
	TidyRunFrequency time.Duration

	// ReapJobFrequency is how often running jobs are checked against
	// MaxJobRuntime.
	ReapJobFrequency time.Duration

	// MaxJobRuntime is how long a job may run before it is killed.
	MaxJobRuntime time.Duration
}

func (o *Options) SetDefaults() {
	if o.TidyRunFrequency <= 0 {
		o.TidyRunFrequency = defTidyFrequency
	}
	if o.ReapJobFrequency <= 0 {
		o.ReapJobFrequency = defReapFrequency
	}
	if o.MaxJobRuntime <= 0 {
		o.MaxJobRuntime = defMaxJobTime
	}
}
