package worker

import (
	"os"
	"path/filepath"
)

const (
	defaultLabel        = "default"
	defaultShell        = "/bin/sh"
	defaultMessageLimit = 4096
)

type Options struct {
	// Labels this worker accepts jobs for (the job's runs_on).
	Labels []string

	// Workspace is the directory job workspaces are created under.
	Workspace string

	// Shell the step commands are run with (as `shell -c command`).
	Shell string

	// MessageLimit caps how many bytes of command output we keep as the
	// step message when a step fails.
	MessageLimit int
}

func (o *Options) SetDefaults() {
	if len(o.Labels) == 0 {
		o.Labels = []string{defaultLabel}
	}
	if o.Workspace == "" {
		o.Workspace = filepath.Join(os.TempDir(), "gantry")
	}
	if o.Shell == "" {
		o.Shell = defaultShell
	}
	if o.MessageLimit <= 0 {
		o.MessageLimit = defaultMessageLimit
	}
}
