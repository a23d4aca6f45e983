package manifest

import (
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/ventrath/gantry/pkg/errors"
	"github.com/ventrath/gantry/pkg/graph"
	"github.com/ventrath/gantry/pkg/structs"
)

const (
	// DefaultRunsOn is the worker label jobs dispatch to when they don't
	// name one.
	DefaultRunsOn = "default"
)

// Pipeline is a declarative set of jobs with a needs relation, trigger
// conditions and artifact handoff. Immutable once loaded.
type Pipeline struct {
	Name string          `yaml:"name"`
	On   Triggers        `yaml:"on"`
	Jobs map[string]*Job `yaml:"jobs"`
}

// Triggers declares which events start a run of the pipeline at all.
// Per-job `when` predicates narrow further.
type Triggers struct {
	Push        *BranchFilter    `yaml:"push"`
	PullRequest *BranchFilter    `yaml:"pull_request"`
	Release     *ReleaseFilter   `yaml:"release"`
	Schedule    []ScheduleEntry  `yaml:"schedule"`
	Dispatch    *DispatchTrigger `yaml:"workflow_dispatch"`
}

// BranchFilter limits push / pull_request triggers to matching branches
// (glob patterns). Empty means any branch.
type BranchFilter struct {
	Branches []string `yaml:"branches"`
}

// ReleaseFilter limits release triggers to the named actions
// (eg. "published"). Empty means any action.
type ReleaseFilter struct {
	Actions []string `yaml:"actions"`
}

// ScheduleEntry is one cron trigger.
type ScheduleEntry struct {
	Cron string `yaml:"cron"`
}

// DispatchTrigger marks the pipeline manually runnable. Presence is enough.
type DispatchTrigger struct{}

// Job declares one unit of pipeline work.
type Job struct {
	// RunsOn is the worker label, defaulting to DefaultRunsOn.
	RunsOn string `yaml:"runs_on"`

	// Needs are jobs that must all succeed before this one runs.
	Needs []string `yaml:"needs"`

	// When narrows this job to certain events; false means the job (and
	// its dependents) are skipped, which is not an error.
	When *Predicate `yaml:"when"`

	// Strategy expands the job into one instance per matrix combination.
	Strategy *Strategy `yaml:"strategy"`

	// Env set for every step.
	Env map[string]string `yaml:"env"`

	// Retries on failure, passed to the queue.
	Retries int64 `yaml:"retries"`

	// Steps run in order; the first failure fails the job.
	Steps []Step `yaml:"steps"`

	// Artifacts the job publishes and/or consumes.
	Artifacts *Artifacts `yaml:"artifacts"`
}

// Strategy holds matrix expansion parameters.
type Strategy struct {
	Matrix map[string][]string `yaml:"matrix"`
}

// Step is one command within a job.
type Step struct {
	Name    string            `yaml:"name"`
	Run     string            `yaml:"run"`
	Env     map[string]string `yaml:"env"`
	Workdir string            `yaml:"workdir"`
}

// Artifacts declares a job's uploads & downloads by name.
type Artifacts struct {
	Upload   []Upload `yaml:"upload"`
	Download []string `yaml:"download"`
}

// Upload names a path the job publishes on success.
type Upload struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// LoadPipeline reads, env-expands and parses a pipeline manifest file.
func LoadPipeline(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePipeline(data, nil)
}

// ParsePipeline parses pipeline manifest bytes, substituting env vars via
// the given lookup (nil means the process environment).
func ParsePipeline(data []byte, lookup LookupFunc) (*Pipeline, error) {
	p := &Pipeline{}
	if err := yaml.Unmarshal(ExpandEnv(data, lookup), p); err != nil {
		return nil, fmt.Errorf("%w bad pipeline manifest: %v", errors.ErrInvalidArg, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the pipeline is internally consistent: jobs are well
// formed, needs names exist and the needs graph is acyclic.
func (p *Pipeline) Validate() error {
	if len(p.Jobs) == 0 {
		return errors.ErrNoJobs
	}

	deps := map[string][]string{}
	for key, job := range p.Jobs {
		if job == nil {
			return fmt.Errorf("%w job %s is empty", errors.ErrInvalidArg, key)
		}
		if len(job.Steps) == 0 {
			return fmt.Errorf("%w job %s: %v", errors.ErrInvalidArg, key, errors.ErrNoSteps)
		}
		for i, st := range job.Steps {
			if st.Run == "" {
				return fmt.Errorf("%w job %s step %d: %v", errors.ErrInvalidArg, key, i, errors.ErrNoCommand)
			}
		}
		if job.Artifacts != nil {
			for _, up := range job.Artifacts.Upload {
				if up.Name == "" || up.Path == "" {
					return fmt.Errorf("%w job %s upload needs both name and path", errors.ErrInvalidArg, key)
				}
			}
		}
		if job.Strategy != nil {
			for param, vals := range job.Strategy.Matrix {
				if len(vals) == 0 {
					return fmt.Errorf("%w job %s matrix param %s has no values", errors.ErrInvalidArg, key, param)
				}
			}
		}
		deps[key] = job.Needs
	}

	// rejects unknown needs & cycles before anything executes
	_, err := graph.FromDeps(deps)
	return err
}

// Graph returns the job needs graph. Call Validate first.
func (p *Pipeline) Graph() (*graph.Graph, error) {
	deps := map[string][]string{}
	for key, job := range p.Jobs {
		deps[key] = job.Needs
	}
	return graph.FromDeps(deps)
}

// JobKeys returns manifest job keys in a stable order.
func (p *Pipeline) JobKeys() []string {
	keys := make([]string, 0, len(p.Jobs))
	for k := range p.Jobs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Accepts decides whether the given event triggers this pipeline at all
// (spec: branch push, pull request, release publication, manual dispatch,
// cron schedule).
func (t *Triggers) Accepts(ev structs.Event) bool {
	switch ev.Type {
	case structs.EventPush:
		return t.Push != nil && matchAnyGlob(t.Push.Branches, ev.Branch)
	case structs.EventPullRequest:
		return t.PullRequest != nil && matchAnyGlob(t.PullRequest.Branches, ev.Branch)
	case structs.EventRelease:
		return t.Release != nil && matchAnyExact(t.Release.Actions, ev.Action)
	case structs.EventSchedule:
		return len(t.Schedule) > 0
	case structs.EventDispatch:
		return t.Dispatch != nil
	default:
		return false
	}
}
