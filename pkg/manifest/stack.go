package manifest

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	units "github.com/docker/go-units"
	"github.com/goccy/go-yaml"

	"github.com/ventrath/gantry/pkg/errors"
	"github.com/ventrath/gantry/pkg/graph"
)

const (
	// healthcheck defaults, applied when a service declares a check but
	// leaves these unset
	defHealthInterval = 5 * time.Second
	defHealthTimeout  = 3 * time.Second
	defHealthRetries  = 3
)

// Stack is a declarative service topology: named services, their wiring
// (depends_on) and the named volumes they share. Immutable once loaded.
type Stack struct {
	Version  string              `yaml:"version"`
	Services map[string]*Service `yaml:"services"`
	Volumes  map[string]*Volume  `yaml:"volumes"`
}

// Service declares one long-running process unit.
type Service struct {
	// Image to run, eg. "postgres:13". One of Image / Build is required.
	Image string `yaml:"image"`

	// Build is a local build context directory, used when Image is not set.
	Build string `yaml:"build"`

	// Command overrides the image entry command.
	Command []string `yaml:"command"`

	// Ports are "host:container" mappings.
	Ports []string `yaml:"ports"`

	// Environment set in the service.
	Environment map[string]string `yaml:"environment"`

	// EnvFile is a file of KEY=VALUE lines merged under Environment.
	EnvFile string `yaml:"env_file"`

	// Volumes are "source:target" bindings; a source naming a top level
	// volume is a named volume, anything else is a host path.
	Volumes []string `yaml:"volumes"`

	// DependsOn are services that must be healthy before this one starts.
	DependsOn []string `yaml:"depends_on"`

	// Healthcheck gates dependents of this service. A service without one
	// counts as healthy as soon as it is running.
	Healthcheck *Healthcheck `yaml:"healthcheck"`

	// MemLimit is a human readable memory cap, eg. "512m".
	MemLimit string `yaml:"mem_limit"`

	// Restart policy passed through to the runtime ("no", "always", ...).
	Restart string `yaml:"restart"`
}

// Healthcheck is a polled predicate determining whether a service is ready
// to accept dependents.
type Healthcheck struct {
	// Test is the command run inside the service, exit 0 = healthy.
	Test []string `yaml:"test"`

	// Interval between polls.
	Interval Duration `yaml:"interval"`

	// Timeout for a single poll.
	Timeout Duration `yaml:"timeout"`

	// Retries before the service is declared failed.
	Retries int `yaml:"retries"`

	// StartPeriod is grace time before polling begins.
	StartPeriod Duration `yaml:"start_period"`
}

// Volume is a named persistent volume. Created on first use; persists
// across stack restarts until explicitly removed.
type Volume struct {
	// Driver is passed through to the runtime; empty means the default.
	Driver string `yaml:"driver"`
}

// VolumeRef is one parsed "source:target" binding.
type VolumeRef struct {
	Source string
	Target string

	// Named is true when Source refers to a top level volume rather than
	// a host path.
	Named bool
}

// PortMapping is one parsed "host:container" binding.
type PortMapping struct {
	Host      int
	Container int
}

// LoadStack reads, env-expands and parses a stack manifest file.
func LoadStack(path string) (*Stack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseStack(data, nil)
}

// ParseStack parses stack manifest bytes, substituting env vars via the
// given lookup (nil means the process environment).
func ParseStack(data []byte, lookup LookupFunc) (*Stack, error) {
	s := &Stack{}
	if err := yaml.Unmarshal(ExpandEnv(data, lookup), s); err != nil {
		return nil, fmt.Errorf("%w bad stack manifest: %v", errors.ErrInvalidArg, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the stack is internally consistent: services are well
// formed, depends_on names exist and the dependency graph is acyclic.
func (s *Stack) Validate() error {
	if len(s.Services) == 0 {
		return fmt.Errorf("%w stack declares no services", errors.ErrInvalidArg)
	}

	deps := map[string][]string{}
	for name, svc := range s.Services {
		if svc == nil {
			return fmt.Errorf("%w service %s is empty", errors.ErrInvalidArg, name)
		}
		if svc.Image == "" && svc.Build == "" {
			return fmt.Errorf("%w service %s has neither image nor build", errors.ErrInvalidArg, name)
		}
		for _, p := range svc.Ports {
			if _, err := ParsePort(p); err != nil {
				return fmt.Errorf("%w service %s: %v", errors.ErrInvalidArg, name, err)
			}
		}
		for _, v := range svc.Volumes {
			ref, err := s.ParseVolume(v)
			if err != nil {
				return fmt.Errorf("%w service %s: %v", errors.ErrInvalidArg, name, err)
			}
			_ = ref
		}
		if svc.MemLimit != "" {
			if _, err := units.RAMInBytes(svc.MemLimit); err != nil {
				return fmt.Errorf("%w service %s mem_limit %q: %v", errors.ErrInvalidArg, name, svc.MemLimit, err)
			}
		}
		if hc := svc.Healthcheck; hc != nil && len(hc.Test) == 0 {
			return fmt.Errorf("%w service %s healthcheck has no test", errors.ErrInvalidArg, name)
		}
		deps[name] = svc.DependsOn
	}

	// rejects unknown depends_on names & cycles
	_, err := graph.FromDeps(deps)
	return err
}

// Graph returns the service dependency graph. Call Validate first.
func (s *Stack) Graph() (*graph.Graph, error) {
	deps := map[string][]string{}
	for name, svc := range s.Services {
		deps[name] = svc.DependsOn
	}
	return graph.FromDeps(deps)
}

// ParseVolume parses one "source:target" binding against the stack's
// declared volumes.
func (s *Stack) ParseVolume(in string) (*VolumeRef, error) {
	src, target, ok := strings.Cut(in, ":")
	if !ok || src == "" || target == "" {
		return nil, fmt.Errorf("bad volume binding %q, want source:target", in)
	}
	if !strings.HasPrefix(target, "/") {
		return nil, fmt.Errorf("bad volume binding %q, target must be absolute", in)
	}
	if strings.HasPrefix(src, "/") || strings.HasPrefix(src, ".") {
		return &VolumeRef{Source: src, Target: target}, nil
	}
	if _, ok := s.Volumes[src]; !ok {
		return nil, fmt.Errorf("volume %q is not declared", src)
	}
	return &VolumeRef{Source: src, Target: target, Named: true}, nil
}

// ParsePort parses one "host:container" binding.
func ParsePort(in string) (*PortMapping, error) {
	host, cont, ok := strings.Cut(in, ":")
	if !ok {
		cont = host
	}
	h, err := strconv.Atoi(host)
	if err != nil || h <= 0 || h > 65535 {
		return nil, fmt.Errorf("bad port mapping %q", in)
	}
	c, err := strconv.Atoi(cont)
	if err != nil || c <= 0 || c > 65535 {
		return nil, fmt.Errorf("bad port mapping %q", in)
	}
	return &PortMapping{Host: h, Container: c}, nil
}

// MemBytes returns the service memory limit in bytes, 0 if unset.
func (s *Service) MemBytes() int64 {
	if s.MemLimit == "" {
		return 0
	}
	n, err := units.RAMInBytes(s.MemLimit)
	if err != nil {
		return 0
	}
	return n
}

// HealthInterval returns the poll interval, defaulted.
func (h *Healthcheck) HealthInterval() time.Duration {
	return h.Interval.Or(defHealthInterval)
}

// HealthTimeout returns the single-poll timeout, defaulted.
func (h *Healthcheck) HealthTimeout() time.Duration {
	return h.Timeout.Or(defHealthTimeout)
}

// HealthRetries returns the retry budget, defaulted.
func (h *Healthcheck) HealthRetries() int {
	if h.Retries <= 0 {
		return defHealthRetries
	}
	return h.Retries
}

// Env merges env_file values (if any) under explicit environment values.
func (s *Service) Env() (map[string]string, error) {
	out := map[string]string{}
	if s.EnvFile != "" {
		data, err := os.ReadFile(s.EnvFile)
		if err != nil {
			return nil, err
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			k, v, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			out[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	for k, v := range s.Environment {
		out[k] = v
	}
	return out, nil
}
