package topology

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/ventrath/gantry/internal/metrics"
	"github.com/ventrath/gantry/pkg/errors"
	"github.com/ventrath/gantry/pkg/manifest"
	"github.com/ventrath/gantry/pkg/runtime"
)

// Status is the outcome of bringing up (or tearing down) one service.
type Status string

const (
	// StatusStarted means the service came up & passed its healthcheck.
	StatusStarted Status = "STARTED"

	// StatusFailed means the service never became healthy.
	StatusFailed Status = "FAILED"

	// StatusSkipped means a dependency failed, so the service was never started.
	StatusSkipped Status = "SKIPPED"

	// StatusStopped means the service was stopped & removed.
	StatusStopped Status = "STOPPED"
)

// Result is the outcome for one service of an Up or Down.
type Result struct {
	Service string
	Status  Status
	ID      string
	Err     error
}

// Manager brings service stacks up & down against a Runtime, honouring
// depends_on ordering and healthcheck gates.
type Manager struct {
	rt   runtime.Runtime
	opts *Options
}

// New returns a topology Manager using the given runtime.
func New(rt runtime.Runtime, opts *Options) *Manager {
	if opts == nil {
		opts = &Options{}
	}
	opts.SetDefaults()
	return &Manager{rt: rt, opts: opts}
}

// Up brings the whole stack up.
//
// Services start as soon as everything they depend on is healthy; independent
// branches start concurrently. A service that never becomes healthy fails,
// and everything that (transitively) depends on it is skipped without being
// started. Other branches are unaffected.
//
// The stack is validated first; a dependency cycle or unknown reference is
// rejected before any service starts.
func (m *Manager) Up(ctx context.Context, st *manifest.Stack) ([]*Result, error) {
	err := st.Validate()
	if err != nil {
		return nil, err
	}
	g, err := st.Graph()
	if err != nil {
		return nil, err
	}

	// volumes first; services mount them
	volNames := make([]string, 0, len(st.Volumes))
	for name := range st.Volumes {
		volNames = append(volNames, name)
	}
	sort.Strings(volNames)
	for _, name := range volNames {
		err = m.rt.EnsureVolume(ctx, m.opts.Name, name, st.Volumes[name])
		if err != nil {
			return nil, err
		}
	}

	healthy := map[string]bool{} // services whose dependents may start
	seen := map[string]bool{}    // started, finished or skipped
	active := 0
	results := []*Result{}
	resultCh := make(chan *Result)

	for {
		for _, name := range g.Ready(healthy, seen) {
			seen[name] = true
			active++
			go func(name string) {
				resultCh <- m.startOne(ctx, st, name)
			}(name)
		}

		if active == 0 {
			break
		}

		res := <-resultCh
		active--
		results = append(results, res)

		if res.Status == StatusStarted {
			metrics.ServicesStarted.Inc()
			healthy[res.Service] = true
			continue
		}
		metrics.ServicesFailed.Inc()

		// the failed service's subgraph will never start
		log.Printf("service %s failed, skipping dependents: %v", res.Service, res.Err)
		for _, dep := range g.TransitiveDependents(res.Service) {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			results = append(results, &Result{
				Service: dep,
				Status:  StatusSkipped,
				Err:     fmt.Errorf("%w %s", errors.ErrDepFailed, res.Service),
			})
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Service < results[j].Service })
	return results, upError(results)
}

// Down stops & removes the stack's services in reverse dependency order, so
// nothing loses a dependency while still running. Named volumes are kept.
func (m *Manager) Down(ctx context.Context, st *manifest.Stack) ([]*Result, error) {
	g, err := st.Graph()
	if err != nil {
		return nil, err
	}
	order, err := g.Sort()
	if err != nil {
		return nil, err
	}

	results := []*Result{}
	var failed error
	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		err = m.rt.StopService(ctx, m.opts.Name, name)
		if err == nil {
			err = m.rt.RemoveService(ctx, m.opts.Name, name)
		}
		res := &Result{Service: name, Status: StatusStopped, Err: err}
		if err != nil {
			res.Status = StatusFailed
			failed = err
		}
		results = append(results, res)
	}
	return results, failed
}

// RemoveVolumes removes the stack's named volumes. Call after Down; a volume
// still attached to a container will refuse to go.
func (m *Manager) RemoveVolumes(ctx context.Context, st *manifest.Stack) error {
	var failed error
	for name := range st.Volumes {
		err := m.rt.RemoveVolume(ctx, m.opts.Name, name)
		if err != nil {
			log.Printf("[Topology] failed to remove volume %s: %v", name, err)
			failed = err
		}
	}
	return failed
}

// startOne starts a single service & waits for it to become healthy.
func (m *Manager) startOne(ctx context.Context, st *manifest.Stack, name string) *Result {
	svc := st.Services[name]

	id, err := m.rt.StartService(ctx, m.opts.Name, st, name)
	if err != nil {
		return &Result{Service: name, Status: StatusFailed, Err: err}
	}

	deadline := time.Now().Add(startBudget(svc, m.opts.StartTimeout))
	interval := m.opts.ProbeInterval
	if svc.Healthcheck != nil {
		interval = svc.Healthcheck.HealthInterval()
	}

	for {
		health, err := m.rt.Probe(ctx, id)
		if err != nil {
			return &Result{Service: name, Status: StatusFailed, ID: id, Err: err}
		}

		switch health {
		case runtime.HealthHealthy:
			return &Result{Service: name, Status: StatusStarted, ID: id}
		case runtime.HealthUnhealthy:
			return &Result{Service: name, Status: StatusFailed, ID: id,
				Err: fmt.Errorf("%w %s", errors.ErrNotHealthy, name)}
		}

		if time.Now().After(deadline) {
			return &Result{Service: name, Status: StatusFailed, ID: id,
				Err: fmt.Errorf("%w %s did not become healthy in time", errors.ErrNotHealthy, name)}
		}

		select {
		case <-ctx.Done():
			return &Result{Service: name, Status: StatusFailed, ID: id, Err: ctx.Err()}
		case <-time.After(interval):
		}
	}
}

// startBudget is how long we'll wait for a service to turn healthy; the
// runtime performs the actual healthcheck probes, this just bounds our
// polling of its verdict.
func startBudget(svc *manifest.Service, fallback time.Duration) time.Duration {
	h := svc.Healthcheck
	if h == nil {
		return fallback
	}
	budget := h.StartPeriod.Or(0)
	budget += (h.HealthInterval() + h.HealthTimeout()) * time.Duration(h.HealthRetries()+1)
	if budget < fallback {
		return fallback
	}
	return budget
}

// upError returns the first failure of an Up, if any.
func upError(results []*Result) error {
	for _, r := range results {
		if r.Status == StatusFailed {
			return r.Err
		}
	}
	return nil
}
