// Package schedule fires pipeline runs from cron triggers.
package schedule

import (
	"log"

	"github.com/robfig/cron/v3"

	"github.com/ventrath/gantry/pkg/api"
	"github.com/ventrath/gantry/pkg/manifest"
	"github.com/ventrath/gantry/pkg/structs"
)

// Scheduler watches the clock for registered pipelines and creates a run
// each time one of their cron triggers fires.
type Scheduler struct {
	svc  api.API
	cron *cron.Cron
}

func New(svc api.API) *Scheduler {
	return &Scheduler{svc: svc, cron: cron.New()}
}

// Add registers every `on: schedule` entry of the given pipeline. Pipelines
// with no schedule triggers are a no-op.
func (s *Scheduler) Add(p *manifest.Pipeline) error {
	err := p.Validate()
	if err != nil {
		return err
	}
	for _, entry := range p.On.Schedule {
		_, err := s.cron.AddFunc(entry.Cron, func() { s.fire(p) })
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) fire(p *manifest.Pipeline) {
	crr, err := manifest.Compile(p, structs.Event{Type: structs.EventSchedule})
	if err != nil {
		// ErrNotTriggered can't happen here; a schedule entry exists
		log.Println("[Scheduler]", p.Name, err)
		return
	}
	resp, err := s.svc.CreateRun(crr)
	if err != nil {
		log.Println("[Scheduler]", p.Name, err)
		return
	}
	log.Println("[Scheduler]", p.Name, "created run", resp.ID)
}

// Run blocks firing schedules until Stop is called.
func (s *Scheduler) Run() {
	s.cron.Run()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Entries reports how many cron triggers are registered; mostly useful for
// confirming a manifest actually carries schedule triggers.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
