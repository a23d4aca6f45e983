package core

import (
	"fmt"
	"log"
	"time"

	"github.com/ventrath/gantry/internal/metrics"
	"github.com/ventrath/gantry/internal/utils"
	"github.com/ventrath/gantry/pkg/database"
	"github.com/ventrath/gantry/pkg/database/changes"
	"github.com/ventrath/gantry/pkg/errors"
	"github.com/ventrath/gantry/pkg/graph"
	"github.com/ventrath/gantry/pkg/queue"
	"github.com/ventrath/gantry/pkg/structs"
)

const (
	// how long a job may sit QUEUED with no queue handle (or KILLED with no
	// follow up) before tidy re-drives it
	requeueGrace = time.Minute
)

var (
	incompleteStates = []structs.Status{
		structs.PENDING,
		structs.QUEUED,
		structs.RUNNING,
	}
)

// Service drives runs forward. It reacts to database change events (jobs
// finishing, jobs being killed) and decides what may be queued next; the
// dependency gating of the pipeline lives here.
type Service struct {
	db   database.Database
	qu   queue.Queue
	opts *Options
}

func NewService(db database.Database, qu queue.Queue, opts *Options) (*Service, error) {
	if opts == nil {
		opts = &Options{
			EventRoutines: defEventRoutines,
			TidyRoutines:  defTidyRoutines,
		}
	}
	opts.SetDefaults()
	me := &Service{db: db, qu: qu, opts: opts}

	errs := make(chan error)
	go func() {
		for err := range errs {
			if err != nil {
				metrics.EventErrors.Inc()
				log.Println("[Service]", err)
			}
		}
	}()

	if opts.TidyRoutines > 0 {
		// TidyRoutines work in batches, periodically rechecking runs that
		// aren't complete in case some event(s) were dropped / missed.

		tidyRunWork := make(chan []*structs.Run)
		reapJobWork := make(chan []*structs.Job)
		go func() {
			defer close(tidyRunWork)
			defer close(reapJobWork)

			tickRun := time.NewTicker(opts.TidyRunFrequency)
			tickJob := time.NewTicker(opts.ReapJobFrequency)
			for {
				select {
				case <-tickRun.C:
					me.queueTidyRunWork(errs, tidyRunWork)
				case <-tickJob.C:
					me.queueReapJobWork(errs, reapJobWork)
				}
			}
		}()

		for i := int64(0); i < opts.TidyRoutines; i++ {
			go func() {
				for {
					select {
					case runs := <-tidyRunWork:
						me.handleTidyRuns(errs, runs)
					case jobs := <-reapJobWork:
						me.handleReapJobs(errs, jobs)
					}
				}
			}()
		}
	}

	if opts.EventRoutines > 0 {
		// Rather than have each worker routine listen for events and deal
		// with massive numbers of duplicates (and more work for the DB) we
		// have a single routine that fetches events and passes them on.
		//
		// We can still have multiple processes fetching events (ie. multiple
		// gantry services) but this greatly cuts down on duplicate work.

		evtWork := make(chan *changes.Change)

		go func() {
			// Listen to changes. Retry on error(s) forever.
			defer close(evtWork)

			var stream changes.Stream
			var err error
			for {
				stream, err = db.Changes()
				if err != nil {
					errs <- err
					time.Sleep(time.Second)
					continue
				}

				for {
					evt, err := stream.Next()
					if err != nil {
						errs <- err
						break
					}
					if evt == nil {
						return
					}
					evtWork <- evt
				}
			}
		}()

		for i := int64(0); i < opts.EventRoutines; i++ {
			go func() {
				me.handleEvents(errs, evtWork)
			}()
		}
	}

	return me, nil
}

func (c *Service) Close() error {
	c.qu.Close()
	c.db.Close()
	return nil
}

func (c *Service) Pause(r []*structs.ToggleRequest) (int64, error) {
	return c.togglePause(time.Now().Unix(), r)
}

func (c *Service) Unpause(r []*structs.ToggleRequest) (int64, error) {
	return c.togglePause(0, r)
}

func (c *Service) togglePause(now int64, r []*structs.ToggleRequest) (int64, error) {
	byKind, err := validateToggles(r)
	if err != nil {
		return 0, err
	}

	var count int64
	etag := utils.NewRandomID()
	for k, toggles := range byKind {
		switch k {
		case structs.KindJob:
			c, err := c.db.SetJobsPaused(now, etag, toggles)
			count += c
			if err != nil {
				return count, err
			}
		default:
			log.Println("pause not supported on kind", k)
		}
	}

	return count, nil
}

func (c *Service) Skip(r []*structs.ToggleRequest) (int64, error) {
	byKind, err := validateToggles(r)
	if err != nil {
		return 0, err
	}

	var count int64
	etag := utils.NewRandomID()
	for k, toggles := range byKind {
		switch k {
		case structs.KindJob:
			c, err := c.db.SetJobsStatus(structs.SKIPPED, etag, toggles)
			count += c
			if err != nil {
				return count, err
			}
		default:
			log.Println("skip not supported on kind", k)
		}
	}

	return count, nil
}

func (c *Service) Kill(r []*structs.ToggleRequest) (int64, error) {
	byKind, err := validateToggles(r)
	if err != nil {
		return 0, err
	}

	var count int64
	etag := utils.NewRandomID()
	for k, toggles := range byKind {
		switch k {
		case structs.KindRun:
			c, err := c.db.SetRunsStatus(structs.KILLED, etag, toggles)
			count += c
			if err != nil {
				return count, err
			}
		case structs.KindJob:
			c, err := c.db.SetJobsStatus(structs.KILLED, etag, toggles)
			count += c
			if err != nil {
				return count, err
			}
		default:
			log.Println("kill not supported on kind", k)
		}
	}

	return count, nil
}

// Retry re-runs errored jobs.
//
// The job goes back to PENDING (steps too), anything skipped downstream of
// it is un-skipped, and the run is driven forward again; a run that already
// rolled up ERRORED is re-opened.
func (c *Service) Retry(r []*structs.ToggleRequest) (int64, error) {
	byKind, err := validateToggles(r)
	if err != nil {
		return 0, err
	}

	var count int64
	for k, toggles := range byKind {
		switch k {
		case structs.KindJob:
			c, err := c.retryJobs(toggles)
			count += c
			if err != nil {
				return count, err
			}
		default:
			log.Println("retry not supported on kind", k)
		}
	}

	return count, nil
}

func (c *Service) retryJobs(toggles []*structs.ObjectRef) (int64, error) {
	ids := []string{}
	for _, t := range toggles {
		ids = append(ids, t.ID)
	}
	jobs, err := c.db.Jobs(&structs.Query{Limit: len(ids), JobIDs: ids})
	if err != nil {
		return 0, err
	}

	// un-skipping dependents needs the whole run's graph, so work per run
	byRun := map[string][]*structs.Job{}
	for _, j := range jobs {
		if j.Status != structs.ERRORED {
			continue
		}
		byRun[j.RunID] = append(byRun[j.RunID], j)
	}

	var count int64
	for runID, retry := range byRun {
		n, err := c.retryRunJobs(runID, retry)
		count += n
		if err != nil {
			return count, err
		}
	}
	return count, nil
}

// retryRunJobs resets the given errored jobs of one run, along with the
// skipped jobs downstream of them, then re-drives the run.
func (c *Service) retryRunJobs(runID string, retry []*structs.Job) (int64, error) {
	all, err := c.runJobs(runID)
	if err != nil {
		return 0, err
	}
	deps := map[string][]string{}
	for _, j := range all {
		deps[j.Key] = append(deps[j.Key], j.Needs...)
	}
	g, err := graph.FromDeps(deps)
	if err != nil {
		return 0, err
	}

	retryIDs := map[string]bool{}
	downstream := map[string]bool{}
	for _, j := range retry {
		retryIDs[j.ID] = true
		for _, d := range g.TransitiveDependents(j.Key) {
			downstream[d] = true
		}
	}

	refs := []*structs.ObjectRef{}
	jobIDs := []string{}
	for _, j := range all {
		if retryIDs[j.ID] || (downstream[j.Key] && j.Status == structs.SKIPPED) {
			refs = append(refs, structs.NewObjectRef(j.ID, j.ETag))
			jobIDs = append(jobIDs, j.ID)
		}
	}
	if len(refs) == 0 {
		return 0, nil
	}
	count, err := c.db.SetJobsStatus(structs.PENDING, utils.NewRandomID(), refs, "retried")
	if err != nil {
		return count, err
	}

	steps, err := c.db.Steps(&structs.Query{Limit: maxJobSteps * len(jobIDs), JobIDs: jobIDs})
	if err != nil {
		return count, err
	}
	stepRefs := []*structs.ObjectRef{}
	for _, s := range steps {
		stepRefs = append(stepRefs, structs.NewObjectRef(s.ID, s.ETag))
	}
	if len(stepRefs) > 0 {
		_, err = c.db.SetStepsStatus(structs.PENDING, utils.NewRandomID(), stepRefs, "retried")
		if err != nil {
			return count, err
		}
	}

	runs, err := c.db.Runs(&structs.Query{Limit: 1, RunIDs: []string{runID}})
	if err != nil {
		return count, err
	}
	if len(runs) == 1 && structs.IsFinalStatus(runs[0].Status) {
		_, err = c.db.SetRunsStatus(structs.RUNNING, utils.NewRandomID(), []*structs.ObjectRef{structs.NewObjectRef(runs[0].ID, runs[0].ETag)}, "job retried")
		if err != nil {
			return count, err
		}
	}

	return count, c.advanceRun(runID)
}

func (c *Service) Runs(q *structs.Query) ([]*structs.Run, error) {
	q.Sanitize()
	return c.db.Runs(q)
}

func (c *Service) Jobs(q *structs.Query) ([]*structs.Job, error) {
	q.Sanitize()
	return c.db.Jobs(q)
}

func (c *Service) Steps(q *structs.Query) ([]*structs.Step, error) {
	q.Sanitize()
	return c.db.Steps(q)
}

func (c *Service) Artifacts(q *structs.Query) ([]*structs.Artifact, error) {
	q.Sanitize()
	return c.db.Artifacts(q)
}

// CreateRun creates a new run with all of its jobs & steps.
//
// The needs graph is validated (cycles, unknown keys) before anything is
// written; a run that cannot finish is never created.
func (c *Service) CreateRun(crr *structs.CreateRunRequest) (*structs.CreateRunResponse, error) {
	err := validateCreateRunRequest(crr)
	if err != nil {
		return nil, err
	}

	g, err := runGraph(crr)
	if err != nil {
		return nil, err
	}

	run, jobs, steps, stepsByJob := buildRun(crr, g)

	err = c.db.InsertRun(run, jobs, steps)
	if err != nil {
		return nil, err
	}
	metrics.RunsCreated.Inc()

	respJobs := []*structs.RunJobResponse{}
	for _, j := range jobs {
		respJobs = append(respJobs, &structs.RunJobResponse{
			Job:   j,
			Steps: stepsByJob[j.ID],
		})
	}
	return &structs.CreateRunResponse{
		Run:  run,
		Jobs: respJobs,
	}, nil
}

// enqueueJobs hands jobs to the queue & records the queue's handle for them.
func (c *Service) enqueueJobs(js []*structs.Job) error {
	for _, j := range js {
		queueTaskID, err := c.qu.Enqueue(j)
		if err != nil {
			_, serr := c.db.SetJobsStatus(
				structs.ERRORED,
				utils.NewRandomID(),
				[]*structs.ObjectRef{structs.NewObjectRef(j.ID, j.ETag)},
				fmt.Sprintf("failed to enqueue: %v", err),
			)
			if serr != nil {
				return serr
			}
			continue
		}
		err = c.db.SetJobQueueID(j.ID, j.ETag, utils.NewRandomID(), queueTaskID, structs.QUEUED)
		if err != nil {
			return err
		}
		metrics.JobsEnqueued.Inc()
	}
	return nil
}

func (c *Service) handleEvents(errchan chan<- error, evtWork chan *changes.Change) {
	for evt := range evtWork {
		var err error
		switch evt.Kind {
		case structs.KindRun:
			err = c.handleRunEvent(evt)
		case structs.KindJob:
			err = c.handleJobEvent(evt)
		case structs.KindStep:
			// the worker owns step state; nothing to drive here
		default:
			err = fmt.Errorf("%w %s unknown kind", errors.ErrNotSupported, evt.Kind)
		}
		if err != nil {
			errchan <- err
		}
	}
}

func (c *Service) handleRunEvent(evt *changes.Change) error {
	if evt.Old == nil || evt.New == nil { // deleted or created
		return nil
	}

	eNew := evt.New.(*structs.Run)
	eOld := evt.Old.(*structs.Run)
	if eOld.Status != structs.KILLED && eNew.Status == structs.KILLED {
		// a killed run takes every unfinished job with it
		return c.killRunJobs(eNew.ID)
	}
	return nil
}

func (c *Service) killRunJobs(runID string) error {
	q := &structs.Query{
		Limit:    2000,
		RunIDs:   []string{runID},
		Statuses: incompleteStates,
	}
	for {
		jobs, err := c.db.Jobs(q)
		if err != nil {
			return err
		}
		ids := []*structs.ObjectRef{}
		for _, j := range jobs {
			ids = append(ids, structs.NewObjectRef(j.ID, j.ETag))
		}
		if len(ids) > 0 {
			_, err = c.db.SetJobsStatus(structs.KILLED, utils.NewRandomID(), ids, "run killed")
			if err != nil {
				return err
			}
		}
		if len(jobs) < q.Limit {
			return nil
		}
		q.Offset += q.Limit
	}
}

func (c *Service) handleJobEvent(evt *changes.Change) error {
	// deleted
	if evt.New == nil {
		return nil
	}

	// created
	eNew := evt.New.(*structs.Job)
	if evt.Old == nil {
		if eNew.Status == structs.QUEUED && eNew.PausedAt == 0 {
			// frontier job; created with nothing to wait on
			return c.enqueueJobs([]*structs.Job{eNew})
		}
		if structs.IsFinalStatus(eNew.Status) {
			// created pre-skipped; its dependents may need skipping too
			return c.advanceRun(eNew.RunID)
		}
		return nil
	}

	// updated
	eOld := evt.Old.(*structs.Job)
	if eOld.Status != structs.KILLED && eNew.Status == structs.KILLED { // we've been killed
		metrics.JobsFinished.WithLabelValues(string(structs.KILLED)).Inc()
		err := c.killJob(eNew)
		if err != nil {
			return err
		}
		return c.advanceRun(eNew.RunID)
	} else if !structs.IsFinalStatus(eOld.Status) && structs.IsFinalStatus(eNew.Status) { // job is finished
		// ie.
		// PENDING | QUEUED | RUNNING
		//  - to -
		// COMPLETED | SKIPPED | ERRORED
		metrics.JobsFinished.WithLabelValues(string(eNew.Status)).Inc()
		return c.advanceRun(eNew.RunID)
	} else if eNew.PausedAt > 0 { // we're paused (even if we weren't just set paused)
		return nil
	} else if eOld.Status != structs.QUEUED && eNew.Status == structs.QUEUED { // we've been queued
		return c.enqueueJobs([]*structs.Job{eNew})
	}

	return nil
}

// killJob cancels a job's queued work (best effort) and skips whatever
// steps never got to run.
func (c *Service) killJob(j *structs.Job) error {
	if j.QueueTaskID != "" {
		err := c.qu.Kill(j.QueueTaskID)
		if err != nil {
			log.Println("failed to kill job", j.ID, "queue task", j.QueueTaskID, err)
		}
	}

	steps, err := c.db.Steps(&structs.Query{
		Limit:    maxJobSteps,
		JobIDs:   []string{j.ID},
		Statuses: incompleteStates,
	})
	if err != nil {
		return err
	}
	ids := []*structs.ObjectRef{}
	for _, s := range steps {
		ids = append(ids, structs.NewObjectRef(s.ID, s.ETag))
	}
	if len(ids) == 0 {
		return nil
	}
	_, err = c.db.SetStepsStatus(structs.SKIPPED, utils.NewRandomID(), ids, "job killed")
	return err
}

// runJobs fetches every job of the run.
func (c *Service) runJobs(runID string) ([]*structs.Job, error) {
	found := []*structs.Job{}
	q := &structs.Query{Limit: 2000, RunIDs: []string{runID}}
	for {
		jobs, err := c.db.Jobs(q)
		if err != nil {
			return nil, err
		}
		found = append(found, jobs...)
		if len(jobs) < q.Limit {
			return found, nil
		}
		q.Offset += q.Limit
	}
}

// advanceRun is the gate sequencer; given the current state of a run's jobs
// it decides what happens next.
//
// A manifest key is "done" once every one of its (matrix) instances has
// completed; pending jobs whose needed keys are all done get queued. A key
// with a failed, killed or skipped instance takes its transitive dependents
// with it. When nothing is left in flight the run status is rolled up.
//
// This is idempotent; events (and tidy) may call it as often as they like.
func (c *Service) advanceRun(runID string) error {
	runs, err := c.db.Runs(&structs.Query{Limit: 1, RunIDs: []string{runID}})
	if err != nil {
		return err
	}
	if len(runs) != 1 {
		return fmt.Errorf("%w run %s", errors.ErrParentNotFound, runID)
	}
	run := runs[0]
	if structs.IsFinalStatus(run.Status) {
		return nil
	}

	jobs, err := c.runJobs(runID)
	if err != nil {
		return err
	}

	byKey := map[string][]*structs.Job{}
	deps := map[string][]string{}
	for _, j := range jobs {
		byKey[j.Key] = append(byKey[j.Key], j)
		deps[j.Key] = append(deps[j.Key], j.Needs...)
	}
	g, err := graph.FromDeps(deps)
	if err != nil {
		return err
	}

	done := map[string]bool{} // every instance completed
	dead := map[string]bool{} // some instance errored, killed or skipped
	for k, js := range byKey {
		completed := 0
		for _, j := range js {
			switch j.Status {
			case structs.COMPLETED:
				completed++
			case structs.ERRORED, structs.KILLED, structs.SKIPPED:
				dead[k] = true
			}
		}
		if completed == len(js) {
			done[k] = true
		}
	}

	// a dead key drags its whole dependent subgraph with it
	toSkip := map[string]bool{}
	for k := range dead {
		for _, d := range g.TransitiveDependents(k) {
			toSkip[d] = true
		}
	}
	skip := []*structs.ObjectRef{}
	for _, j := range jobs {
		if toSkip[j.Key] && (j.Status == structs.PENDING || j.Status == structs.QUEUED) {
			skip = append(skip, structs.NewObjectRef(j.ID, j.ETag))
			j.Status = structs.SKIPPED
		}
	}
	if len(skip) > 0 {
		_, err = c.db.SetJobsStatus(structs.SKIPPED, utils.NewRandomID(), skip, "dependency failed or skipped")
		if err != nil {
			return err
		}
	}

	// queue pending jobs whose needed keys are all done
	enqueue := []*structs.ObjectRef{}
	for _, j := range jobs {
		if j.Status != structs.PENDING || j.PausedAt > 0 || toSkip[j.Key] {
			continue
		}
		ready := true
		for _, n := range j.Needs {
			if !done[n] {
				ready = false
				break
			}
		}
		if ready {
			enqueue = append(enqueue, structs.NewObjectRef(j.ID, j.ETag))
			j.Status = structs.QUEUED
		}
	}
	if len(enqueue) > 0 {
		// the QUEUED change events do the actual Enqueue
		_, err = c.db.SetJobsStatus(structs.QUEUED, utils.NewRandomID(), enqueue)
		return err
	}

	// nothing newly queued; maybe we're finished
	anyBad := false
	for _, j := range jobs {
		if !structs.IsFinalStatus(j.Status) {
			return nil // still in flight
		}
		if j.Status == structs.ERRORED || j.Status == structs.KILLED {
			anyBad = true
		}
	}
	status := structs.COMPLETED
	if anyBad {
		status = structs.ERRORED
	}
	_, err = c.db.SetRunsStatus(status, utils.NewRandomID(), []*structs.ObjectRef{structs.NewObjectRef(run.ID, run.ETag)})
	return err
}

// tidyRun re-drives a run in case change events were dropped; it also
// re-enqueues jobs the queue never heard about.
func (c *Service) tidyRun(r *structs.Run) error {
	err := c.advanceRun(r.ID)
	if err != nil {
		return err
	}

	jobs, err := c.db.Jobs(&structs.Query{
		Limit:         2000,
		RunIDs:        []string{r.ID},
		Statuses:      []structs.Status{structs.QUEUED},
		UpdatedBefore: time.Now().Add(-requeueGrace).Unix(),
	})
	if err != nil {
		return err
	}
	stuck := []*structs.Job{}
	for _, j := range jobs {
		if j.QueueTaskID == "" && j.PausedAt == 0 {
			stuck = append(stuck, j)
		}
	}
	return c.enqueueJobs(stuck)
}

func (c *Service) handleTidyRuns(errchan chan<- error, runs []*structs.Run) {
	for _, r := range runs {
		err := c.tidyRun(r)
		if err != nil {
			errchan <- err
		}
	}
}

func (c *Service) handleReapJobs(errchan chan<- error, jobs []*structs.Job) {
	for _, j := range jobs {
		// if we're running too long, kill it
		if j.Status == structs.RUNNING && time.Now().Unix() > j.UpdatedAt+int64(c.opts.MaxJobRuntime.Seconds()) {
			_, err := c.db.SetJobsStatus(
				structs.KILLED,
				utils.NewRandomID(),
				[]*structs.ObjectRef{structs.NewObjectRef(j.ID, j.ETag)},
				"exceeded max runtime",
			)
			if err != nil {
				errchan <- err
			}
		}
		// jobs shouldn't sit KILLED long; killJob should have skipped their
		// steps & advanced the run
		if j.Status == structs.KILLED && time.Now().Unix() > j.UpdatedAt+int64(requeueGrace.Seconds()) {
			err := c.killJob(j)
			if err != nil {
				errchan <- err
				continue
			}
			err = c.advanceRun(j.RunID)
			if err != nil {
				errchan <- err
			}
		}
	}
}

func (c *Service) queueTidyRunWork(errchan chan<- error, runWork chan<- []*structs.Run) {
	q := &structs.Query{Limit: 500, Offset: 0, Statuses: incompleteStates}
	for {
		runs, err := c.db.Runs(q)
		if err != nil {
			errchan <- err
			break
		}
		if len(runs) > 0 {
			runWork <- runs
		}
		if len(runs) < q.Limit {
			break
		}
		q.Offset += q.Limit
	}
}

func (c *Service) queueReapJobWork(errchan chan<- error, jobWork chan<- []*structs.Job) {
	q := &structs.Query{Limit: 2000, Offset: 0, Statuses: []structs.Status{structs.RUNNING, structs.KILLED}}
	for {
		jobs, err := c.db.Jobs(q)
		if err != nil {
			errchan <- err
			break
		}
		if len(jobs) > 0 {
			jobWork <- jobs
		}
		if len(jobs) < q.Limit {
			break
		}
		q.Offset += q.Limit
	}
}
