package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/hibiken/asynq"

	"github.com/ventrath/gantry/pkg/errors"
	"github.com/ventrath/gantry/pkg/structs"
)

const (
	asyncQueuePrefix = "gantry:"
	asyncJobPrefix   = "job:"
)

type Asynq struct {
	opts *Options

	// the asynq client & inspector
	ins *asynq.Inspector
	cli *asynq.Client

	// the funcs we're allowed to call inside of gantry
	svc Service

	// if register is called we're intended to start a server
	lock   sync.Mutex
	mux    *asynq.ServeMux
	srv    *asynq.Server
	labels map[string]int
}

func NewAsynqQueue(svc Service, opts *Options) (*Asynq, error) {
	redis := asynq.RedisClientOpt{Addr: opts.URL, TLSConfig: opts.TLSConfig}
	return &Asynq{
		opts:   opts,
		ins:    asynq.NewInspector(redis),
		cli:    asynq.NewClient(redis),
		svc:    svc,
		labels: map[string]int{},
	}, nil
}

func (a *Asynq) Close() error {
	if a.srv == nil {
		return nil
	}
	a.srv.Stop()
	a.srv.Shutdown()
	return nil
}

func (a *Asynq) Register(label string, handler func(work *Meta) error) error {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.mux == nil {
		a.mux = asynq.NewServeMux()
	}
	a.labels[label] = 1 // all labels weighted equally
	a.mux.HandleFunc(jobTask(label), func(ctx context.Context, t *asynq.Task) error {
		meta, err := a.buildMeta(t)
		if err != nil {
			return err
		}
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		meta.retriesLeft = maxRetry - retried
		err = handler(meta)
		if err != nil {
			meta.SetError(err)
		}
		return a.finishJob(meta)
	})
	return nil
}

// Run starts the asynq server & blocks processing jobs until Close is called.
func (a *Asynq) Run() error {
	a.lock.Lock()
	if a.mux == nil || len(a.labels) == 0 {
		a.lock.Unlock()
		return fmt.Errorf("%w no labels registered", errors.ErrInvalidState)
	}
	queues := map[string]int{}
	for label, weight := range a.labels {
		queues[queueName(label)] = weight
	}
	a.srv = asynq.NewServer(
		asynq.RedisClientOpt{Addr: a.opts.URL, TLSConfig: a.opts.TLSConfig},
		asynq.Config{Queues: queues},
	)
	a.lock.Unlock()
	return a.srv.Run(a.mux)
}

func (a *Asynq) Kill(queuedTaskID string) error {
	// Best effort cancel; asynq can't guarantee this will kill it
	return a.ins.CancelProcessing(queuedTaskID)
}

func (a *Asynq) Enqueue(job *structs.Job) (string, error) {
	qtask := asynq.NewTask(jobTask(job.RunsOn), []byte(job.ID))
	info, err := a.cli.Enqueue(
		qtask,
		asynq.Queue(queueName(job.RunsOn)),
		asynq.MaxRetry(int(job.Retries)),
	)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// buildMeta looks up the job & steps named by the queued task's payload.
func (a *Asynq) buildMeta(t *asynq.Task) (*Meta, error) {
	jobID := string(t.Payload())

	jobs, err := a.svc.Jobs([]string{jobID})
	if err != nil {
		return nil, err
	}
	if len(jobs) != 1 {
		return nil, fmt.Errorf("%w job %s", errors.ErrParentNotFound, jobID)
	}
	steps, err := a.svc.Steps([]string{jobID})
	if err != nil {
		return nil, err
	}

	return NewMeta(jobs[0], steps, a.svc), nil
}

// finishJob writes the final job state (and any uploaded artifacts) decided
// by the handler via Meta.
func (a *Asynq) finishJob(m *Meta) error {
	if structs.IsFinalStatus(m.Job.Status) {
		// the job was finished some other way (killed, skipped) while it
		// sat on the queue; that verdict stands
		return nil
	}
	if m.skip { // skip trumps errors
		_, err := a.svc.SetJobState(m.Job, structs.SKIPPED, m.msg)
		return err
	}
	if m.err != nil {
		if m.retriesLeft > 0 {
			// not the last attempt; leave the job re-runnable and let the
			// queue deliver it again
			_, err := a.svc.SetJobState(m.Job, structs.RUNNING, fmt.Sprintf("attempt failed, %d retries left: %v", m.retriesLeft, m.err))
			if err != nil {
				return err
			}
			return m.err
		}
		_, err := a.svc.SetJobState(m.Job, structs.ERRORED, fmt.Sprintf("%s %v", m.msg, m.err))
		if err != nil {
			return err
		}
		return m.err // the queue archives it; retries are spent
	}
	if len(m.arts) > 0 {
		err := a.svc.InsertArtifacts(m.arts)
		if err != nil {
			_, serr := a.svc.SetJobState(m.Job, structs.ERRORED, fmt.Sprintf("failed to record artifacts: %v", err))
			if serr != nil {
				return serr
			}
			return err
		}
	}
	_, err := a.svc.SetJobState(m.Job, structs.COMPLETED, m.msg)
	return err
}

func jobTask(label string) string {
	return asyncJobPrefix + label
}

func queueName(label string) string {
	return asyncQueuePrefix + label
}
