package worker

import (
	stderr "errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/ventrath/gantry/internal/utils"
	"github.com/ventrath/gantry/pkg/artifacts"
	"github.com/ventrath/gantry/pkg/queue"
	"github.com/ventrath/gantry/pkg/structs"
)

// Worker pulls jobs off the queue for its labels and executes their steps.
//
// Steps run in order in a throw-away workspace dir; the first non-zero exit
// fails the job and the remaining steps are skipped. Downloads are fetched
// into the workspace before the first step, uploads are published after the
// last (only if every step succeeded).
type Worker struct {
	opts  *Options
	qu    queue.Queue
	store artifacts.Store
}

func New(qu queue.Queue, store artifacts.Store, opts *Options) (*Worker, error) {
	if opts == nil {
		opts = &Options{}
	}
	opts.SetDefaults()
	err := os.MkdirAll(opts.Workspace, 0750)
	if err != nil {
		return nil, err
	}
	return &Worker{opts: opts, qu: qu, store: store}, nil
}

// Run registers this worker's labels & blocks processing jobs until Close.
func (w *Worker) Run() error {
	for _, label := range w.opts.Labels {
		err := w.qu.Register(label, w.handleJob)
		if err != nil {
			return err
		}
	}
	return w.qu.Run()
}

func (w *Worker) Close() error {
	return w.qu.Close()
}

// handleJob is the queue handler; a returned error marks the job errored
// (and the queue may retry it).
func (w *Worker) handleJob(m *queue.Meta) error {
	if structs.IsFinalStatus(m.Job.Status) {
		// killed, skipped or errored while sat on the queue; run nothing
		// and leave the recorded status alone
		return nil
	}

	err := m.SetRunning()
	if err != nil {
		return err
	}

	dir, err := os.MkdirTemp(w.opts.Workspace, m.Job.ID)
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	for _, name := range m.Job.Downloads {
		err = w.store.Get(m.Job.RunID, name, filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("download artifact %s: %w", name, err)
		}
	}

	err = w.runSteps(m, dir)
	if err != nil {
		return err
	}

	for _, up := range m.Job.Uploads {
		size, err := w.store.Put(m.Job.RunID, up.Name, filepath.Join(dir, up.Path))
		if err != nil {
			return fmt.Errorf("upload artifact %s: %w", up.Name, err)
		}
		m.AddArtifact(&structs.Artifact{
			ID:    utils.NewRandomID(),
			Name:  up.Name,
			RunID: m.Job.RunID,
			JobID: m.Job.ID,
			Size:  size,
		})
	}
	return nil
}

// runSteps executes the job's steps in index order, reporting each result
// as it lands. Returns the first failure (if any).
func (w *Worker) runSteps(m *queue.Meta, dir string) error {
	steps := make([]*structs.Step, len(m.Steps))
	copy(steps, m.Steps)
	sort.Slice(steps, func(i, j int) bool { return steps[i].Index < steps[j].Index })

	var failure error
	for _, s := range steps {
		if failure != nil {
			m.SetStepState(s, structs.SKIPPED, 0, "earlier step failed")
			continue
		}

		err := m.SetStepState(s, structs.RUNNING, 0, "")
		if err != nil {
			return err
		}

		code, out, err := w.runCommand(m.Job, s, dir)
		if err != nil {
			m.SetStepState(s, structs.ERRORED, code, tail(out, w.opts.MessageLimit))
			failure = fmt.Errorf("step %d (%s): %w", s.Index, s.Name, err)
			continue
		}
		err = m.SetStepState(s, structs.COMPLETED, 0, "")
		if err != nil {
			return err
		}
	}
	return failure
}

// runCommand runs one step command via the configured shell, returning the
// exit code and combined output.
func (w *Worker) runCommand(j *structs.Job, s *structs.Step, dir string) (int64, string, error) {
	cmd := exec.Command(w.opts.Shell, "-c", s.Command)
	cmd.Dir = dir
	if s.Workdir != "" {
		cmd.Dir = filepath.Join(dir, s.Workdir)
	}
	cmd.Env = stepEnv(j, s, dir)

	out, err := cmd.CombinedOutput()
	if err == nil {
		return 0, string(out), nil
	}
	exerr := &exec.ExitError{}
	if stderr.As(err, &exerr) {
		return int64(exerr.ExitCode()), string(out), err
	}
	return -1, string(out), err
}

// stepEnv merges process env, job env, matrix params and step env, in
// increasing order of precedence, plus a few well known vars.
func stepEnv(j *structs.Job, s *structs.Step, dir string) []string {
	env := os.Environ()
	for k, v := range j.Env {
		env = append(env, k+"="+v)
	}
	for k, v := range j.Params {
		env = append(env, k+"="+v)
	}
	for k, v := range s.Env {
		env = append(env, k+"="+v)
	}
	return append(env,
		"GANTRY_RUN_ID="+j.RunID,
		"GANTRY_JOB_ID="+j.ID,
		"GANTRY_JOB_KEY="+j.Key,
		"GANTRY_WORKSPACE="+dir,
	)
}

func tail(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[len(s)-limit:]
}
