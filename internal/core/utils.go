package core

import (
	"fmt"

	"github.com/ventrath/gantry/internal/utils"
	"github.com/ventrath/gantry/pkg/errors"
	"github.com/ventrath/gantry/pkg/graph"
	"github.com/ventrath/gantry/pkg/structs"
)

const (
	maxNameLength    = 500
	maxCommandLength = 10000
	maxRunJobs       = 1000
	maxJobSteps      = 100
)

func validateStepSpec(s *structs.StepSpec) error {
	if len(s.Name) > maxNameLength {
		return fmt.Errorf("%w step name %s is %d chars, max %d", errors.ErrMaxExceeded, s.Name, len(s.Name), maxNameLength)
	}
	if s.Command == "" {
		return errors.ErrNoCommand
	}
	if len(s.Command) > maxCommandLength {
		return fmt.Errorf("%w step command is %d chars, max %d", errors.ErrMaxExceeded, len(s.Command), maxCommandLength)
	}
	return nil
}

func validateCreateRunRequest(crr *structs.CreateRunRequest) error {
	if crr == nil || len(crr.Jobs) == 0 {
		return errors.ErrNoJobs
	}
	if len(crr.Jobs) > maxRunJobs {
		return fmt.Errorf("%w run has %d jobs, max %d", errors.ErrMaxExceeded, len(crr.Jobs), maxRunJobs)
	}
	if len(crr.Pipeline) > maxNameLength {
		return fmt.Errorf("%w pipeline name is %d chars, max %d", errors.ErrMaxExceeded, len(crr.Pipeline), maxNameLength)
	}
	for _, j := range crr.Jobs {
		if j.Key == "" {
			return fmt.Errorf("%w job key is required", errors.ErrInvalidArg)
		}
		if len(j.Key) > maxNameLength {
			return fmt.Errorf("%w job key %s is %d chars, max %d", errors.ErrMaxExceeded, j.Key, len(j.Key), maxNameLength)
		}
		if len(j.Name) > maxNameLength {
			return fmt.Errorf("%w job name %s is %d chars, max %d", errors.ErrMaxExceeded, j.Name, len(j.Name), maxNameLength)
		}
		if len(j.Steps) == 0 {
			return fmt.Errorf("%w job %s", errors.ErrNoSteps, j.Key)
		}
		if len(j.Steps) > maxJobSteps {
			return fmt.Errorf("%w job %s has %d steps, max %d", errors.ErrMaxExceeded, j.Key, len(j.Steps), maxJobSteps)
		}
		for i := range j.Steps {
			err := validateStepSpec(&j.Steps[i])
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func validateKind(k structs.Kind) error {
	switch k {
	case structs.KindRun, structs.KindJob:
		return nil
	default:
		return fmt.Errorf("%w %s", errors.ErrInvalidArg, k)
	}
}

func validateToggles(in []*structs.ToggleRequest) (map[structs.Kind][]*structs.ObjectRef, error) {
	out := map[structs.Kind][]*structs.ObjectRef{}
	for _, t := range in {
		if !utils.IsValidID(t.ID) {
			return nil, fmt.Errorf("%w %s", errors.ErrInvalidArg, t.ID)
		}
		if !utils.IsValidID(t.ETag) {
			return nil, fmt.Errorf("%w %s", errors.ErrInvalidArg, t.ETag)
		}
		k := structs.Kind(t.Kind)
		err := validateKind(k)
		if err != nil {
			return nil, err
		}
		currently, ok := out[k]
		if !ok {
			currently = []*structs.ObjectRef{}
		}
		out[k] = append(currently, structs.NewObjectRef(t.ID, t.ETag))
	}
	return out, nil
}

// runGraph builds the dependency graph over the request's manifest keys,
// rejecting cycles and needs that name no job.
func runGraph(crr *structs.CreateRunRequest) (*graph.Graph, error) {
	deps := map[string][]string{}
	for _, j := range crr.Jobs {
		deps[j.Key] = append(deps[j.Key], j.Needs...)
	}
	return graph.FromDeps(deps)
}

// buildRun turns a validated request into db rows.
//
// Jobs whose predicate evaluated false arrive pre-skipped; a key all of
// whose instances are pre-skipped drags its dependent keys with it. Jobs
// with no needs form the initial frontier and are created QUEUED.
func buildRun(crr *structs.CreateRunRequest, g *graph.Graph) (*structs.Run, []*structs.Job, []*structs.Step, map[string][]*structs.Step) {
	etag := utils.NewRandomID()
	run := &structs.Run{
		RunSpec: crr.RunSpec,
		ID:      utils.NewRandomID(),
		Status:  structs.RUNNING,
		ETag:    etag,
	}

	// keys whose every instance is pre-skipped
	instances := map[string]int{}
	skips := map[string]int{}
	for _, j := range crr.Jobs {
		instances[j.Key]++
		if j.Skip {
			skips[j.Key]++
		}
	}
	skippedKeys := map[string]string{}
	for k, n := range instances {
		if skips[k] == n {
			skippedKeys[k] = ""
		}
	}
	for k := range skippedKeys {
		for _, d := range g.TransitiveDependents(k) {
			if _, ok := skippedKeys[d]; !ok {
				skippedKeys[d] = fmt.Sprintf("dependency %s skipped", k)
			}
		}
	}

	jobs := []*structs.Job{}
	steps := []*structs.Step{}
	stepsByJob := map[string][]*structs.Step{}
	for _, rj := range crr.Jobs {
		status := structs.PENDING
		msg := ""
		reason, keySkipped := skippedKeys[rj.Key]
		if rj.Skip {
			status = structs.SKIPPED
			msg = rj.SkipReason
		} else if keySkipped {
			status = structs.SKIPPED
			msg = reason
		} else if len(rj.Needs) == 0 {
			status = structs.QUEUED
		}

		job := &structs.Job{
			JobSpec: rj.JobSpec,
			ID:      utils.NewRandomID(),
			RunID:   run.ID,
			Status:  status,
			ETag:    etag,
			Message: msg,
		}
		jobs = append(jobs, job)

		stepStatus := structs.PENDING
		if status == structs.SKIPPED {
			stepStatus = structs.SKIPPED
		}
		byJob := []*structs.Step{}
		for i := range rj.Steps {
			step := &structs.Step{
				StepSpec: rj.Steps[i],
				ID:       utils.NewRandomID(),
				RunID:    run.ID,
				JobID:    job.ID,
				Index:    int64(i),
				Status:   stepStatus,
				ETag:     etag,
			}
			steps = append(steps, step)
			byJob = append(byJob, step)
		}
		stepsByJob[job.ID] = byJob
	}

	return run, jobs, steps, stepsByJob
}
