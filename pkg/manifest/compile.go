package manifest

import (
	"fmt"

	"github.com/ventrath/gantry/pkg/errors"
	"github.com/ventrath/gantry/pkg/structs"
)

// Compile resolves a pipeline against a triggering event, producing the
// CreateRunRequest the API accepts.
//
// This is where declarative conditions become data: the event is checked
// against the pipeline's triggers (ErrNotTriggered if no match), each job's
// `when` predicate is evaluated (false marks the instance pre-skipped, not
// an error), and matrix strategies are expanded into concrete job instances
// with {{matrix.*}} references resolved.
func Compile(p *Pipeline, ev structs.Event) (*structs.CreateRunRequest, error) {
	if ev.Type == "" {
		return nil, fmt.Errorf("%w event has no type", errors.ErrInvalidArg)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !p.On.Accepts(ev) {
		return nil, fmt.Errorf("%w %s (%s)", errors.ErrNotTriggered, p.Name, ev.Type)
	}

	jobs := []structs.RunJobRequest{}
	uploadedBy := map[string]string{} // artifact name -> job instance name

	for _, key := range p.JobKeys() {
		job := p.Jobs[key]

		skip := !job.When.Matches(ev)

		for _, params := range ExpandMatrix(job.Strategy) {
			name := InstanceName(key, params)

			steps := make([]structs.StepSpec, 0, len(job.Steps))
			for _, st := range job.Steps {
				steps = append(steps, structs.StepSpec{
					Name:    st.Name,
					Command: Interpolate(st.Run, params),
					Env:     InterpolateMap(st.Env, params),
					Workdir: st.Workdir,
				})
			}

			var uploads []structs.ArtifactUpload
			var downloads []string
			if job.Artifacts != nil {
				for _, up := range job.Artifacts.Upload {
					uname := Interpolate(up.Name, params)
					if prev, dup := uploadedBy[uname]; dup {
						return nil, fmt.Errorf("%w artifact %s uploaded by both %s and %s",
							errors.ErrInvalidArg, uname, prev, name)
					}
					uploadedBy[uname] = name
					uploads = append(uploads, structs.ArtifactUpload{
						Name: uname,
						Path: Interpolate(up.Path, params),
					})
				}
				downloads = append(downloads, job.Artifacts.Download...)
			}

			runsOn := job.RunsOn
			if runsOn == "" {
				runsOn = DefaultRunsOn
			}

			req := structs.RunJobRequest{
				JobSpec: structs.JobSpec{
					Key:       key,
					Name:      name,
					RunsOn:    runsOn,
					Needs:     job.Needs,
					Params:    params,
					Env:       InterpolateMap(job.Env, params),
					Retries:   job.Retries,
					Uploads:   uploads,
					Downloads: downloads,
				},
				Steps: steps,
			}
			if len(req.Params) == 0 {
				req.Params = nil
			}
			if skip {
				req.Skip = true
				req.SkipReason = fmt.Sprintf("predicate false for %s event", ev.Type)
			}
			jobs = append(jobs, req)
		}
	}

	return &structs.CreateRunRequest{
		RunSpec: structs.RunSpec{Pipeline: p.Name, Event: ev},
		Jobs:    jobs,
	}, nil
}
