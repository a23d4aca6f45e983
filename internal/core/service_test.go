package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/ventrath/gantry/internal/mocks/pkg/database_mock"
	"github.com/ventrath/gantry/internal/mocks/pkg/queue_mock"
	"github.com/ventrath/gantry/internal/utils"
	"github.com/ventrath/gantry/pkg/database/changes"
	"github.com/ventrath/gantry/pkg/errors"
	"github.com/ventrath/gantry/pkg/structs"
)

// testService has no background routines; events are fed in by hand.
func testService(t *testing.T) (*Service, *database_mock.MockDatabase, *queue_mock.MockQueue) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	db := database_mock.NewMockDatabase(ctrl)
	qu := queue_mock.NewMockQueue(ctrl)
	svc, err := NewService(db, qu, &Options{})
	assert.Nil(t, err)
	return svc, db, qu
}

func testRunState(runStatus structs.Status, jobs ...*structs.Job) (*structs.Run, []*structs.Job) {
	run := &structs.Run{ID: utils.NewRandomID(), Status: runStatus, ETag: utils.NewRandomID()}
	for _, j := range jobs {
		j.ID = utils.NewRandomID()
		j.ETag = utils.NewRandomID()
		j.RunID = run.ID
	}
	return run, jobs
}

func job(key string, status structs.Status, needs ...string) *structs.Job {
	return &structs.Job{
		JobSpec: structs.JobSpec{Key: key, Needs: needs},
		Status:  status,
	}
}

func TestCreateRunRejectsBadRequests(t *testing.T) {
	svc, _, _ := testService(t) // no db calls expected

	cases := []struct {
		Name      string
		Req       *structs.CreateRunRequest
		ExpectErr error
	}{
		{
			Name:      "NoJobs",
			Req:       &structs.CreateRunRequest{},
			ExpectErr: errors.ErrNoJobs,
		},
		{
			Name: "Cycle",
			Req: &structs.CreateRunRequest{Jobs: []structs.RunJobRequest{
				{JobSpec: structs.JobSpec{Key: "a", Needs: []string{"b"}}, Steps: []structs.StepSpec{{Command: "true"}}},
				{JobSpec: structs.JobSpec{Key: "b", Needs: []string{"a"}}, Steps: []structs.StepSpec{{Command: "true"}}},
			}},
			ExpectErr: errors.ErrCycleDetected,
		},
		{
			Name: "UnknownNeed",
			Req: &structs.CreateRunRequest{Jobs: []structs.RunJobRequest{
				{JobSpec: structs.JobSpec{Key: "a", Needs: []string{"ghost"}}, Steps: []structs.StepSpec{{Command: "true"}}},
			}},
			ExpectErr: errors.ErrUnknownDep,
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			_, err := svc.CreateRun(c.Req)

			assert.ErrorIs(t, err, c.ExpectErr)
		})
	}
}

func TestCreateRun(t *testing.T) {
	svc, db, _ := testService(t)

	var gotRun *structs.Run
	var gotJobs []*structs.Job
	var gotSteps []*structs.Step
	db.EXPECT().InsertRun(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(r *structs.Run, js []*structs.Job, ss []*structs.Step) error {
			gotRun, gotJobs, gotSteps = r, js, ss
			return nil
		},
	)

	resp, err := svc.CreateRun(testRunRequest())

	assert.Nil(t, err)
	assert.Equal(t, structs.RUNNING, gotRun.Status)
	assert.Len(t, gotJobs, 2)
	assert.Len(t, gotSteps, 2)
	assert.Equal(t, structs.QUEUED, gotJobs[0].Status)
	assert.Equal(t, structs.PENDING, gotJobs[1].Status)
	assert.Equal(t, gotRun.ID, resp.ID)
	assert.Len(t, resp.Jobs, 2)
	assert.Len(t, resp.Jobs[0].Steps, 1)
}

func TestCreateRunInsertFails(t *testing.T) {
	svc, db, _ := testService(t)

	db.EXPECT().InsertRun(gomock.Any(), gomock.Any(), gomock.Any()).Return(fmt.Errorf("db down"))

	_, err := svc.CreateRun(testRunRequest())

	assert.NotNil(t, err)
}

func TestJobCreatedQueuedIsEnqueued(t *testing.T) {
	svc, db, qu := testService(t)

	_, jobs := testRunState(structs.RUNNING, job("build", structs.QUEUED))
	j := jobs[0]

	qu.EXPECT().Enqueue(j).Return("queue-task-1", nil)
	db.EXPECT().SetJobQueueID(j.ID, j.ETag, gomock.Any(), "queue-task-1", structs.QUEUED).Return(nil)

	err := svc.handleJobEvent(&changes.Change{Kind: structs.KindJob, New: j})

	assert.Nil(t, err)
}

func TestJobCreatedPausedIsNotEnqueued(t *testing.T) {
	svc, _, _ := testService(t) // no calls expected

	_, jobs := testRunState(structs.RUNNING, job("build", structs.QUEUED))
	jobs[0].PausedAt = 100

	err := svc.handleJobEvent(&changes.Change{Kind: structs.KindJob, New: jobs[0]})

	assert.Nil(t, err)
}

func TestEnqueueFailureMarksJobErrored(t *testing.T) {
	svc, db, qu := testService(t)

	_, jobs := testRunState(structs.RUNNING, job("build", structs.QUEUED))
	j := jobs[0]

	qu.EXPECT().Enqueue(j).Return("", fmt.Errorf("redis down"))
	db.EXPECT().SetJobsStatus(structs.ERRORED, gomock.Any(), []*structs.ObjectRef{structs.NewObjectRef(j.ID, j.ETag)}, gomock.Any()).Return(int64(1), nil)

	err := svc.handleJobEvent(&changes.Change{Kind: structs.KindJob, New: j})

	assert.Nil(t, err)
}

func TestJobCompletedQueuesDependents(t *testing.T) {
	svc, db, _ := testService(t)

	run, jobs := testRunState(structs.RUNNING,
		job("build", structs.COMPLETED),
		job("test", structs.PENDING, "build"),
	)
	old := *jobs[0]
	old.Status = structs.RUNNING

	db.EXPECT().Runs(gomock.Any()).Return([]*structs.Run{run}, nil)
	db.EXPECT().Jobs(gomock.Any()).Return(jobs, nil)
	db.EXPECT().SetJobsStatus(structs.QUEUED, gomock.Any(), []*structs.ObjectRef{structs.NewObjectRef(jobs[1].ID, jobs[1].ETag)}).Return(int64(1), nil)

	err := svc.handleJobEvent(&changes.Change{Kind: structs.KindJob, Old: &old, New: jobs[0]})

	assert.Nil(t, err)
}

func TestJobFailedSkipsDependentSubgraph(t *testing.T) {
	svc, db, _ := testService(t)

	run, jobs := testRunState(structs.RUNNING,
		job("build", structs.ERRORED),
		job("test", structs.PENDING, "build"),
		job("publish", structs.PENDING, "test"),
		job("lint", structs.COMPLETED),
	)
	old := *jobs[0]
	old.Status = structs.RUNNING

	db.EXPECT().Runs(gomock.Any()).Return([]*structs.Run{run}, nil)
	db.EXPECT().Jobs(gomock.Any()).Return(jobs, nil)
	db.EXPECT().SetJobsStatus(
		structs.SKIPPED, gomock.Any(),
		[]*structs.ObjectRef{
			structs.NewObjectRef(jobs[1].ID, jobs[1].ETag),
			structs.NewObjectRef(jobs[2].ID, jobs[2].ETag),
		},
		"dependency failed or skipped",
	).Return(int64(2), nil)
	// everything is now final; one job errored so the run errored
	db.EXPECT().SetRunsStatus(structs.ERRORED, gomock.Any(), []*structs.ObjectRef{structs.NewObjectRef(run.ID, run.ETag)}).Return(int64(1), nil)

	err := svc.handleJobEvent(&changes.Change{Kind: structs.KindJob, Old: &old, New: jobs[0]})

	assert.Nil(t, err)
}

func TestMatrixKeyGatesOnAllInstances(t *testing.T) {
	svc, db, _ := testService(t)

	run, jobs := testRunState(structs.RUNNING,
		job("build", structs.COMPLETED),
		job("build", structs.RUNNING),
		job("publish", structs.PENDING, "build"),
	)
	old := *jobs[0]
	old.Status = structs.RUNNING

	db.EXPECT().Runs(gomock.Any()).Return([]*structs.Run{run}, nil)
	db.EXPECT().Jobs(gomock.Any()).Return(jobs, nil)
	// no SetJobsStatus; publish must wait for the second build instance

	err := svc.handleJobEvent(&changes.Change{Kind: structs.KindJob, Old: &old, New: jobs[0]})

	assert.Nil(t, err)
}

func TestRunRollsUpCompleted(t *testing.T) {
	svc, db, _ := testService(t)

	run, jobs := testRunState(structs.RUNNING,
		job("build", structs.COMPLETED),
		job("test", structs.COMPLETED, "build"),
	)
	old := *jobs[1]
	old.Status = structs.RUNNING

	db.EXPECT().Runs(gomock.Any()).Return([]*structs.Run{run}, nil)
	db.EXPECT().Jobs(gomock.Any()).Return(jobs, nil)
	db.EXPECT().SetRunsStatus(structs.COMPLETED, gomock.Any(), []*structs.ObjectRef{structs.NewObjectRef(run.ID, run.ETag)}).Return(int64(1), nil)

	err := svc.handleJobEvent(&changes.Change{Kind: structs.KindJob, Old: &old, New: jobs[1]})

	assert.Nil(t, err)
}

func TestAdvanceSkipsFinalRun(t *testing.T) {
	svc, db, _ := testService(t)

	run, jobs := testRunState(structs.ERRORED, job("build", structs.COMPLETED))
	old := *jobs[0]
	old.Status = structs.RUNNING

	db.EXPECT().Runs(gomock.Any()).Return([]*structs.Run{run}, nil)
	// no Jobs lookup; a finished run is left alone

	err := svc.handleJobEvent(&changes.Change{Kind: structs.KindJob, Old: &old, New: jobs[0]})

	assert.Nil(t, err)
}

func TestJobKilled(t *testing.T) {
	svc, db, qu := testService(t)

	run, jobs := testRunState(structs.RUNNING, job("build", structs.KILLED))
	j := jobs[0]
	j.QueueTaskID = "queue-task-9"
	old := *j
	old.Status = structs.RUNNING

	step := &structs.Step{ID: utils.NewRandomID(), ETag: utils.NewRandomID(), JobID: j.ID, Status: structs.PENDING}

	qu.EXPECT().Kill("queue-task-9").Return(nil)
	db.EXPECT().Steps(gomock.Any()).Return([]*structs.Step{step}, nil)
	db.EXPECT().SetStepsStatus(structs.SKIPPED, gomock.Any(), []*structs.ObjectRef{structs.NewObjectRef(step.ID, step.ETag)}, "job killed").Return(int64(1), nil)
	db.EXPECT().Runs(gomock.Any()).Return([]*structs.Run{run}, nil)
	db.EXPECT().Jobs(gomock.Any()).Return(jobs, nil)
	db.EXPECT().SetRunsStatus(structs.ERRORED, gomock.Any(), gomock.Any()).Return(int64(1), nil)

	err := svc.handleJobEvent(&changes.Change{Kind: structs.KindJob, Old: &old, New: j})

	assert.Nil(t, err)
}

func TestRunKilledKillsJobs(t *testing.T) {
	svc, db, _ := testService(t)

	run, jobs := testRunState(structs.KILLED,
		job("build", structs.RUNNING),
		job("test", structs.PENDING, "build"),
	)
	old := *run
	old.Status = structs.RUNNING

	db.EXPECT().Jobs(gomock.Any()).Return(jobs, nil)
	db.EXPECT().SetJobsStatus(
		structs.KILLED, gomock.Any(),
		[]*structs.ObjectRef{
			structs.NewObjectRef(jobs[0].ID, jobs[0].ETag),
			structs.NewObjectRef(jobs[1].ID, jobs[1].ETag),
		},
		"run killed",
	).Return(int64(2), nil)

	err := svc.handleRunEvent(&changes.Change{Kind: structs.KindRun, Old: &old, New: run})

	assert.Nil(t, err)
}

func TestPause(t *testing.T) {
	svc, db, _ := testService(t)

	jobID := utils.NewRandomID()
	etag := utils.NewRandomID()
	db.EXPECT().SetJobsPaused(gomock.Any(), gomock.Any(), []*structs.ObjectRef{structs.NewObjectRef(jobID, etag)}).Return(int64(1), nil)

	count, err := svc.Pause([]*structs.ToggleRequest{{Kind: string(structs.KindJob), ID: jobID, ETag: etag}})

	assert.Nil(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPauseIgnoresRuns(t *testing.T) {
	svc, _, _ := testService(t) // no db calls

	count, err := svc.Pause([]*structs.ToggleRequest{{Kind: string(structs.KindRun), ID: utils.NewRandomID(), ETag: utils.NewRandomID()}})

	assert.Nil(t, err)
	assert.Equal(t, int64(0), count)
}

func TestKillByKind(t *testing.T) {
	svc, db, _ := testService(t)

	runID := utils.NewRandomID()
	jobID := utils.NewRandomID()
	etag := utils.NewRandomID()

	db.EXPECT().SetRunsStatus(structs.KILLED, gomock.Any(), []*structs.ObjectRef{structs.NewObjectRef(runID, etag)}).Return(int64(1), nil)
	db.EXPECT().SetJobsStatus(structs.KILLED, gomock.Any(), []*structs.ObjectRef{structs.NewObjectRef(jobID, etag)}).Return(int64(1), nil)

	count, err := svc.Kill([]*structs.ToggleRequest{
		{Kind: string(structs.KindRun), ID: runID, ETag: etag},
		{Kind: string(structs.KindJob), ID: jobID, ETag: etag},
	})

	assert.Nil(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRetry(t *testing.T) {
	svc, db, _ := testService(t)

	run, jobs := testRunState(structs.ERRORED,
		job("build", structs.ERRORED),
		job("test", structs.SKIPPED, "build"),
		job("lint", structs.COMPLETED),
	)
	build, test, lint := jobs[0], jobs[1], jobs[2]

	steps := []*structs.Step{
		{ID: utils.NewRandomID(), ETag: utils.NewRandomID(), JobID: build.ID},
		{ID: utils.NewRandomID(), ETag: utils.NewRandomID(), JobID: test.ID},
	}

	// the named job and the skipped jobs downstream of it reset to PENDING
	db.EXPECT().Jobs(gomock.Any()).Return([]*structs.Job{build}, nil)
	db.EXPECT().Jobs(gomock.Any()).Return(jobs, nil)
	db.EXPECT().SetJobsStatus(
		structs.PENDING, gomock.Any(),
		[]*structs.ObjectRef{
			structs.NewObjectRef(build.ID, build.ETag),
			structs.NewObjectRef(test.ID, test.ETag),
		},
		"retried",
	).Return(int64(2), nil)
	db.EXPECT().Steps(gomock.Any()).Return(steps, nil)
	db.EXPECT().SetStepsStatus(
		structs.PENDING, gomock.Any(),
		[]*structs.ObjectRef{
			structs.NewObjectRef(steps[0].ID, steps[0].ETag),
			structs.NewObjectRef(steps[1].ID, steps[1].ETag),
		},
		"retried",
	).Return(int64(2), nil)

	// the errored run is re-opened
	db.EXPECT().Runs(gomock.Any()).Return([]*structs.Run{run}, nil)
	db.EXPECT().SetRunsStatus(structs.RUNNING, gomock.Any(), []*structs.ObjectRef{structs.NewObjectRef(run.ID, run.ETag)}, "job retried").Return(int64(1), nil)

	// then the run is driven forward; the retried frontier is queued again
	reopened := &structs.Run{ID: run.ID, ETag: utils.NewRandomID(), Status: structs.RUNNING}
	buildRetry := &structs.Job{JobSpec: build.JobSpec, ID: build.ID, ETag: utils.NewRandomID(), RunID: run.ID, Status: structs.PENDING}
	testRetry := &structs.Job{JobSpec: test.JobSpec, ID: test.ID, ETag: utils.NewRandomID(), RunID: run.ID, Status: structs.PENDING}
	db.EXPECT().Runs(gomock.Any()).Return([]*structs.Run{reopened}, nil)
	db.EXPECT().Jobs(gomock.Any()).Return([]*structs.Job{buildRetry, testRetry, lint}, nil)
	db.EXPECT().SetJobsStatus(structs.QUEUED, gomock.Any(), []*structs.ObjectRef{structs.NewObjectRef(buildRetry.ID, buildRetry.ETag)}).Return(int64(1), nil)

	count, err := svc.Retry([]*structs.ToggleRequest{{Kind: string(structs.KindJob), ID: build.ID, ETag: build.ETag}})

	assert.Nil(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRetryIgnoresNonErrored(t *testing.T) {
	svc, db, _ := testService(t)

	jobID := utils.NewRandomID()
	etag := utils.NewRandomID()
	db.EXPECT().Jobs(gomock.Any()).Return([]*structs.Job{{ID: jobID, ETag: etag, Status: structs.COMPLETED}}, nil)

	count, err := svc.Retry([]*structs.ToggleRequest{{Kind: string(structs.KindJob), ID: jobID, ETag: etag}})

	assert.Nil(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRetryIgnoresRuns(t *testing.T) {
	svc, _, _ := testService(t) // no db calls

	count, err := svc.Retry([]*structs.ToggleRequest{{Kind: string(structs.KindRun), ID: utils.NewRandomID(), ETag: utils.NewRandomID()}})

	assert.Nil(t, err)
	assert.Equal(t, int64(0), count)
}

func TestTidyRunReenqueuesStuckJobs(t *testing.T) {
	svc, db, qu := testService(t)

	run, jobs := testRunState(structs.RUNNING,
		job("build", structs.QUEUED),
		job("test", structs.PENDING, "build"),
	)
	j := jobs[0] // queued but the queue never heard about it

	// advanceRun finds nothing to do
	db.EXPECT().Runs(gomock.Any()).Return([]*structs.Run{run}, nil)
	db.EXPECT().Jobs(gomock.Any()).Return(jobs, nil)
	// the requeue sweep
	db.EXPECT().Jobs(gomock.Any()).Return([]*structs.Job{j}, nil)
	qu.EXPECT().Enqueue(j).Return("queue-task-2", nil)
	db.EXPECT().SetJobQueueID(j.ID, j.ETag, gomock.Any(), "queue-task-2", structs.QUEUED).Return(nil)

	err := svc.tidyRun(run)

	assert.Nil(t, err)
}

func TestStepEventsIgnored(t *testing.T) {
	svc, _, _ := testService(t)

	errs := make(chan error, 1)
	evts := make(chan *changes.Change, 1)
	evts <- &changes.Change{Kind: structs.KindStep, New: &structs.Step{}}
	close(evts)

	svc.handleEvents(errs, evts)

	assert.Empty(t, errs)
}
