package queue

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/ventrath/gantry/internal/mocks/pkg/database_mock"
	"github.com/ventrath/gantry/pkg/structs"
)

func TestFinishJob(t *testing.T) {
	oops := fmt.Errorf("step exploded")

	cases := []struct {
		Name         string
		Setup        func(m *Meta)
		ExpectStatus structs.Status
		ExpectMsg    string
		ExpectArts   []*structs.Artifact
		ExpectErr    error
	}{
		{
			Name:         "Completed",
			Setup:        func(m *Meta) {},
			ExpectStatus: structs.COMPLETED,
		},
		{
			Name: "CompletedWithArtifacts",
			Setup: func(m *Meta) {
				m.AddArtifact(&structs.Artifact{Name: "bin"})
			},
			ExpectStatus: structs.COMPLETED,
			ExpectArts:   []*structs.Artifact{{Name: "bin"}},
		},
		{
			Name: "Errored",
			Setup: func(m *Meta) {
				m.SetError(oops)
			},
			ExpectStatus: structs.ERRORED,
			ExpectMsg:    fmt.Sprintf(" %v", oops),
			ExpectErr:    oops,
		},
		{
			Name: "SkipTrumpsError",
			Setup: func(m *Meta) {
				m.SetError(oops)
				m.SetSkip()
				m.SetMessage("cancelled")
			},
			ExpectStatus: structs.SKIPPED,
			ExpectMsg:    "cancelled",
		},
		{
			Name: "ErroredWithRetriesLeft",
			Setup: func(m *Meta) {
				m.SetError(oops)
				m.retriesLeft = 2
			},
			// not final; the queue redelivers and the job stays re-runnable
			ExpectStatus: structs.RUNNING,
			ExpectMsg:    fmt.Sprintf("attempt failed, 2 retries left: %v", oops),
			ExpectErr:    oops,
		},
		{
			Name: "ErroredArtifactsNotRecorded",
			Setup: func(m *Meta) {
				m.AddArtifact(&structs.Artifact{Name: "bin"})
				m.SetError(oops)
			},
			ExpectStatus: structs.ERRORED,
			ExpectMsg:    fmt.Sprintf(" %v", oops),
			ExpectErr:    oops,
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			svc := database_mock.NewMockQueueDB(gomock.NewController(t))
			a := &Asynq{svc: svc}

			job := &structs.Job{ID: "abc", ETag: "e1"}
			m := &Meta{Job: job, svc: svc}
			c.Setup(m)

			if c.ExpectArts != nil {
				svc.EXPECT().InsertArtifacts(c.ExpectArts).Return(nil)
			}
			svc.EXPECT().SetJobState(job, c.ExpectStatus, c.ExpectMsg).Return("e2", nil)

			err := a.finishJob(m)

			if c.ExpectErr != nil {
				assert.Equal(t, c.ExpectErr, err)
			} else {
				assert.Nil(t, err)
			}
		})
	}
}

func TestFinishJobLeavesFinishedJobsAlone(t *testing.T) {
	// a redelivery may find the job already finished (killed, skipped by a
	// toggle, or errored by a previous attempt's write); whatever the
	// handler decided, nothing gets overwritten
	for _, status := range []structs.Status{structs.ERRORED, structs.KILLED, structs.SKIPPED, structs.COMPLETED} {
		t.Run(string(status), func(t *testing.T) {
			svc := database_mock.NewMockQueueDB(gomock.NewController(t)) // no calls expected
			a := &Asynq{svc: svc}

			job := &structs.Job{ID: "abc", ETag: "e1", Status: status}
			m := &Meta{Job: job, svc: svc}
			m.SetError(fmt.Errorf("boom"))
			m.SetSkip()

			assert.Nil(t, a.finishJob(m))
		})
	}
}

func TestQueueNames(t *testing.T) {
	assert.Equal(t, "job:linux", jobTask("linux"))
	assert.Equal(t, "gantry:linux", queueName("linux"))
}
