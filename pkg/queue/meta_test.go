package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/ventrath/gantry/internal/mocks/pkg/database_mock"
	"github.com/ventrath/gantry/pkg/structs"
)

func TestMetaSetRunning(t *testing.T) {
	svc := database_mock.NewMockQueueDB(gomock.NewController(t))
	job := &structs.Job{ID: "abc", ETag: "e1"}
	m := &Meta{Job: job, svc: svc}

	svc.EXPECT().SetJobState(job, structs.RUNNING, "").Return("e2", nil)

	assert.Nil(t, m.SetRunning())
}

func TestMetaSetStepState(t *testing.T) {
	svc := database_mock.NewMockQueueDB(gomock.NewController(t))
	step := &structs.Step{ID: "abc", ETag: "e1"}
	m := &Meta{svc: svc}

	svc.EXPECT().SetStepState(step, structs.ERRORED, int64(1), "exit status 1").Return("e2", nil)

	assert.Nil(t, m.SetStepState(step, structs.ERRORED, 1, "exit status 1"))
}

func TestMetaAccumulates(t *testing.T) {
	m := &Meta{}

	m.SetMessage("hello")
	m.SetSkip()
	m.AddArtifact(&structs.Artifact{Name: "bin"})
	m.AddArtifact(&structs.Artifact{Name: "report"})

	assert.Equal(t, "hello", m.msg)
	assert.True(t, m.skip)
	assert.Len(t, m.arts, 2)
}
