package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ventrath/gantry/pkg/errors"
	"github.com/ventrath/gantry/pkg/structs"
)

const testPipeline = `
name: ci
on:
  push:
    branches: [main, "release/*"]
  pull_request: {}
  release:
    actions: [published]
  workflow_dispatch: {}
jobs:
  build:
    runs_on: linux
    steps:
      - name: compile
        run: make build
    artifacts:
      upload:
        - name: bin
          path: ./bin
  test:
    needs: [build]
    strategy:
      matrix:
        go: ["1.21", "1.22"]
    steps:
      - run: make test GO={{matrix.go}}
    artifacts:
      download: [bin]
  publish:
    needs: [build, test]
    when:
      event: [release]
      action: [published]
    steps:
      - run: make publish
`

func TestParsePipeline(t *testing.T) {
	p, err := ParsePipeline([]byte(testPipeline), func(string) (string, bool) { return "", false })

	assert.Nil(t, err)
	assert.Equal(t, "ci", p.Name)
	assert.Len(t, p.Jobs, 3)
	assert.Equal(t, []string{"build", "publish", "test"}, p.JobKeys())
	assert.Equal(t, []string{"main", "release/*"}, p.On.Push.Branches)
	assert.NotNil(t, p.On.PullRequest)
	assert.NotNil(t, p.On.Dispatch)
	assert.Equal(t, []string{"published"}, p.On.Release.Actions)
	assert.Equal(t, "linux", p.Jobs["build"].RunsOn)
	assert.Equal(t, []string{"build", "test"}, p.Jobs["publish"].Needs)
}

func TestPipelineValidate(t *testing.T) {
	cases := []struct {
		Name      string
		Given     string
		ExpectErr error
	}{
		{
			Name:      "NoJobs",
			Given:     `name: empty`,
			ExpectErr: errors.ErrNoJobs,
		},
		{
			Name: "NoSteps",
			Given: `
jobs:
  a: {runs_on: linux}
`,
			ExpectErr: errors.ErrInvalidArg,
		},
		{
			Name: "StepWithoutRun",
			Given: `
jobs:
  a:
    steps:
      - name: x
`,
			ExpectErr: errors.ErrInvalidArg,
		},
		{
			Name: "UnknownNeed",
			Given: `
jobs:
  a:
    needs: [ghost]
    steps: [{run: "true"}]
`,
			ExpectErr: errors.ErrUnknownDep,
		},
		{
			Name: "NeedsCycle",
			Given: `
jobs:
  a:
    needs: [b]
    steps: [{run: "true"}]
  b:
    needs: [a]
    steps: [{run: "true"}]
`,
			ExpectErr: errors.ErrCycleDetected,
		},
		{
			Name: "EmptyMatrixParam",
			Given: `
jobs:
  a:
    strategy:
      matrix:
        go: []
    steps: [{run: "true"}]
`,
			ExpectErr: errors.ErrInvalidArg,
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			_, err := ParsePipeline([]byte(c.Given), func(string) (string, bool) { return "", false })
			assert.ErrorIs(t, err, c.ExpectErr)
		})
	}
}

func TestTriggersAccepts(t *testing.T) {
	p, err := ParsePipeline([]byte(testPipeline), func(string) (string, bool) { return "", false })
	assert.Nil(t, err)

	cases := []struct {
		Name   string
		Given  structs.Event
		Expect bool
	}{
		{"PushMain", structs.Event{Type: structs.EventPush, Branch: "main"}, true},
		{"PushGlob", structs.Event{Type: structs.EventPush, Branch: "release/1.2"}, true},
		{"PushOtherBranch", structs.Event{Type: structs.EventPush, Branch: "feature/x"}, false},
		{"PullRequestAnyBranch", structs.Event{Type: structs.EventPullRequest, Branch: "feature/x"}, true},
		{"ReleasePublished", structs.Event{Type: structs.EventRelease, Action: "published"}, true},
		{"ReleaseDraft", structs.Event{Type: structs.EventRelease, Action: "created"}, false},
		{"Dispatch", structs.Event{Type: structs.EventDispatch}, true},
		{"ScheduleNotDeclared", structs.Event{Type: structs.EventSchedule}, false},
		{"UnknownType", structs.Event{Type: "gamma-ray"}, false},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, p.On.Accepts(c.Given))
		})
	}
}

func TestPredicateMatches(t *testing.T) {
	cases := []struct {
		Name   string
		Pred   *Predicate
		Given  structs.Event
		Expect bool
	}{
		{"NilAlwaysTrue", nil, structs.Event{Type: structs.EventPush}, true},
		{"EventMatch", &Predicate{Event: []string{"push"}}, structs.Event{Type: structs.EventPush}, true},
		{"EventMismatch", &Predicate{Event: []string{"release"}}, structs.Event{Type: structs.EventPush}, false},
		{"BranchGlob", &Predicate{Branch: []string{"release/*"}}, structs.Event{Type: structs.EventPush, Branch: "release/2.0"}, true},
		{"BranchMismatch", &Predicate{Branch: []string{"main"}}, structs.Event{Type: structs.EventPush, Branch: "dev"}, false},
		{
			Name:   "Conjunction",
			Pred:   &Predicate{Event: []string{"release"}, Action: []string{"published"}},
			Given:  structs.Event{Type: structs.EventRelease, Action: "published"},
			Expect: true,
		},
		{
			Name:   "ConjunctionHalfTrue",
			Pred:   &Predicate{Event: []string{"release"}, Action: []string{"published"}},
			Given:  structs.Event{Type: structs.EventRelease, Action: "created"},
			Expect: false,
		},
		{"TagGlob", &Predicate{Tag: []string{"v*"}}, structs.Event{Type: structs.EventRelease, Tag: "v1.0.0"}, true},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, c.Pred.Matches(c.Given))
		})
	}
}

func TestExpandMatrix(t *testing.T) {
	cases := []struct {
		Name   string
		Given  *Strategy
		Expect []map[string]string
	}{
		{"NilStrategy", nil, []map[string]string{{}}},
		{"EmptyMatrix", &Strategy{}, []map[string]string{{}}},
		{
			Name:  "SingleParam",
			Given: &Strategy{Matrix: map[string][]string{"go": {"1.21", "1.22"}}},
			Expect: []map[string]string{
				{"go": "1.21"},
				{"go": "1.22"},
			},
		},
		{
			Name: "Product",
			Given: &Strategy{Matrix: map[string][]string{
				"go": {"1.21", "1.22"},
				"os": {"linux"},
			}},
			Expect: []map[string]string{
				{"go": "1.21", "os": "linux"},
				{"go": "1.22", "os": "linux"},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, ExpandMatrix(c.Given))
		})
	}
}

func TestCompile(t *testing.T) {
	p, err := ParsePipeline([]byte(testPipeline), func(string) (string, bool) { return "", false })
	assert.Nil(t, err)

	t.Run("NotTriggered", func(t *testing.T) {
		_, err := Compile(p, structs.Event{Type: structs.EventPush, Branch: "feature/x"})
		assert.ErrorIs(t, err, errors.ErrNotTriggered)
	})

	t.Run("NoEventType", func(t *testing.T) {
		_, err := Compile(p, structs.Event{})
		assert.ErrorIs(t, err, errors.ErrInvalidArg)
	})

	t.Run("PushExpandsAndSkipsPublish", func(t *testing.T) {
		req, err := Compile(p, structs.Event{Type: structs.EventPush, Branch: "main"})
		assert.Nil(t, err)
		assert.Equal(t, "ci", req.Pipeline)

		// build, test x2 (matrix), publish
		assert.Len(t, req.Jobs, 4)

		byName := map[string]structs.RunJobRequest{}
		for _, j := range req.Jobs {
			byName[j.Name] = j
		}

		build := byName["build"]
		assert.False(t, build.Skip)
		assert.Equal(t, "linux", build.RunsOn)
		assert.Equal(t, []structs.ArtifactUpload{{Name: "bin", Path: "./bin"}}, build.Uploads)

		t1 := byName["test (go=1.21)"]
		assert.Equal(t, "test", t1.Key)
		assert.Equal(t, DefaultRunsOn, t1.RunsOn)
		assert.Equal(t, "make test GO=1.21", t1.Steps[0].Command)
		assert.Equal(t, []string{"bin"}, t1.Downloads)

		t2 := byName["test (go=1.22)"]
		assert.Equal(t, "make test GO=1.22", t2.Steps[0].Command)

		// wrong event type: publish is pre-skipped, not dropped
		pub := byName["publish"]
		assert.True(t, pub.Skip)
		assert.NotEmpty(t, pub.SkipReason)
	})

	t.Run("ReleasePublishRuns", func(t *testing.T) {
		req, err := Compile(p, structs.Event{Type: structs.EventRelease, Action: "published"})
		assert.Nil(t, err)

		for _, j := range req.Jobs {
			assert.False(t, j.Skip, j.Name)
		}
	})

	t.Run("DuplicateUploadRejected", func(t *testing.T) {
		dup, err := ParsePipeline([]byte(`
name: dup
on: {workflow_dispatch: {}}
jobs:
  a:
    steps: [{run: "true"}]
    artifacts: {upload: [{name: bin, path: ./a}]}
  b:
    steps: [{run: "true"}]
    artifacts: {upload: [{name: bin, path: ./b}]}
`), func(string) (string, bool) { return "", false })
		assert.Nil(t, err)

		_, err = Compile(dup, structs.Event{Type: structs.EventDispatch})
		assert.ErrorIs(t, err, errors.ErrInvalidArg)
	})
}
