package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"

	"github.com/ventrath/gantry/pkg/errors"
	"github.com/ventrath/gantry/pkg/manifest"
)

func TestNames(t *testing.T) {
	assert.Equal(t, "myapp-db", ContainerName("myapp", "db"))
	assert.Equal(t, "myapp_pgdata", VolumeName("myapp", "pgdata"))
}

func TestStartServiceRequiresImage(t *testing.T) {
	d := &Docker{}
	st := &manifest.Stack{Services: map[string]*manifest.Service{
		"app": {Build: "./app"},
	}}

	_, err := d.StartService(context.Background(), "myapp", st, "app")

	assert.ErrorIs(t, err, errors.ErrNotSupported)
}

func TestHealthFromState(t *testing.T) {
	cases := []struct {
		Name   string
		In     *container.State
		Expect Health
	}{
		{Name: "NoState", In: nil, Expect: HealthUnknown},
		{Name: "Running", In: &container.State{Running: true}, Expect: HealthHealthy},
		{Name: "Restarting", In: &container.State{Restarting: true}, Expect: HealthStarting},
		{Name: "ExitedClean", In: &container.State{ExitCode: 0}, Expect: HealthUnhealthy},
		{Name: "ExitedNonZero", In: &container.State{ExitCode: 3}, Expect: HealthUnhealthy},
		{
			Name:   "HealthcheckStarting",
			In:     &container.State{Running: true, Health: &container.Health{Status: container.Starting}},
			Expect: HealthStarting,
		},
		{
			Name:   "HealthcheckHealthy",
			In:     &container.State{Running: true, Health: &container.Health{Status: container.Healthy}},
			Expect: HealthHealthy,
		},
		{
			Name:   "HealthcheckUnhealthy",
			In:     &container.State{Running: true, Health: &container.Health{Status: container.Unhealthy}},
			Expect: HealthUnhealthy,
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, healthFromState(c.In))
		})
	}
}

func TestRestartPolicy(t *testing.T) {
	cases := []struct {
		Name   string
		In     string
		Expect container.RestartPolicyMode
	}{
		{Name: "Always", In: "always", Expect: container.RestartPolicyAlways},
		{Name: "UnlessStopped", In: "unless-stopped", Expect: container.RestartPolicyUnlessStopped},
		{Name: "OnFailure", In: "on-failure", Expect: container.RestartPolicyOnFailure},
		{Name: "No", In: "no", Expect: container.RestartPolicyDisabled},
		{Name: "Empty", In: "", Expect: container.RestartPolicyDisabled},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, restartPolicy(c.In))
		})
	}
}

func TestToMount(t *testing.T) {
	cases := []struct {
		Name   string
		In     *manifest.VolumeRef
		Expect mount.Mount
	}{
		{
			Name: "NamedVolume",
			In:   &manifest.VolumeRef{Source: "pgdata", Target: "/var/lib/postgresql/data", Named: true},
			Expect: mount.Mount{
				Type:   mount.TypeVolume,
				Source: "myapp_pgdata",
				Target: "/var/lib/postgresql/data",
			},
		},
		{
			Name: "HostPath",
			In:   &manifest.VolumeRef{Source: "./conf", Target: "/etc/app"},
			Expect: mount.Mount{
				Type:   mount.TypeBind,
				Source: "./conf",
				Target: "/etc/app",
			},
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, toMount("myapp", c.In))
		})
	}
}
