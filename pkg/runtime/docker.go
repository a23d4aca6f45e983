package runtime

import (
	"context"
	"fmt"
	"net/netip"
	"strconv"

	"github.com/containerd/errdefs"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/api/types/network"
	"github.com/moby/moby/client"

	"github.com/ventrath/gantry/pkg/errors"
	"github.com/ventrath/gantry/pkg/manifest"
)

const (
	labelStack   = "gantry.stack"
	labelService = "gantry.service"
	labelVolume  = "gantry.volume"
)

// Docker is a Runtime backed by the docker engine API.
type Docker struct {
	cli *client.Client
}

// NewDocker connects to the docker daemon using the environment
// (DOCKER_HOST etc).
func NewDocker() (*Docker, error) {
	c, err := client.New(client.FromEnv)
	if err != nil {
		return nil, err
	}
	return &Docker{cli: c}, nil
}

func (d *Docker) Close() error {
	return d.cli.Close()
}

// EnsureVolume creates the named volume if it doesn't already exist.
func (d *Docker) EnsureVolume(ctx context.Context, stack, name string, v *manifest.Volume) error {
	vol := VolumeName(stack, name)

	// If it already exists, treat as success.
	_, err := d.cli.VolumeInspect(ctx, vol, client.VolumeInspectOptions{})
	if err == nil {
		return nil
	}
	if !errdefs.IsNotFound(err) {
		return fmt.Errorf("inspect volume %q: %w", vol, err)
	}

	driver := ""
	if v != nil {
		driver = v.Driver
	}
	_, err = d.cli.VolumeCreate(ctx, client.VolumeCreateOptions{
		Name:   vol,
		Driver: driver,
		Labels: map[string]string{
			labelStack:  stack,
			labelVolume: name,
		},
	})
	if err != nil {
		// Rather than pattern match on a concurrent-create conflict, re-check inspect.
		if _, ie := d.cli.VolumeInspect(ctx, vol, client.VolumeInspectOptions{}); ie == nil {
			return nil
		}
		return fmt.Errorf("create volume %q: %w", vol, err)
	}
	return nil
}

// StartService creates & starts a container for the given service, replacing
// any container of the same name left over from a previous run.
func (d *Docker) StartService(ctx context.Context, stack string, st *manifest.Stack, name string) (string, error) {
	svc, ok := st.Services[name]
	if !ok {
		return "", fmt.Errorf("%w service %s", errors.ErrUnknownDep, name)
	}
	if svc.Image == "" {
		// build contexts need an image builder; this runtime only runs
		// prebuilt images
		return "", fmt.Errorf("%w service %s declares build %q, the docker runtime requires an image", errors.ErrNotSupported, name, svc.Build)
	}
	containerName := ContainerName(stack, name)

	env, err := svc.Env()
	if err != nil {
		return "", fmt.Errorf("service %q env: %w", name, err)
	}
	envList := []string{}
	for k, v := range env {
		envList = append(envList, fmt.Sprintf("%s=%s", k, v))
	}

	mounts := []mount.Mount{}
	for _, raw := range svc.Volumes {
		ref, err := st.ParseVolume(raw)
		if err != nil {
			return "", err
		}
		mounts = append(mounts, toMount(stack, ref))
	}

	exposed := network.PortSet{}
	portMap := network.PortMap{}
	for _, raw := range svc.Ports {
		pm, err := manifest.ParsePort(raw)
		if err != nil {
			return "", err
		}
		port, _ := network.PortFrom(uint16(pm.Container), "tcp")
		exposed[port] = struct{}{}
		portMap[port] = append(portMap[port], network.PortBinding{
			HostIP:   netip.MustParseAddr("0.0.0.0"),
			HostPort: strconv.Itoa(pm.Host),
		})
	}

	cCfg := &container.Config{
		Image: svc.Image,
		Cmd:   svc.Command,
		Env:   envList,
		Labels: map[string]string{
			labelStack:   stack,
			labelService: name,
		},
		ExposedPorts: exposed,
	}
	if svc.Healthcheck != nil {
		cCfg.Healthcheck = &container.HealthConfig{
			Test:        svc.Healthcheck.Test,
			Interval:    svc.Healthcheck.HealthInterval(),
			Timeout:     svc.Healthcheck.HealthTimeout(),
			Retries:     svc.Healthcheck.HealthRetries(),
			StartPeriod: svc.Healthcheck.StartPeriod.Or(0),
		}
	}

	hCfg := &container.HostConfig{
		Mounts:        mounts,
		PortBindings:  portMap,
		RestartPolicy: container.RestartPolicy{Name: restartPolicy(svc.Restart)},
		Resources:     container.Resources{Memory: svc.MemBytes()},
	}

	// Remove whatever a previous run left under this name.
	_, err = d.cli.ContainerInspect(ctx, containerName, client.ContainerInspectOptions{})
	if err == nil {
		_, _ = d.cli.ContainerStop(ctx, containerName, client.ContainerStopOptions{})
		_, err = d.cli.ContainerRemove(ctx, containerName, client.ContainerRemoveOptions{
			Force:         true,
			RemoveVolumes: false,
		})
		if err != nil {
			return "", fmt.Errorf("remove existing container %q: %w", containerName, err)
		}
	}

	created, err := d.cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     cCfg,
		HostConfig: hCfg,
		Name:       containerName,
		Image:      svc.Image,
	})
	if err != nil {
		return "", fmt.Errorf("create container %q: %w", containerName, err)
	}

	_, err = d.cli.ContainerStart(ctx, created.ID, client.ContainerStartOptions{})
	if err != nil {
		return "", fmt.Errorf("start container %q: %w", containerName, err)
	}
	return created.ID, nil
}

// Probe reports current container health.
//
// Docker runs the manifest healthcheck itself; we read back its verdict.
// A container with no healthcheck is healthy as long as it's running.
func (d *Docker) Probe(ctx context.Context, id string) (Health, error) {
	ins, err := d.cli.ContainerInspect(ctx, id, client.ContainerInspectOptions{})
	if err != nil {
		return HealthUnknown, err
	}

	return healthFromState(ins.Container.State), nil
}

// healthFromState turns a container's inspect state into a Health verdict.
func healthFromState(state *container.State) Health {
	if state == nil {
		return HealthUnknown
	}
	if state.Health != nil {
		switch state.Health.Status {
		case container.Healthy:
			return HealthHealthy
		case container.Unhealthy:
			return HealthUnhealthy
		case container.Starting:
			return HealthStarting
		}
	}
	if state.Running {
		return HealthHealthy
	}
	if state.Restarting {
		return HealthStarting
	}
	// a container that exited is dead no matter its exit code
	return HealthUnhealthy
}

func (d *Docker) StopService(ctx context.Context, stack, name string) error {
	_, err := d.cli.ContainerStop(ctx, ContainerName(stack, name), client.ContainerStopOptions{})
	if errdefs.IsNotFound(err) {
		return nil
	}
	return err
}

func (d *Docker) RemoveService(ctx context.Context, stack, name string) error {
	_, err := d.cli.ContainerRemove(ctx, ContainerName(stack, name), client.ContainerRemoveOptions{
		Force:         true,
		RemoveVolumes: false,
	})
	if errdefs.IsNotFound(err) {
		return nil
	}
	return err
}

func (d *Docker) RemoveVolume(ctx context.Context, stack, name string) error {
	_, err := d.cli.VolumeRemove(ctx, VolumeName(stack, name), client.VolumeRemoveOptions{})
	if errdefs.IsNotFound(err) {
		return nil
	}
	return err
}

// ContainerName is the runtime name of a stack service.
func ContainerName(stack, service string) string {
	return fmt.Sprintf("%s-%s", stack, service)
}

// VolumeName is the runtime name of a stack volume.
func VolumeName(stack, volume string) string {
	return fmt.Sprintf("%s_%s", stack, volume)
}

func restartPolicy(in string) container.RestartPolicyMode {
	switch in {
	case "always":
		return container.RestartPolicyAlways
	case "unless-stopped":
		return container.RestartPolicyUnlessStopped
	case "on-failure":
		return container.RestartPolicyOnFailure
	}
	return container.RestartPolicyDisabled
}

func toMount(stack string, ref *manifest.VolumeRef) mount.Mount {
	if ref.Named {
		return mount.Mount{
			Type:   mount.TypeVolume,
			Source: VolumeName(stack, ref.Source),
			Target: ref.Target,
		}
	}
	return mount.Mount{
		Type:   mount.TypeBind,
		Source: ref.Source,
		Target: ref.Target,
	}
}
