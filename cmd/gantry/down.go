package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ventrath/gantry/pkg/manifest"
	"github.com/ventrath/gantry/pkg/runtime"
	"github.com/ventrath/gantry/pkg/topology"
)

const (
	docDown = `Tear a service stack down

Stops & removes every service in the given stack manifest in reverse
dependency order, so nothing loses a dependency it is still using.`
)

type optsDown struct {
	optsGeneral

	Project string `long:"project" short:"p" description:"Project name the stack was brought up under"`

	Volumes bool `long:"volumes" short:"v" description:"Also remove the stack's volumes"`
}

func (c *optsDown) Execute(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("a stack manifest path is required")
	}

	st, err := manifest.LoadStack(args[0])
	if err != nil {
		return err
	}

	rt, err := runtime.NewDocker()
	if err != nil {
		return err
	}
	defer rt.Close()

	m := topology.New(rt, &topology.Options{Name: c.Project})

	results, err := m.Down(context.Background(), st)
	printResults(results)
	if err != nil {
		os.Exit(1)
	}
	if c.Volumes {
		err = m.RemoveVolumes(context.Background(), st)
		if err != nil {
			os.Exit(1)
		}
	}
	return nil
}
