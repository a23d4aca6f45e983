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
	docUp = `Bring a service stack up

Starts every service in the given stack manifest in dependency order,
waiting for each to become healthy before starting anything that
depends on it.`
)

type optsUp struct {
	optsGeneral

	Project string `long:"project" short:"p" description:"Project name to scope containers & volumes under"`
}

func (c *optsUp) Execute(args []string) error {
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

	results, err := m.Up(context.Background(), st)
	printResults(results)
	if err != nil {
		os.Exit(1)
	}
	return nil
}

func printResults(results []*topology.Result) {
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("%-20s %-10s %v\n", r.Service, r.Status, r.Err)
		} else {
			fmt.Printf("%-20s %-10s %s\n", r.Service, r.Status, r.ID)
		}
	}
}
