package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/ventrath/gantry/pkg/api/http/client"
	"github.com/ventrath/gantry/pkg/errors"
	"github.com/ventrath/gantry/pkg/manifest"
	"github.com/ventrath/gantry/pkg/structs"
)

const (
	docRun = `Trigger a pipeline run from a manifest

Compiles the given pipeline manifest against an event (by default a
manual dispatch) and submits the resulting run to the API server.`
)

type optsRun struct {
	optsGeneral

	APIURL string `long:"api-url" env:"API_URL" default:"http://localhost:8100" description:"Gantry API server address"`

	Event  string `long:"event" default:"workflow_dispatch" description:"Event type to trigger with (push, pull_request, release, schedule, workflow_dispatch)"`
	Branch string `long:"branch" description:"Branch the event refers to"`
	Tag    string `long:"tag" description:"Tag the event refers to"`
	Action string `long:"action" description:"Action qualifying the event (eg. published)"`
}

func (c *optsRun) Execute(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("a pipeline manifest path is required")
	}

	etype := structs.ToEventType(c.Event)
	if etype == "" {
		return fmt.Errorf("%w: unknown event type %q", errors.ErrInvalidArg, c.Event)
	}

	p, err := manifest.LoadPipeline(args[0])
	if err != nil {
		return err
	}
	crr, err := manifest.Compile(p, structs.Event{
		Type:   etype,
		Branch: c.Branch,
		Tag:    c.Tag,
		Action: c.Action,
	})
	if stderrors.Is(err, errors.ErrNotTriggered) {
		fmt.Printf("pipeline %s is not triggered by %s\n", p.Name, c.Event)
		return nil
	}
	if err != nil {
		return err
	}

	cli, err := client.New(c.APIURL)
	if err != nil {
		return err
	}
	defer cli.Close()

	resp, err := cli.CreateRun(crr)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
