package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/ventrath/gantry/internal/utils"
	"github.com/ventrath/gantry/pkg/api"
	"github.com/ventrath/gantry/pkg/database"
	"github.com/ventrath/gantry/pkg/manifest"
	"github.com/ventrath/gantry/pkg/queue"
	"github.com/ventrath/gantry/pkg/schedule"
)

const (
	docScheduler = `Run cron triggers for pipeline manifests

Watches the given pipeline files and creates runs whenever one of
their 'on: schedule:' cron expressions fires.`
)

type optsScheduler struct {
	optsGeneral
	optsDatabase
	optsQueue
}

func (c *optsScheduler) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one pipeline manifest is required")
	}
	_, err := resolve(&c.optsGeneral, &c.optsDatabase, &c.optsQueue)
	if err != nil {
		panic(err)
	}
	tlsCfg, err := utils.TLSConfig(c.QueueTLSCaCert, c.QueueTLSCert, c.QueueTLSKey)
	if err != nil {
		panic(err)
	}

	svc, err := api.New(
		&database.Options{URL: c.DatabaseURL},
		&queue.Options{URL: c.QueueURL, TLSConfig: tlsCfg},
		api.OptionsClientDefault(),
	)
	if err != nil {
		panic(err)
	}
	defer svc.Close()

	sched := schedule.New(svc)
	for _, path := range args {
		p, err := manifest.LoadPipeline(path)
		if err != nil {
			panic(err)
		}
		err = sched.Add(p)
		if err != nil {
			panic(err)
		}
	}
	sched.Run()
	defer sched.Stop()

	ic := make(chan os.Signal, 1)
	signal.Notify(ic, os.Interrupt)
	<-ic
	return nil
}
