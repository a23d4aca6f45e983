package main

import (
	"os"
	"os/signal"

	"github.com/ventrath/gantry/internal/utils"
	"github.com/ventrath/gantry/pkg/api"
	"github.com/ventrath/gantry/pkg/database"
	"github.com/ventrath/gantry/pkg/queue"
)

const (
	docServer = `Run Gantry background server`
)

type optsServer struct {
	optsGeneral
	optsDatabase
	optsQueue
}

func (c *optsServer) Execute(args []string) error {
	// This runs a Gantry internal server. That is, it runs some number of internal worker routines
	// to process gantry events, queue jobs, push status updates or whatever else.
	//
	// This is intended to run internal background processes, not to serve Gantry's API to clients.
	// Though you could have one server type do both if you wanted.
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
		api.OptionsServerDefault(),
	)
	if err != nil {
		panic(err)
	}
	defer svc.Close()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt)
	<-exit

	return nil
}
