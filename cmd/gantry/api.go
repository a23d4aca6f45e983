package main

import (
	"github.com/ventrath/gantry/internal/utils"
	"github.com/ventrath/gantry/pkg/api"
	"github.com/ventrath/gantry/pkg/api/http/server"
	"github.com/ventrath/gantry/pkg/database"
	"github.com/ventrath/gantry/pkg/queue"
)

const (
	docApi = `Run the API server`
)

type optsAPI struct {
	optsGeneral
	optsDatabase
	optsQueue

	Addr string `long:"addr" env:"ADDR" description:"Address to bind to" default:"localhost:8100"`

	StaticDir string `long:"static-dir" env:"STATIC_DIR" default:"" description:"Serve static files from this directory"`
}

func (c *optsAPI) Execute(args []string) error {
	// This runs an API server (in this case, http) so that callers can interact with Gantry over HTTP.
	// Since this is configured with OptionsClientDefault it does not run any background routines
	// that Gantry needs to function (ie, to process events, queue jobs etc); run `gantry server`
	// for those.
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

	s := server.NewServer(c.Addr, c.StaticDir, c.Debug)
	return s.ServeForever(svc)
}
