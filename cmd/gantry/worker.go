package main

import (
	"github.com/ventrath/gantry/internal/utils"
	"github.com/ventrath/gantry/internal/worker"
	"github.com/ventrath/gantry/pkg/artifacts"
	"github.com/ventrath/gantry/pkg/database"
	"github.com/ventrath/gantry/pkg/queue"
)

const (
	docWorker = `Run a Gantry job worker`
)

type optsWorker struct {
	optsGeneral
	optsDatabase
	optsQueue

	Labels []string `long:"label" env:"LABELS" env-delim:"," default:"default" description:"Worker labels to accept jobs for (a job's runs_on)"`

	Workspace string `long:"workspace" env:"WORKSPACE" description:"Directory job workspaces are created under"`

	ArtifactDir string `long:"artifact-dir" env:"ARTIFACT_DIR" description:"Directory artifacts are stored under"`
}

func (c *optsWorker) Execute(args []string) error {
	// This runs a job worker; it pulls jobs off the queue for its labels,
	// executes their steps and reports results. Run as many of these as
	// you have machines for, with whatever labels describe them.
	cfg, err := resolve(&c.optsGeneral, &c.optsDatabase, &c.optsQueue)
	if err != nil {
		panic(err)
	}
	if c.ArtifactDir == "" {
		c.ArtifactDir = cfg.Artifacts.Dir
	}
	if c.ArtifactDir == "" {
		c.ArtifactDir = defaultArtifactDir
	}
	tlsCfg, err := utils.TLSConfig(c.QueueTLSCaCert, c.QueueTLSCert, c.QueueTLSKey)
	if err != nil {
		panic(err)
	}

	db, err := database.NewPostgres(&database.Options{URL: c.DatabaseURL})
	if err != nil {
		panic(err)
	}
	qu, err := queue.NewAsynqQueue(database.NewQueueDB(db), &queue.Options{URL: c.QueueURL, TLSConfig: tlsCfg})
	if err != nil {
		panic(err)
	}
	store, err := artifacts.NewDisk(c.ArtifactDir)
	if err != nil {
		panic(err)
	}

	w, err := worker.New(qu, store, &worker.Options{
		Labels:    c.Labels,
		Workspace: c.Workspace,
	})
	if err != nil {
		panic(err)
	}
	defer w.Close()

	return w.Run()
}
