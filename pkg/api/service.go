package api

import (
	"github.com/ventrath/gantry/internal/core"
	"github.com/ventrath/gantry/pkg/database"
	"github.com/ventrath/gantry/pkg/queue"
)

// New builds a full Gantry API service; a postgres database, an asynq queue
// on top of it, and the core service that drives runs.
func New(dbOpts *database.Options, qOpts *queue.Options, opts *Options) (API, error) {
	db, err := database.NewPostgres(dbOpts)
	if err != nil {
		return nil, err
	}
	qu, err := queue.NewAsynqQueue(database.NewQueueDB(db), qOpts)
	if err != nil {
		return nil, err
	}
	return NewAPI(db, qu, opts)
}

// NewAPI wires an API service from already-built components.
func NewAPI(db database.Database, qu queue.Queue, opts *Options) (API, error) {
	if opts == nil {
		opts = OptionsClientDefault()
	}
	return core.NewService(db, qu, opts.toCore())
}
