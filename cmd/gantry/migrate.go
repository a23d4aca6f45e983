package main

import (
	"fmt"

	"github.com/ventrath/gantry/pkg/database"
)

const (
	docMigrate = `Apply database migrations

Brings the database schema up to the latest version. Safe to run
repeatedly; an up to date database is a no-op.`
)

type optsMigrate struct {
	optsGeneral
	optsDatabase
}

func (c *optsMigrate) Execute(args []string) error {
	_, err := resolve(&c.optsGeneral, &c.optsDatabase, &optsQueue{})
	if err != nil {
		return err
	}
	err = database.Migrate(&database.Options{URL: c.DatabaseURL})
	if err != nil {
		return err
	}
	fmt.Println("database migrated")
	return nil
}
