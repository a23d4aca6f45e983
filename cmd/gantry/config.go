package main

import (
	"github.com/BurntSushi/toml"
)

// fileConfig is the optional toml config; flags & env vars win over it.
type fileConfig struct {
	Database struct {
		URL string `toml:"url"`
	} `toml:"database"`

	Queue struct {
		URL    string `toml:"url"`
		CACert string `toml:"ca_cert"`
		Cert   string `toml:"cert"`
		Key    string `toml:"key"`
	} `toml:"queue"`

	Artifacts struct {
		Dir string `toml:"dir"`
	} `toml:"artifacts"`
}

// resolve fills unset database / queue options from the config file (if any)
// then falls back to defaults. The parsed config is returned for commands
// with extra settings of their own (eg. the worker's artifact dir).
func resolve(g *optsGeneral, db *optsDatabase, qu *optsQueue) (*fileConfig, error) {
	cfg := &fileConfig{}
	if g.Config != "" {
		_, err := toml.DecodeFile(g.Config, cfg)
		if err != nil {
			return nil, err
		}
		if db.DatabaseURL == "" {
			db.DatabaseURL = cfg.Database.URL
		}
		if qu.QueueURL == "" {
			qu.QueueURL = cfg.Queue.URL
		}
		if qu.QueueTLSCaCert == "" {
			qu.QueueTLSCaCert = cfg.Queue.CACert
		}
		if qu.QueueTLSCert == "" {
			qu.QueueTLSCert = cfg.Queue.Cert
		}
		if qu.QueueTLSKey == "" {
			qu.QueueTLSKey = cfg.Queue.Key
		}
	}
	if db.DatabaseURL == "" {
		db.DatabaseURL = defaultDatabaseURL
	}
	if qu.QueueURL == "" {
		qu.QueueURL = defaultRedisAddr
	}
	return cfg, nil
}
