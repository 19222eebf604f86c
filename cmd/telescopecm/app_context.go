package main

import (
	"context"

	"github.com/arrayops/telescopecm/internal/config"
	"github.com/arrayops/telescopecm/internal/logger"
	"github.com/arrayops/telescopecm/internal/repository"
	"github.com/arrayops/telescopecm/internal/sysdef"
)

// appContext bundles the runtime pieces every command needs: resolved
// configuration, logger and the open store.
type appContext struct {
	cfg   *config.Config
	log   *logger.Logger
	store repository.Writer
}

// newAppContext resolves configuration (flags override file and environment),
// creates the logger and opens the database. The caller must call close.
func newAppContext(ctx context.Context, flags *rootFlags) (*appContext, error) {
	v := config.New()
	if flags.databasePath != "" {
		v.Set("database_path", flags.databasePath)
	}
	if flags.sysdefPath != "" {
		v.Set("sysdef_path", flags.sysdefPath)
	}
	if flags.hookupType != "" {
		v.Set("hookup_type", flags.hookupType)
	}
	if flags.logLevel != "" {
		v.Set("log_level", flags.logLevel)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, HumanReadable: cfg.LogHumanReadable})
	if err != nil {
		return nil, err
	}

	store, err := repository.NewSQLiteStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	return &appContext{cfg: cfg, log: log, store: store}, nil
}

func (a *appContext) close() error {
	return a.store.Close()
}

// definition loads the topology document and resolves the configured hookup
// type.
func (a *appContext) definition() (*sysdef.Definition, error) {
	doc, err := sysdef.Load(a.cfg.SysdefPath)
	if err != nil {
		return nil, err
	}
	return sysdef.New(doc, a.cfg.HookupType)
}
