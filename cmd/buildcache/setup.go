package main

import (
	"os"
	"path/filepath"

	"github.com/buildcache/buildcache/pkg/config"
	"github.com/buildcache/buildcache/pkg/hash"
	"github.com/buildcache/buildcache/pkg/logging"
	"github.com/buildcache/buildcache/pkg/pipeline"
	"github.com/buildcache/buildcache/pkg/remote"
	"github.com/buildcache/buildcache/pkg/store"
	"github.com/buildcache/buildcache/pkg/wrapper"
	"github.com/buildcache/buildcache/pkg/wrapper/gcclike"
	"github.com/buildcache/buildcache/pkg/wrapper/generic"
	"github.com/buildcache/buildcache/pkg/wrapper/toolid"
)

// cmdEnv bundles the loaded configuration, store, logger, and an
// opened remote client (if configured), plus a closer that releases all of
// them. It's the shared setup every subcommand (invocation, stats, clear,
// config, housekeep) needs.
type cmdEnv struct {
	Config *config.Config
	Store  *store.Store
	Remote *remote.Client
	Logger *logging.Logger
}

// openEnvironment loads configuration from configFlag (falling back to
// BUILDCACHE_CONFIG and the default path per config.ResolvePath) and opens
// the local store it names. A nil remote client means no remote provider
// is configured.
func openEnvironment(configFlag string) (*cmdEnv, error) {
	path := config.ResolvePath(configFlag)

	// Use a conservative bootstrap logger to surface load-time warnings
	// (unknown keys, malformed overrides) before the configured level is
	// known.
	bootstrapLogger := logging.NewLogger(logging.LevelWarn, os.Stderr)

	cfg, err := config.Load(path, bootstrapLogger)
	if err != nil {
		return nil, pipeline.ConfigError("unable to load configuration", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, os.Stderr)

	s, err := store.Open(cfg.StoreDirectory, hash.AlgorithmSHA256, logger)
	if err != nil {
		return nil, pipeline.ConfigError("unable to open local store", err)
	}

	var client *remote.Client
	if cfg.RemoteURL != "" {
		provider, err := remote.Open(cfg.RemoteURL, cfg.RemoteTimeout)
		if err != nil {
			logger.Warnf("unable to open remote provider, continuing without it: %v", err)
		} else {
			client = remote.NewClient(provider, cfg.RemoteTimeout, logger)
		}
	}

	return &cmdEnv{Config: cfg, Store: s, Remote: client, Logger: logger}, nil
}

// Close releases the store and drains any in-flight asynchronous remote
// puts.
func (e *cmdEnv) Close() {
	if e.Remote != nil {
		e.Remote.Close()
	}
	if err := e.Store.Close(); err != nil {
		e.Logger.Debug("unable to close store cleanly:", err)
	}
}

// buildPipeline constructs a Pipeline from the environment, registering
// the static wrapper adapter set (a closed list, registered once per
// process).
func (e *cmdEnv) buildPipeline() (*pipeline.Pipeline, error) {
	memo, err := toolid.Open(filepath.Join(e.Config.StoreDirectory, "toolid"), e.Logger)
	if err != nil {
		return nil, pipeline.ConfigError("unable to open tool-ID memo", err)
	}

	wrapper.Register(gcclike.New(e.Config.Accuracy, memo))
	wrapper.Register(generic.New())

	return pipeline.New(pipeline.Options{
		Store:      e.Store,
		Remote:     e.Remote,
		Algorithm:  hash.AlgorithmSHA256,
		DirectMode: e.Config.DirectMode,
		Disabled:   e.Config.Disable,
		SizeCap:    e.Config.SizeCap,
		Logger:     e.Logger,
	}), nil
}
