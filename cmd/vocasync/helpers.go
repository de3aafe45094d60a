package main

import (
	"fmt"

	"github.com/at-ishikawa/vocasync/internal/config"
	"github.com/at-ishikawa/vocasync/internal/learning"
	"github.com/at-ishikawa/vocasync/internal/localstore"
	"github.com/at-ishikawa/vocasync/internal/merge"
	"github.com/at-ishikawa/vocasync/internal/remote"
	"github.com/at-ishikawa/vocasync/internal/syncer"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*learning.Store, *localstore.Store, error) {
	docs := localstore.New(cfg.Storage.DataDirectory)
	store, err := learning.NewStore(docs)
	if err != nil {
		return nil, nil, fmt.Errorf("learning.NewStore > %w", err)
	}
	return store, docs, nil
}

func mergePolicy(cfg *config.Config) merge.Policy {
	policy := merge.DefaultPolicy()
	if cfg.Sync.ConflictWindowMinutes > 0 {
		policy.ConflictWindow = cfg.Sync.ConflictWindow()
	}
	policy.AlwaysBumpVersion = cfg.Sync.AlwaysBumpVersion
	return policy
}

func newOrchestrator(cfg *config.Config, store *learning.Store, docs *localstore.Store) (*syncer.Orchestrator, *remote.Client, error) {
	if cfg.Remote.BaseURL == "" {
		return nil, nil, fmt.Errorf("remote.base_url is not configured (set VOCASYNC_API_URL)")
	}

	client := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.APIToken)
	orchestrator, err := syncer.NewOrchestrator(store, docs, client, mergePolicy(cfg), cfg.Remote.FolderName, cfg.Remote.FileName)
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("syncer.NewOrchestrator > %w", err)
	}
	return orchestrator, client, nil
}
