package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/forge/internal/adapters/cache"    //nolint:depguard // Wired in app layer
	"go.trai.ch/forge/internal/adapters/config"   //nolint:depguard // Wired in app layer
	"go.trai.ch/forge/internal/adapters/keystore" //nolint:depguard // Wired in app layer
	"go.trai.ch/forge/internal/adapters/logger"   //nolint:depguard // Wired in app layer
	"go.trai.ch/forge/internal/adapters/watcher"  //nolint:depguard // Wired in app layer
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/forge/internal/engine/rulekey"
	"go.trai.ch/forge/internal/engine/steps"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components bundles the App with the adapters the CLI needs direct access to.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			rulekey.NodeID,
			cache.NodeID,
			keystore.NodeID,
			steps.NodeID,
			watcher.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			application, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: application, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.GraphLoader](ctx)
	if err != nil {
		return nil, err
	}

	keys, err := graft.Dep[*rulekey.Factory](ctx)
	if err != nil {
		return nil, err
	}

	artifacts, err := graft.Dep[ports.ArtifactCache](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.RuleKeyStore](ctx)
	if err != nil {
		return nil, err
	}

	runner, err := graft.Dep[ports.StepRunner](ctx)
	if err != nil {
		return nil, err
	}

	watch, err := graft.Dep[ports.ChangeWatcher](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, keys, artifacts, store, runner, watch, log), nil
}
