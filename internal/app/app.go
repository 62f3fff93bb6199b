// Package app implements the application layer for forge. It owns the build
// invocation lifecycle: taking the project lock, loading the graph, running
// the engine, and reporting per-target outcomes.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.trai.ch/forge/internal/adapters/settings" //nolint:depguard // Wired in app layer
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/forge/internal/engine/builder"
	"go.trai.ch/forge/internal/engine/rulekey"
	"go.trai.ch/zerr"
)

// LockDir is the project state directory holding the build lock.
const LockDir = ".forge"

// RunOptions carries the per-invocation flags.
type RunOptions struct {
	// Jobs caps concurrently executing rules. Zero means one per CPU.
	Jobs int
	// NoCache bypasses the artifact cache for both fetches and stores.
	NoCache bool
}

// App represents the main application logic.
type App struct {
	loader  ports.GraphLoader
	keys    *rulekey.Factory
	cache   ports.ArtifactCache
	store   ports.RuleKeyStore
	runner  ports.StepRunner
	watcher ports.ChangeWatcher
	logger  ports.Logger
}

// New creates a new App instance.
func New(
	loader ports.GraphLoader,
	keys *rulekey.Factory,
	cache ports.ArtifactCache,
	store ports.RuleKeyStore,
	runner ports.StepRunner,
	watcher ports.ChangeWatcher,
	logger ports.Logger,
) *App {
	return &App{
		loader:  loader,
		keys:    keys,
		cache:   cache,
		store:   store,
		runner:  runner,
		watcher: watcher,
		logger:  logger,
	}
}

// Run executes the build process for the specified targets.
func (a *App) Run(ctx context.Context, targetNames []string, opts RunOptions) error {
	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	cwd, err := os.Getwd()
	if err != nil {
		return zerr.Wrap(err, "failed to determine working directory")
	}

	lock, err := acquireBuildLock(filepath.Join(cwd, LockDir))
	if err != nil {
		return err
	}
	defer lock.release()

	graph, err := a.loader.Load(cwd)
	if err != nil {
		return zerr.Wrap(err, "failed to load build file")
	}

	requested := make([]domain.BuildRule, 0, len(targetNames))
	for _, name := range targetNames {
		target, err := domain.ParseBuildTarget(name)
		if err != nil {
			return err
		}
		rule, err := graph.FindRuleByTarget(target)
		if err != nil {
			return err
		}
		requested = append(requested, rule)
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	engine := builder.New(a.keys, a.cache, a.store, a.runner, a.logger, builder.Options{
		Root:        cwd,
		Parallelism: jobs,
		NoCache:     opts.NoCache,
	})

	results, err := engine.Build(ctx, requested)
	if err != nil {
		return zerr.Wrap(err, "build execution failed")
	}
	return a.report(results)
}

// Close flushes pending asynchronous cache stores. It is called once per
// process, after the last build of the invocation.
func (a *App) Close(ctx context.Context) error {
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := a.cache.Close(closeCtx); err != nil {
		return zerr.Wrap(err, "artifact cache did not flush cleanly")
	}
	return nil
}

// report logs one line per requested target and folds failures into the
// aggregate build error.
func (a *App) report(results []domain.BuildResult) error {
	failed := 0
	for _, res := range results {
		if res.Failed() {
			failed++
			a.logger.Error(res.Err)
			continue
		}
		a.logger.Info(fmt.Sprintf("%s  %s  %s", res.Target.FullyQualifiedName(), res.Success, res.Keys.Total))
	}
	if failed > 0 {
		return zerr.With(zerr.Wrap(domain.ErrBuildFailed, "invocation finished with failures"), "failed_targets", failed)
	}
	return nil
}

// settleWindow is how long Watch waits after the first change signal before
// rebuilding, so that an editor writing several files triggers one rebuild.
const settleWindow = 250 * time.Millisecond

// Watch builds the targets, then rebuilds them whenever the project tree
// changes, until ctx is done. Build failures are reported and watching
// continues; only a cancelled context ends the loop.
func (a *App) Watch(ctx context.Context, targetNames []string, opts RunOptions) error {
	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	cwd, err := os.Getwd()
	if err != nil {
		return zerr.Wrap(err, "failed to determine working directory")
	}
	if err := a.watcher.Start(ctx, cwd); err != nil {
		return err
	}
	defer func() { _ = a.watcher.Stop() }()

	for {
		if err := a.Run(ctx, targetNames, opts); err != nil && ctx.Err() == nil {
			a.logger.Error(err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-a.watcher.Changes():
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(settleWindow):
		}

		// Coalesce anything that arrived during the settle window.
		select {
		case <-a.watcher.Changes():
		default:
		}
	}
}

// Clean removes the project state directory and the local artifact cache.
func (a *App) Clean(_ context.Context) error {
	cwd, err := os.Getwd()
	if err != nil {
		return zerr.Wrap(err, "failed to determine working directory")
	}

	cfg, err := settings.Load(cwd, settings.Filename)
	if err != nil {
		return err
	}

	cacheDir := cfg.CacheDir
	if !filepath.IsAbs(cacheDir) {
		cacheDir = filepath.Join(cwd, cacheDir)
	}

	for _, dir := range []string{filepath.Join(cwd, LockDir), cacheDir} {
		if err := os.RemoveAll(dir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to remove directory"), "path", dir)
		}
	}
	return nil
}
