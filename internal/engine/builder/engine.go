// Package builder implements the caching build engine. The engine walks the
// action graph dependency-first, computes rule keys bottom-up, and builds
// each rule at most once per invocation, consulting the artifact cache and
// the persisted key records before falling back to local execution.
package builder

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/forge/internal/engine/rulekey"
	"go.trai.ch/zerr"
)

// Options configures one Engine instance.
type Options struct {
	// Root is the project root all rule paths resolve against.
	Root string
	// Parallelism caps concurrently executing rules. Values below one are
	// treated as one.
	Parallelism int
	// NoCache disables the artifact cache for both fetches and stores. Key
	// records are still written so the next cached run starts warm.
	NoCache bool
}

// Engine coordinates one build invocation. It is single-use: the handle map
// is what makes each rule build at most once, so a new invocation needs a
// new Engine.
type Engine struct {
	keys    *rulekey.Factory
	cache   ports.ArtifactCache
	store   ports.RuleKeyStore
	runner  ports.StepRunner
	logger  ports.Logger
	opts    Options
	slots   *semaphore.Weighted
	mu      sync.Mutex
	handles map[domain.InternedString]*handle
}

// New creates an Engine for a single invocation.
func New(
	keys *rulekey.Factory,
	cache ports.ArtifactCache,
	store ports.RuleKeyStore,
	runner ports.StepRunner,
	logger ports.Logger,
	opts Options,
) *Engine {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return &Engine{
		keys:    keys,
		cache:   cache,
		store:   store,
		runner:  runner,
		logger:  logger,
		opts:    opts,
		slots:   semaphore.NewWeighted(int64(opts.Parallelism)),
		handles: make(map[domain.InternedString]*handle),
	}
}

// handle is the future for one rule's build. Waiters block on done; result
// is immutable once done is closed.
type handle struct {
	done   chan struct{}
	result domain.BuildResult
}

func (h *handle) wait(ctx context.Context) (domain.BuildResult, error) {
	select {
	case <-h.done:
		return h.result, nil
	case <-ctx.Done():
		return domain.BuildResult{}, ctx.Err()
	}
}

// Build builds the given rules and their transitive dependencies, returning
// one result per requested rule in request order. A rule shared by several
// requested targets builds once. Build returns an error only when the
// invocation as a whole could not run; per-rule failures are reported in the
// results.
func (e *Engine) Build(ctx context.Context, targets []domain.BuildRule) ([]domain.BuildResult, error) {
	handles := make([]*handle, len(targets))
	for i, rule := range targets {
		handles[i] = e.require(ctx, rule)
	}

	results := make([]domain.BuildResult, len(targets))
	for i, h := range handles {
		res, err := h.wait(ctx)
		if err != nil {
			return nil, err
		}
		results[i] = res
	}
	return results, nil
}

// require returns the rule's handle, creating it and starting the build on
// first request. The map insertion under the mutex is the at-most-once
// guarantee; everything after runs outside the lock.
func (e *Engine) require(ctx context.Context, rule domain.BuildRule) *handle {
	name := rule.Target().Name()

	e.mu.Lock()
	if h, ok := e.handles[name]; ok {
		e.mu.Unlock()
		return h
	}
	h := &handle{done: make(chan struct{})}
	e.handles[name] = h
	e.mu.Unlock()

	go func() {
		h.result = e.buildRule(ctx, rule)
		close(h.done)
	}()
	return h
}

// buildRule runs one rule to its terminal result. Waiting on dependencies
// does not hold an execution slot; the slot is acquired only around key
// computation and the cache-or-execute phase.
func (e *Engine) buildRule(ctx context.Context, rule domain.BuildRule) domain.BuildResult {
	target := rule.Target()
	fail := func(err error) domain.BuildResult {
		return domain.BuildResult{Target: target, Err: zerr.With(err, "target", target.FullyQualifiedName())}
	}

	deps := domain.Deps(rule)
	depHandles := make([]*handle, len(deps))
	for i, dep := range deps {
		depHandles[i] = e.require(ctx, dep)
	}

	depKeys := make(map[string]domain.RuleKeyPair, len(deps))
	for i, dep := range deps {
		res, err := depHandles[i].wait(ctx)
		if err != nil {
			return fail(err)
		}
		if res.Failed() {
			return fail(zerr.With(zerr.Wrap(domain.ErrDependencyFailed, "rule skipped"), "dependency", dep.Target().FullyQualifiedName()))
		}
		depKeys[dep.Target().FullyQualifiedName()] = res.Keys
	}

	if err := e.slots.Acquire(ctx, 1); err != nil {
		return fail(err)
	}
	defer e.slots.Release(1)

	pair, err := e.keys.Build(rule, depKeys)
	if err != nil {
		return fail(zerr.Wrap(err, "failed to compute rule key"))
	}

	if res, done := e.tryEarlyCutoff(rule, pair); done {
		return res
	}

	if !e.opts.NoCache && rule.OutputPath() != "" {
		if res, done := e.tryCacheFetch(ctx, rule, pair); done {
			return res
		}
	}

	return e.execute(ctx, rule, pair)
}

// tryEarlyCutoff checks the persisted record from the previous run. A
// matching total key with the output still on disk means the rule is fully
// up to date. A matching without-deps key means only dependency internals
// changed behind a stable interface; the output is reused and the record is
// refreshed with the new total key.
func (e *Engine) tryEarlyCutoff(rule domain.BuildRule, pair domain.RuleKeyPair) (domain.BuildResult, bool) {
	record, err := e.store.Get(rule.Target().FullyQualifiedName())
	if err != nil || record == nil {
		return domain.BuildResult{}, false
	}
	previous, err := record.Keys()
	if err != nil {
		return domain.BuildResult{}, false
	}
	if !e.outputPresent(rule) {
		return domain.BuildResult{}, false
	}

	switch {
	case previous.Total == pair.Total:
	case previous.WithoutDeps == pair.WithoutDeps:
		e.putRecord(rule, pair)
	default:
		return domain.BuildResult{}, false
	}

	return domain.BuildResult{
		Target:  rule.Target(),
		Success: domain.MatchingRuleKey,
		Keys:    pair,
	}, true
}

// tryCacheFetch consults the artifact cache under the total key. A hit whose
// metadata names a different target is discarded; cache errors degrade to a
// miss.
func (e *Engine) tryCacheFetch(ctx context.Context, rule domain.BuildRule, pair domain.RuleKeyPair) (domain.BuildResult, bool) {
	res := e.cache.Fetch(ctx, pair.Total, rule.OutputPath())
	switch res.Kind {
	case domain.CacheHit:
	case domain.CacheError:
		e.logger.Warn("artifact cache fetch failed, building locally")
		return domain.BuildResult{}, false
	default:
		return domain.BuildResult{}, false
	}

	if res.Metadata.Target != rule.Target().FullyQualifiedName() || !res.Metadata.Success {
		e.logger.Warn("discarding cached artifact with mismatched metadata")
		return domain.BuildResult{}, false
	}

	e.putRecord(rule, pair)
	return domain.BuildResult{
		Target:  rule.Target(),
		Success: domain.FetchedFromCache,
		Keys:    pair,
	}, true
}

// execute runs the rule's steps locally and, on success, stores the artifact
// and records the key pair.
func (e *Engine) execute(ctx context.Context, rule domain.BuildRule, pair domain.RuleKeyPair) domain.BuildResult {
	target := rule.Target()
	ec := domain.ExecContext{Root: e.opts.Root}

	if err := e.runner.Run(ctx, rule.BuildSteps(ec), ec); err != nil {
		return domain.BuildResult{
			Target: target,
			Err:    zerr.With(err, "target", target.FullyQualifiedName()),
		}
	}

	if !e.opts.NoCache && rule.OutputPath() != "" {
		meta := domain.ArtifactMetadata{Target: target.FullyQualifiedName(), Success: true}
		if err := e.cache.Store(ctx, pair.Total, meta, rule.OutputPath()); err != nil {
			e.logger.Warn("artifact cache store failed")
		}
	}

	e.putRecord(rule, pair)
	return domain.BuildResult{
		Target:  target,
		Success: domain.BuiltLocally,
		Keys:    pair,
	}
}

func (e *Engine) putRecord(rule domain.BuildRule, pair domain.RuleKeyPair) {
	if err := e.store.Put(domain.NewRuleKeyRecord(rule.Target(), pair)); err != nil {
		e.logger.Warn("failed to persist rule key record")
	}
}

// outputPresent reports whether the rule's declared output exists on disk.
// Rules without an output path are trivially present.
func (e *Engine) outputPresent(rule domain.BuildRule) bool {
	out := rule.OutputPath()
	if out == "" {
		return true
	}
	_, err := os.Stat(filepath.Join(e.opts.Root, out))
	return err == nil
}
