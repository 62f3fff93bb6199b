package rules

import (
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

// Factory resolves rule descriptions into BuildRule nodes. Resolution is a
// depth-first walk so that every rule is constructed after its dependencies;
// unresolved targets and dependency cycles are configuration errors caught
// here, before any build starts.
type Factory struct {
	root   string
	hashes ports.FileHashCache
}

// NewFactory creates a Factory. root is the project root relative paths
// resolve against; hashes backs the interface hash of rules that have one.
func NewFactory(root string, hashes ports.FileHashCache) *Factory {
	return &Factory{root: root, hashes: hashes}
}

// Resolve turns descriptions into a validated action graph.
func (f *Factory) Resolve(descs []Description) (*domain.Graph, error) {
	byTarget := make(map[string]Description, len(descs))
	for _, d := range descs {
		t, err := domain.ParseBuildTarget(d.Target)
		if err != nil {
			return nil, err
		}
		name := t.FullyQualifiedName()
		if _, dup := byTarget[name]; dup {
			return nil, zerr.With(zerr.Wrap(domain.ErrDuplicateTarget, "rule defined twice"), "target", name)
		}
		byTarget[name] = d
	}

	r := &resolver{
		factory:  f,
		byTarget: byTarget,
		resolved: make(map[string]domain.BuildRule, len(descs)),
		state:    make(map[string]int, len(descs)),
	}

	graph := domain.NewGraph()
	for _, d := range descs {
		rule, err := r.resolve(d.Target)
		if err != nil {
			return nil, err
		}
		if err := graph.AddRule(rule); err != nil {
			return nil, err
		}
	}

	if err := graph.Validate(); err != nil {
		return nil, err
	}
	return graph, nil
}

type resolver struct {
	factory  *Factory
	byTarget map[string]Description
	resolved map[string]domain.BuildRule
	state    map[string]int // 0 unvisited, 1 visiting, 2 done
	path     []string
}

func (r *resolver) resolve(target string) (domain.BuildRule, error) {
	t, err := domain.ParseBuildTarget(target)
	if err != nil {
		return nil, err
	}
	name := t.FullyQualifiedName()

	if rule, ok := r.resolved[name]; ok {
		return rule, nil
	}
	if r.state[name] == 1 {
		return nil, r.cycleError(name)
	}

	desc, ok := r.byTarget[name]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrNoSuchTarget, "dependency not defined"), "target", name)
	}

	r.state[name] = 1
	r.path = append(r.path, name)

	deps := make([]domain.BuildRule, 0, len(desc.Deps))
	for _, depTarget := range desc.Deps {
		dep, err := r.resolve(depTarget)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}

	r.state[name] = 2
	r.path = r.path[:len(r.path)-1]

	rule, err := r.factory.construct(t, desc, deps)
	if err != nil {
		return nil, err
	}
	r.resolved[name] = rule
	return rule, nil
}

func (r *resolver) cycleError(name string) error {
	cyclePath := ""
	started := false
	for _, node := range r.path {
		if node == name {
			started = true
		}
		if started {
			cyclePath += node + " -> "
		}
	}
	cyclePath += name
	return zerr.With(zerr.Wrap(domain.ErrCycleDetected, "rules depend on each other"), "cycle", cyclePath)
}

func (f *Factory) construct(t domain.BuildTarget, desc Description, deps []domain.BuildRule) (domain.BuildRule, error) {
	base := baseRule{target: t, declared: deps}

	switch desc.Type {
	case TypeGenrule:
		return &Genrule{
			baseRule: base,
			cmd:      desc.Args.Cmd,
			srcs:     desc.Args.Srcs,
			env:      desc.Args.Env,
			out:      desc.Args.Out,
		}, nil
	case TypeExportFile:
		return &ExportFile{
			baseRule: base,
			src:      desc.Args.Src,
			out:      desc.Args.Out,
			root:     f.root,
			hashes:   f.hashes,
		}, nil
	case TypeWriteFile:
		return &WriteFile{
			baseRule: base,
			contents: desc.Args.Contents,
			out:      desc.Args.Out,
		}, nil
	case TypeZip:
		return &Zip{
			baseRule: base,
			srcs:     desc.Args.Srcs,
			out:      desc.Args.Out,
		}, nil
	default:
		return nil, zerr.With(zerr.With(zerr.Wrap(ErrUnknownRuleType, "cannot construct rule"), "type", desc.Type), "target", t.FullyQualifiedName())
	}
}
