// Package domain contains the core domain models for the action graph: build
// targets, build rules, rule keys, and build results.
package domain

import (
	"iter"
	"slices"

	"go.trai.ch/zerr"
)

// Graph is the resolved DAG of build rules. It is constructed once from the
// parsed rule descriptions and is read-only afterwards, so any number of
// engine workers may query it concurrently without locking.
type Graph struct {
	rules map[InternedString]BuildRule

	// executionOrder is a topological order (dependencies first), populated
	// by Validate.
	executionOrder []InternedString
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		rules: make(map[InternedString]BuildRule),
	}
}

// AddRule adds a rule to the graph. It returns an error if a rule with the
// same fully qualified target already exists.
func (g *Graph) AddRule(r BuildRule) error {
	name := r.Target().Name()
	if _, exists := g.rules[name]; exists {
		return zerr.With(zerr.Wrap(ErrDuplicateTarget, "rule already registered"), "target", name.String())
	}
	g.rules[name] = r
	return nil
}

// FindRuleByTarget looks up a rule by target identity.
func (g *Graph) FindRuleByTarget(t BuildTarget) (BuildRule, error) {
	r, ok := g.rules[t.Name()]
	if !ok {
		return nil, zerr.With(zerr.Wrap(ErrNoSuchTarget, "target not in graph"), "target", t.FullyQualifiedName())
	}
	return r, nil
}

// RuleCount returns the number of rules in the graph.
func (g *Graph) RuleCount() int { return len(g.rules) }

// Validate checks that the graph is acyclic and that every dependency edge
// points at a registered rule, then records a deterministic topological
// order. It must be called once before Walk, Roots, or TransitiveDeps.
func (g *Graph) Validate() error {
	g.executionOrder = make([]InternedString, 0, len(g.rules))
	visited := make(map[InternedString]int, len(g.rules)) // 0 unvisited, 1 visiting, 2 done
	var path []InternedString

	var visit func(r BuildRule) error
	visit = func(r BuildRule) error {
		name := r.Target().Name()
		visited[name] = 1
		path = append(path, name)

		if _, ok := g.rules[name]; !ok {
			return zerr.With(zerr.Wrap(ErrNoSuchTarget, "dependency not in graph"), "target", name.String())
		}

		for _, dep := range Deps(r) {
			depName := dep.Target().Name()
			if visited[depName] == 1 {
				return g.buildCycleError(path, depName)
			}
			if visited[depName] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[name] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, name)
		return nil
	}

	// Sorted roots keep the recorded order stable across runs even though
	// any topological order would be correct.
	for _, name := range g.sortedNames() {
		if visited[name] == 0 {
			if err := visit(g.rules[name]); err != nil {
				return err
			}
		}
	}

	return nil
}

func (g *Graph) sortedNames() []InternedString {
	names := make([]InternedString, 0, len(g.rules))
	for name := range g.rules {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b InternedString) int {
		switch {
		case a.String() < b.String():
			return -1
		case a.String() > b.String():
			return 1
		}
		return 0
	})
	return names
}

func (g *Graph) buildCycleError(path []InternedString, dep InternedString) error {
	cyclePath := ""
	startIdx := -1
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	for i := startIdx; i < len(path); i++ {
		cyclePath += path[i].String() + " -> "
	}
	cyclePath += dep.String()
	return zerr.With(zerr.Wrap(ErrCycleDetected, "graph is not acyclic"), "cycle", cyclePath)
}

// Walk yields every rule in dependency-first topological order. It assumes
// Validate has been called and returned nil.
func (g *Graph) Walk() iter.Seq[BuildRule] {
	return func(yield func(BuildRule) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.rules[name]) {
				return
			}
		}
	}
}

// Roots returns the rules no other rule depends on.
func (g *Graph) Roots() []BuildRule {
	depended := make(map[InternedString]struct{}, len(g.rules))
	for _, r := range g.rules {
		for _, dep := range Deps(r) {
			depended[dep.Target().Name()] = struct{}{}
		}
	}
	var roots []BuildRule
	for _, name := range g.executionOrder {
		if _, ok := depended[name]; !ok {
			roots = append(roots, g.rules[name])
		}
	}
	return roots
}

// TransitiveDeps returns the transitive dependency closure of the given rules
// in dependency-first order, including the rules themselves.
func (g *Graph) TransitiveDeps(rules ...BuildRule) []BuildRule {
	wanted := make(map[InternedString]struct{})
	var mark func(r BuildRule)
	mark = func(r BuildRule) {
		name := r.Target().Name()
		if _, ok := wanted[name]; ok {
			return
		}
		wanted[name] = struct{}{}
		for _, dep := range Deps(r) {
			mark(dep)
		}
	}
	for _, r := range rules {
		mark(r)
	}

	out := make([]BuildRule, 0, len(wanted))
	for _, name := range g.executionOrder {
		if _, ok := wanted[name]; ok {
			out = append(out, g.rules[name])
		}
	}
	return out
}
