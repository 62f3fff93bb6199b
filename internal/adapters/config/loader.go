// Package config provides the build file loader for forge.
package config

import (
	"os"
	"path/filepath"
	"sort"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/forge/internal/rules"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.GraphLoader = (*Loader)(nil)

// Loader implements ports.GraphLoader using a YAML build file in the project
// root.
type Loader struct {
	Filename string
	hashes   ports.FileHashCache
}

// NewLoader creates a Loader reading DefaultFilename.
func NewLoader(hashes ports.FileHashCache) *Loader {
	return &Loader{Filename: DefaultFilename, hashes: hashes}
}

// Load reads the build file from cwd and resolves it into a validated action
// graph.
func (l *Loader) Load(cwd string) (*domain.Graph, error) {
	file, err := Parse(filepath.Join(cwd, l.Filename))
	if err != nil {
		return nil, err
	}

	descs := toDescriptions(file)
	factory := rules.NewFactory(cwd, l.hashes)
	graph, err := factory.Resolve(descs)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve build file")
	}
	return graph, nil
}

// Parse reads and decodes a build file without resolving it.
func Parse(path string) (*Forgefile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read build file")
	}

	var file Forgefile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "failed to parse build file")
	}
	return &file, nil
}

// toDescriptions flattens the rules map into a deterministically ordered
// description list. The map key is the rule's target; sorting keeps
// resolution order, and with it error reporting, stable across runs.
func toDescriptions(file *Forgefile) []rules.Description {
	targets := make([]string, 0, len(file.Rules))
	for target := range file.Rules {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	descs := make([]rules.Description, 0, len(targets))
	for _, target := range targets {
		dto := file.Rules[target]
		descs = append(descs, rules.Description{
			Target: target,
			Type:   dto.Type,
			Deps:   dto.Deps,
			Args: rules.Args{
				Cmd:      dto.Cmd,
				Srcs:     dto.Srcs,
				Env:      dto.Env,
				Src:      dto.Src,
				Contents: dto.Contents,
				Out:      dto.Out,
			},
		})
	}
	return descs
}
