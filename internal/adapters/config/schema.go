package config

import "go.trai.ch/forge/internal/adapters/settings" //nolint:depguard // Shares the build file schema

// DefaultFilename is the build file looked up in the project root.
const DefaultFilename = settings.Filename

// Forgefile represents the structure of the forge.yaml build file.
type Forgefile struct {
	Version  string             `yaml:"version"`
	Settings settings.DTO       `yaml:"settings"`
	Rules    map[string]RuleDTO `yaml:"rules"`
}

// RuleDTO represents one rule definition, keyed by its fully qualified
// target in the rules map.
type RuleDTO struct {
	Type string   `yaml:"type"`
	Deps []string `yaml:"deps"`

	Cmd      []string          `yaml:"cmd"`
	Srcs     []string          `yaml:"srcs"`
	Env      map[string]string `yaml:"environment"`
	Src      string            `yaml:"src"`
	Contents string            `yaml:"contents"`
	Out      string            `yaml:"out"`
}
