package steps

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/zerr"
)

var _ domain.Step = (*ShellStep)(nil)

// ShellStep runs a single external command.
type ShellStep struct {
	// Argv is the command and its arguments. An empty Argv is a no-op.
	Argv []string

	// Dir is the working directory relative to the execution root; empty
	// means the root itself.
	Dir string

	// Env holds step-specific overrides applied over the context environment.
	Env map[string]string
}

// Description renders the command line.
func (s *ShellStep) Description() string {
	return strings.Join(s.Argv, " ")
}

// Run executes the command. The environment merges, lowest priority first:
// the process environment, the execution context's environment, then the
// step's own overrides. PATH entries from the context are prepended to the
// system PATH rather than replacing it.
func (s *ShellStep) Run(ctx context.Context, ec domain.ExecContext) (int, error) {
	if len(s.Argv) == 0 {
		return 0, nil
	}

	name := s.Argv[0]
	args := s.Argv[1:]

	cmdEnv := mergeEnvironment(os.Environ(), ec.Env, s.Env)

	// Resolve the executable against the merged PATH so that tool
	// directories injected through the context take effect.
	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, args...) //nolint:gosec // rule provided command
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}

	cmd.Dir = ec.Root
	if s.Dir != "" {
		cmd.Dir = filepath.Join(ec.Root, s.Dir)
	}
	cmd.Env = cmdEnv
	cmd.Stdout = ec.Stdout
	cmd.Stderr = ec.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, zerr.With(zerr.Wrap(err, "command failed to start"), "command", name)
	}

	return 0, nil
}

// mergeEnvironment merges environment variable sets with the defined
// priority. PATH from the overlay maps is prepended to the base PATH.
func mergeEnvironment(base []string, overlays ...map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, entry := range base {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}

	for _, overlay := range overlays {
		for k, v := range overlay {
			if k == "PATH" {
				if existing, ok := envMap[k]; ok && existing != "" {
					envMap[k] = v + string(os.PathListSeparator) + existing
					continue
				}
			}
			envMap[k] = v
		}
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

// lookPath searches for an executable in the directories named by the PATH
// entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: an empty path element means ".".
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
