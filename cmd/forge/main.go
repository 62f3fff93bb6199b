// Package main is the entry point for the forge build tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/forge/cmd/forge/commands"
	"go.trai.ch/forge/internal/app"
	"go.trai.ch/forge/internal/core/domain"
	_ "go.trai.ch/forge/internal/wiring"
)

// exitBusy is returned when another invocation holds the build lock, so that
// wrapper scripts can distinguish "try again" from "broken".
const exitBusy = 2

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available if initialization failed; write directly
		// to stderr.
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}

	cli := commands.New(components.App)
	cli.SetArgs(args)

	err = cli.Execute(ctx)

	if cerr := components.App.Close(ctx); cerr != nil {
		components.Logger.Warn(cerr.Error())
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrBuildBusy):
		components.Logger.Error(err)
		return exitBusy
	case errors.Is(err, domain.ErrBuildFailed):
		// Per-target failures were already reported.
		return 1
	default:
		// zerr prints a report with stack trace and metadata when using %+v.
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
		return 1
	}
}
