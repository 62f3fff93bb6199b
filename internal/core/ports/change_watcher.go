package ports

import "context"

// ChangeWatcher observes the project tree and reports that something under
// it changed. Consumers use the signal to trigger incremental rebuilds; the
// watcher itself also keeps the file hash cache honest by invalidating
// touched paths.
//
//go:generate go run go.uber.org/mock/mockgen -source=change_watcher.go -destination=mocks/mock_change_watcher.go -package=mocks
type ChangeWatcher interface {
	// Start watches root recursively until ctx is done.
	Start(ctx context.Context, root string) error

	// Changes returns a coalesced change signal. Multiple filesystem events
	// may collapse into a single signal; receivers rescan rather than rely
	// on per-file granularity.
	Changes() <-chan struct{}

	// Stop releases the watcher's resources.
	Stop() error
}
