package ports

import "go.trai.ch/forge/internal/core/domain"

// RuleKeyStore persists the rule key pair recorded for each target's last
// successful build, enabling incremental runs and the early-cutoff check.
// The store is process-shared state: it must not be corrupted by a write
// interrupted mid-build.
//
//go:generate go run go.uber.org/mock/mockgen -source=key_store.go -destination=mocks/mock_key_store.go -package=mocks
type RuleKeyStore interface {
	// Get retrieves the record for a target. Returns nil, nil when absent.
	Get(target string) (*domain.RuleKeyRecord, error)

	// Put stores the record for a target.
	Put(record domain.RuleKeyRecord) error
}
