package domain

import (
	"encoding/hex"

	"go.trai.ch/zerr"
)

// RuleKeySize is the width of a rule key digest in bytes (a 160-bit hash).
const RuleKeySize = 20

// RuleKey is the deterministic fingerprint of a build rule's configuration
// and transitive inputs. Its hex form is used as the artifact cache key.
type RuleKey [RuleKeySize]byte

// ErrInvalidRuleKey is returned when a hex string is not a valid rule key.
var ErrInvalidRuleKey = zerr.New("invalid rule key")

// ParseRuleKey decodes a hex-encoded rule key.
func ParseRuleKey(s string) (RuleKey, error) {
	var k RuleKey
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != RuleKeySize {
		return k, zerr.With(zerr.Wrap(ErrInvalidRuleKey, "bad hex encoding"), "value", s)
	}
	copy(k[:], b)
	return k, nil
}

// String returns the fixed-length hex encoding of the key.
func (k RuleKey) String() string {
	return hex.EncodeToString(k[:])
}

// IsZero reports whether the key is the zero value, i.e. never computed.
func (k RuleKey) IsZero() bool {
	return k == RuleKey{}
}

// RuleKeyPair bundles the two variants of a rule's key. Total includes the
// dependency contributions; WithoutDeps replaces each dependency's total key
// with its interface hash (or nothing) and backs the early-cutoff check for
// rules whose dependencies changed internally but kept their interface.
// The two variants are always computed together and persisted together.
type RuleKeyPair struct {
	Total       RuleKey
	WithoutDeps RuleKey
}
