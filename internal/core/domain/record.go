package domain

import "time"

// RuleKeyRecord is the persisted outcome of a rule's most recent successful
// build. Both key variants are recorded together; the without-deps variant is
// never independently fetchable from the artifact cache, it only backs the
// early-cutoff comparison on the next run.
type RuleKeyRecord struct {
	Target         string    `json:"target"`
	TotalKey       string    `json:"total_key"`
	WithoutDepsKey string    `json:"without_deps_key"`
	Timestamp      time.Time `json:"timestamp,omitzero"`
}

// Keys decodes the record's hex keys back into a RuleKeyPair.
func (r RuleKeyRecord) Keys() (RuleKeyPair, error) {
	total, err := ParseRuleKey(r.TotalKey)
	if err != nil {
		return RuleKeyPair{}, err
	}
	withoutDeps, err := ParseRuleKey(r.WithoutDepsKey)
	if err != nil {
		return RuleKeyPair{}, err
	}
	return RuleKeyPair{Total: total, WithoutDeps: withoutDeps}, nil
}

// NewRuleKeyRecord builds a record from a computed key pair.
func NewRuleKeyRecord(target BuildTarget, keys RuleKeyPair) RuleKeyRecord {
	return RuleKeyRecord{
		Target:         target.FullyQualifiedName(),
		TotalKey:       keys.Total.String(),
		WithoutDepsKey: keys.WithoutDeps.String(),
		Timestamp:      time.Now(),
	}
}
