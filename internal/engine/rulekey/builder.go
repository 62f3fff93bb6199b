// Package rulekey computes the deterministic fingerprints that decide cache
// hits. A rule's key pair is a pure function of its declared fields, its
// input file contents, and its dependencies' already-computed keys; ambient
// state never leaks in except through the explicit seed.
package rulekey

import (
	"crypto/sha1" //nolint:gosec // Fingerprint, not a security boundary.
	"fmt"
	"hash"
	"path/filepath"
	"slices"
	"sort"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

// Record framing bytes. Every appended field is written as
// name NUL kind NUL value... RS, so that neighbouring fields can never
// reassemble into each other's serialization.
const (
	sepByte    = 0x00
	recordByte = 0x1e
)

// Field kind tags. Presence of a tag makes a nil value distinguishable from
// an empty one.
const (
	kindString  = 'S'
	kindList    = 'L'
	kindMap     = 'M'
	kindBool    = 'B'
	kindNull    = 'N'
	kindPath    = 'P'
	kindRuleKey = 'K'
)

// Factory builds rule key pairs. It is shared by all engine workers; the
// only state it carries is the seed, the workspace root, and the file hash
// cache, all safe for concurrent use.
type Factory struct {
	seed   string
	root   string
	hashes ports.FileHashCache
}

// NewFactory creates a Factory. The seed is a stable tool version identifier
// mixed into every key so that upgrading the tool invalidates all artifacts.
// Input paths are resolved against root before hashing; only the relative
// path reaches the digest, keeping keys portable across checkouts.
func NewFactory(seed, root string, hashes ports.FileHashCache) *Factory {
	return &Factory{seed: seed, root: root, hashes: hashes}
}

// Build computes the key pair for rule. depKeys maps each dependency's fully
// qualified name to its already-computed pair; computation order is therefore
// coupled to the graph's topological order. Dependency contributions are
// appended in sorted target order, so the declared dependency order never
// changes the key.
func (f *Factory) Build(rule domain.BuildRule, depKeys map[string]domain.RuleKeyPair) (domain.RuleKeyPair, error) {
	b := newBuilder(f.root, f.hashes)
	b.String(".seed", f.seed)
	b.String(".type", rule.Type())
	b.String(".target", rule.Target().FullyQualifiedName())

	rule.AppendToRuleKey(b)

	inputs := slices.Clone(rule.Inputs())
	sort.Strings(inputs)
	for _, input := range inputs {
		b.Path(".input("+input+")", input)
	}

	deps := domain.Deps(rule)
	slices.SortFunc(deps, func(a, b domain.BuildRule) int {
		an, bn := a.Target().FullyQualifiedName(), b.Target().FullyQualifiedName()
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	})
	for _, dep := range deps {
		name := dep.Target().FullyQualifiedName()
		pair, ok := depKeys[name]
		if !ok {
			return domain.RuleKeyPair{}, zerr.With(
				zerr.With(zerr.New("dependency key not yet computed"), "dependency", name),
				"target", rule.Target().FullyQualifiedName(),
			)
		}

		// The total variant absorbs the dependency's full key. In the
		// without-deps variant a dependency with an interface hash is
		// represented by that hash alone, so rebuilds behind a stable
		// interface do not invalidate the dependent. A dependency without
		// one contributes its full key there too; eliding it would make its
		// changes invisible to the early cutoff.
		abiKey, hasAbi := "", false
		if abi, ok := dep.(domain.AbiRule); ok {
			abiKey, hasAbi = abi.AbiKey()
		}
		b.depKey(name, pair.Total, !hasAbi)
		if hasAbi {
			b.depAbi(name, abiKey)
		}
	}

	return b.finalize()
}

var _ domain.RuleKeyAppender = (*builder)(nil)

// builder accumulates one rule's fields into the two digest variants. It is
// single-use and not safe for concurrent appends.
type builder struct {
	total    hash.Hash
	noDeps   hash.Hash
	root     string
	hashes   ports.FileHashCache
	fields   map[string]struct{}
	firstErr error
}

func newBuilder(root string, hashes ports.FileHashCache) *builder {
	return &builder{
		total:  sha1.New(), //nolint:gosec // Fingerprint, not a security boundary.
		noDeps: sha1.New(), //nolint:gosec // Fingerprint, not a security boundary.
		root:   root,
		hashes: hashes,
		fields: make(map[string]struct{}),
	}
}

// open starts a field record on both variants and enforces that each field
// name is appended exactly once per rule.
func (b *builder) open(field string, kind byte, both bool) bool {
	if b.firstErr != nil {
		return false
	}
	if _, dup := b.fields[field]; dup {
		b.firstErr = zerr.With(zerr.Wrap(domain.ErrDuplicateRuleKeyField, "field appended twice"), "field", field)
		return false
	}
	b.fields[field] = struct{}{}
	b.writeRaw(both, []byte(field), []byte{sepByte, kind, sepByte})
	return true
}

func (b *builder) writeRaw(both bool, chunks ...[]byte) {
	for _, c := range chunks {
		_, _ = b.total.Write(c)
		if both {
			_, _ = b.noDeps.Write(c)
		}
	}
}

func (b *builder) closeRecord(both bool) {
	b.writeRaw(both, []byte{recordByte})
}

func (b *builder) value(both bool, v string) {
	b.writeRaw(both, []byte(v), []byte{sepByte})
}

// String appends a scalar string field.
func (b *builder) String(field, value string) domain.RuleKeyAppender {
	if b.open(field, kindString, true) {
		b.value(true, value)
		b.closeRecord(true)
	}
	return b
}

// Strings appends an ordered list field, preserving element order.
func (b *builder) Strings(field string, values []string) domain.RuleKeyAppender {
	if b.open(field, kindList, true) {
		for _, v := range values {
			b.value(true, v)
		}
		b.closeRecord(true)
	}
	return b
}

// SortedStrings appends a set-valued field in sorted element order.
func (b *builder) SortedStrings(field string, values []string) domain.RuleKeyAppender {
	if b.open(field, kindList, true) {
		sorted := make([]string, len(values))
		copy(sorted, values)
		sort.Strings(sorted)
		for _, v := range sorted {
			b.value(true, v)
		}
		b.closeRecord(true)
	}
	return b
}

// StringMap appends a map field with entries in sorted key order, so that
// map iteration order never reaches the digest.
func (b *builder) StringMap(field string, m map[string]string) domain.RuleKeyAppender {
	if b.open(field, kindMap, true) {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.value(true, k)
			b.value(true, m[k])
		}
		b.closeRecord(true)
	}
	return b
}

// Bool appends a boolean field.
func (b *builder) Bool(field string, value bool) domain.RuleKeyAppender {
	if b.open(field, kindBool, true) {
		if value {
			b.value(true, "1")
		} else {
			b.value(true, "0")
		}
		b.closeRecord(true)
	}
	return b
}

// Nullable appends an optional field. A nil value is recorded under its own
// kind tag, never skipped, so presence and absence hash differently.
func (b *builder) Nullable(field string, value *string) domain.RuleKeyAppender {
	if b.firstErr != nil {
		return b
	}
	if value == nil {
		if b.open(field, kindNull, true) {
			b.closeRecord(true)
		}
		return b
	}
	if b.open(field, kindString, true) {
		b.value(true, *value)
		b.closeRecord(true)
	}
	return b
}

// Path appends an input file as a (path, content hash) pair. The path is
// root-relative; hashing resolves it against the workspace root through the
// file hash cache, while the digest records the relative form.
func (b *builder) Path(field, path string) domain.RuleKeyAppender {
	if !b.open(field, kindPath, true) {
		return b
	}
	h, err := b.hashes.Get(filepath.Join(b.root, path))
	if err != nil {
		b.firstErr = zerr.With(zerr.Wrap(err, "failed to hash rule input"), "path", path)
		return b
	}
	b.value(true, path)
	b.value(true, fmt.Sprintf("%016x", h))
	b.closeRecord(true)
	return b
}

// depKey records a dependency's total key. both selects whether the key also
// reaches the without-deps variant.
func (b *builder) depKey(name string, key domain.RuleKey, both bool) {
	if b.open("dep("+name+")", kindRuleKey, both) {
		b.value(both, key.String())
		b.closeRecord(both)
	}
}

// depAbi records a dependency's interface hash into the without-deps variant,
// where it is the dependency's entire contribution.
func (b *builder) depAbi(name string, abiKey string) {
	field := "dep-abi(" + name + ")"
	if b.firstErr != nil {
		return
	}
	if _, dup := b.fields[field]; dup {
		b.firstErr = zerr.With(zerr.Wrap(domain.ErrDuplicateRuleKeyField, "field appended twice"), "field", field)
		return
	}
	b.fields[field] = struct{}{}
	_, _ = b.noDeps.Write([]byte(field))
	_, _ = b.noDeps.Write([]byte{sepByte, kindRuleKey, sepByte})
	_, _ = b.noDeps.Write([]byte(abiKey))
	_, _ = b.noDeps.Write([]byte{sepByte, recordByte})
}

func (b *builder) finalize() (domain.RuleKeyPair, error) {
	if b.firstErr != nil {
		return domain.RuleKeyPair{}, b.firstErr
	}
	var pair domain.RuleKeyPair
	copy(pair.Total[:], b.total.Sum(nil))
	copy(pair.WithoutDeps[:], b.noDeps.Sum(nil))
	return pair, nil
}
