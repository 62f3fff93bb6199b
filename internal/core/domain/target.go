package domain

import (
	"regexp"
	"strings"

	"go.trai.ch/zerr"
)

// TargetPrefix marks the start of every base namespace path.
const TargetPrefix = "//"

var validFlavorPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// BuildTarget is the immutable identity of a build rule. It is composed of an
// optional external repository qualifier, a base namespace path starting with
// "//", a short name, and an optional flavor suffix. Two targets are equal iff
// their fully qualified names are equal.
type BuildTarget struct {
	repository string
	baseName   string
	shortName  string
	flavor     string

	fullyQualified InternedString
}

// NewBuildTarget constructs a target from its parts, validating the same
// invariants ParseBuildTarget enforces on the string form.
func NewBuildTarget(repository, baseName, shortName, flavor string) (BuildTarget, error) {
	if !strings.HasPrefix(baseName, TargetPrefix) {
		return BuildTarget{}, zerr.With(zerr.Wrap(ErrInvalidTarget, "base name must start with //"), "base_name", baseName)
	}
	if shortName == "" {
		return BuildTarget{}, zerr.With(zerr.Wrap(ErrInvalidTarget, "bad short name"), "short_name", shortName)
	}
	// A flavor smuggled in through the short name is split off here so that
	// the parsed short name never contains the flavor separator.
	if idx := strings.LastIndex(shortName, "#"); idx != -1 && flavor == "" {
		flavor = shortName[idx+1:]
		shortName = shortName[:idx]
	}
	if strings.Contains(shortName, "#") {
		return BuildTarget{}, zerr.With(zerr.Wrap(ErrInvalidTarget, "bad short name"), "short_name", shortName)
	}
	if flavor != "" && !validFlavorPattern.MatchString(flavor) {
		return BuildTarget{}, zerr.With(zerr.Wrap(ErrInvalidFlavor, "flavor has invalid characters"), "flavor", flavor)
	}

	t := BuildTarget{
		repository: repository,
		baseName:   strings.ReplaceAll(baseName, `\`, "/"),
		shortName:  shortName,
		flavor:     flavor,
	}
	t.fullyQualified = NewInternedString(t.buildFullyQualifiedName())
	return t, nil
}

// ParseBuildTarget parses a fully qualified target string of the form
// "[repo@]//base/path:name[#flavor]".
func ParseBuildTarget(s string) (BuildTarget, error) {
	repository := ""
	rest := s
	if at := strings.Index(rest, "@"); at != -1 {
		repository = rest[:at]
		rest = rest[at+1:]
		if repository == "" {
			return BuildTarget{}, zerr.With(zerr.Wrap(ErrInvalidTarget, "empty repository name"), "target", s)
		}
	}

	if !strings.HasPrefix(rest, TargetPrefix) {
		return BuildTarget{}, zerr.With(zerr.Wrap(ErrInvalidTarget, "missing // prefix"), "target", s)
	}

	colon := strings.LastIndex(rest, ":")
	if colon == -1 || colon == len(rest)-1 {
		return BuildTarget{}, zerr.With(zerr.Wrap(ErrInvalidTarget, "missing short name"), "target", s)
	}

	baseName := rest[:colon]
	shortName := rest[colon+1:]
	flavor := ""
	if idx := strings.LastIndex(shortName, "#"); idx != -1 {
		flavor = shortName[idx+1:]
		shortName = shortName[:idx]
		if flavor == "" {
			return BuildTarget{}, zerr.With(zerr.Wrap(ErrInvalidFlavor, "empty flavor"), "target", s)
		}
	}

	return NewBuildTarget(repository, baseName, shortName, flavor)
}

func (t BuildTarget) buildFullyQualifiedName() string {
	var b strings.Builder
	if t.repository != "" {
		b.WriteString(t.repository)
		b.WriteString("@")
	}
	b.WriteString(t.baseName)
	b.WriteString(":")
	b.WriteString(t.shortName)
	b.WriteString(t.FlavorPostfix())
	return b.String()
}

// Repository returns the external repository qualifier, or "" for the local repo.
func (t BuildTarget) Repository() string { return t.repository }

// BaseName returns the namespace path including the "//" prefix,
// e.g. "//third_party/guava".
func (t BuildTarget) BaseName() string { return t.baseName }

// BasePath returns the namespace path without the "//" prefix so that it can
// be joined onto a filesystem path.
func (t BuildTarget) BasePath() string {
	return strings.TrimPrefix(t.baseName, TargetPrefix)
}

// ShortName returns the short name without any flavor postfix.
func (t BuildTarget) ShortName() string { return t.shortName }

// Flavor returns the flavor, or "" when the target is unflavored.
func (t BuildTarget) Flavor() string { return t.flavor }

// IsFlavored reports whether the target carries a flavor.
func (t BuildTarget) IsFlavored() bool { return t.flavor != "" }

// FlavorPostfix returns "#<flavor>" or "" when unflavored.
func (t BuildTarget) FlavorPostfix() string {
	if t.flavor == "" {
		return ""
	}
	return "#" + t.flavor
}

// FullyQualifiedName returns e.g. "//third_party/guava:guava-latest#shaded".
func (t BuildTarget) FullyQualifiedName() string {
	return t.fullyQualified.String()
}

// Name returns the interned fully qualified name, used as a map key by the
// graph and the build engine.
func (t BuildTarget) Name() InternedString { return t.fullyQualified }

// Unflavored returns the same target without its flavor. Returns the receiver
// unchanged when it is already unflavored.
func (t BuildTarget) Unflavored() BuildTarget {
	if !t.IsFlavored() {
		return t
	}
	out, _ := NewBuildTarget(t.repository, t.baseName, t.shortName, "")
	return out
}

// WithFlavor returns a flavored variant of the target. Flavoring an already
// flavored target composes the flavors with "-".
func (t BuildTarget) WithFlavor(flavor string) (BuildTarget, error) {
	composed := flavor
	if t.flavor != "" {
		composed = t.flavor + "-" + flavor
	}
	return NewBuildTarget(t.repository, t.baseName, t.shortName, composed)
}

func (t BuildTarget) String() string { return t.FullyQualifiedName() }
