package domain

// SuccessKind describes how a rule reached its terminal SUCCESS state.
type SuccessKind string

const (
	// BuiltLocally means the rule's steps were executed in this process.
	BuiltLocally SuccessKind = "BUILT_LOCALLY"
	// FetchedFromCache means the artifact was unpacked from the cache.
	FetchedFromCache SuccessKind = "FETCHED_FROM_CACHE"
	// MatchingRuleKey means the rule's key without dependencies matched the
	// previous run and the output was still present, so nothing ran.
	MatchingRuleKey SuccessKind = "MATCHING_RULE_KEY"
)

// BuildResult is the immutable terminal status of one rule's build attempt.
type BuildResult struct {
	Target  BuildTarget
	Success SuccessKind
	Keys    RuleKeyPair
	Err     error
}

// Failed reports whether the attempt ended in failure.
func (r BuildResult) Failed() bool { return r.Err != nil }

// CacheResultKind is the outcome of an artifact cache fetch.
type CacheResultKind int

const (
	// CacheMiss means no backend had the key.
	CacheMiss CacheResultKind = iota
	// CacheHit means the artifact was fetched and unpacked.
	CacheHit
	// CacheError means every consulted backend failed; callers treat this
	// like a miss but may log it.
	CacheError
)

// CacheResult is the outcome of consulting the artifact cache.
type CacheResult struct {
	Kind     CacheResultKind
	Metadata ArtifactMetadata
	Err      error
}

// ArtifactMetadata travels with every stored artifact and lets a fetch reject
// a blob that does not belong to the requesting rule.
type ArtifactMetadata struct {
	Target  string `json:"target"`
	Success bool   `json:"success"`
}
