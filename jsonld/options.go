package jsonld

// Processing modes understood by the processor.
const (
	// ModeJSONLD10 restricts processing to JSON-LD 1.0 semantics. 1.1-only
	// keywords (@included, @direction, @nest, @prefix, @propagate,
	// @protected, @import, @json, scoped contexts) fail rather than being
	// silently ignored.
	ModeJSONLD10 = "json-ld-1.0"
	// ModeJSONLD11 enables JSON-LD 1.1 semantics. This is the default.
	ModeJSONLD11 = "json-ld-1.1"
)

// DefaultMaxRemoteContexts bounds remote context dereferences per call.
const DefaultMaxRemoteContexts = 10

// Options configures JSON-LD processing.
type Options struct {
	// Base is the document base IRI used to resolve relative IRIs.
	Base string

	// ExpandContext is a context applied before the document's own, as if
	// the two were merged.
	ExpandContext interface{}

	// ProcessingMode selects JSON-LD version semantics, ModeJSONLD10 or
	// ModeJSONLD11. Empty means ModeJSONLD11.
	ProcessingMode string

	// CompactArrays collapses single-element arrays to their value during
	// compaction, unless the selected term's container mandates an array.
	CompactArrays bool

	// CompactToRelative relativizes IRIs against the base during compaction.
	CompactToRelative bool

	// Ordered requests byte-for-byte deterministic output. Object keys are
	// represented as Go maps, which carry no insertion order, so keys are
	// always processed and emitted in sorted order; the flag is accepted
	// for API compatibility and is effectively always on.
	Ordered bool

	// Strict promotes every warning (dropped non-string language-tagged
	// values, dropped free-floating nodes, keyword-like terms) to a hard
	// error instead of dropping the offending fragment.
	Strict bool

	// KeepFreeFloatingNodes retains top-level nodes that carry no @id and
	// no properties instead of dropping them during expansion.
	KeepFreeFloatingNodes bool

	// DocumentLoader retrieves remote documents and contexts. When nil,
	// any remote context reference fails with LoadingDocumentFailed.
	DocumentLoader DocumentLoader

	// MaxRemoteContexts bounds the number of remote contexts dereferenced
	// within one call. Zero means DefaultMaxRemoteContexts; negative means
	// unlimited.
	MaxRemoteContexts int

	// MaxContextDepth bounds recursion while processing nested and scoped
	// contexts. Zero means DefaultMaxContextDepth.
	MaxContextDepth int

	// WarnHandler receives warnings as they occur. Optional; warnings are
	// delivered even when Strict is set (before the promoted error is
	// returned).
	WarnHandler func(Warning)
}

// DefaultMaxContextDepth bounds context recursion per call.
const DefaultMaxContextDepth = 100

// NewOptions returns Options with the documented defaults.
func NewOptions(base string) Options {
	return Options{
		Base:              base,
		ProcessingMode:    ModeJSONLD11,
		CompactArrays:     true,
		CompactToRelative: true,
		MaxRemoteContexts: DefaultMaxRemoteContexts,
		MaxContextDepth:   DefaultMaxContextDepth,
	}
}

func (o Options) mode() string {
	if o.ProcessingMode == "" {
		return ModeJSONLD11
	}
	return o.ProcessingMode
}

func (o Options) is11() bool { return o.mode() != ModeJSONLD10 }

func (o Options) maxRemoteContexts() int {
	switch {
	case o.MaxRemoteContexts == 0:
		return DefaultMaxRemoteContexts
	case o.MaxRemoteContexts < 0:
		return int(^uint(0) >> 1)
	default:
		return o.MaxRemoteContexts
	}
}

func (o Options) maxContextDepth() int {
	if o.MaxContextDepth <= 0 {
		return DefaultMaxContextDepth
	}
	return o.MaxContextDepth
}

func (o Options) warn(w Warning) error {
	if o.WarnHandler != nil {
		o.WarnHandler(w)
	}
	if o.Strict {
		return w.promote()
	}
	return nil
}
