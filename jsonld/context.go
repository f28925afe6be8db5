package jsonld

import "sort"

// TermDefinition is the mapping and metadata bound to one term in a
// context. Definitions are immutable once installed in a Context.
type TermDefinition struct {
	// IRI is the expanded IRI mapping: an absolute IRI, a blank node
	// identifier, or a keyword for keyword aliases.
	IRI string
	// Null marks a term explicitly decoupled via a null mapping. Such a
	// term resolves to nothing and blocks @vocab fallback.
	Null bool
	// Reverse marks a reverse property.
	Reverse bool
	// Prefix allows the term to be used as a compact IRI prefix.
	Prefix bool
	// Protected guards the definition against differing redefinition.
	Protected bool
	// Type is the type mapping ("" when absent). Besides IRIs it may hold
	// the keywords @id, @vocab, @json, or @none.
	Type string
	// Language is the language mapping; meaningful only when HasLanguage
	// is set. An empty string with HasLanguage set is an explicit null.
	Language    string
	HasLanguage bool
	// Direction is the base direction mapping ("ltr", "rtl", or "" for an
	// explicit null); meaningful only when HasDirection is set.
	Direction    string
	HasDirection bool
	// Containers is the container mapping, a set drawn from @list, @set,
	// @index, @language, @type, @id, and @graph.
	Containers []string
	// Index is the property-valued index mapping (@index entry, 1.1).
	Index string
	// Nest is the nest mapping (@nest entry, 1.1).
	Nest string
	// LocalContext is the unprocessed scoped context; meaningful only when
	// HasLocalContext is set. BaseURL records the base it resolves against.
	LocalContext    interface{}
	HasLocalContext bool
	BaseURL         string
}

// hasContainer reports whether the container mapping includes c.
func (d *TermDefinition) hasContainer(c string) bool {
	if d == nil {
		return false
	}
	return containsString(d.Containers, c)
}

// sameMapping reports whether two definitions carry the same mapping,
// ignoring the protected flag. Used for the protected-term redefinition
// check: redefining with an identical mapping is allowed.
func (d *TermDefinition) sameMapping(other *TermDefinition) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.IRI != other.IRI || d.Null != other.Null || d.Reverse != other.Reverse ||
		d.Prefix != other.Prefix || d.Type != other.Type ||
		d.HasLanguage != other.HasLanguage || d.Language != other.Language ||
		d.HasDirection != other.HasDirection || d.Direction != other.Direction ||
		d.Index != other.Index || d.Nest != other.Nest ||
		d.HasLocalContext != other.HasLocalContext {
		return false
	}
	if len(d.Containers) != len(other.Containers) {
		return false
	}
	for _, c := range d.Containers {
		if !containsString(other.Containers, c) {
			return false
		}
	}
	if d.HasLocalContext && !deepEqual(d.LocalContext, other.LocalContext) {
		return false
	}
	return true
}

// Context is an active context: the accumulated term, base, vocabulary,
// language, and direction state in effect at a point in the document tree.
// A Context is never mutated after construction; processing a local
// context produces a new value.
type Context struct {
	terms map[string]*TermDefinition

	// base is the current base IRI; originalBase is the one the context
	// was created with, restored on null-context reversion.
	base         string
	originalBase string

	// vocab is the vocabulary mapping; meaningful only when hasVocab is set.
	vocab    string
	hasVocab bool

	// language is the default language; meaningful only when hasLanguage is set.
	language    string
	hasLanguage bool

	// direction is the default base direction: "ltr", "rtl", or "".
	direction string

	// previous is the context to revert to when a non-propagating context
	// is left behind, and the target of null-context reversion when
	// protected terms are in play.
	previous *Context
}

// newContext creates an empty active context with the given base IRI.
func newContext(base string) *Context {
	return &Context{
		terms:        map[string]*TermDefinition{},
		base:         base,
		originalBase: base,
	}
}

// clone returns a copy sharing no mutable state with the receiver. Term
// definitions are shared; they are immutable once installed.
func (c *Context) clone() *Context {
	out := &Context{
		terms:        make(map[string]*TermDefinition, len(c.terms)),
		base:         c.base,
		originalBase: c.originalBase,
		vocab:        c.vocab,
		hasVocab:     c.hasVocab,
		language:     c.language,
		hasLanguage:  c.hasLanguage,
		direction:    c.direction,
		previous:     c.previous,
	}
	for term, def := range c.terms {
		out.terms[term] = def
	}
	return out
}

// term returns the definition bound to name, or nil.
func (c *Context) term(name string) *TermDefinition {
	if c == nil {
		return nil
	}
	return c.terms[name]
}

// Base returns the current base IRI.
func (c *Context) Base() string { return c.base }

// Vocab returns the vocabulary mapping and whether one is set.
func (c *Context) Vocab() (string, bool) { return c.vocab, c.hasVocab }

// Language returns the default language and whether one is set.
func (c *Context) Language() (string, bool) { return c.language, c.hasLanguage }

// Direction returns the default base direction ("" when unset).
func (c *Context) Direction() string { return c.direction }

// Terms returns the defined term names in lexicographic order.
func (c *Context) Terms() []string {
	names := make([]string, 0, len(c.terms))
	for name := range c.terms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// hasProtectedTerms reports whether any term definition is protected.
func (c *Context) hasProtectedTerms() bool {
	for _, def := range c.terms {
		if def != nil && def.Protected {
			return true
		}
	}
	return false
}

// revertToPrevious unwinds a non-propagated context before descending into
// a nested node object.
func (c *Context) revertToPrevious() *Context {
	if c.previous != nil {
		return c.previous
	}
	return c
}

// aliasOf returns the term the context aliases keyword to, preferring the
// shortest then lexicographically least alias, or keyword itself.
func (c *Context) aliasOf(keyword string) string {
	best := ""
	for term, def := range c.terms {
		if def == nil || def.Null || def.IRI != keyword || def.Reverse {
			continue
		}
		if best == "" || len(term) < len(best) || (len(term) == len(best) && term < best) {
			best = term
		}
	}
	if best == "" {
		return keyword
	}
	return best
}
