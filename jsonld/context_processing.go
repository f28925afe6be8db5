package jsonld

import (
	"context"
	"encoding/json"
	"strings"
)

// state carries everything scoped to one top-level processor call: the
// options, the remote-context cache, and the dereference budget. It is
// never shared between calls, so no locking is needed and concurrent calls
// cannot observe each other's intermediate state.
type state struct {
	goCtx       context.Context
	opts        Options
	remoteCache map[string]RemoteDocument
	remoteCount int

	// inverseCache memoizes context inversions during compaction.
	inverseCache map[*Context]inverseContext
}

func newState(goCtx context.Context, opts Options) *state {
	if goCtx == nil {
		goCtx = context.Background()
	}
	return &state{
		goCtx:       goCtx,
		opts:        opts,
		remoteCache: map[string]RemoteDocument{},
	}
}

func (s *state) checkCanceled() error {
	select {
	case <-s.goCtx.Done():
		return wrapError(ErrCodeContextCanceled, "call canceled", "", s.goCtx.Err())
	default:
		return nil
	}
}

// processOpts tunes one processContext invocation.
type processOpts struct {
	// remoteContexts is the set of remote context URLs currently being
	// resolved, passed explicitly through the recursion for cycle
	// detection.
	remoteContexts []string
	// overrideProtected allows redefining protected terms (used for
	// property-scoped contexts).
	overrideProtected bool
	// propagate controls whether the resulting context survives into
	// nested node objects.
	propagate bool
	// validateScoped enables eager validation of scoped contexts found in
	// term definitions.
	validateScoped bool
	// depth tracks context recursion for the depth bound.
	depth int
}

func defaultProcessOpts() processOpts {
	return processOpts{propagate: true, validateScoped: true}
}

// processContext applies a local context to an active context, producing a
// new active context. localContext may be null, a string IRI, a context
// object, or an array of those, processed left to right.
func (s *state) processContext(active *Context, localContext interface{}, baseURL string, po processOpts) (*Context, error) {
	if err := s.checkCanceled(); err != nil {
		return nil, err
	}
	if po.depth > s.opts.maxContextDepth() {
		return nil, newError(ErrCodeContextOverflow, "context recursion depth exceeded")
	}

	result := active.clone()

	// An object carrying @propagate controls propagation for the whole
	// local context.
	if obj, ok := localContext.(map[string]interface{}); ok {
		if raw, has := obj["@propagate"]; has {
			if b, ok := raw.(bool); ok {
				po.propagate = b
			}
		}
	}
	if !po.propagate && result.previous == nil {
		result.previous = active
	}

	for _, item := range asArray(localContext) {
		switch value := item.(type) {
		case nil:
			if !po.overrideProtected && active.hasProtectedTerms() {
				return nil, newError(ErrCodeInvalidContextNullification,
					"null context would drop protected term definitions")
			}
			prev := result
			result = newContext(active.originalBase)
			if !po.propagate {
				result.previous = prev
			}

		case string:
			next, err := s.processRemoteContext(result, value, baseURL, po)
			if err != nil {
				return nil, err
			}
			result = next

		case map[string]interface{}:
			next, err := s.processContextObject(result, value, baseURL, po)
			if err != nil {
				return nil, err
			}
			result = next

		default:
			return nil, newError(ErrCodeInvalidLocalContext,
				"context entry is not null, a string, or an object")
		}
	}
	return result, nil
}

// processRemoteContext dereferences a context IRI and folds its content
// into the active context.
func (s *state) processRemoteContext(active *Context, reference, baseURL string, po processOpts) (*Context, error) {
	contextIRI := resolveIRI(baseURL, reference)
	if !isAbsoluteIRI(contextIRI) {
		return nil, newValueError(ErrCodeInvalidLocalContext, "context reference is not an IRI", reference)
	}
	for _, inFlight := range po.remoteContexts {
		if inFlight == contextIRI {
			return nil, newValueError(ErrCodeRecursiveContextInclusion,
				"remote context includes itself", contextIRI)
		}
	}

	doc, err := s.dereferenceContext(contextIRI)
	if err != nil {
		return nil, err
	}
	obj, ok := doc.Document.(map[string]interface{})
	if !ok {
		return nil, newValueError(ErrCodeInvalidRemoteContext, "remote context document is not an object", contextIRI)
	}
	imported, has := obj["@context"]
	if !has {
		return nil, newValueError(ErrCodeInvalidRemoteContext, "remote context document has no @context entry", contextIRI)
	}

	nested := po
	nested.remoteContexts = append(append([]string{}, po.remoteContexts...), contextIRI)
	nested.overrideProtected = false
	nested.propagate = true
	nested.depth = po.depth + 1
	return s.processContext(active, imported, doc.DocumentURL, nested)
}

// dereferenceContext loads a remote context through the document loader,
// consulting the per-call cache and charging the dereference budget.
func (s *state) dereferenceContext(contextIRI string) (RemoteDocument, error) {
	if doc, ok := s.remoteCache[contextIRI]; ok {
		return doc, nil
	}
	if s.remoteCount >= s.opts.maxRemoteContexts() {
		return RemoteDocument{}, newValueError(ErrCodeContextOverflow,
			"maximum number of remote contexts exceeded", contextIRI)
	}
	s.remoteCount++
	if s.opts.DocumentLoader == nil {
		return RemoteDocument{}, newValueError(ErrCodeLoadingDocumentFailed,
			"no document loader configured", contextIRI)
	}
	doc, err := s.opts.DocumentLoader.LoadDocument(s.goCtx, contextIRI)
	if err != nil {
		if Code(err) == ErrCodeLoadingDocumentFailed {
			return RemoteDocument{}, err
		}
		return RemoteDocument{}, wrapError(ErrCodeLoadingDocumentFailed, "dereferencing context", contextIRI, err)
	}
	s.remoteCache[contextIRI] = doc
	return doc, nil
}

// contextObjectKeywords are context entries handled before term definitions.
var contextObjectKeywords = map[string]bool{
	"@version": true, "@import": true, "@base": true, "@vocab": true,
	"@language": true, "@direction": true, "@propagate": true, "@protected": true,
}

// processContextObject applies an inline context object.
func (s *state) processContextObject(active *Context, ctxObj map[string]interface{}, baseURL string, po processOpts) (*Context, error) {
	result := active.clone()

	if raw, has := ctxObj["@version"]; has {
		if !isVersion11(raw) {
			return nil, newError(ErrCodeInvalidVersionValue, "@version must be the number 1.1")
		}
		if !s.opts.is11() {
			return nil, newError(ErrCodeProcessingModeConflict,
				"@version 1.1 context processed in json-ld-1.0 mode")
		}
	}

	// @import merges an external context underneath the current one.
	if raw, has := ctxObj["@import"]; has {
		if !s.opts.is11() {
			return nil, newError(ErrCodeInvalidContextEntry, "@import requires json-ld-1.1")
		}
		importValue, ok := raw.(string)
		if !ok {
			return nil, newError(ErrCodeInvalidImportValue, "@import value must be a string")
		}
		importIRI := resolveIRI(baseURL, importValue)
		doc, err := s.dereferenceContext(importIRI)
		if err != nil {
			return nil, err
		}
		remoteObj, ok := doc.Document.(map[string]interface{})
		if !ok {
			return nil, newValueError(ErrCodeInvalidRemoteContext, "imported document is not an object", importIRI)
		}
		importedRaw, has := remoteObj["@context"]
		if !has {
			return nil, newValueError(ErrCodeInvalidRemoteContext, "imported document has no @context entry", importIRI)
		}
		imported, ok := importedRaw.(map[string]interface{})
		if !ok {
			return nil, newValueError(ErrCodeInvalidRemoteContext, "imported context is not a context object", importIRI)
		}
		if _, has := imported["@import"]; has {
			return nil, newValueError(ErrCodeInvalidContextEntry, "imported context contains @import", importIRI)
		}
		// Entries of the importing context win over imported ones.
		merged := make(map[string]interface{}, len(imported)+len(ctxObj))
		for k, v := range imported {
			merged[k] = v
		}
		for k, v := range ctxObj {
			if k != "@import" {
				merged[k] = v
			}
		}
		ctxObj = merged
	}

	// @base is honored only on the initial, non-remote context.
	if raw, has := ctxObj["@base"]; has && len(po.remoteContexts) == 0 {
		switch value := raw.(type) {
		case nil:
			result.base = ""
		case string:
			switch {
			case isAbsoluteIRI(value):
				result.base = value
			case result.base != "":
				result.base = resolveIRI(result.base, value)
			default:
				return nil, newValueError(ErrCodeInvalidBaseIRI,
					"relative @base with no base IRI in effect", value)
			}
		default:
			return nil, newError(ErrCodeInvalidBaseIRI, "@base must be an IRI or null")
		}
	}

	if raw, has := ctxObj["@vocab"]; has {
		switch value := raw.(type) {
		case nil:
			result.vocab = ""
			result.hasVocab = false
		case string:
			expanded, err := s.expandIRI(result, value, true, true, nil, nil)
			if err != nil {
				return nil, err
			}
			if expanded == "" || (!isAbsoluteIRI(expanded) && !isBlankNodeIdentifier(expanded)) {
				return nil, newValueError(ErrCodeInvalidVocabMapping,
					"@vocab does not resolve to an IRI or blank node identifier", value)
			}
			result.vocab = expanded
			result.hasVocab = true
		default:
			return nil, newError(ErrCodeInvalidVocabMapping, "@vocab must be an IRI or null")
		}
	}

	if raw, has := ctxObj["@language"]; has {
		switch value := raw.(type) {
		case nil:
			result.language = ""
			result.hasLanguage = false
		case string:
			if !isWellFormedLanguageTag(value) {
				if err := s.opts.warn(Warning{Code: WarnInvalidLanguageTag, Value: value}); err != nil {
					return nil, err
				}
			}
			result.language = strings.ToLower(value)
			result.hasLanguage = true
		default:
			return nil, newError(ErrCodeInvalidDefaultLanguage, "@language must be a string or null")
		}
	}

	if raw, has := ctxObj["@direction"]; has {
		if !s.opts.is11() {
			return nil, newError(ErrCodeInvalidContextEntry, "@direction requires json-ld-1.1")
		}
		switch value := raw.(type) {
		case nil:
			result.direction = ""
		case string:
			if value != "ltr" && value != "rtl" {
				return nil, newValueError(ErrCodeInvalidBaseDirection,
					`@direction must be "ltr", "rtl", or null`, value)
			}
			result.direction = value
		default:
			return nil, newError(ErrCodeInvalidBaseDirection, `@direction must be "ltr", "rtl", or null`)
		}
	}

	if raw, has := ctxObj["@propagate"]; has {
		if !s.opts.is11() {
			return nil, newError(ErrCodeInvalidContextEntry, "@propagate requires json-ld-1.1")
		}
		if _, ok := raw.(bool); !ok {
			return nil, newError(ErrCodeInvalidPropagateValue, "@propagate must be a boolean")
		}
	}

	protectedDefault := false
	if raw, has := ctxObj["@protected"]; has {
		if !s.opts.is11() {
			return nil, newError(ErrCodeInvalidContextEntry, "@protected requires json-ld-1.1")
		}
		b, ok := raw.(bool)
		if !ok {
			return nil, newError(ErrCodeInvalidProtectedValue, "@protected must be a boolean")
		}
		protectedDefault = b
	}

	defined := map[string]bool{}
	for _, term := range sortedKeys(ctxObj) {
		if contextObjectKeywords[term] {
			continue
		}
		td := termDefOpts{
			baseURL:           baseURL,
			protectedDefault:  protectedDefault,
			overrideProtected: po.overrideProtected,
			remoteContexts:    po.remoteContexts,
			validateScoped:    po.validateScoped,
			depth:             po.depth,
		}
		if err := s.createTermDefinition(result, ctxObj, term, defined, td); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func isVersion11(raw interface{}) bool {
	switch value := raw.(type) {
	case json.Number:
		return value.String() == "1.1"
	case float64:
		return value == 1.1
	default:
		return false
	}
}

// isWellFormedLanguageTag performs a shallow BCP 47 shape check: ASCII
// alphanumeric subtags joined by single hyphens.
func isWellFormedLanguageTag(tag string) bool {
	if tag == "" {
		return false
	}
	for _, subtag := range strings.Split(tag, "-") {
		if subtag == "" || len(subtag) > 8 {
			return false
		}
		for i := 0; i < len(subtag); i++ {
			ch := subtag[i]
			if (ch < 'a' || ch > 'z') && (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9') {
				return false
			}
		}
	}
	return true
}

type termDefOpts struct {
	baseURL           string
	protectedDefault  bool
	overrideProtected bool
	remoteContexts    []string
	validateScoped    bool
	depth             int
}

// termDefinitionKeywords are the entries allowed inside an expanded term
// definition object.
var termDefinitionKeywords = map[string]bool{
	"@id": true, "@reverse": true, "@type": true, "@language": true,
	"@direction": true, "@container": true, "@context": true, "@nest": true,
	"@prefix": true, "@protected": true, "@index": true,
}

// createTermDefinition installs the definition for term from localCtx into
// active. defined tracks terms currently being created (false) or already
// created (true) for cyclic-mapping detection.
func (s *state) createTermDefinition(active *Context, localCtx map[string]interface{}, term string, defined map[string]bool, td termDefOpts) error {
	if done, seen := defined[term]; seen {
		if done {
			return nil
		}
		return newValueError(ErrCodeCyclicIRIMapping, "term definition depends on itself", term)
	}
	if term == "" {
		return newError(ErrCodeInvalidTermDefinition, "a term must not be the empty string")
	}
	defined[term] = false

	raw := localCtx[term]

	// @type may only be redefined (1.1) to add a @set container.
	if isKeyword(term) {
		if term == "@type" && s.opts.is11() {
			if obj, ok := raw.(map[string]interface{}); ok && isTypeRedefinition(obj) {
				def := &TermDefinition{IRI: "@type", Protected: td.protectedDefault}
				if c, has := obj["@container"]; has && c == "@set" {
					def.Containers = []string{"@set"}
				}
				if p, has := obj["@protected"]; has {
					b, ok := p.(bool)
					if !ok {
						return newError(ErrCodeInvalidProtectedValue, "@protected must be a boolean")
					}
					def.Protected = b
				}
				active.terms[term] = def
				defined[term] = true
				return nil
			}
		}
		return newValueError(ErrCodeKeywordRedefinition, "a keyword cannot be redefined as a term", term)
	}
	if isKeywordLike(term) {
		delete(defined, term)
		return s.opts.warn(Warning{Code: WarnKeywordLikeTerm, Value: term})
	}

	previous := active.terms[term]
	delete(active.terms, term)

	var valueObj map[string]interface{}
	simpleTerm := false
	switch value := raw.(type) {
	case nil:
		valueObj = map[string]interface{}{"@id": nil}
	case string:
		valueObj = map[string]interface{}{"@id": value}
		simpleTerm = true
	case map[string]interface{}:
		valueObj = value
	default:
		return newValueError(ErrCodeInvalidTermDefinition,
			"term definition must be null, a string, or an object", term)
	}

	definition := &TermDefinition{Protected: td.protectedDefault}

	for key := range valueObj {
		if !termDefinitionKeywords[key] {
			return newValueError(ErrCodeInvalidTermDefinition, "unknown entry "+key+" in term definition", term)
		}
	}
	if !s.opts.is11() {
		for _, key := range []string{"@context", "@nest", "@prefix", "@protected", "@direction", "@index"} {
			if _, has := valueObj[key]; has {
				return newValueError(ErrCodeInvalidTermDefinition, key+" requires json-ld-1.1", term)
			}
		}
	}

	if rawProtected, has := valueObj["@protected"]; has {
		b, ok := rawProtected.(bool)
		if !ok {
			return newError(ErrCodeInvalidProtectedValue, "@protected must be a boolean")
		}
		definition.Protected = b
	}

	if rawType, has := valueObj["@type"]; has {
		typeValue, ok := rawType.(string)
		if !ok {
			return newValueError(ErrCodeInvalidTypeMapping, "@type in a term definition must be a string", term)
		}
		expanded, err := s.expandIRI(active, typeValue, false, true, localCtx, defined)
		if err != nil {
			return err
		}
		switch expanded {
		case "@id", "@vocab":
		case "@json", "@none":
			if !s.opts.is11() {
				return newValueError(ErrCodeInvalidTypeMapping, expanded+" requires json-ld-1.1", term)
			}
		default:
			if !isAbsoluteIRI(expanded) && !isBlankNodeIdentifier(expanded) {
				return newValueError(ErrCodeInvalidTypeMapping,
					"type mapping does not resolve to an IRI", typeValue)
			}
		}
		definition.Type = expanded
	}

	if rawReverse, has := valueObj["@reverse"]; has {
		if _, hasID := valueObj["@id"]; hasID {
			return newValueError(ErrCodeInvalidReverseProperty, "@reverse combined with @id", term)
		}
		if _, hasNest := valueObj["@nest"]; hasNest {
			return newValueError(ErrCodeInvalidReverseProperty, "@reverse combined with @nest", term)
		}
		reverseValue, ok := rawReverse.(string)
		if !ok {
			return newValueError(ErrCodeInvalidIRIMapping, "@reverse value must be a string", term)
		}
		if isKeywordLike(reverseValue) {
			delete(defined, term)
			return s.opts.warn(Warning{Code: WarnKeywordLikeValue, Value: reverseValue})
		}
		expanded, err := s.expandIRI(active, reverseValue, false, true, localCtx, defined)
		if err != nil {
			return err
		}
		if !isAbsoluteIRI(expanded) && !isBlankNodeIdentifier(expanded) {
			return newValueError(ErrCodeInvalidIRIMapping,
				"reverse property does not resolve to an IRI", reverseValue)
		}
		if rawContainer, has := valueObj["@container"]; has {
			c, ok := rawContainer.(string)
			if !ok || (c != "@set" && c != "@index") {
				return newValueError(ErrCodeInvalidReverseProperty,
					"reverse property container must be @set or @index", term)
			}
			definition.Containers = []string{c}
		}
		definition.IRI = expanded
		definition.Reverse = true
		active.terms[term] = definition
		defined[term] = true
		return s.checkProtectedRedefinition(active, term, definition, previous, td)
	}

	if err := s.resolveIRIMapping(active, localCtx, term, valueObj, simpleTerm, definition, defined, td); err != nil {
		return err
	}
	if definition.Null {
		active.terms[term] = definition
		defined[term] = true
		return s.checkProtectedRedefinition(active, term, definition, previous, td)
	}

	if rawContainer, has := valueObj["@container"]; has {
		containers, err := s.validateContainer(rawContainer, term)
		if err != nil {
			return err
		}
		definition.Containers = containers
		if definition.hasContainer("@type") {
			switch definition.Type {
			case "":
				definition.Type = "@id"
			case "@id", "@vocab":
			default:
				return newValueError(ErrCodeInvalidTypeMapping,
					"@type container requires an @id or @vocab type mapping", term)
			}
		}
	}

	if rawIndex, has := valueObj["@index"]; has {
		if !definition.hasContainer("@index") {
			return newValueError(ErrCodeInvalidTermDefinition,
				"@index in a term definition requires an @index container", term)
		}
		indexValue, ok := rawIndex.(string)
		if !ok {
			return newValueError(ErrCodeInvalidTermDefinition, "@index value must be a string", term)
		}
		expanded, err := s.expandIRI(active, indexValue, false, true, nil, nil)
		if err != nil {
			return err
		}
		if !isAbsoluteIRI(expanded) {
			return newValueError(ErrCodeInvalidTermDefinition,
				"@index does not expand to an IRI", indexValue)
		}
		definition.Index = indexValue
	}

	if rawScoped, has := valueObj["@context"]; has {
		switch rawScoped.(type) {
		case nil, string, map[string]interface{}, []interface{}:
		default:
			return newValueError(ErrCodeInvalidScopedContext, "scoped context has an invalid shape", term)
		}
		if td.validateScoped {
			po := processOpts{
				remoteContexts:    td.remoteContexts,
				overrideProtected: true,
				propagate:         true,
				validateScoped:    false,
				depth:             td.depth + 1,
			}
			if _, err := s.processContext(active, rawScoped, td.baseURL, po); err != nil {
				return wrapError(ErrCodeInvalidScopedContext, "scoped context fails to process", term, err)
			}
		}
		definition.LocalContext = rawScoped
		definition.HasLocalContext = true
		definition.BaseURL = td.baseURL
	}

	if rawLanguage, has := valueObj["@language"]; has {
		if _, hasType := valueObj["@type"]; !hasType {
			switch value := rawLanguage.(type) {
			case nil:
				definition.HasLanguage = true
			case string:
				if !isWellFormedLanguageTag(value) {
					if err := s.opts.warn(Warning{Code: WarnInvalidLanguageTag, Value: value}); err != nil {
						return err
					}
				}
				definition.Language = strings.ToLower(value)
				definition.HasLanguage = true
			default:
				return newValueError(ErrCodeInvalidLanguageMapping,
					"@language in a term definition must be a string or null", term)
			}
		}
	}

	if rawDirection, has := valueObj["@direction"]; has {
		if _, hasType := valueObj["@type"]; !hasType {
			switch value := rawDirection.(type) {
			case nil:
				definition.HasDirection = true
			case string:
				if value != "ltr" && value != "rtl" {
					return newValueError(ErrCodeInvalidBaseDirection,
						`term @direction must be "ltr", "rtl", or null`, term)
				}
				definition.Direction = value
				definition.HasDirection = true
			default:
				return newValueError(ErrCodeInvalidBaseDirection,
					`term @direction must be "ltr", "rtl", or null`, term)
			}
		}
	}

	if rawNest, has := valueObj["@nest"]; has {
		nestValue, ok := rawNest.(string)
		if !ok || (nestValue != "@nest" && isKeyword(nestValue)) {
			return newValueError(ErrCodeInvalidNestValue,
				"@nest value must be a string other than a keyword, or @nest", term)
		}
		definition.Nest = nestValue
	}

	if rawPrefix, has := valueObj["@prefix"]; has {
		if strings.Contains(term, ":") || strings.Contains(term, "/") {
			return newValueError(ErrCodeInvalidTermDefinition,
				"@prefix is not allowed on compact IRI or relative IRI terms", term)
		}
		b, ok := rawPrefix.(bool)
		if !ok {
			return newValueError(ErrCodeInvalidPrefixValue, "@prefix must be a boolean", term)
		}
		if b && isKeyword(definition.IRI) {
			return newValueError(ErrCodeInvalidTermDefinition,
				"a keyword alias cannot be a prefix", term)
		}
		definition.Prefix = b
	}

	active.terms[term] = definition
	defined[term] = true
	return s.checkProtectedRedefinition(active, term, definition, previous, td)
}

// isTypeRedefinition reports whether obj is the restricted form of a
// keyword @type redefinition: only @container ("@set") and @protected.
func isTypeRedefinition(obj map[string]interface{}) bool {
	for key, value := range obj {
		switch key {
		case "@container":
			if value != "@set" {
				return false
			}
		case "@protected":
		default:
			return false
		}
	}
	return true
}

func (s *state) checkProtectedRedefinition(active *Context, term string, definition *TermDefinition, previous *TermDefinition, td termDefOpts) error {
	if previous == nil || !previous.Protected || td.overrideProtected {
		return nil
	}
	if !definition.sameMapping(previous) {
		return newValueError(ErrCodeProtectedTermRedefinition,
			"protected term redefined with a different mapping", term)
	}
	// Identical redefinition keeps the previous (protected) definition.
	active.terms[term] = previous
	return nil
}

// resolveIRIMapping establishes definition.IRI from the @id entry or the
// term's own shape (compact IRI, @type, vocab-relative).
func (s *state) resolveIRIMapping(active *Context, localCtx map[string]interface{}, term string, valueObj map[string]interface{}, simpleTerm bool, definition *TermDefinition, defined map[string]bool, td termDefOpts) error {
	rawID, hasID := valueObj["@id"]
	if hasID {
		if idStr, ok := rawID.(string); !ok || idStr != term {
			switch value := rawID.(type) {
			case nil:
				definition.Null = true
				return nil
			case string:
				if isKeywordLike(value) && !isKeyword(value) {
					delete(defined, term)
					return s.opts.warn(Warning{Code: WarnKeywordLikeValue, Value: value})
				}
				if value == "@context" {
					return newValueError(ErrCodeInvalidKeywordAlias, "@context cannot be aliased", term)
				}
				expanded, err := s.expandIRI(active, value, false, true, localCtx, defined)
				if err != nil {
					return err
				}
				if !isKeyword(expanded) && !isAbsoluteIRI(expanded) && !isBlankNodeIdentifier(expanded) {
					return newValueError(ErrCodeInvalidIRIMapping,
						"term does not map to an IRI, blank node identifier, or keyword", value)
				}
				definition.IRI = expanded
				if hasInnerColon(term) || strings.Contains(term, "/") {
					// A term shaped like an IRI must expand to itself.
					defined[term] = true
					check, err := s.expandIRI(active, term, false, true, localCtx, defined)
					defined[term] = false
					if err != nil {
						return err
					}
					if check != expanded {
						return newValueError(ErrCodeInvalidIRIMapping,
							"IRI-shaped term expands to a different IRI than its mapping", term)
					}
				} else if simpleTerm && endsWithGenDelim(expanded) {
					definition.Prefix = true
				} else if simpleTerm && isBlankNodeIdentifier(expanded) {
					definition.Prefix = true
				}
				return nil
			default:
				return newValueError(ErrCodeInvalidIRIMapping, "@id value must be a string or null", term)
			}
		}
	}

	if hasInnerColon(term) {
		prefix, suffix, _ := splitCompactIRI(term)
		if _, inLocal := localCtx[prefix]; inLocal {
			if err := s.createTermDefinition(active, localCtx, prefix, defined, td); err != nil {
				return err
			}
		}
		if prefixDef := active.terms[prefix]; prefixDef != nil && !prefixDef.Null && prefixDef.IRI != "" {
			definition.IRI = prefixDef.IRI + suffix
			return nil
		}
		if isAbsoluteIRI(term) || isBlankNodeIdentifier(term) {
			definition.IRI = term
			return nil
		}
		return newValueError(ErrCodeInvalidIRIMapping, "compact IRI term has no prefix definition", term)
	}

	if strings.Contains(term, "/") {
		expanded, err := s.expandIRI(active, term, false, true, localCtx, defined)
		if err != nil {
			return err
		}
		if !isAbsoluteIRI(expanded) {
			return newValueError(ErrCodeInvalidIRIMapping,
				"relative IRI term does not resolve against @vocab", term)
		}
		definition.IRI = expanded
		return nil
	}

	if term == "@type" {
		definition.IRI = "@type"
		return nil
	}

	if active.hasVocab {
		definition.IRI = active.vocab + term
		return nil
	}
	return newValueError(ErrCodeInvalidIRIMapping,
		"term has no IRI mapping and no @vocab is in effect", term)
}

// hasInnerColon reports whether term contains a colon past position zero
// (a leading colon does not form a compact IRI).
func hasInnerColon(s string) bool {
	return strings.Index(s, ":") > 0
}

// endsWithGenDelim reports whether iri ends with an RFC 3986 gen-delim
// character, which qualifies a simple term as a prefix.
func endsWithGenDelim(iri string) bool {
	if iri == "" {
		return false
	}
	switch iri[len(iri)-1] {
	case ':', '/', '?', '#', '[', ']', '@':
		return true
	default:
		return false
	}
}

// container mappings valid in each processing mode.
var containers10 = map[string]bool{"@list": true, "@set": true, "@index": true, "@language": true}
var containers11 = map[string]bool{
	"@list": true, "@set": true, "@index": true, "@language": true,
	"@graph": true, "@id": true, "@type": true,
}

// validateContainer checks an @container value and returns the container set.
func (s *state) validateContainer(raw interface{}, term string) ([]string, error) {
	var containers []string
	switch value := raw.(type) {
	case string:
		containers = []string{value}
	case []interface{}:
		if !s.opts.is11() {
			return nil, newValueError(ErrCodeInvalidContainerMapping,
				"array @container requires json-ld-1.1", term)
		}
		for _, item := range value {
			c, ok := item.(string)
			if !ok {
				return nil, newValueError(ErrCodeInvalidContainerMapping,
					"@container array entries must be strings", term)
			}
			containers = appendUniqueString(containers, c)
		}
	default:
		return nil, newValueError(ErrCodeInvalidContainerMapping, "@container must be a string or array", term)
	}

	valid := containers11
	if !s.opts.is11() {
		valid = containers10
	}
	for _, c := range containers {
		if !valid[c] {
			return nil, newValueError(ErrCodeInvalidContainerMapping, "unsupported container "+c, term)
		}
	}

	switch len(containers) {
	case 1:
		return containers, nil
	case 2:
		if containsString(containers, "@set") && !containsString(containers, "@list") {
			return containers, nil
		}
		if containsString(containers, "@graph") &&
			(containsString(containers, "@id") || containsString(containers, "@index")) {
			return containers, nil
		}
	case 3:
		if containsString(containers, "@set") && containsString(containers, "@graph") &&
			(containsString(containers, "@id") || containsString(containers, "@index")) {
			return containers, nil
		}
	}
	return nil, newValueError(ErrCodeInvalidContainerMapping,
		"unsupported container combination "+strings.Join(containers, ","), term)
}

// expandIRI implements the IRI expansion algorithm: value is turned into
// an absolute IRI, blank node identifier, or keyword. When vocab is set,
// terms and the vocabulary mapping apply; when documentRelative is set,
// remaining values resolve against the base IRI. localCtx and defined are
// non-nil only during context processing, allowing forward references to
// terms not yet defined.
func (s *state) expandIRI(active *Context, value string, documentRelative, vocab bool, localCtx map[string]interface{}, defined map[string]bool) (string, error) {
	if isKeyword(value) {
		return value, nil
	}
	if isKeywordLike(value) {
		if err := s.opts.warn(Warning{Code: WarnKeywordLikeValue, Value: value}); err != nil {
			return "", err
		}
		return "", nil
	}

	if localCtx != nil {
		if _, inLocal := localCtx[value]; inLocal {
			if done := defined[value]; !done {
				if err := s.createTermDefinition(active, localCtx, value, defined, termDefOpts{}); err != nil {
					return "", err
				}
			}
		}
	}

	if def := active.term(value); def != nil {
		if def.Null {
			return "", nil
		}
		if isKeyword(def.IRI) {
			return def.IRI, nil
		}
		if vocab {
			return def.IRI, nil
		}
	}

	if hasInnerColon(value) {
		prefix, suffix, ok := splitCompactIRI(value)
		if !ok || prefix == "_" {
			return value, nil
		}
		if localCtx != nil {
			if _, inLocal := localCtx[prefix]; inLocal {
				if done := defined[prefix]; !done {
					if err := s.createTermDefinition(active, localCtx, prefix, defined, termDefOpts{}); err != nil {
						return "", err
					}
				}
			}
		}
		if def := active.term(prefix); def != nil && !def.Null && def.IRI != "" && def.Prefix {
			return def.IRI + suffix, nil
		}
		if isAbsoluteIRI(value) {
			return value, nil
		}
	}

	if vocab && active.hasVocab {
		return active.vocab + value, nil
	}
	if documentRelative && active.base != "" {
		return resolveIRI(active.base, value), nil
	}
	return value, nil
}
