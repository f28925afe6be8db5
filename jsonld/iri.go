package jsonld

import (
	"net/url"
	"strings"
)

// JSON-LD keywords recognized by the processing algorithms.
var keywords = map[string]bool{
	"@base":        true,
	"@container":   true,
	"@context":     true,
	"@direction":   true,
	"@graph":       true,
	"@id":          true,
	"@import":      true,
	"@included":    true,
	"@index":       true,
	"@json":        true,
	"@language":    true,
	"@list":        true,
	"@nest":        true,
	"@none":        true,
	"@prefix":      true,
	"@propagate":   true,
	"@protected":   true,
	"@reverse":     true,
	"@set":         true,
	"@type":        true,
	"@value":       true,
	"@version":     true,
	"@vocab":       true,
	"@preserve":    true,
	"@default":     true,
	"@omitDefault": true,
	"@embed":       true,
	"@explicit":    true,
	"@requireAll":  true,
	"@any":         true,
}

// isKeyword reports whether value is a JSON-LD keyword.
func isKeyword(value interface{}) bool {
	s, ok := value.(string)
	return ok && keywords[s]
}

// isKeywordLike reports whether s has the form of a keyword ("@" followed
// by one or more ASCII letters) without being one. Such terms are ignored
// with a warning rather than defined.
func isKeywordLike(s string) bool {
	if len(s) < 2 || s[0] != '@' || keywords[s] {
		return false
	}
	for i := 1; i < len(s); i++ {
		ch := s[i]
		if (ch < 'A' || ch > 'Z') && (ch < 'a' || ch > 'z') {
			return false
		}
	}
	return true
}

// isBlankNodeIdentifier reports whether s is a blank node identifier ("_:" prefix).
func isBlankNodeIdentifier(s string) bool {
	return strings.HasPrefix(s, "_:")
}

// isAbsoluteIRI reports whether s looks like an absolute IRI: a scheme
// followed by a colon, with no whitespace. Validation is deliberately
// shallow; the algorithms only need to distinguish absolute IRIs from
// terms, compact IRIs, and relative references.
func isAbsoluteIRI(s string) bool {
	if s == "" {
		return false
	}
	colon := strings.Index(s, ":")
	if colon <= 0 {
		return false
	}
	scheme := s[:colon]
	for i := 0; i < len(scheme); i++ {
		ch := scheme[i]
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= 'A' && ch <= 'Z':
		case i > 0 && (ch == '+' || ch == '-' || ch == '.' || (ch >= '0' && ch <= '9')):
		default:
			return false
		}
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '{', '}', '"', '<', '>', '^', '`', '\\', '|':
			return false
		}
	}
	return true
}

// splitCompactIRI splits a potential compact IRI into prefix and suffix.
// It returns ok=false when s has no colon or the suffix begins with "//"
// (which marks an absolute IRI authority, not a compact IRI suffix).
func splitCompactIRI(s string) (prefix, suffix string, ok bool) {
	colon := strings.Index(s, ":")
	if colon < 0 {
		return "", "", false
	}
	prefix = s[:colon]
	suffix = s[colon+1:]
	if strings.HasPrefix(suffix, "//") {
		return "", "", false
	}
	return prefix, suffix, true
}

// resolveIRI resolves a (possibly relative) IRI reference against a base
// IRI according to RFC 3986.
func resolveIRI(base, reference string) string {
	if reference == "" {
		return base
	}
	if base == "" {
		return reference
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return fallbackResolve(base, reference)
	}
	refURL, err := url.Parse(reference)
	if err != nil {
		return fallbackResolve(base, reference)
	}
	if refURL.Scheme != "" {
		return reference
	}
	resolved := baseURL.ResolveReference(refURL)
	out := resolved.String()
	// url.String drops an empty fragment; JSON-LD keeps it.
	if strings.HasSuffix(reference, "#") && !strings.HasSuffix(out, "#") {
		out += "#"
	}
	return out
}

// fallbackResolve concatenates when either side fails to parse as a URL.
func fallbackResolve(base, reference string) string {
	if strings.HasSuffix(base, "/") || strings.HasSuffix(base, "#") {
		return base + reference
	}
	lastSlash := strings.LastIndex(base, "/")
	if lastSlash >= 0 {
		return base[:lastSlash+1] + reference
	}
	return base + "/" + reference
}

// relativizeIRI turns iri into a reference relative to base when that
// produces a shorter, reversible form; otherwise it returns iri unchanged.
func relativizeIRI(base, iri string) string {
	if base == "" || iri == "" {
		return iri
	}
	baseURL, err := url.Parse(base)
	if err != nil || baseURL.Scheme == "" {
		return iri
	}
	iriURL, err := url.Parse(iri)
	if err != nil {
		return iri
	}
	if baseURL.Scheme != iriURL.Scheme || baseURL.Host != iriURL.Host {
		return iri
	}
	rel := relativizePath(baseURL.Path, iriURL.Path)
	if iriURL.RawQuery != "" {
		rel += "?" + iriURL.RawQuery
	} else if rel == "" && iriURL.Fragment == "" {
		// Same document reference.
		rel = ""
	}
	if iriURL.Fragment != "" {
		rel += "#" + iriURL.Fragment
	}
	if rel == "" {
		rel = "./"
	}
	if resolveIRI(base, rel) != iri {
		return iri
	}
	if len(rel) >= len(iri) {
		return iri
	}
	return rel
}

func relativizePath(basePath, path string) string {
	baseDirs := strings.Split(basePath, "/")
	pathDirs := strings.Split(path, "/")
	// Drop the base's final segment; only its directory matters.
	baseDirs = baseDirs[:len(baseDirs)-1]

	shared := 0
	for shared < len(baseDirs) && shared < len(pathDirs)-1 && baseDirs[shared] == pathDirs[shared] {
		shared++
	}

	var b strings.Builder
	for i := shared; i < len(baseDirs); i++ {
		b.WriteString("../")
	}
	b.WriteString(strings.Join(pathDirs[shared:], "/"))
	return b.String()
}
