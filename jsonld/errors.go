package jsonld

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode represents a programmatic error code for error handling.
// The values follow the JSON-LD 1.1 API error registry so callers can
// match failures across processor implementations.
type ErrorCode string

const (
	// ErrCodeInvalidLocalContext indicates a local context that is not an
	// object, string, null, or array of those.
	ErrCodeInvalidLocalContext ErrorCode = "invalid local context"
	// ErrCodeInvalidBaseIRI indicates an @base value that is not an IRI or null.
	ErrCodeInvalidBaseIRI ErrorCode = "invalid base IRI"
	// ErrCodeInvalidVocabMapping indicates an @vocab value that is not an IRI or null.
	ErrCodeInvalidVocabMapping ErrorCode = "invalid vocab mapping"
	// ErrCodeInvalidDefaultLanguage indicates an @language context value that is not a string or null.
	ErrCodeInvalidDefaultLanguage ErrorCode = "invalid default language"
	// ErrCodeInvalidBaseDirection indicates an @direction value other than "ltr", "rtl", or null.
	ErrCodeInvalidBaseDirection ErrorCode = "invalid base direction"
	// ErrCodeInvalidVersionValue indicates an @version value other than the number 1.1.
	ErrCodeInvalidVersionValue ErrorCode = "invalid @version value"
	// ErrCodeProcessingModeConflict indicates a 1.1 context processed under json-ld-1.0.
	ErrCodeProcessingModeConflict ErrorCode = "processing mode conflict"
	// ErrCodeInvalidPropagateValue indicates a non-boolean @propagate value.
	ErrCodeInvalidPropagateValue ErrorCode = "invalid @propagate value"
	// ErrCodeInvalidProtectedValue indicates a non-boolean @protected value.
	ErrCodeInvalidProtectedValue ErrorCode = "invalid @protected value"
	// ErrCodeInvalidImportValue indicates an @import value that is not a string.
	ErrCodeInvalidImportValue ErrorCode = "invalid @import value"
	// ErrCodeInvalidContextEntry indicates an invalid entry in a context object.
	ErrCodeInvalidContextEntry ErrorCode = "invalid context entry"
	// ErrCodeInvalidContextNullification indicates a null context that would
	// drop protected term definitions.
	ErrCodeInvalidContextNullification ErrorCode = "invalid context nullification"
	// ErrCodeInvalidRemoteContext indicates a dereferenced context document
	// without a usable @context entry.
	ErrCodeInvalidRemoteContext ErrorCode = "invalid remote context"
	// ErrCodeRecursiveContextInclusion indicates a cycle among remote contexts.
	ErrCodeRecursiveContextInclusion ErrorCode = "recursive context inclusion"
	// ErrCodeContextOverflow indicates that the maximum number of remote
	// contexts was exceeded.
	ErrCodeContextOverflow ErrorCode = "context overflow"
	// ErrCodeLoadingDocumentFailed indicates the document loader could not
	// retrieve a remote document or context.
	ErrCodeLoadingDocumentFailed ErrorCode = "loading document failed"
	// ErrCodeLoadingRemoteContextFailed indicates a remote context dereference failure.
	ErrCodeLoadingRemoteContextFailed ErrorCode = "loading remote context failed"
	// ErrCodeCyclicIRIMapping indicates term definitions that reference each
	// other without grounding in an IRI.
	ErrCodeCyclicIRIMapping ErrorCode = "cyclic IRI mapping"
	// ErrCodeKeywordRedefinition indicates an attempt to redefine a keyword as a term.
	ErrCodeKeywordRedefinition ErrorCode = "keyword redefinition"
	// ErrCodeProtectedTermRedefinition indicates a differing redefinition of a protected term.
	ErrCodeProtectedTermRedefinition ErrorCode = "protected term redefinition"
	// ErrCodeInvalidTermDefinition indicates a malformed term definition.
	ErrCodeInvalidTermDefinition ErrorCode = "invalid term definition"
	// ErrCodeInvalidIRIMapping indicates a term @id that does not resolve to
	// an IRI, blank node identifier, or keyword.
	ErrCodeInvalidIRIMapping ErrorCode = "invalid IRI mapping"
	// ErrCodeInvalidKeywordAlias indicates an invalid keyword alias definition.
	ErrCodeInvalidKeywordAlias ErrorCode = "invalid keyword alias"
	// ErrCodeInvalidTypeMapping indicates a term @type that is not a valid type mapping.
	ErrCodeInvalidTypeMapping ErrorCode = "invalid type mapping"
	// ErrCodeInvalidLanguageMapping indicates a term @language that is not a string or null.
	ErrCodeInvalidLanguageMapping ErrorCode = "invalid language mapping"
	// ErrCodeInvalidReverseProperty indicates an invalid use of @reverse in a term definition.
	ErrCodeInvalidReverseProperty ErrorCode = "invalid reverse property"
	// ErrCodeInvalidContainerMapping indicates an unsupported @container value or combination.
	ErrCodeInvalidContainerMapping ErrorCode = "invalid container mapping"
	// ErrCodeInvalidScopedContext indicates a term-scoped context that fails to process.
	ErrCodeInvalidScopedContext ErrorCode = "invalid scoped context"
	// ErrCodeInvalidPrefixValue indicates a non-boolean @prefix value.
	ErrCodeInvalidPrefixValue ErrorCode = "invalid @prefix value"
	// ErrCodeInvalidNestValue indicates an invalid @nest value in a term
	// definition or node object.
	ErrCodeInvalidNestValue ErrorCode = "invalid @nest value"

	// ErrCodeInvalidIdValue indicates an @id entry that is not a string.
	ErrCodeInvalidIdValue ErrorCode = "invalid @id value"
	// ErrCodeInvalidTypeValue indicates an @type entry that is not a string
	// or array of strings resolving to IRIs.
	ErrCodeInvalidTypeValue ErrorCode = "invalid type value"
	// ErrCodeInvalidValueObject indicates a value object combined with
	// disallowed entries.
	ErrCodeInvalidValueObject ErrorCode = "invalid value object"
	// ErrCodeInvalidValueObjectValue indicates an @value that is not a
	// scalar or null.
	ErrCodeInvalidValueObjectValue ErrorCode = "invalid value object value"
	// ErrCodeInvalidLanguageTaggedString indicates an @language applied to a
	// non-string @value.
	ErrCodeInvalidLanguageTaggedString ErrorCode = "invalid language-tagged string"
	// ErrCodeInvalidLanguageTaggedValue indicates @language combined with @type.
	ErrCodeInvalidLanguageTaggedValue ErrorCode = "invalid language-tagged value"
	// ErrCodeInvalidTypedValue indicates an @value with an @type that is not an IRI.
	ErrCodeInvalidTypedValue ErrorCode = "invalid typed value"
	// ErrCodeInvalidSetOrListObject indicates an @set or @list object with extra entries.
	ErrCodeInvalidSetOrListObject ErrorCode = "invalid set or list object"
	// ErrCodeListOfLists indicates a list nested directly inside another list
	// when the processing mode forbids it.
	ErrCodeListOfLists ErrorCode = "list of lists"
	// ErrCodeInvalidReversePropertyMap indicates an @reverse map containing keywords.
	ErrCodeInvalidReversePropertyMap ErrorCode = "invalid reverse property map"
	// ErrCodeInvalidReversePropertyValue indicates a value object used as a
	// reverse property value.
	ErrCodeInvalidReversePropertyValue ErrorCode = "invalid reverse property value"
	// ErrCodeInvalidReverseValue indicates an @reverse entry that is not an object.
	ErrCodeInvalidReverseValue ErrorCode = "invalid @reverse value"
	// ErrCodeCollidingKeywords indicates two entries expanding to the same keyword.
	ErrCodeCollidingKeywords ErrorCode = "colliding keywords"
	// ErrCodeInvalidIndexValue indicates an @index entry that is not a string.
	ErrCodeInvalidIndexValue ErrorCode = "invalid @index value"
	// ErrCodeInvalidLanguageMapValue indicates a language map value that is
	// not a string or array of strings.
	ErrCodeInvalidLanguageMapValue ErrorCode = "invalid language map value"
	// ErrCodeInvalidIncludedValue indicates an @included entry that is not a
	// node object or array of node objects.
	ErrCodeInvalidIncludedValue ErrorCode = "invalid @included value"
	// ErrCodeConflictingIndexes indicates one node merged from fragments
	// carrying different @index values.
	ErrCodeConflictingIndexes ErrorCode = "conflicting indexes"

	// ErrCodeContextCanceled indicates the context was canceled.
	ErrCodeContextCanceled ErrorCode = "context canceled"
)

// Error is a structured JSON-LD processing failure. It carries a stable
// code from the JSON-LD API error registry, a human-readable detail
// message, and the offending value (IRI, term, or key) when one applies.
type Error struct {
	// Code is the stable error code.
	Code ErrorCode
	// Detail is a human-readable description of the failure.
	Detail string
	// Value is the offending IRI, term, or key, if known.
	Value string
	// Err is the underlying error, if any.
	Err error
}

func (e *Error) Error() string {
	msg := "jsonld: " + string(e.Code)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" (%q)", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

func newError(code ErrorCode, detail string) *Error {
	return &Error{Code: code, Detail: detail}
}

func newValueError(code ErrorCode, detail, value string) *Error {
	return &Error{Code: code, Detail: detail, Value: value}
}

func wrapError(code ErrorCode, detail, value string, err error) *Error {
	return &Error{Code: code, Detail: detail, Value: value, Err: err}
}

// Code returns the error code for an error, or the empty string for nil.
// Context cancellation and deadline errors report ErrCodeContextCanceled;
// errors that do not wrap an *Error report an empty code.
func Code(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var jsonldErr *Error
	if errors.As(err, &jsonldErr) {
		return jsonldErr.Code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeContextCanceled
	}
	return ""
}

// Warning describes a recoverable condition encountered during processing.
// Unless Options.Strict is set, warnings do not abort the call; the
// offending fragment is dropped and processing continues.
type Warning struct {
	// Code identifies the condition.
	Code WarningCode
	// Detail is a human-readable description.
	Detail string
	// Value is the offending value, if known.
	Value string
}

// WarningCode identifies a class of recoverable conditions.
type WarningCode string

const (
	// WarnKeywordLikeTerm flags a term that looks like a keyword and was ignored.
	WarnKeywordLikeTerm WarningCode = "keyword-like term"
	// WarnKeywordLikeValue flags an IRI mapping that looks like a keyword.
	WarnKeywordLikeValue WarningCode = "keyword-like value"
	// WarnInvalidLanguageTag flags a malformed but well-typed language tag.
	WarnInvalidLanguageTag WarningCode = "invalid language tag"
	// WarnDroppedNonStringLanguageValue flags a language-tagged value that is
	// not a string and was dropped.
	WarnDroppedNonStringLanguageValue WarningCode = "dropped non-string language-tagged value"
	// WarnDroppedFreeFloatingNode flags a free-floating node that was dropped.
	WarnDroppedFreeFloatingNode WarningCode = "dropped free-floating node"
)

func (w Warning) String() string {
	msg := string(w.Code)
	if w.Detail != "" {
		msg += ": " + w.Detail
	}
	if w.Value != "" {
		msg += fmt.Sprintf(" (%q)", w.Value)
	}
	return msg
}

// promote converts a warning into a hard error for strict mode. The code
// keeps the warning text so strict and lenient runs report the same cause.
func (w Warning) promote() *Error {
	return &Error{Code: ErrorCode(w.Code), Detail: w.Detail, Value: w.Value}
}
