// Package jsonld implements the JSON-LD 1.1 processing algorithms:
// context processing, expansion, flattening, and compaction.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// The package transforms documents between the three canonical JSON-LD
// representations working directly on generic JSON value trees
// (map[string]interface{}, []interface{}, scalars) as produced by
// encoding/json with UseNumber:
//
//   - Expanded form: context-independent, every term resolved to an
//     absolute IRI, every value wrapped in a value, list, or node object.
//   - Flattened form: a deduplicated graph of node objects keyed by
//     identifier, with blank identifiers minted for unlabeled nodes.
//   - Compact form: context-driven, human-oriented, with terms selected
//     through an inverted context.
//
// Example (expansion):
//
//	doc, _ := jsonld.ParseJSON(strings.NewReader(input))
//	expanded, err := jsonld.Expand(ctx, doc, jsonld.NewOptions("https://example.org/"))
//	if err != nil {
//	    // handle error
//	}
//
// Remote contexts are dereferenced through a pluggable DocumentLoader;
// NewHTTPDocumentLoader provides one that honors Cache-Control headers,
// and NewStaticDocumentLoader serves pre-fetched contexts offline.
//
// Errors carry stable codes from the JSON-LD API error registry; use
// Code(err) or errors.Is against an *Error to classify failures. A small
// set of recoverable conditions are reported as warnings and dropped
// unless Options.Strict promotes them to hard errors.
package jsonld
