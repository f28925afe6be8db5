package jsonld

import (
	"bytes"
	"context"
)

// Processor exposes the JSON-LD processing algorithms. Implementations are
// stateless; every call is independent and safe to run concurrently.
type Processor interface {
	// Expand transforms input into the expanded form: an array of node
	// objects with every term resolved to an absolute identifier.
	Expand(ctx context.Context, input interface{}, opts Options) ([]interface{}, error)
	// Compact transforms input into the compact form driven by context.
	Compact(ctx context.Context, input interface{}, context interface{}, opts Options) (map[string]interface{}, error)
	// Flatten transforms input into the flattened form: a deduplicated
	// array of node objects, optionally compacted with context.
	Flatten(ctx context.Context, input interface{}, context interface{}, opts Options) (interface{}, error)
	// FlattenToNodeMap exposes the node map flattening produces, keyed by
	// graph name and node identifier.
	FlattenToNodeMap(ctx context.Context, input interface{}, opts Options) (NodeMap, error)
}

type defaultProcessor struct{}

// NewProcessor returns the default JSON-LD processor.
func NewProcessor() Processor {
	return &defaultProcessor{}
}

// Expand is a convenience wrapper around NewProcessor().Expand.
func Expand(ctx context.Context, input interface{}, opts Options) ([]interface{}, error) {
	return NewProcessor().Expand(ctx, input, opts)
}

// Compact is a convenience wrapper around NewProcessor().Compact.
func Compact(ctx context.Context, input, context interface{}, opts Options) (map[string]interface{}, error) {
	return NewProcessor().Compact(ctx, input, context, opts)
}

// Flatten is a convenience wrapper around NewProcessor().Flatten.
func Flatten(ctx context.Context, input, context interface{}, opts Options) (interface{}, error) {
	return NewProcessor().Flatten(ctx, input, context, opts)
}

// ExpandBytes parses source as JSON and expands it.
func ExpandBytes(ctx context.Context, source []byte, opts Options) ([]interface{}, error) {
	parsed, err := ParseJSON(bytes.NewReader(source))
	if err != nil {
		return nil, wrapError(ErrCodeLoadingDocumentFailed, "parsing input document", "", err)
	}
	return Expand(ctx, parsed, opts)
}

func (p *defaultProcessor) Expand(goCtx context.Context, input interface{}, opts Options) ([]interface{}, error) {
	s := newState(goCtx, opts)
	expanded, err := s.expandDocument(input)
	if err != nil {
		return nil, err
	}
	return expanded, nil
}

// expandDocument runs the full expansion pipeline: initial context,
// expandContext option, the document itself, and top-level normalization.
func (s *state) expandDocument(input interface{}) ([]interface{}, error) {
	active := newContext(s.opts.Base)

	if s.opts.ExpandContext != nil {
		expandCtx := s.opts.ExpandContext
		if obj, ok := expandCtx.(map[string]interface{}); ok {
			if inner, has := obj["@context"]; has {
				expandCtx = inner
			}
		}
		updated, err := s.processContext(active, expandCtx, s.opts.Base, defaultProcessOpts())
		if err != nil {
			return nil, err
		}
		active = updated
	}

	expanded, err := s.expand(active, "", input, s.opts.Base)
	if err != nil {
		return nil, err
	}

	// A lone map whose only entry is @graph unwraps to its contents.
	if obj, ok := expanded.(map[string]interface{}); ok {
		if graph, has := obj["@graph"]; has && len(obj) == 1 {
			expanded = graph
		}
	}
	if expanded == nil {
		return []interface{}{}, nil
	}
	return asArray(expanded), nil
}

func (p *defaultProcessor) Compact(goCtx context.Context, input, contextValue interface{}, opts Options) (map[string]interface{}, error) {
	s := newState(goCtx, opts)

	expanded, err := s.expandDocument(input)
	if err != nil {
		return nil, err
	}
	return s.compactDocument(expanded, contextValue)
}

// compactDocument compacts an expanded forest under contextValue and
// attaches the context to the output.
func (s *state) compactDocument(expanded []interface{}, contextValue interface{}) (map[string]interface{}, error) {
	rawContext := contextValue
	if obj, ok := contextValue.(map[string]interface{}); ok {
		if inner, has := obj["@context"]; has {
			rawContext = inner
		}
	}

	active := newContext(s.opts.Base)
	if rawContext != nil {
		updated, err := s.processContext(active, rawContext, s.opts.Base, defaultProcessOpts())
		if err != nil {
			return nil, err
		}
		active = updated
	}

	compacted, err := s.compactElement(active, "", expanded, false)
	if err != nil {
		return nil, err
	}

	var result map[string]interface{}
	switch value := compacted.(type) {
	case map[string]interface{}:
		result = value
	case []interface{}:
		if len(value) == 0 {
			result = map[string]interface{}{}
		} else {
			result = map[string]interface{}{active.aliasOf("@graph"): value}
		}
	case nil:
		result = map[string]interface{}{}
	default:
		result = map[string]interface{}{active.aliasOf("@graph"): value}
	}

	if rawContext != nil && !isEmptyObject(rawContext) {
		if arr, ok := rawContext.([]interface{}); !ok || len(arr) > 0 {
			result["@context"] = rawContext
		}
	}
	return result, nil
}

func (p *defaultProcessor) Flatten(goCtx context.Context, input, contextValue interface{}, opts Options) (interface{}, error) {
	s := newState(goCtx, opts)

	expanded, err := s.expandDocument(input)
	if err != nil {
		return nil, err
	}
	nodeMap, err := s.flattenNodeMap(expanded, NewBlankNodeGenerator())
	if err != nil {
		return nil, err
	}
	flattened := s.flattenedDocument(nodeMap)

	if contextValue == nil {
		return flattened, nil
	}
	return s.compactDocument(flattened, contextValue)
}

func (p *defaultProcessor) FlattenToNodeMap(goCtx context.Context, input interface{}, opts Options) (NodeMap, error) {
	s := newState(goCtx, opts)

	expanded, err := s.expandDocument(input)
	if err != nil {
		return nil, err
	}
	return s.flattenNodeMap(expanded, NewBlankNodeGenerator())
}
