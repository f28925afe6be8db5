package jsonld

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// checkCompactRoundTrip verifies that compacting a document under its own
// context reproduces it: compact(expand(doc), ctx) == doc.
func checkCompactRoundTrip(t *testing.T, src string, opts Options) {
	t.Helper()
	doc := mustParseJSON(t, src).(map[string]interface{})
	contextValue := map[string]interface{}{"@context": doc["@context"]}

	compacted, err := Compact(context.Background(), deepCopy(doc), contextValue, opts)
	if err != nil {
		t.Fatalf("Compact: %v", err)
	}
	if diff := cmp.Diff(doc, compacted); diff != "" {
		t.Errorf("compaction round trip mismatch (-doc +compacted):\n%s", diff)
	}
}

func TestCompactRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "simple term",
			doc:  `{"@context":{"name":"http://schema.org/name"},"name":"Ann"}`,
		},
		{
			name: "id coercion",
			doc: `{
				"@context": {"homepage": {"@id": "http://xmlns.com/foaf/0.1/homepage", "@type": "@id"}},
				"homepage": "http://example.org/"
			}`,
		},
		{
			name: "vocab and type",
			doc: `{
				"@context": {"@vocab": "http://example.org/ns#"},
				"@id": "http://example.org/a",
				"@type": "Person",
				"name": "Ann"
			}`,
		},
		{
			name: "prefix terms",
			doc: `{
				"@context": {"foaf": "http://xmlns.com/foaf/0.1/"},
				"@id": "http://example.org/a",
				"foaf:name": "Ann"
			}`,
		},
		{
			name: "keyword alias",
			doc: `{
				"@context": {"id": "@id", "foaf": "http://xmlns.com/foaf/0.1/"},
				"id": "http://example.org/a",
				"foaf:name": "Ann"
			}`,
		},
		{
			name: "list container",
			doc: `{
				"@context": {"list": {"@id": "http://example.org/list", "@container": "@list"}},
				"@id": "http://example.org/a",
				"list": ["a", "b"]
			}`,
		},
		{
			name: "language map",
			doc: `{
				"@context": {"label": {"@id": "http://example.org/label", "@container": "@language"}},
				"@id": "http://example.org/a",
				"label": {"de": "hallo", "en": "hello"}
			}`,
		},
		{
			name: "index map",
			doc: `{
				"@context": {"post": {"@id": "http://example.org/post", "@container": "@index"}},
				"@id": "http://example.org/a",
				"post": {"first": {"@id": "http://example.org/p1"}}
			}`,
		},
		{
			name: "language-tuned term selection",
			doc: `{
				"@context": {
					"label": "http://example.org/label",
					"label_en": {"@id": "http://example.org/label", "@language": "en"}
				},
				"@id": "http://example.org/a",
				"label": "plain",
				"label_en": "hi"
			}`,
		},
		{
			name: "reverse term",
			doc: `{
				"@context": {"children": {"@reverse": "http://example.org/parent"}},
				"@id": "http://example.org/a",
				"children": {"@id": "http://example.org/b"}
			}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCompactRoundTrip(t, tt.doc, NewOptions(""))
		})
	}
}

func TestCompactArraysDisabled(t *testing.T) {
	opts := NewOptions("")
	opts.CompactArrays = false

	compacted, err := Compact(context.Background(),
		mustParseJSON(t, `{"@context":{"name":"http://schema.org/name"},"@id":"http://example.org/a","name":"Ann"}`),
		mustParseJSON(t, `{"@context":{"name":"http://schema.org/name"}}`),
		opts)
	if err != nil {
		t.Fatalf("Compact: %v", err)
	}
	if diff := cmp.Diff([]interface{}{"Ann"}, compacted["name"]); diff != "" {
		t.Errorf("singleton array must survive with compactArrays disabled (-want +got):\n%s", diff)
	}
}

func TestCompactToRelative(t *testing.T) {
	const input = `{"@id": "http://example.org/docs/other", "http://example.org/docs/p": "v"}`

	t.Run("enabled", func(t *testing.T) {
		opts := NewOptions("http://example.org/docs/doc")
		compacted, err := Compact(context.Background(), mustParseJSON(t, input), nil, opts)
		if err != nil {
			t.Fatalf("Compact: %v", err)
		}
		if got := compacted["@id"]; got != "other" {
			t.Errorf("@id = %v, want %q", got, "other")
		}
	})

	t.Run("disabled", func(t *testing.T) {
		opts := NewOptions("http://example.org/docs/doc")
		opts.CompactToRelative = false
		compacted, err := Compact(context.Background(), mustParseJSON(t, input), nil, opts)
		if err != nil {
			t.Fatalf("Compact: %v", err)
		}
		if got := compacted["@id"]; got != "http://example.org/docs/other" {
			t.Errorf("@id = %v, want the absolute IRI", got)
		}
	})
}

func TestCompactVocabSuffix(t *testing.T) {
	compacted, err := Compact(context.Background(),
		mustParseJSON(t, `{"@id": "http://example.org/a", "http://example.org/ns#age": 31}`),
		mustParseJSON(t, `{"@context": {"@vocab": "http://example.org/ns#"}}`),
		NewOptions(""))
	if err != nil {
		t.Fatalf("Compact: %v", err)
	}
	if _, has := compacted["age"]; !has {
		t.Errorf("expected vocab-relative key %q, got %v", "age", compacted)
	}
}

func TestCompactMultipleTopLevelNodes(t *testing.T) {
	compacted, err := Compact(context.Background(), mustParseJSON(t, `[
		{"@id": "http://example.org/a", "http://example.org/p": [{"@value": "v"}]},
		{"@id": "http://example.org/b", "http://example.org/p": [{"@value": "w"}]}
	]`), nil, NewOptions(""))
	if err != nil {
		t.Fatalf("Compact: %v", err)
	}
	graph, ok := compacted["@graph"].([]interface{})
	if !ok || len(graph) != 2 {
		t.Fatalf("expected two nodes under @graph, got %v", compacted)
	}
}

func TestCompactContextAttachment(t *testing.T) {
	t.Run("context object is attached", func(t *testing.T) {
		ctxObj := mustParseJSON(t, `{"name": "http://schema.org/name"}`)
		compacted, err := Compact(context.Background(),
			mustParseJSON(t, `{"http://schema.org/name": "Ann"}`),
			map[string]interface{}{"@context": ctxObj},
			NewOptions(""))
		if err != nil {
			t.Fatalf("Compact: %v", err)
		}
		if diff := cmp.Diff(ctxObj, compacted["@context"]); diff != "" {
			t.Errorf("@context mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty context is omitted", func(t *testing.T) {
		compacted, err := Compact(context.Background(),
			mustParseJSON(t, `{"http://schema.org/name": "Ann"}`),
			mustParseJSON(t, `{"@context": {}}`),
			NewOptions(""))
		if err != nil {
			t.Fatalf("Compact: %v", err)
		}
		if _, has := compacted["@context"]; has {
			t.Errorf("empty context must not be attached, got %v", compacted)
		}
	})
}

func TestFlattenWithContext(t *testing.T) {
	flattened, err := Flatten(context.Background(), mustParseJSON(t, `{
		"@context": {"knows": {"@id": "http://example.org/knows", "@type": "@id"}},
		"@id": "http://example.org/a",
		"knows": {"@id": "http://example.org/b", "knows": "http://example.org/a"}
	}`), mustParseJSON(t, `{"@context": {"knows": {"@id": "http://example.org/knows", "@type": "@id"}}}`),
		NewOptions(""))
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	result, ok := flattened.(map[string]interface{})
	if !ok {
		t.Fatalf("expected a map, got %T", flattened)
	}
	graph, ok := result["@graph"].([]interface{})
	if !ok || len(graph) != 2 {
		t.Fatalf("expected two flattened nodes, got %v", result)
	}
	first := graph[0].(map[string]interface{})
	if first["@id"] != "http://example.org/a" || first["knows"] != "http://example.org/b" {
		t.Errorf("unexpected first node %v", first)
	}
}
