package jsonld

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParseJSON(t *testing.T, src string) interface{} {
	t.Helper()
	v, err := ParseJSON(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parsing test document: %v", err)
	}
	return v
}

// expandString expands a JSON source and fails the test on error.
func expandString(t *testing.T, src string, opts Options) []interface{} {
	t.Helper()
	expanded, err := Expand(context.Background(), mustParseJSON(t, src), opts)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	return expanded
}

func checkExpanded(t *testing.T, src, want string, opts Options) {
	t.Helper()
	got := expandString(t, src, opts)
	expected := mustParseJSON(t, want)
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("expanded document mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandSimpleTerm(t *testing.T) {
	checkExpanded(t,
		`{"@context":{"name":"http://schema.org/name"},"name":"Ann"}`,
		`[{"http://schema.org/name":[{"@value":"Ann"}]}]`,
		NewOptions(""))
}

func TestExpandIDAndType(t *testing.T) {
	checkExpanded(t,
		`{
			"@context": {"@vocab": "http://example.org/ns#"},
			"@id": "fragment",
			"@type": "Person",
			"name": "Ann"
		}`,
		`[{
			"@id": "http://example.org/fragment",
			"@type": ["http://example.org/ns#Person"],
			"http://example.org/ns#name": [{"@value": "Ann"}]
		}]`,
		NewOptions("http://example.org/doc"))
}

func TestExpandTypeCoercion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name: "id coercion yields a node reference",
			input: `{
				"@context": {"homepage": {"@id": "http://xmlns.com/foaf/0.1/homepage", "@type": "@id"}},
				"homepage": "http://example.org/"
			}`,
			want: `[{"http://xmlns.com/foaf/0.1/homepage": [{"@id": "http://example.org/"}]}]`,
		},
		{
			name: "datatype coercion yields a typed value",
			input: `{
				"@context": {"age": {"@id": "http://example.org/age", "@type": "http://www.w3.org/2001/XMLSchema#integer"}},
				"age": "30"
			}`,
			want: `[{"http://example.org/age": [{"@value": "30", "@type": "http://www.w3.org/2001/XMLSchema#integer"}]}]`,
		},
		{
			name: "vocab coercion expands against terms",
			input: `{
				"@context": {
					"@vocab": "http://example.org/ns#",
					"rel": {"@id": "http://example.org/rel", "@type": "@vocab"}
				},
				"rel": "Friend"
			}`,
			want: `[{"http://example.org/rel": [{"@id": "http://example.org/ns#Friend"}]}]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkExpanded(t, tt.input, tt.want, NewOptions(""))
		})
	}
}

func TestExpandDefaultLanguage(t *testing.T) {
	checkExpanded(t,
		`{"@context":{"@language":"en","ex":"http://example.org/"},"ex:greeting":"hello"}`,
		`[{"http://example.org/greeting":[{"@value":"hello","@language":"en"}]}]`,
		NewOptions(""))
}

func TestExpandCompactIRIValue(t *testing.T) {
	checkExpanded(t,
		`{"@context":{"foaf":"http://xmlns.com/foaf/0.1/"},"foaf:name":"Ann","foaf:age":31}`,
		`[{
			"http://xmlns.com/foaf/0.1/age":[{"@value":31}],
			"http://xmlns.com/foaf/0.1/name":[{"@value":"Ann"}]
		}]`,
		NewOptions(""))
}

func TestExpandNumberFormPreserved(t *testing.T) {
	expanded := expandString(t,
		`{"@context":{"ex":"http://example.org/"},"ex:score":4.50}`,
		NewOptions(""))
	node := expanded[0].(map[string]interface{})
	values := node["http://example.org/score"].([]interface{})
	value := values[0].(map[string]interface{})["@value"]
	num, ok := value.(json.Number)
	if !ok {
		t.Fatalf("expected a json.Number, got %T", value)
	}
	if num.String() != "4.50" {
		t.Errorf("number form not preserved: got %q, want %q", num.String(), "4.50")
	}
}

func TestExpandNullValuesDropped(t *testing.T) {
	checkExpanded(t,
		`{"@context":{"ex":"http://example.org/"},"ex:p":null,"ex:q":"kept"}`,
		`[{"http://example.org/q":[{"@value":"kept"}]}]`,
		NewOptions(""))
}

func TestExpandList(t *testing.T) {
	checkExpanded(t,
		`{
			"@context": {"list": {"@id": "http://example.org/list", "@container": "@list"}},
			"@id": "http://example.org/sub",
			"list": ["a", "b"]
		}`,
		`[{
			"@id": "http://example.org/sub",
			"http://example.org/list": [{"@list": [{"@value": "a"}, {"@value": "b"}]}]
		}]`,
		NewOptions(""))
}

func TestExpandNestedList11(t *testing.T) {
	checkExpanded(t,
		`{
			"@context": {"list": {"@id": "http://example.org/list", "@container": "@list"}},
			"@id": "http://example.org/sub",
			"list": [["a"], "b"]
		}`,
		`[{
			"@id": "http://example.org/sub",
			"http://example.org/list": [{"@list": [
				{"@list": [{"@value": "a"}]},
				{"@value": "b"}
			]}]
		}]`,
		NewOptions(""))
}

func TestExpandListOfListsForbidden10(t *testing.T) {
	opts := NewOptions("")
	opts.ProcessingMode = ModeJSONLD10
	input := mustParseJSON(t, `{
		"@context": {"list": {"@id": "http://example.org/list", "@container": "@list"}},
		"@id": "http://example.org/sub",
		"list": [["a"]]
	}`)
	_, err := Expand(context.Background(), input, opts)
	if Code(err) != ErrCodeListOfLists {
		t.Fatalf("expected %q, got error %v", ErrCodeListOfLists, err)
	}
}

func TestExpandKeywordsForbidden10(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "nest",
			input: `{"@id": "http://example.org/a", "@nest": {"http://example.org/p": "v"}}`,
		},
		{
			name:  "included",
			input: `{"@id": "http://example.org/a", "@included": [{"@id": "http://example.org/b"}]}`,
		},
		{
			name:  "direction",
			input: `{"@id": "http://example.org/a", "http://example.org/p": {"@value": "x", "@direction": "rtl"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := NewOptions("")
			opts.ProcessingMode = ModeJSONLD10
			_, err := Expand(context.Background(), mustParseJSON(t, tt.input), opts)
			if Code(err) != ErrCodeProcessingModeConflict {
				t.Fatalf("expected %q, got error %v", ErrCodeProcessingModeConflict, err)
			}
		})
	}
}

func TestExpandLanguageMap(t *testing.T) {
	checkExpanded(t,
		`{
			"@context": {"label": {"@id": "http://example.org/label", "@container": "@language"}},
			"@id": "http://example.org/sub",
			"label": {"en": "hello", "de": "hallo"}
		}`,
		`[{
			"@id": "http://example.org/sub",
			"http://example.org/label": [
				{"@value": "hallo", "@language": "de"},
				{"@value": "hello", "@language": "en"}
			]
		}]`,
		NewOptions(""))
}

func TestExpandIndexMap(t *testing.T) {
	checkExpanded(t,
		`{
			"@context": {"post": {"@id": "http://example.org/post", "@container": "@index"}},
			"@id": "http://example.org/sub",
			"post": {"first": {"@id": "http://example.org/p1"}}
		}`,
		`[{
			"@id": "http://example.org/sub",
			"http://example.org/post": [{"@id": "http://example.org/p1", "@index": "first"}]
		}]`,
		NewOptions(""))
}

func TestExpandIDMap(t *testing.T) {
	checkExpanded(t,
		`{
			"@context": {
				"ex": "http://example.org/",
				"post": {"@id": "ex:post", "@container": "@id"}
			},
			"@id": "http://example.org/sub",
			"post": {"http://example.org/p1": {"ex:title": "first"}}
		}`,
		`[{
			"@id": "http://example.org/sub",
			"http://example.org/post": [{
				"@id": "http://example.org/p1",
				"http://example.org/title": [{"@value": "first"}]
			}]
		}]`,
		NewOptions(""))
}

func TestExpandReverseProperty(t *testing.T) {
	checkExpanded(t,
		`{
			"@context": {"children": {"@reverse": "http://example.org/parent"}},
			"@id": "http://example.org/a",
			"children": [{"@id": "http://example.org/b"}]
		}`,
		`[{
			"@id": "http://example.org/a",
			"@reverse": {"http://example.org/parent": [{"@id": "http://example.org/b"}]}
		}]`,
		NewOptions(""))
}

func TestExpandReverseKeyword(t *testing.T) {
	checkExpanded(t,
		`{
			"@id": "http://example.org/a",
			"@reverse": {"http://example.org/parent": {"@id": "http://example.org/b"}}
		}`,
		`[{
			"@id": "http://example.org/a",
			"@reverse": {"http://example.org/parent": [{"@id": "http://example.org/b"}]}
		}]`,
		NewOptions(""))
}

func TestExpandPropertyScopedContext(t *testing.T) {
	checkExpanded(t,
		`{
			"@context": {
				"ex": "http://example.org/",
				"p": {"@id": "ex:p", "@context": {"q": "ex:q"}}
			},
			"@id": "http://example.org/sub",
			"p": {"q": "v"}
		}`,
		`[{
			"@id": "http://example.org/sub",
			"http://example.org/p": [{"http://example.org/q": [{"@value": "v"}]}]
		}]`,
		NewOptions(""))
}

func TestExpandTypeScopedContext(t *testing.T) {
	checkExpanded(t,
		`{
			"@context": {
				"ex": "http://example.org/",
				"Person": {"@id": "ex:Person", "@context": {"name": "ex:name"}}
			},
			"@id": "http://example.org/sub",
			"@type": "Person",
			"name": "Ann"
		}`,
		`[{
			"@id": "http://example.org/sub",
			"@type": ["http://example.org/Person"],
			"http://example.org/name": [{"@value": "Ann"}]
		}]`,
		NewOptions(""))
}

func TestExpandNest(t *testing.T) {
	checkExpanded(t,
		`{
			"@context": {
				"ex": "http://example.org/",
				"meta": "@nest"
			},
			"@id": "http://example.org/sub",
			"meta": {"ex:hidden": "v"}
		}`,
		`[{
			"@id": "http://example.org/sub",
			"http://example.org/hidden": [{"@value": "v"}]
		}]`,
		NewOptions(""))
}

func TestExpandJSONLiteral(t *testing.T) {
	checkExpanded(t,
		`{
			"@context": {"data": {"@id": "http://example.org/data", "@type": "@json"}},
			"@id": "http://example.org/sub",
			"data": {"a": [1, true]}
		}`,
		`[{
			"@id": "http://example.org/sub",
			"http://example.org/data": [{"@value": {"a": [1, true]}, "@type": "@json"}]
		}]`,
		NewOptions(""))
}

func TestExpandGraphContainer(t *testing.T) {
	checkExpanded(t,
		`{
			"@context": {
				"ex": "http://example.org/",
				"claims": {"@id": "ex:claims", "@container": "@graph"}
			},
			"@id": "http://example.org/sub",
			"claims": {"ex:p": "v"}
		}`,
		`[{
			"@id": "http://example.org/sub",
			"http://example.org/claims": [{"@graph": [{"http://example.org/p": [{"@value": "v"}]}]}]
		}]`,
		NewOptions(""))
}

func TestExpandIncluded(t *testing.T) {
	checkExpanded(t,
		`{
			"@context": {"ex": "http://example.org/"},
			"@id": "http://example.org/a",
			"ex:p": "v",
			"@included": [{"@id": "http://example.org/b", "ex:q": "w"}]
		}`,
		`[{
			"@id": "http://example.org/a",
			"@included": [{"@id": "http://example.org/b", "http://example.org/q": [{"@value": "w"}]}],
			"http://example.org/p": [{"@value": "v"}]
		}]`,
		NewOptions(""))
}

func TestExpandErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  ErrorCode
	}{
		{
			name:  "non-string @id",
			input: `{"@id": true, "http://example.org/p": "v"}`,
			code:  ErrCodeInvalidIdValue,
		},
		{
			name:  "non-string @type",
			input: `{"@type": true, "http://example.org/p": "v"}`,
			code:  ErrCodeInvalidTypeValue,
		},
		{
			name:  "value object with node property",
			input: `{"@value": "v", "http://example.org/p": "x"}`,
			code:  ErrCodeInvalidValueObject,
		},
		{
			name:  "value object with @type and @language",
			input: `{"@value": "v", "@language": "en", "@type": "http://example.org/T"}`,
			code:  ErrCodeInvalidValueObject,
		},
		{
			name:  "structured @value",
			input: `{"@value": {"a": 1}}`,
			code:  ErrCodeInvalidValueObjectValue,
		},
		{
			name:  "non-string @language",
			input: `{"@value": "v", "@language": 5}`,
			code:  ErrCodeInvalidLanguageTaggedString,
		},
		{
			name:  "non-object @reverse",
			input: `{"@id": "http://example.org/a", "@reverse": "x"}`,
			code:  ErrCodeInvalidReverseValue,
		},
		{
			name:  "keyword inside reverse map",
			input: `{"@id": "http://example.org/a", "@reverse": {"@id": "http://example.org/b"}}`,
			code:  ErrCodeInvalidReversePropertyMap,
		},
		{
			name:  "value object as reverse value",
			input: `{"@id": "http://example.org/a", "@reverse": {"http://example.org/p": {"@value": "v"}}}`,
			code:  ErrCodeInvalidReversePropertyValue,
		},
		{
			name: "colliding keyword aliases",
			input: `{
				"@context": {"id": "@id"},
				"@id": "http://example.org/a",
				"id": "http://example.org/b"
			}`,
			code: ErrCodeCollidingKeywords,
		},
		{
			name: "set object with extra entries",
			input: `{
				"@context": {"ex": "http://example.org/"},
				"@id": "http://example.org/a",
				"ex:p": {"@set": ["a"], "ex:q": "b"}
			}`,
			code: ErrCodeInvalidSetOrListObject,
		},
		{
			name: "non-string language map value",
			input: `{
				"@context": {"label": {"@id": "http://example.org/label", "@container": "@language"}},
				"@id": "http://example.org/a",
				"label": {"en": 5}
			}`,
			code: ErrCodeInvalidLanguageMapValue,
		},
		{
			name:  "non-string @index",
			input: `{"@id": "http://example.org/a", "@index": 5, "http://example.org/p": "v"}`,
			code:  ErrCodeInvalidIndexValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Expand(context.Background(), mustParseJSON(t, tt.input), NewOptions(""))
			if Code(err) != tt.code {
				t.Fatalf("expected code %q, got error %v", tt.code, err)
			}
		})
	}
}

func TestExpandFreeFloatingNodeDropped(t *testing.T) {
	var warned []Warning
	opts := NewOptions("")
	opts.WarnHandler = func(w Warning) { warned = append(warned, w) }

	expanded := expandString(t, `{"@id": "http://example.org/x"}`, opts)
	if len(expanded) != 0 {
		t.Fatalf("expected free-floating node to be dropped, got %v", expanded)
	}
	if len(warned) != 1 || warned[0].Code != WarnDroppedFreeFloatingNode {
		t.Errorf("expected a dropped-node warning, got %v", warned)
	}
}

func TestExpandFreeFloatingNodeKept(t *testing.T) {
	opts := NewOptions("")
	opts.KeepFreeFloatingNodes = true
	checkExpanded(t, `{"@id": "http://example.org/x"}`, `[{"@id": "http://example.org/x"}]`, opts)
}

func TestExpandNonStringLanguageValue(t *testing.T) {
	const input = `{
		"@context": {"ex": "http://example.org/"},
		"@id": "http://example.org/a",
		"ex:p": {"@value": 5, "@language": "en"}
	}`

	t.Run("lenient drops the value", func(t *testing.T) {
		var warned []Warning
		opts := NewOptions("")
		opts.WarnHandler = func(w Warning) { warned = append(warned, w) }
		expanded := expandString(t, input, opts)
		if len(expanded) != 0 {
			t.Fatalf("expected the offending value and the bare node to be dropped, got %v", expanded)
		}
		if len(warned) == 0 || warned[0].Code != WarnDroppedNonStringLanguageValue {
			t.Errorf("expected a dropped-value warning, got %v", warned)
		}
	})

	t.Run("strict fails", func(t *testing.T) {
		opts := NewOptions("")
		opts.Strict = true
		_, err := Expand(context.Background(), mustParseJSON(t, input), opts)
		if Code(err) != ErrCodeInvalidLanguageTaggedString {
			t.Fatalf("expected %q, got %v", ErrCodeInvalidLanguageTaggedString, err)
		}
	})
}

func TestExpandIsFixedPoint(t *testing.T) {
	first := expandString(t, `{
		"@context": {
			"@vocab": "http://example.org/ns#",
			"knows": {"@type": "@id"},
			"label": {"@container": "@language"}
		},
		"@id": "http://example.org/a",
		"@type": "Person",
		"knows": "http://example.org/b",
		"label": {"en": "hi"},
		"age": 30
	}`, NewOptions(""))

	again, err := Expand(context.Background(), []interface{}{deepCopy(first[0])}, NewOptions(""))
	if err != nil {
		t.Fatalf("re-expansion: %v", err)
	}
	if diff := cmp.Diff(first, again); diff != "" {
		t.Errorf("expansion is not a fixed point (-first +again):\n%s", diff)
	}
}

func TestExpandWithExpandContext(t *testing.T) {
	opts := NewOptions("")
	opts.ExpandContext = mustParseJSON(t, `{"name": "http://schema.org/name"}`)
	checkExpanded(t, `{"name": "Ann"}`, `[{"http://schema.org/name":[{"@value":"Ann"}]}]`, opts)
}

func TestExpandCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Expand(ctx, mustParseJSON(t, `{"http://example.org/p": "v"}`), NewOptions(""))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExpandBytes(t *testing.T) {
	expanded, err := ExpandBytes(context.Background(),
		[]byte(`{"@context":{"name":"http://schema.org/name"},"name":"Ann"}`), NewOptions(""))
	if err != nil {
		t.Fatalf("ExpandBytes: %v", err)
	}
	want := mustParseJSON(t, `[{"http://schema.org/name":[{"@value":"Ann"}]}]`)
	if diff := cmp.Diff(want, []interface{}(expanded)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
