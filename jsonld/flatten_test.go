package jsonld

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func flattenToNodeMap(t *testing.T, src string, opts Options) NodeMap {
	t.Helper()
	nodeMap, err := NewProcessor().FlattenToNodeMap(context.Background(), mustParseJSON(t, src), opts)
	if err != nil {
		t.Fatalf("FlattenToNodeMap: %v", err)
	}
	return nodeMap
}

func TestFlattenNodeMap(t *testing.T) {
	nodeMap := flattenToNodeMap(t,
		`{"@context":{"knows":"ex:knows"},"@id":"ex:a","knows":{"@id":"ex:b"}}`,
		NewOptions(""))

	want := map[string]map[string]interface{}{
		"ex:a": {
			"@id":      "ex:a",
			"ex:knows": []interface{}{map[string]interface{}{"@id": "ex:b"}},
		},
		"ex:b": {"@id": "ex:b"},
	}
	if diff := cmp.Diff(want, nodeMap.DefaultGraph()); diff != "" {
		t.Errorf("default graph mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenBlankNodeRelabeling(t *testing.T) {
	const input = `{
		"@context": {"ex": "http://example.org/"},
		"@id": "_:custom",
		"ex:p": [{"ex:q": "anonymous"}, {"@id": "_:custom"}]
	}`

	first := flattenToNodeMap(t, input, NewOptions(""))
	graph := first.DefaultGraph()

	if _, has := graph["_:custom"]; has {
		t.Error("input blank node label must be relabeled")
	}
	if _, has := graph["_:b0"]; !has {
		t.Errorf("expected canonical _:b0 entry, got ids %v", sortedNodeIDs(graph))
	}

	// Both references to _:custom map to the same minted identifier.
	node := graph["_:b0"]
	refs := node["http://example.org/p"].([]interface{})
	var sawSelf bool
	for _, ref := range refs {
		if ref.(map[string]interface{})["@id"] == "_:b0" {
			sawSelf = true
		}
	}
	if !sawSelf {
		t.Errorf("expected a self-reference via the minted label, got %v", refs)
	}

	// Separate invocations are independent and produce identical output.
	second := flattenToNodeMap(t, input, NewOptions(""))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("flattening is not deterministic (-first +second):\n%s", diff)
	}
}

func TestFlattenMergesDuplicateSubjects(t *testing.T) {
	nodeMap := flattenToNodeMap(t, `{
		"@context": {"ex": "http://example.org/"},
		"@id": "http://example.org/root",
		"ex:p": [
			{"@id": "ex:a", "@type": "ex:T", "ex:name": "first"},
			{"@id": "ex:a", "@type": ["ex:T", "ex:U"], "ex:name": ["first", "second"]}
		]
	}`, NewOptions(""))

	node := nodeMap.DefaultGraph()["http://example.org/a"]
	if node == nil {
		t.Fatal("merged node missing")
	}
	types := node["@type"].([]interface{})
	if diff := cmp.Diff([]interface{}{"http://example.org/T", "http://example.org/U"}, types); diff != "" {
		t.Errorf("@type union mismatch (-want +got):\n%s", diff)
	}
	names := node["http://example.org/name"].([]interface{})
	if len(names) != 2 {
		t.Errorf("expected deduplicated value union of 2 entries, got %v", names)
	}
}

func TestFlattenListOrderPreserved(t *testing.T) {
	nodeMap := flattenToNodeMap(t, `{
		"@context": {"list": {"@id": "http://example.org/list", "@container": "@list"}},
		"@id": "http://example.org/a",
		"list": ["c", "a", "b"]
	}`, NewOptions(""))

	node := nodeMap.DefaultGraph()["http://example.org/a"]
	lists := node["http://example.org/list"].([]interface{})
	list := lists[0].(map[string]interface{})["@list"].([]interface{})
	want := []interface{}{
		map[string]interface{}{"@value": "c"},
		map[string]interface{}{"@value": "a"},
		map[string]interface{}{"@value": "b"},
	}
	if diff := cmp.Diff(want, list); diff != "" {
		t.Errorf("list order not preserved (-want +got):\n%s", diff)
	}
}

func TestFlattenNamedGraph(t *testing.T) {
	nodeMap := flattenToNodeMap(t, `{
		"@context": {"ex": "http://example.org/"},
		"@id": "http://example.org/g1",
		"ex:label": "graph one",
		"@graph": [{"@id": "ex:a", "ex:p": "v"}]
	}`, NewOptions(""))

	if nodeMap.Graph("http://example.org/g1") == nil {
		t.Fatalf("expected a named graph partition, got %v", nodeMap.GraphNames())
	}
	inner := nodeMap.Graph("http://example.org/g1")["http://example.org/a"]
	if inner == nil {
		t.Fatal("node missing from named graph")
	}
	if diff := cmp.Diff([]interface{}{map[string]interface{}{"@value": "v"}}, inner["http://example.org/p"]); diff != "" {
		t.Errorf("named graph node mismatch (-want +got):\n%s", diff)
	}
	// The graph's own label lives in the default graph.
	if nodeMap.DefaultGraph()["http://example.org/g1"] == nil {
		t.Error("graph name node missing from default graph")
	}
}

func TestFlattenReverseProperties(t *testing.T) {
	nodeMap := flattenToNodeMap(t, `{
		"@context": {"ex": "http://example.org/"},
		"@id": "ex:a",
		"@reverse": {"ex:parent": {"@id": "ex:b", "ex:name": "child"}}
	}`, NewOptions(""))

	b := nodeMap.DefaultGraph()["http://example.org/b"]
	if b == nil {
		t.Fatal("reverse-referencing node missing")
	}
	want := []interface{}{map[string]interface{}{"@id": "http://example.org/a"}}
	if diff := cmp.Diff(want, b["http://example.org/parent"]); diff != "" {
		t.Errorf("reverse relation not forwarded (-want +got):\n%s", diff)
	}
}

func TestFlattenConflictingIndexes(t *testing.T) {
	input := mustParseJSON(t, `[
		{"@id": "ex:a", "@index": "one", "http://example.org/p": "v"},
		{"@id": "ex:a", "@index": "two", "http://example.org/q": "w"}
	]`)
	_, err := NewProcessor().FlattenToNodeMap(context.Background(), input, NewOptions(""))
	if Code(err) != ErrCodeConflictingIndexes {
		t.Fatalf("expected %q, got %v", ErrCodeConflictingIndexes, err)
	}
}

func TestFlattenDocument(t *testing.T) {
	flattened, err := Flatten(context.Background(), mustParseJSON(t, `{
		"@context": {"ex": "http://example.org/"},
		"@id": "ex:a",
		"ex:p": {"ex:q": "deep"}
	}`), nil, NewOptions(""))
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	want := mustParseJSON(t, `[
		{"@id": "_:b0", "http://example.org/q": [{"@value": "deep"}]},
		{"@id": "http://example.org/a", "http://example.org/p": [{"@id": "_:b0"}]}
	]`)
	if diff := cmp.Diff(want, flattened); diff != "" {
		t.Errorf("flattened document mismatch (-want +got):\n%s", diff)
	}
}

func TestBlankNodeGenerator(t *testing.T) {
	g := NewBlankNodeGenerator()
	if got := g.Issue("_:x"); got != "_:b0" {
		t.Errorf("first minted label = %q, want _:b0", got)
	}
	if got := g.Issue("_:x"); got != "_:b0" {
		t.Errorf("repeated original must map to the same label, got %q", got)
	}
	if got := g.Issue(""); got != "_:b1" {
		t.Errorf("anonymous label = %q, want _:b1", got)
	}
	if got := g.Issue(""); got != "_:b2" {
		t.Errorf("anonymous labels must be distinct, got %q", got)
	}
}
