package jsonld

import (
	"sort"
	"strconv"
)

// BlankNodeGenerator mints canonical blank node identifiers. A generator
// is scoped to one flattening invocation: identifiers are pairwise
// distinct within it, the same original label always maps to the same
// minted label, and separate invocations never share state.
type BlankNodeGenerator struct {
	counter int
	mapping map[string]string
}

// NewBlankNodeGenerator creates a generator starting at _:b0.
func NewBlankNodeGenerator() *BlankNodeGenerator {
	return &BlankNodeGenerator{mapping: map[string]string{}}
}

// Issue returns the canonical identifier for original, minting a fresh one
// on first sight. An empty original always mints a fresh identifier.
func (g *BlankNodeGenerator) Issue(original string) string {
	if original != "" {
		if minted, ok := g.mapping[original]; ok {
			return minted
		}
	}
	minted := "_:b" + strconv.Itoa(g.counter)
	g.counter++
	if original != "" {
		g.mapping[original] = minted
	}
	return minted
}

// NodeMap is the output of flattening: a mapping from graph name ("@default"
// or a named graph identifier) to node identifier to node object. Each
// identifier owns exactly one node object aggregating every property
// asserted about it.
type NodeMap map[string]map[string]map[string]interface{}

// DefaultGraphName keys the default graph partition of a NodeMap.
const DefaultGraphName = "@default"

// DefaultGraph returns the default graph partition.
func (m NodeMap) DefaultGraph() map[string]map[string]interface{} {
	return m[DefaultGraphName]
}

// Graph returns the partition for the named graph, or nil.
func (m NodeMap) Graph(name string) map[string]map[string]interface{} {
	return m[name]
}

// GraphNames returns the graph names in lexicographic order.
func (m NodeMap) GraphNames() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m NodeMap) graph(name string) map[string]map[string]interface{} {
	g, ok := m[name]
	if !ok {
		g = map[string]map[string]interface{}{}
		m[name] = g
	}
	return g
}

func (m NodeMap) node(graphName, id string) map[string]interface{} {
	g := m.graph(graphName)
	node, ok := g[id]
	if !ok {
		node = map[string]interface{}{"@id": id}
		g[id] = node
	}
	return node
}

// listRef accumulates list entries during node map generation; lists keep
// element order verbatim and are never merged by identifier.
type listRef struct {
	items []interface{}
}

// generateNodeMap merges an expanded element into the node map. activeSubject
// is either a subject identifier string or, for reverse relationships, a
// reference object to embed in the target node.
func (s *state) generateNodeMap(element interface{}, nodeMap NodeMap, generator *BlankNodeGenerator,
	activeGraph string, activeSubject interface{}, activeProperty string, list *listRef) error {
	if arr, ok := element.([]interface{}); ok {
		for _, item := range arr {
			if err := s.generateNodeMap(item, nodeMap, generator, activeGraph, activeSubject, activeProperty, list); err != nil {
				return err
			}
		}
		return nil
	}

	obj, ok := element.(map[string]interface{})
	if !ok {
		return nil
	}

	// Relabel blank node types up front.
	if rawTypes, has := obj["@type"]; has {
		types := asArray(rawTypes)
		relabeled := make([]interface{}, len(types))
		for i, t := range types {
			if str, ok := t.(string); ok && isBlankNodeIdentifier(str) {
				relabeled[i] = generator.Issue(str)
			} else {
				relabeled[i] = t
			}
		}
		obj["@type"] = relabeled
	}

	if _, isValue := obj["@value"]; isValue {
		if list != nil {
			list.items = append(list.items, obj)
			return nil
		}
		subjectID, _ := activeSubject.(string)
		node := nodeMap.node(activeGraph, subjectID)
		node[activeProperty] = appendUnique(asArray(node[activeProperty]), obj)
		return nil
	}

	if rawList, isList := obj["@list"]; isList {
		ref := &listRef{}
		if err := s.generateNodeMap(rawList, nodeMap, generator, activeGraph, activeSubject, activeProperty, ref); err != nil {
			return err
		}
		result := map[string]interface{}{"@list": ref.items}
		if ref.items == nil {
			result["@list"] = []interface{}{}
		}
		if list != nil {
			list.items = append(list.items, result)
			return nil
		}
		subjectID, _ := activeSubject.(string)
		node := nodeMap.node(activeGraph, subjectID)
		node[activeProperty] = append(asArray(node[activeProperty]), result)
		return nil
	}

	// Node object.
	var id string
	if rawID, has := obj["@id"]; has {
		str, _ := rawID.(string)
		if str == "" || isBlankNodeIdentifier(str) {
			id = generator.Issue(str)
		} else {
			id = str
		}
	} else {
		id = generator.Issue("")
	}

	node := nodeMap.node(activeGraph, id)

	if subjectRef, isReverse := activeSubject.(map[string]interface{}); isReverse {
		node[activeProperty] = appendUnique(asArray(node[activeProperty]), subjectRef)
	} else if activeProperty != "" {
		reference := map[string]interface{}{"@id": id}
		if list != nil {
			list.items = append(list.items, reference)
		} else {
			subjectID, _ := activeSubject.(string)
			subjectNode := nodeMap.node(activeGraph, subjectID)
			subjectNode[activeProperty] = appendUnique(asArray(subjectNode[activeProperty]), reference)
		}
	}

	if rawTypes, has := obj["@type"]; has {
		merged := asArray(node["@type"])
		for _, t := range asArray(rawTypes) {
			merged = appendUnique(merged, t)
		}
		node["@type"] = merged
	}

	if rawIndex, has := obj["@index"]; has {
		if existing, present := node["@index"]; present && !deepEqual(existing, rawIndex) {
			return newValueError(ErrCodeConflictingIndexes,
				"node object carries conflicting @index values", id)
		}
		node["@index"] = rawIndex
	}

	if rawReverse, has := obj["@reverse"]; has {
		if reverseMap, ok := rawReverse.(map[string]interface{}); ok {
			referenced := map[string]interface{}{"@id": id}
			for _, property := range sortedKeys(reverseMap) {
				for _, value := range asArray(reverseMap[property]) {
					if err := s.generateNodeMap(value, nodeMap, generator, activeGraph, referenced, property, nil); err != nil {
						return err
					}
				}
			}
		}
	}

	if rawGraph, has := obj["@graph"]; has {
		if err := s.generateNodeMap(rawGraph, nodeMap, generator, id, nil, "", nil); err != nil {
			return err
		}
	}

	if rawIncluded, has := obj["@included"]; has {
		if err := s.generateNodeMap(rawIncluded, nodeMap, generator, activeGraph, nil, "", nil); err != nil {
			return err
		}
	}

	for _, property := range sortedKeys(obj) {
		switch property {
		case "@id", "@type", "@index", "@reverse", "@graph", "@included", "@value", "@list":
			continue
		}
		value := obj[property]
		if isBlankNodeIdentifier(property) {
			property = generator.Issue(property)
		}
		if _, has := node[property]; !has {
			node[property] = []interface{}{}
		}
		if err := s.generateNodeMap(value, nodeMap, generator, activeGraph, id, property, nil); err != nil {
			return err
		}
	}
	return nil
}

// flattenNodeMap builds a node map from an expanded forest using generator.
func (s *state) flattenNodeMap(expanded interface{}, generator *BlankNodeGenerator) (NodeMap, error) {
	nodeMap := NodeMap{DefaultGraphName: map[string]map[string]interface{}{}}
	if err := s.generateNodeMap(expanded, nodeMap, generator, DefaultGraphName, nil, "", nil); err != nil {
		return nil, err
	}
	return nodeMap, nil
}

// flattenedDocument folds named graphs into the default graph and returns
// the flattened form: an array of node objects.
func (s *state) flattenedDocument(nodeMap NodeMap) []interface{} {
	defaultGraph := nodeMap.graph(DefaultGraphName)
	for _, graphName := range nodeMap.GraphNames() {
		if graphName == DefaultGraphName {
			continue
		}
		entry, ok := defaultGraph[graphName]
		if !ok {
			entry = map[string]interface{}{"@id": graphName}
			defaultGraph[graphName] = entry
		}
		graph := nodeMap.graph(graphName)
		nodes := make([]interface{}, 0, len(graph))
		for _, id := range sortedNodeIDs(graph) {
			node := graph[id]
			if len(node) > 1 {
				nodes = append(nodes, node)
			}
		}
		entry["@graph"] = nodes
	}

	flattened := make([]interface{}, 0, len(defaultGraph))
	for _, id := range sortedNodeIDs(defaultGraph) {
		node := defaultGraph[id]
		if len(node) > 1 {
			flattened = append(flattened, node)
		}
	}
	return flattened
}

func sortedNodeIDs(graph map[string]map[string]interface{}) []string {
	ids := make([]string, 0, len(graph))
	for id := range graph {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
