package jsonld

import (
	"sort"
	"strings"
)

// expand implements the expansion algorithm over a JSON value. It returns
// nil when the element is dropped, a map for a single expanded object, or
// a slice of expanded values.
func (s *state) expand(active *Context, activeProperty string, element interface{}, baseURL string) (interface{}, error) {
	if err := s.checkCanceled(); err != nil {
		return nil, err
	}
	if element == nil {
		return nil, nil
	}

	activeDef := active.term(activeProperty)

	switch value := element.(type) {
	case []interface{}:
		return s.expandArray(active, activeProperty, value, baseURL)
	case map[string]interface{}:
		return s.expandObject(active, activeProperty, value, baseURL)
	default:
		// Scalar. Free-floating scalars are dropped.
		if activeProperty == "" || activeProperty == "@graph" {
			return nil, nil
		}
		if activeDef != nil && activeDef.HasLocalContext {
			scoped, err := s.processContext(active, activeDef.LocalContext, activeDef.BaseURL, processOpts{
				overrideProtected: true, propagate: true, validateScoped: true,
			})
			if err != nil {
				return nil, err
			}
			active = scoped
		}
		return s.expandValue(active, activeProperty, value)
	}
}

func (s *state) expandArray(active *Context, activeProperty string, elements []interface{}, baseURL string) (interface{}, error) {
	activeDef := active.term(activeProperty)
	result := make([]interface{}, 0, len(elements))
	for _, item := range elements {
		expanded, err := s.expand(active, activeProperty, item, baseURL)
		if err != nil {
			return nil, err
		}
		if expanded == nil {
			continue
		}
		if activeDef.hasContainer("@list") {
			if arr, isArr := expanded.([]interface{}); isArr {
				if !s.opts.is11() {
					return nil, newError(ErrCodeListOfLists, "a list must not contain another list")
				}
				expanded = map[string]interface{}{"@list": arr}
			} else if isListObject(expanded) && !s.opts.is11() {
				return nil, newError(ErrCodeListOfLists, "a list must not contain another list")
			}
		}
		if arr, ok := expanded.([]interface{}); ok {
			result = append(result, arr...)
		} else {
			result = append(result, expanded)
		}
	}
	return result, nil
}

// isListObject reports whether v is an expanded list object.
func isListObject(v interface{}) bool {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return false
	}
	_, has := obj["@list"]
	return has
}

// isValueObject reports whether v is an expanded value object.
func isValueObject(v interface{}) bool {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return false
	}
	_, has := obj["@value"]
	return has
}

// isNodeObject reports whether v is an expanded node object: a map that is
// neither a value, list, nor set object.
func isNodeObject(v interface{}) bool {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return false
	}
	for _, key := range []string{"@value", "@list", "@set"} {
		if _, has := obj[key]; has {
			return false
		}
	}
	return true
}

// isNodeReference reports whether v is a node object whose only entry is @id.
func isNodeReference(v interface{}) bool {
	obj, ok := v.(map[string]interface{})
	if !ok || len(obj) != 1 {
		return false
	}
	_, has := obj["@id"]
	return has
}

// isGraphObject reports whether v is an expanded graph object.
func isGraphObject(v interface{}) bool {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return false
	}
	if _, has := obj["@graph"]; !has {
		return false
	}
	for key := range obj {
		switch key {
		case "@graph", "@id", "@index", "@context":
		default:
			return false
		}
	}
	return true
}

// expandObject expands a JSON object element.
func (s *state) expandObject(active *Context, activeProperty string, element map[string]interface{}, baseURL string) (interface{}, error) {
	activeDef := active.term(activeProperty)

	// Leaving a non-propagated context behind: revert before expanding a
	// nested node object, but not for value objects or bare references.
	if active.previous != nil && !s.hasValueEntry(active, element) && !s.isSingleIDEntry(active, element) {
		active = active.revertToPrevious()
	}

	// Property-scoped context from the active property's definition.
	if activeDef != nil && activeDef.HasLocalContext {
		scoped, err := s.processContext(active, activeDef.LocalContext, activeDef.BaseURL, processOpts{
			overrideProtected: true, propagate: true, validateScoped: true,
		})
		if err != nil {
			return nil, err
		}
		active = scoped
	}

	// An embedded @context updates the active context for this subtree
	// before any other entry is considered.
	if localCtx, has := element["@context"]; has {
		updated, err := s.processContext(active, localCtx, baseURL, defaultProcessOpts())
		if err != nil {
			return nil, err
		}
		active = updated
	}

	// Type-scoped contexts: the first key expanding to @type triggers the
	// scoped contexts of its values, applied in lexicographic order and
	// not propagated into nested nodes.
	typeScoped := active
	inputType := ""
	for _, key := range sortedKeys(element) {
		expandedKey, err := s.expandIRI(active, key, false, true, nil, nil)
		if err != nil {
			return nil, err
		}
		if expandedKey != "@type" {
			continue
		}
		types := make([]string, 0, 4)
		for _, t := range asArray(element[key]) {
			if str, ok := t.(string); ok {
				types = append(types, str)
			}
		}
		sort.Strings(types)
		for _, t := range types {
			if def := typeScoped.term(t); def != nil && def.HasLocalContext {
				updated, err := s.processContext(active, def.LocalContext, def.BaseURL, processOpts{
					propagate: false, validateScoped: true,
				})
				if err != nil {
					return nil, err
				}
				active = updated
			}
		}
		if len(types) > 0 {
			expanded, err := s.expandIRI(typeScoped, types[len(types)-1], true, true, nil, nil)
			if err != nil {
				return nil, err
			}
			inputType = expanded
		}
		break
	}

	result := map[string]interface{}{}
	st := &objectExpansion{
		active:    active,
		typeCtx:   typeScoped,
		inputType: inputType,
		baseURL:   baseURL,
		result:    result,
	}
	if err := s.expandEntries(st, activeProperty, element); err != nil {
		return nil, err
	}
	return s.finishObject(st, activeProperty)
}

// objectExpansion carries per-object expansion state across nest recursion.
type objectExpansion struct {
	active    *Context
	typeCtx   *Context
	inputType string
	baseURL   string
	result    map[string]interface{}
	hasValue  bool
}

// hasValueEntry reports whether any key of element expands to @value.
func (s *state) hasValueEntry(active *Context, element map[string]interface{}) bool {
	for key := range element {
		expanded, err := s.expandIRI(active, key, false, true, nil, nil)
		if err == nil && expanded == "@value" {
			return true
		}
	}
	return false
}

// isSingleIDEntry reports whether element's only key expands to @id.
func (s *state) isSingleIDEntry(active *Context, element map[string]interface{}) bool {
	if len(element) != 1 {
		return false
	}
	for key := range element {
		expanded, err := s.expandIRI(active, key, false, true, nil, nil)
		if err == nil && expanded == "@id" {
			return true
		}
	}
	return false
}

// expandEntries walks the entries of element, filling st.result. Nested
// @nest groups recurse into the same result.
func (s *state) expandEntries(st *objectExpansion, activeProperty string, element map[string]interface{}) error {
	var nests []string

	for _, key := range sortedKeys(element) {
		if key == "@context" {
			continue
		}
		value := element[key]
		expandedKey, err := s.expandIRI(st.active, key, false, true, nil, nil)
		if err != nil {
			return err
		}
		if expandedKey == "" || (!strings.Contains(expandedKey, ":") && !isKeyword(expandedKey)) {
			continue
		}

		if isKeyword(expandedKey) {
			if expandedKey == "@nest" {
				if !s.opts.is11() {
					return newValueError(ErrCodeProcessingModeConflict,
						"@nest requires the json-ld-1.1 processing mode", key)
				}
				nests = append(nests, key)
				continue
			}
			if err := s.expandKeywordEntry(st, activeProperty, expandedKey, key, value); err != nil {
				return err
			}
			continue
		}

		if err := s.expandPropertyEntry(st, key, expandedKey, value); err != nil {
			return err
		}
	}

	sort.Strings(nests)
	for _, nestKey := range nests {
		for _, nested := range asArray(element[nestKey]) {
			nestedObj, ok := nested.(map[string]interface{})
			if !ok {
				return newValueError(ErrCodeInvalidNestValue, "@nest value must be a node object", nestKey)
			}
			for nKey := range nestedObj {
				expanded, err := s.expandIRI(st.active, nKey, false, true, nil, nil)
				if err != nil {
					return err
				}
				if expanded == "@value" {
					return newValueError(ErrCodeInvalidNestValue,
						"@nest value must not contain @value", nestKey)
				}
			}
			if err := s.expandEntries(st, activeProperty, nestedObj); err != nil {
				return err
			}
		}
	}
	return nil
}

// expandKeywordEntry handles one keyword entry of a node or value object.
func (s *state) expandKeywordEntry(st *objectExpansion, activeProperty, expandedKey, key string, value interface{}) error {
	if activeProperty == "@reverse" {
		return newValueError(ErrCodeInvalidReversePropertyMap,
			"a reverse property map must not contain keywords", key)
	}
	if _, exists := st.result[expandedKey]; exists {
		if !s.opts.is11() || (expandedKey != "@type" && expandedKey != "@included") {
			return newValueError(ErrCodeCollidingKeywords,
				"two entries expand to the same keyword", expandedKey)
		}
	}

	switch expandedKey {
	case "@id":
		idValue, ok := value.(string)
		if !ok {
			return newValueError(ErrCodeInvalidIdValue, "@id value must be a string", key)
		}
		expanded, err := s.expandIRI(st.active, idValue, true, false, nil, nil)
		if err != nil {
			return err
		}
		st.result["@id"] = expanded

	case "@type":
		types := asArray(value)
		expandedTypes := make([]interface{}, 0, len(types))
		for _, t := range types {
			typeStr, ok := t.(string)
			if !ok {
				return newValueError(ErrCodeInvalidTypeValue, "@type values must be strings", key)
			}
			// Type values are expanded against the type-scoped context,
			// before type-scoped term contexts applied.
			expanded, err := s.expandIRI(st.typeCtx, typeStr, true, true, nil, nil)
			if err != nil {
				return err
			}
			if expanded == "" || (!isAbsoluteIRI(expanded) && !isBlankNodeIdentifier(expanded) && expanded != "@json" && expanded != "@none") {
				return newValueError(ErrCodeInvalidTypeValue,
					"@type does not expand to an IRI", typeStr)
			}
			expandedTypes = append(expandedTypes, expanded)
		}
		if existing, has := st.result["@type"]; has {
			merged := asArray(existing)
			for _, t := range expandedTypes {
				merged = appendUnique(merged, t)
			}
			st.result["@type"] = merged
		} else {
			st.result["@type"] = expandedTypes
		}

	case "@graph":
		expanded, err := s.expand(st.active, "@graph", value, st.baseURL)
		if err != nil {
			return err
		}
		st.result["@graph"] = asArray(expanded)

	case "@included":
		if !s.opts.is11() {
			return newValueError(ErrCodeProcessingModeConflict,
				"@included requires the json-ld-1.1 processing mode", key)
		}
		expanded, err := s.expand(st.active, "", value, st.baseURL)
		if err != nil {
			return err
		}
		included := asArray(expanded)
		for _, item := range included {
			if !isNodeObject(item) {
				return newError(ErrCodeInvalidIncludedValue, "@included values must be node objects")
			}
		}
		if existing, has := st.result["@included"]; has {
			included = append(asArray(existing), included...)
		}
		st.result["@included"] = included

	case "@value":
		st.hasValue = true
		if st.inputType == "@json" && s.opts.is11() {
			st.result["@value"] = value
			return nil
		}
		if value != nil && !isScalar(value) {
			return newValueError(ErrCodeInvalidValueObjectValue, "@value must be a scalar or null", key)
		}
		st.result["@value"] = value

	case "@language":
		langValue, ok := value.(string)
		if !ok {
			return newValueError(ErrCodeInvalidLanguageTaggedString, "@language value must be a string", key)
		}
		if !isWellFormedLanguageTag(langValue) {
			if err := s.opts.warn(Warning{Code: WarnInvalidLanguageTag, Value: langValue}); err != nil {
				return err
			}
		}
		st.result["@language"] = strings.ToLower(langValue)

	case "@direction":
		if !s.opts.is11() {
			return newValueError(ErrCodeProcessingModeConflict,
				"@direction requires the json-ld-1.1 processing mode", key)
		}
		dirValue, ok := value.(string)
		if !ok || (dirValue != "ltr" && dirValue != "rtl") {
			return newValueError(ErrCodeInvalidBaseDirection, `@direction must be "ltr" or "rtl"`, key)
		}
		st.result["@direction"] = dirValue

	case "@index":
		indexValue, ok := value.(string)
		if !ok {
			return newValueError(ErrCodeInvalidIndexValue, "@index value must be a string", key)
		}
		st.result["@index"] = indexValue

	case "@list":
		if activeProperty == "" || activeProperty == "@graph" {
			return nil
		}
		expanded, err := s.expand(st.active, activeProperty, value, st.baseURL)
		if err != nil {
			return err
		}
		st.result["@list"] = asArray(expanded)

	case "@set":
		expanded, err := s.expand(st.active, activeProperty, value, st.baseURL)
		if err != nil {
			return err
		}
		st.result["@set"] = asArray(expanded)

	case "@reverse":
		reverseObj, ok := value.(map[string]interface{})
		if !ok {
			return newValueError(ErrCodeInvalidReverseValue, "@reverse value must be an object", key)
		}
		expanded, err := s.expand(st.active, "@reverse", reverseObj, st.baseURL)
		if err != nil {
			return err
		}
		expandedObj, ok := expanded.(map[string]interface{})
		if !ok {
			return nil
		}
		// Reverse-of-reverse entries become forward properties.
		if inner, has := expandedObj["@reverse"]; has {
			if innerObj, ok := inner.(map[string]interface{}); ok {
				for property, items := range innerObj {
					st.result[property] = append(asArray(st.result[property]), asArray(items)...)
				}
			}
		}
		reverseMap, _ := st.result["@reverse"].(map[string]interface{})
		for property, items := range expandedObj {
			if property == "@reverse" {
				continue
			}
			for _, item := range asArray(items) {
				if isValueObject(item) || isListObject(item) {
					return newValueError(ErrCodeInvalidReversePropertyValue,
						"a reverse property value must be a node object", property)
				}
				if reverseMap == nil {
					reverseMap = map[string]interface{}{}
					st.result["@reverse"] = reverseMap
				}
				reverseMap[property] = append(asArray(reverseMap[property]), item)
			}
		}
	}
	return nil
}

// expandPropertyEntry handles one non-keyword entry.
func (s *state) expandPropertyEntry(st *objectExpansion, key, expandedKey string, value interface{}) error {
	def := st.active.term(key)

	// A @json type mapping captures the raw value without recursion.
	if def != nil && def.Type == "@json" && s.opts.is11() {
		wrapped := map[string]interface{}{"@value": deepCopy(value), "@type": "@json"}
		st.result[expandedKey] = append(asArray(st.result[expandedKey]), wrapped)
		return nil
	}

	var expandedValue interface{}
	var err error
	switch {
	case def.hasContainer("@language") && isObject(value):
		expandedValue, err = s.expandLanguageMap(st.active, def, value.(map[string]interface{}))
	case isObject(value) && (def.hasContainer("@index") || def.hasContainer("@type") || def.hasContainer("@id")):
		expandedValue, err = s.expandContainerMap(st, key, def, value.(map[string]interface{}))
	default:
		expandedValue, err = s.expand(st.active, key, value, st.baseURL)
	}
	if err != nil {
		return err
	}
	if expandedValue == nil {
		return nil
	}

	if def.hasContainer("@list") && !isListObject(expandedValue) {
		expandedValue = map[string]interface{}{"@list": asArray(expandedValue)}
	}

	// A plain @graph container wraps each value in its own graph.
	if def.hasContainer("@graph") && !def.hasContainer("@id") && !def.hasContainer("@index") {
		wrapped := make([]interface{}, 0, len(asArray(expandedValue)))
		for _, item := range asArray(expandedValue) {
			wrapped = append(wrapped, map[string]interface{}{"@graph": asArray(item)})
		}
		expandedValue = wrapped
	}

	if def != nil && def.Reverse {
		reverseMap, _ := st.result["@reverse"].(map[string]interface{})
		if reverseMap == nil {
			reverseMap = map[string]interface{}{}
			st.result["@reverse"] = reverseMap
		}
		for _, item := range asArray(expandedValue) {
			if isValueObject(item) || isListObject(item) {
				return newValueError(ErrCodeInvalidReversePropertyValue,
					"a reverse property value must be a node object", key)
			}
			reverseMap[expandedKey] = append(asArray(reverseMap[expandedKey]), item)
		}
		return nil
	}

	st.result[expandedKey] = append(asArray(st.result[expandedKey]), asArray(expandedValue)...)
	return nil
}

func isObject(v interface{}) bool {
	_, ok := v.(map[string]interface{})
	return ok
}

// expandLanguageMap unwraps a language map into tagged value objects.
func (s *state) expandLanguageMap(active *Context, def *TermDefinition, value map[string]interface{}) (interface{}, error) {
	direction := active.direction
	if def.HasDirection {
		direction = def.Direction
	}
	result := make([]interface{}, 0, len(value))
	for _, lang := range sortedKeys(value) {
		expandedLang, err := s.expandIRI(active, lang, false, true, nil, nil)
		if err != nil {
			return nil, err
		}
		if expandedLang != "@none" && !isWellFormedLanguageTag(lang) {
			if err := s.opts.warn(Warning{Code: WarnInvalidLanguageTag, Value: lang}); err != nil {
				return nil, err
			}
		}
		for _, item := range asArray(value[lang]) {
			if item == nil {
				continue
			}
			str, ok := item.(string)
			if !ok {
				return nil, newValueError(ErrCodeInvalidLanguageMapValue,
					"language map values must be strings", lang)
			}
			entry := map[string]interface{}{"@value": str}
			if expandedLang != "@none" {
				entry["@language"] = strings.ToLower(lang)
			}
			if direction != "" {
				entry["@direction"] = direction
			}
			result = append(result, entry)
		}
	}
	return result, nil
}

// expandContainerMap unwraps @index, @id, and @type maps into flat
// sequences of tagged objects.
func (s *state) expandContainerMap(st *objectExpansion, key string, def *TermDefinition, value map[string]interface{}) (interface{}, error) {
	asGraph := def.hasContainer("@graph")
	indexContainer := def.hasContainer("@index")
	idContainer := def.hasContainer("@id")
	typeContainer := def.hasContainer("@type")

	result := make([]interface{}, 0, len(value))
	for _, index := range sortedKeys(value) {
		mapContext := st.active
		if idContainer || typeContainer {
			// The index's own term definition may carry a scoped context.
			if indexDef := mapContext.term(index); indexDef != nil && indexDef.HasLocalContext {
				updated, err := s.processContext(mapContext, indexDef.LocalContext, indexDef.BaseURL, defaultProcessOpts())
				if err != nil {
					return nil, err
				}
				mapContext = updated
			}
		}
		expandedIndex, err := s.expandIRI(st.active, index, false, true, nil, nil)
		if err != nil {
			return nil, err
		}

		items, err := s.expand(mapContext, key, asArray(value[index]), st.baseURL)
		if err != nil {
			return nil, err
		}
		for _, item := range asArray(items) {
			if asGraph && !isGraphObject(item) {
				item = map[string]interface{}{"@graph": asArray(item)}
			}
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			switch {
			case indexContainer && expandedIndex != "@none":
				if def.Index != "" {
					// Property-valued index: the key becomes a value of
					// the indexing property.
					expandedIdx, err := s.expandValue(st.active, def.Index, index)
					if err != nil {
						return nil, err
					}
					propIRI, err := s.expandIRI(st.active, def.Index, false, true, nil, nil)
					if err != nil {
						return nil, err
					}
					obj[propIRI] = append([]interface{}{expandedIdx}, asArray(obj[propIRI])...)
				} else if _, has := obj["@index"]; !has {
					obj["@index"] = index
				}
			case idContainer && expandedIndex != "@none":
				if _, has := obj["@id"]; !has {
					expandedID, err := s.expandIRI(st.active, index, true, false, nil, nil)
					if err != nil {
						return nil, err
					}
					obj["@id"] = expandedID
				}
			case typeContainer && expandedIndex != "@none":
				expandedType, err := s.expandIRI(st.typeCtx, index, true, true, nil, nil)
				if err != nil {
					return nil, err
				}
				obj["@type"] = append([]interface{}{expandedType}, asArray(obj["@type"])...)
			}
			result = append(result, obj)
		}
	}
	return result, nil
}

// expandValue implements the value expansion algorithm for scalars.
func (s *state) expandValue(active *Context, activeProperty string, value interface{}) (interface{}, error) {
	def := active.term(activeProperty)

	if str, ok := value.(string); ok && def != nil {
		switch def.Type {
		case "@id":
			expanded, err := s.expandIRI(active, str, true, false, nil, nil)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"@id": expanded}, nil
		case "@vocab":
			expanded, err := s.expandIRI(active, str, true, true, nil, nil)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"@id": expanded}, nil
		}
	}

	result := map[string]interface{}{"@value": value}

	if def != nil && def.Type == "@json" {
		if s.opts.is11() {
			result["@type"] = "@json"
		}
		return result, nil
	}
	if def != nil && def.Type != "" && def.Type != "@id" && def.Type != "@vocab" && def.Type != "@none" {
		result["@type"] = def.Type
		return result, nil
	}

	if _, ok := value.(string); ok {
		language, hasLanguage := active.language, active.hasLanguage
		if def != nil && def.HasLanguage {
			language, hasLanguage = def.Language, def.Language != ""
		}
		direction := active.direction
		if def != nil && def.HasDirection {
			direction = def.Direction
		}
		if hasLanguage {
			result["@language"] = language
		}
		if direction != "" && s.opts.is11() {
			result["@direction"] = direction
		}
	}
	return result, nil
}

// finishObject validates and normalizes the expanded object, applying the
// drop rules for value objects and free-floating nodes.
func (s *state) finishObject(st *objectExpansion, activeProperty string) (interface{}, error) {
	result := st.result

	if rawValue, hasValue := result["@value"]; hasValue || st.hasValue {
		for key := range result {
			switch key {
			case "@value", "@language", "@type", "@index", "@direction":
			default:
				return nil, newValueError(ErrCodeInvalidValueObject,
					"a value object cannot combine @value with node properties", key)
			}
		}
		_, hasLanguage := result["@language"]
		_, hasDirection := result["@direction"]
		typeValue, hasType := result["@type"]
		if hasType && (hasLanguage || hasDirection) {
			return nil, newError(ErrCodeInvalidValueObject,
				"@type cannot be combined with @language or @direction in a value object")
		}
		if hasType && typeValue == "@json" {
			return result, nil
		}
		if rawValue == nil {
			return nil, nil
		}
		if _, isStr := rawValue.(string); !isStr && hasLanguage {
			if s.opts.WarnHandler != nil {
				s.opts.WarnHandler(Warning{Code: WarnDroppedNonStringLanguageValue})
			}
			if s.opts.Strict {
				return nil, newError(ErrCodeInvalidLanguageTaggedString,
					"a language-tagged value must be a string")
			}
			return nil, nil
		}
		if hasType {
			typeStr, ok := typeValue.(string)
			if !ok || (!isAbsoluteIRI(typeStr) && !isBlankNodeIdentifier(typeStr)) {
				return nil, newError(ErrCodeInvalidTypedValue, "@type of a value object must be an IRI")
			}
		}
		// Free-floating values cannot be asserted about anything.
		if (activeProperty == "" || activeProperty == "@graph") && !s.opts.KeepFreeFloatingNodes {
			if err := s.warnDroppedNode(); err != nil {
				return nil, err
			}
			return nil, nil
		}
		return result, nil
	}

	if typeValue, has := result["@type"]; has {
		result["@type"] = asArray(typeValue)
	}

	if setValue, has := result["@set"]; has {
		if !isSetOrListAlone(result, "@set") {
			return nil, newError(ErrCodeInvalidSetOrListObject,
				"a set object must not contain other entries")
		}
		return setValue, nil
	}
	if _, has := result["@list"]; has {
		if !isSetOrListAlone(result, "@list") {
			return nil, newError(ErrCodeInvalidSetOrListObject,
				"a list object may only carry @list and @index")
		}
		return result, nil
	}

	if len(result) == 1 {
		if _, only := result["@language"]; only {
			return nil, nil
		}
	}

	if activeProperty == "" || activeProperty == "@graph" {
		if len(result) == 0 {
			return nil, nil
		}
		_, hasID := result["@id"]
		if len(result) == 1 && hasID && !s.opts.KeepFreeFloatingNodes {
			if err := s.warnDroppedNode(); err != nil {
				return nil, err
			}
			return nil, nil
		}
	}
	return result, nil
}

func (s *state) warnDroppedNode() error {
	if s.opts.WarnHandler != nil {
		s.opts.WarnHandler(Warning{Code: WarnDroppedFreeFloatingNode})
	}
	if s.opts.Strict {
		return newError(ErrorCode(WarnDroppedFreeFloatingNode), "free-floating node dropped")
	}
	return nil
}

// isSetOrListAlone reports whether result carries only key plus an
// optional @index.
func isSetOrListAlone(result map[string]interface{}, key string) bool {
	for k := range result {
		if k != key && k != "@index" {
			return false
		}
	}
	return true
}
