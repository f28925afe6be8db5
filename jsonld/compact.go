package jsonld

import (
	"sort"
	"strings"
)

// inverseEntry buckets candidate terms for one IRI and container by the
// type or language they are tuned for.
type inverseEntry struct {
	language map[string]string
	typ      map[string]string
	any      map[string]string
}

// inverseContext maps IRI to container signature to candidate terms. It is
// built once per active context within one compaction call.
type inverseContext map[string]map[string]*inverseEntry

// inverse returns the cached inverse context for active, building it on
// first use. The cache lives in the per-call state, so contexts produced
// by scoped-context application each get their own inversion.
func (s *state) inverse(active *Context) inverseContext {
	if s.inverseCache == nil {
		s.inverseCache = map[*Context]inverseContext{}
	}
	if inv, ok := s.inverseCache[active]; ok {
		return inv
	}
	inv := buildInverseContext(active)
	s.inverseCache[active] = inv
	return inv
}

// buildInverseContext implements the inverse context creation algorithm.
// Terms are visited shortest-first, then lexicographically, so the first
// term recorded for a slot is the preferred one.
func buildInverseContext(active *Context) inverseContext {
	inv := inverseContext{}

	terms := active.Terms()
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) < len(terms[j])
		}
		return terms[i] < terms[j]
	})

	defaultLangDir := "@none"
	if active.direction != "" {
		lang := "@none"
		if active.hasLanguage {
			lang = active.language
		}
		defaultLangDir = lang + "_" + active.direction
	} else if active.hasLanguage {
		defaultLangDir = active.language
	}

	set := func(m map[string]string, key, term string) {
		if _, ok := m[key]; !ok {
			m[key] = term
		}
	}

	for _, term := range terms {
		def := active.terms[term]
		if def == nil || def.Null || def.IRI == "" {
			continue
		}
		container := "@none"
		if len(def.Containers) > 0 {
			cs := append([]string{}, def.Containers...)
			sort.Strings(cs)
			container = strings.Join(cs, "")
		}
		containerMap, ok := inv[def.IRI]
		if !ok {
			containerMap = map[string]*inverseEntry{}
			inv[def.IRI] = containerMap
		}
		entry, ok := containerMap[container]
		if !ok {
			entry = &inverseEntry{
				language: map[string]string{},
				typ:      map[string]string{},
				any:      map[string]string{},
			}
			containerMap[container] = entry
		}

		set(entry.any, "@none", term)

		switch {
		case def.Reverse:
			set(entry.typ, "@reverse", term)
		case def.Type == "@none":
			set(entry.any, "@any", term)
			set(entry.language, "@any", term)
			set(entry.typ, "@any", term)
		case def.Type != "":
			set(entry.typ, def.Type, term)
		case def.HasLanguage && def.HasDirection:
			key := "@null"
			switch {
			case def.Language != "" && def.Direction != "":
				key = def.Language + "_" + def.Direction
			case def.Language != "":
				key = def.Language
			case def.Direction != "":
				key = "_" + def.Direction
			}
			set(entry.language, key, term)
		case def.HasLanguage:
			key := def.Language
			if key == "" {
				key = "@null"
			}
			set(entry.language, key, term)
		case def.HasDirection:
			key := "@none"
			if def.Direction != "" {
				key = "_" + def.Direction
			}
			set(entry.language, key, term)
		default:
			set(entry.language, defaultLangDir, term)
			set(entry.language, "@none", term)
			set(entry.typ, "@none", term)
		}
	}
	return inv
}

// selectTerm implements the term selection algorithm: the first candidate
// matching the most specific container, then the preferred type or
// language value, wins.
func selectTerm(inv inverseContext, iri string, containers []string, typeLanguage string, preferred []string) string {
	containerMap := inv[iri]
	if containerMap == nil {
		return ""
	}
	for _, container := range containers {
		entry := containerMap[container]
		if entry == nil {
			continue
		}
		var valueMap map[string]string
		switch typeLanguage {
		case "@type":
			valueMap = entry.typ
		case "@language":
			valueMap = entry.language
		default:
			valueMap = entry.any
		}
		for _, pref := range preferred {
			if term, ok := valueMap[pref]; ok {
				return term
			}
		}
	}
	return ""
}

func hasKey(obj map[string]interface{}, key string) bool {
	_, ok := obj[key]
	return ok
}

// compactIRI implements the IRI compaction algorithm: term selection when
// vocab is set and value-shape information is available, then vocabulary
// suffixing, compact IRIs, and base-relative references.
func (s *state) compactIRI(active *Context, iri string, value interface{}, vocab, reverse bool) string {
	if iri == "" {
		return iri
	}
	inv := s.inverse(active)

	if vocab && inv[iri] != nil {
		if term := s.selectBestTerm(active, inv, iri, value, reverse); term != "" {
			return term
		}
	}

	if vocab && active.hasVocab && strings.HasPrefix(iri, active.vocab) && len(iri) > len(active.vocab) {
		suffix := iri[len(active.vocab):]
		if active.term(suffix) == nil {
			return suffix
		}
	}

	if compacted := s.compactToPrefix(active, iri, value); compacted != "" {
		return compacted
	}

	if !vocab && s.opts.CompactToRelative && active.base != "" {
		return relativizeIRI(active.base, iri)
	}
	return iri
}

// compactToPrefix finds the best prefix-term rendering of iri, preferring
// the shortest candidate, then the lexicographically least.
func (s *state) compactToPrefix(active *Context, iri string, value interface{}) string {
	best := ""
	for term, def := range active.terms {
		if def == nil || def.Null || !def.Prefix || def.IRI == "" || def.Reverse {
			continue
		}
		if !strings.HasPrefix(iri, def.IRI) || iri == def.IRI {
			continue
		}
		candidate := term + ":" + iri[len(def.IRI):]
		existing := active.term(candidate)
		if existing != nil && (existing.IRI != iri || value != nil) {
			continue
		}
		if best == "" || len(candidate) < len(best) || (len(candidate) == len(best) && candidate < best) {
			best = candidate
		}
	}
	return best
}

// selectBestTerm computes the container preferences and type/language
// preferences for value and runs term selection.
func (s *state) selectBestTerm(active *Context, inv inverseContext, iri string, value interface{}, reverse bool) string {
	valueObj, isObj := value.(map[string]interface{})

	var containers []string
	typeLanguage := "@language"
	typeLanguageValue := "@null"

	if isObj && hasKey(valueObj, "@index") && !isGraphObject(value) {
		containers = append(containers, "@index", "@index@set")
	}

	switch {
	case reverse:
		typeLanguage = "@type"
		typeLanguageValue = "@reverse"
		containers = append(containers, "@set")

	case isListObject(value):
		if !hasKey(valueObj, "@index") {
			containers = append(containers, "@list")
		}
		list := asArray(valueObj["@list"])
		if len(list) == 0 {
			typeLanguage = "@any"
			typeLanguageValue = "@none"
		} else {
			commonType, commonLang := listCommonTypeLanguage(list)
			if commonType != "" {
				typeLanguage = "@type"
				typeLanguageValue = commonType
			} else {
				typeLanguageValue = commonLang
			}
		}

	case isGraphObject(value):
		if hasKey(valueObj, "@index") {
			containers = append(containers, "@graph@index", "@graph@index@set")
		}
		if hasKey(valueObj, "@id") {
			containers = append(containers, "@graph@id", "@graph@id@set")
		}
		containers = append(containers, "@graph", "@graph@set", "@set")
		if !hasKey(valueObj, "@index") {
			containers = append(containers, "@graph@index", "@graph@index@set")
		}
		if !hasKey(valueObj, "@id") {
			containers = append(containers, "@graph@id", "@graph@id@set")
		}
		containers = append(containers, "@index", "@index@set")
		typeLanguage = "@type"
		typeLanguageValue = "@id"

	case isValueObject(value):
		switch {
		case hasKey(valueObj, "@direction") && !hasKey(valueObj, "@index"):
			lang, _ := valueObj["@language"].(string)
			dir, _ := valueObj["@direction"].(string)
			typeLanguageValue = lang + "_" + dir
		case hasKey(valueObj, "@language") && !hasKey(valueObj, "@index"):
			typeLanguageValue, _ = valueObj["@language"].(string)
		case hasKey(valueObj, "@type"):
			typeLanguage = "@type"
			typeLanguageValue, _ = valueObj["@type"].(string)
		}
		containers = append(containers, "@set")

	default:
		typeLanguage = "@type"
		typeLanguageValue = "@id"
		containers = append(containers, "@id", "@id@set", "@type", "@set@type", "@set")
	}

	containers = append(containers, "@none")
	if s.opts.is11() && (!isObj || !hasKey(valueObj, "@index")) {
		containers = append(containers, "@index", "@index@set")
	}
	if s.opts.is11() && isObj && len(valueObj) == 1 && hasKey(valueObj, "@value") {
		containers = append(containers, "@language", "@language@set")
	}

	if typeLanguageValue == "" {
		typeLanguageValue = "@null"
	}

	var preferred []string
	if typeLanguageValue == "@reverse" {
		preferred = append(preferred, "@reverse")
	}
	if (typeLanguageValue == "@id" || typeLanguageValue == "@reverse") && isObj && hasKey(valueObj, "@id") {
		idStr, _ := valueObj["@id"].(string)
		vocabRendering := s.compactIRI(active, idStr, nil, true, false)
		if def := active.term(vocabRendering); def != nil && def.IRI == idStr {
			preferred = append(preferred, "@vocab", "@id", "@none")
		} else {
			preferred = append(preferred, "@id", "@vocab", "@none")
		}
	} else {
		preferred = append(preferred, typeLanguageValue, "@none")
	}
	preferred = append(preferred, "@any")

	// Language+direction preferences fall back to a bare direction match.
	if idx := strings.Index(typeLanguageValue, "_"); idx >= 0 {
		preferred = append(preferred, typeLanguageValue[idx:])
	}

	return selectTerm(inv, iri, containers, typeLanguage, preferred)
}

// listCommonTypeLanguage scans list entries for a shared type or a shared
// language+direction, the signals a @list-container term is selected on.
func listCommonTypeLanguage(list []interface{}) (commonType, commonLang string) {
	first := true
	for _, item := range list {
		itemLang, itemType := "@none", "@none"
		obj, ok := item.(map[string]interface{})
		if ok && hasKey(obj, "@value") {
			switch {
			case hasKey(obj, "@direction"):
				lang, _ := obj["@language"].(string)
				dir, _ := obj["@direction"].(string)
				itemLang = lang + "_" + dir
			case hasKey(obj, "@language"):
				itemLang, _ = obj["@language"].(string)
			default:
				itemLang = "@null"
			}
			if t, has := obj["@type"].(string); has {
				itemType = t
			} else {
				itemType = "@null"
			}
		} else {
			itemType = "@id"
		}
		if first {
			commonLang, commonType = itemLang, itemType
			first = false
			continue
		}
		if commonLang != itemLang {
			commonLang = "@none"
		}
		if commonType != itemType {
			commonType = "@none"
		}
		if commonLang == "@none" && commonType == "@none" {
			break
		}
	}
	if commonType != "@none" && commonType != "@null" {
		return commonType, ""
	}
	if commonLang == "" {
		commonLang = "@none"
	}
	return "", commonLang
}

// compactValue reduces a value object to a bare value when the active
// property's mappings make the reduction reversible. It returns ok=false
// when the object must stay a (key-compacted) map.
func (s *state) compactValue(active *Context, activeProperty string, value map[string]interface{}) (interface{}, bool) {
	def := active.term(activeProperty)

	language, hasLanguage := active.language, active.hasLanguage
	if def != nil && def.HasLanguage {
		language, hasLanguage = def.Language, def.Language != ""
	}
	direction := active.direction
	if def != nil && def.HasDirection {
		direction = def.Direction
	}

	entries := len(value)
	if hasKey(value, "@index") && def.hasContainer("@index") {
		entries--
	}
	if entries > 2 {
		return nil, false
	}

	if rawID, hasID := value["@id"]; hasID {
		if entries != 1 {
			return nil, false
		}
		idStr, _ := rawID.(string)
		if def != nil {
			switch def.Type {
			case "@id":
				return s.compactIRI(active, idStr, nil, false, false), true
			case "@vocab":
				return s.compactIRI(active, idStr, nil, true, false), true
			}
		}
		return nil, false
	}

	rawValue := value["@value"]
	typeVal, hasType := value["@type"].(string)
	langVal, hasLang := value["@language"].(string)
	dirVal, hasDir := value["@direction"].(string)

	switch {
	case hasType:
		if def != nil && def.Type == typeVal && entries == 2 {
			return rawValue, true
		}
	case hasLang || hasDir:
		langMatch := (hasLang && hasLanguage && strings.EqualFold(langVal, language)) || (!hasLang && !hasLanguage)
		dirMatch := (hasDir && dirVal == direction) || (!hasDir && direction == "")
		if langMatch && dirMatch {
			return rawValue, true
		}
	default:
		if _, isStr := rawValue.(string); isStr {
			if (!hasLanguage || (def != nil && def.HasLanguage && def.Language == "")) && direction == "" {
				if def == nil || def.Type == "" {
					return rawValue, true
				}
			}
		} else if entries == 1 {
			if def == nil || def.Type == "" || def.Type == "@id" || def.Type == "@vocab" {
				return rawValue, true
			}
		}
	}
	return nil, false
}

// compactElement implements the compaction algorithm over an expanded value.
func (s *state) compactElement(active *Context, activeProperty string, element interface{}, insideReverse bool) (interface{}, error) {
	if err := s.checkCanceled(); err != nil {
		return nil, err
	}

	switch value := element.(type) {
	case []interface{}:
		result := make([]interface{}, 0, len(value))
		for _, item := range value {
			compacted, err := s.compactElement(active, activeProperty, item, insideReverse)
			if err != nil {
				return nil, err
			}
			if compacted != nil {
				result = append(result, compacted)
			}
		}
		def := active.term(activeProperty)
		if len(result) == 1 && s.opts.CompactArrays && activeProperty != "@graph" && activeProperty != "@set" &&
			!def.hasContainer("@list") && !def.hasContainer("@set") {
			return result[0], nil
		}
		return result, nil

	case map[string]interface{}:
		return s.compactObject(active, activeProperty, value, insideReverse)

	default:
		return element, nil
	}
}

func (s *state) compactObject(active *Context, activeProperty string, element map[string]interface{}, insideReverse bool) (interface{}, error) {
	// Property-scoped context of the active property.
	if def := active.term(activeProperty); def != nil && def.HasLocalContext {
		scoped, err := s.processContext(active, def.LocalContext, def.BaseURL, processOpts{
			overrideProtected: true, propagate: true, validateScoped: true,
		})
		if err != nil {
			return nil, err
		}
		active = scoped
	}

	if hasKey(element, "@value") || isNodeReference(element) {
		if compacted, ok := s.compactValue(active, activeProperty, element); ok {
			return compacted, nil
		}
	}

	// Type-scoped contexts, applied in compacted-term order.
	if rawTypes, has := element["@type"]; has {
		compactedTypes := make([]string, 0, 4)
		for _, t := range asArray(rawTypes) {
			if str, ok := t.(string); ok {
				compactedTypes = append(compactedTypes, s.compactIRI(active, str, nil, true, false))
			}
		}
		sort.Strings(compactedTypes)
		for _, ct := range compactedTypes {
			if def := active.term(ct); def != nil && def.HasLocalContext {
				scoped, err := s.processContext(active, def.LocalContext, def.BaseURL, processOpts{
					propagate: false, validateScoped: true,
				})
				if err != nil {
					return nil, err
				}
				active = scoped
			}
		}
	}

	result := map[string]interface{}{}
	for _, expandedProperty := range sortedKeys(element) {
		expandedValue := element[expandedProperty]

		switch expandedProperty {
		case "@id":
			idStr, _ := expandedValue.(string)
			compacted := s.compactIRI(active, idStr, nil, false, false)
			result[active.aliasOf("@id")] = compacted
			continue

		case "@type":
			types := asArray(expandedValue)
			compacted := make([]interface{}, 0, len(types))
			for _, t := range types {
				str, _ := t.(string)
				compacted = append(compacted, s.compactIRI(active, str, nil, true, false))
			}
			alias := active.aliasOf("@type")
			typeDef := active.term(alias)
			if len(compacted) == 1 && s.opts.CompactArrays && !typeDef.hasContainer("@set") {
				result[alias] = compacted[0]
			} else {
				result[alias] = compacted
			}
			continue

		case "@reverse":
			if err := s.compactReverse(active, element, expandedValue, result); err != nil {
				return nil, err
			}
			continue

		case "@index":
			if active.term(activeProperty).hasContainer("@index") {
				continue
			}
			result[active.aliasOf("@index")] = expandedValue
			continue

		case "@value", "@language", "@direction":
			result[active.aliasOf(expandedProperty)] = expandedValue
			continue

		case "@list", "@graph", "@included":
			compacted, err := s.compactElement(active, expandedProperty, expandedValue, false)
			if err != nil {
				return nil, err
			}
			switch expandedProperty {
			case "@list":
				if _, isArr := compacted.([]interface{}); !isArr {
					compacted = []interface{}{compacted}
				}
			case "@graph", "@included":
				if _, isArr := compacted.([]interface{}); !isArr && !s.opts.CompactArrays {
					compacted = []interface{}{compacted}
				}
			}
			result[active.aliasOf(expandedProperty)] = compacted
			continue
		}

		if err := s.compactProperty(active, expandedProperty, asArray(expandedValue), insideReverse, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// compactReverse compacts an expanded @reverse map, lifting entries whose
// selected term is itself a reverse property into the enclosing object.
func (s *state) compactReverse(active *Context, element map[string]interface{}, expandedValue interface{}, result map[string]interface{}) error {
	reverseMap, ok := expandedValue.(map[string]interface{})
	if !ok {
		return newError(ErrCodeInvalidReverseValue, "expanded @reverse must be a map")
	}
	compactedReverse := map[string]interface{}{}
	for _, property := range sortedKeys(reverseMap) {
		items := asArray(reverseMap[property])
		if err := s.compactProperty(active, property, items, true, compactedReverse); err != nil {
			return err
		}
	}
	// Entries keyed by a reverse term belong directly on the node.
	for key, value := range compactedReverse {
		if def := active.term(key); def != nil && def.Reverse {
			result[key] = value
			delete(compactedReverse, key)
		}
	}
	if len(compactedReverse) > 0 {
		result[active.aliasOf("@reverse")] = compactedReverse
	}
	return nil
}

// compactProperty compacts the values of one expanded property into result.
func (s *state) compactProperty(active *Context, expandedProperty string, items []interface{}, insideReverse bool, result map[string]interface{}) error {
	if len(items) == 0 {
		term := s.compactIRI(active, expandedProperty, nil, true, insideReverse)
		if existing, has := result[term]; has {
			result[term] = asArray(existing)
		} else {
			result[term] = []interface{}{}
		}
		return nil
	}

	for _, item := range items {
		term := s.compactIRI(active, expandedProperty, item, true, insideReverse)
		def := active.term(term)

		itemActive := active
		if def != nil && def.HasLocalContext {
			scoped, err := s.processContext(active, def.LocalContext, def.BaseURL, processOpts{
				overrideProtected: true, propagate: true, validateScoped: true,
			})
			if err != nil {
				return err
			}
			itemActive = scoped
		}

		switch {
		case isListObject(item):
			if err := s.compactListItem(itemActive, term, def, item.(map[string]interface{}), result); err != nil {
				return err
			}
		case isGraphObject(item) && def.hasContainer("@graph"):
			if err := s.compactGraphItem(itemActive, term, def, item.(map[string]interface{}), result); err != nil {
				return err
			}
		case def.hasContainer("@language") || def.hasContainer("@index") || def.hasContainer("@id") || def.hasContainer("@type"):
			if err := s.compactIntoMap(itemActive, term, def, item, result); err != nil {
				return err
			}
		default:
			compacted, err := s.compactElement(itemActive, term, item, false)
			if err != nil {
				return err
			}
			s.addCompactedValue(def, term, compacted, result)
		}
	}
	return nil
}

// addCompactedValue appends value under term, honoring array-collapsing rules.
func (s *state) addCompactedValue(def *TermDefinition, term string, value interface{}, result map[string]interface{}) {
	asArrayRequired := !s.opts.CompactArrays || def.hasContainer("@set") || def.hasContainer("@list") ||
		term == "@graph" || term == "@list"
	if existing, has := result[term]; has {
		result[term] = append(asArray(existing), value)
		return
	}
	if asArrayRequired {
		result[term] = []interface{}{value}
		return
	}
	result[term] = value
}

func (s *state) compactListItem(active *Context, term string, def *TermDefinition, item map[string]interface{}, result map[string]interface{}) error {
	compacted, err := s.compactElement(active, term, item["@list"], false)
	if err != nil {
		return err
	}
	listValue := compacted
	if _, isArr := listValue.([]interface{}); !isArr {
		listValue = []interface{}{listValue}
	}

	if def.hasContainer("@list") {
		// The container implies the list; no wrapper object needed.
		result[term] = listValue
		return nil
	}

	wrapper := map[string]interface{}{active.aliasOf("@list"): listValue}
	if index, has := item["@index"]; has {
		wrapper[active.aliasOf("@index")] = index
	}
	s.addCompactedValue(def, term, wrapper, result)
	return nil
}

func (s *state) compactGraphItem(active *Context, term string, def *TermDefinition, item map[string]interface{}, result map[string]interface{}) error {
	compacted, err := s.compactElement(active, term, item["@graph"], false)
	if err != nil {
		return err
	}

	switch {
	case def.hasContainer("@graph") && def.hasContainer("@id"):
		mapObject := ensureMap(result, term)
		key := "@none"
		if rawID, has := item["@id"]; has {
			idStr, _ := rawID.(string)
			key = s.compactIRI(active, idStr, nil, false, false)
		} else {
			key = active.aliasOf("@none")
		}
		addMapValue(mapObject, key, compacted, def.hasContainer("@set") || !s.opts.CompactArrays)
	case def.hasContainer("@graph") && def.hasContainer("@index"):
		mapObject := ensureMap(result, term)
		key := active.aliasOf("@none")
		if rawIndex, has := item["@index"]; has {
			key, _ = rawIndex.(string)
		}
		addMapValue(mapObject, key, compacted, def.hasContainer("@set") || !s.opts.CompactArrays)
	case def.hasContainer("@graph") && !hasKey(item, "@id") && !hasKey(item, "@index"):
		s.addCompactedValue(def, term, compacted, result)
	default:
		wrapper := map[string]interface{}{active.aliasOf("@graph"): compacted}
		if rawID, has := item["@id"]; has {
			idStr, _ := rawID.(string)
			wrapper[active.aliasOf("@id")] = s.compactIRI(active, idStr, nil, false, false)
		}
		if rawIndex, has := item["@index"]; has {
			wrapper[active.aliasOf("@index")] = rawIndex
		}
		s.addCompactedValue(def, term, wrapper, result)
	}
	return nil
}

// compactIntoMap compacts item into the language, index, id, or type map
// stored under term.
func (s *state) compactIntoMap(active *Context, term string, def *TermDefinition, item interface{}, result map[string]interface{}) error {
	mapObject := ensureMap(result, term)
	obj, _ := item.(map[string]interface{})

	var key string
	var compacted interface{}
	var err error

	switch {
	case def.hasContainer("@language"):
		if obj != nil && hasKey(obj, "@value") {
			compacted = obj["@value"]
			if lang, has := obj["@language"].(string); has {
				key = lang
			} else {
				key = active.aliasOf("@none")
			}
		} else {
			compacted, err = s.compactElement(active, term, item, false)
			key = active.aliasOf("@none")
		}

	case def.hasContainer("@index"):
		if def.Index != "" {
			// Property-valued index: pull the key back out of the
			// indexing property.
			key, obj = extractPropertyIndex(s, active, def, obj)
			item = obj
		} else if obj != nil {
			if index, has := obj["@index"].(string); has {
				key = index
				rest := make(map[string]interface{}, len(obj))
				for k, v := range obj {
					if k != "@index" {
						rest[k] = v
					}
				}
				item = rest
			}
		}
		if key == "" {
			key = active.aliasOf("@none")
		}
		compacted, err = s.compactElement(active, term, item, false)

	case def.hasContainer("@id"):
		if obj != nil {
			if rawID, has := obj["@id"].(string); has {
				key = s.compactIRI(active, rawID, nil, false, false)
				rest := make(map[string]interface{}, len(obj))
				for k, v := range obj {
					if k != "@id" {
						rest[k] = v
					}
				}
				item = rest
			}
		}
		if key == "" {
			key = active.aliasOf("@none")
		}
		compacted, err = s.compactElement(active, term, item, false)

	case def.hasContainer("@type"):
		if obj != nil {
			types := asArray(obj["@type"])
			if len(types) > 0 {
				if first, ok := types[0].(string); ok {
					key = s.compactIRI(active, first, nil, true, false)
				}
				rest := make(map[string]interface{}, len(obj))
				for k, v := range obj {
					if k != "@type" {
						rest[k] = v
					}
				}
				if len(types) > 1 {
					rest["@type"] = types[1:]
				}
				item = rest
			}
		}
		if key == "" {
			key = active.aliasOf("@none")
		}
		compacted, err = s.compactElement(active, term, item, false)
	}
	if err != nil {
		return err
	}

	addMapValue(mapObject, key, compacted, def.hasContainer("@set") || !s.opts.CompactArrays)
	return nil
}

// extractPropertyIndex removes the first value of the term's indexing
// property from obj, returning it as the map key.
func extractPropertyIndex(s *state, active *Context, def *TermDefinition, obj map[string]interface{}) (string, map[string]interface{}) {
	if obj == nil {
		return "", obj
	}
	propIRI, err := s.expandIRI(active, def.Index, false, true, nil, nil)
	if err != nil {
		return "", obj
	}
	values := asArray(obj[propIRI])
	if len(values) == 0 {
		return "", obj
	}
	first, _ := values[0].(map[string]interface{})
	key, _ := first["@value"].(string)
	rest := make(map[string]interface{}, len(obj))
	for k, v := range obj {
		rest[k] = v
	}
	if len(values) > 1 {
		rest[propIRI] = values[1:]
	} else {
		delete(rest, propIRI)
	}
	return key, rest
}

func ensureMap(result map[string]interface{}, term string) map[string]interface{} {
	if existing, ok := result[term].(map[string]interface{}); ok {
		return existing
	}
	m := map[string]interface{}{}
	result[term] = m
	return m
}

// addMapValue inserts value under key within a container map, growing an
// array on collision.
func addMapValue(mapObject map[string]interface{}, key string, value interface{}, asArrayRequired bool) {
	if existing, has := mapObject[key]; has {
		mapObject[key] = append(asArray(existing), value)
		return
	}
	if asArrayRequired {
		mapObject[key] = []interface{}{value}
		return
	}
	mapObject[key] = value
}
