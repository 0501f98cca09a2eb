// Package record defines the canonical experience record and the merge rules
// that produce one record per processed page.
package record

import "time"

// Fragment is a partially structured, single-source data object. Fragments
// come from the platform API, from JSON embedded in page markup, or from DOM
// heuristics. They are never persisted individually, only merged.
type Fragment map[string]any

// Record is the fixed-schema output produced once per processed URL.
// Every field except URL and ExtractedAt may be null; absence is preserved
// rather than defaulted to zero, so consumers can tell "unknown" from "0".
// Name, Creator and Genre collapse to "" for display convenience.
type Record struct {
	ExperienceID any       `json:"experience_id"`
	PlaceID      any       `json:"place_id"`
	Name         string    `json:"name"`
	Creator      string    `json:"creator"`
	Visits       any       `json:"visits"`
	Favorites    any       `json:"favorites"`
	Playing      any       `json:"playing"`
	MaxPlayers   any       `json:"maxPlayers"`
	Price        any       `json:"price"`
	Genre        string    `json:"genre"`
	URL          string    `json:"url"`
	ExtractedAt  time.Time `json:"extracted_at"`
	RawAPI       Fragment  `json:"raw_api"`
	RawPage      Fragment  `json:"raw_page"`
}

// Lookup walks a nested key path and returns the value at the end of it.
// Missing keys, non-object intermediates, and empty values all yield nil.
func (f Fragment) Lookup(path ...string) any {
	if f == nil || len(path) == 0 {
		return nil
	}
	var cur any = map[string]any(f)
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[key]
		if !ok {
			return nil
		}
	}
	if isEmpty(cur) {
		return nil
	}
	return cur
}

// Find performs a depth-first search for key anywhere in the fragment,
// descending into nested objects and arrays. Embedded page payloads move
// fields around between releases, so callers should not rely on exact paths.
func (f Fragment) Find(key string) any {
	if f == nil {
		return nil
	}
	return findKey(map[string]any(f), key, 0)
}

const maxFindDepth = 8

func findKey(node any, key string, depth int) any {
	if depth > maxFindDepth {
		return nil
	}
	switch v := node.(type) {
	case map[string]any:
		if val, ok := v[key]; ok && !isEmpty(val) {
			return val
		}
		for _, child := range v {
			if found := findKey(child, key, depth+1); found != nil {
				return found
			}
		}
	case []any:
		for _, child := range v {
			if found := findKey(child, key, depth+1); found != nil {
				return found
			}
		}
	}
	return nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
