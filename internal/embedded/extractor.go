// Package embedded recovers structured data that pages embed in inline
// scripts for their own client-side rendering. The embedding conventions are
// not a stable contract, so everything here is best effort: a strategy that
// fails to parse moves on, and a page with no parsable payload yields nil.
package embedded

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Baccarat456/experience-harvester/internal/record"
)

// bootstrapMarkers are the global names pages assign their bootstrap payload
// to. New conventions get appended here; order is match priority within a
// script block.
var bootstrapMarkers = []string{
	"window.__INITIAL_STATE__",
	"__INITIAL_STATE__",
	"__PRELOADED_STATE__",
	"__APP_DATA__",
	"bootstrapData",
}

// minPayloadBytes filters out trivial object literals like "{}" that would
// parse but carry nothing.
const minPayloadBytes = 10

type strategy func(script string) (record.Fragment, bool)

// strategies is the ordered list of embedding conventions to try per script
// block. Append new conventions; never let one strategy's failure stop the
// scan.
var strategies = []strategy{
	parseBootstrapAssignment,
	parseStructuredData,
}

// Extract scans every inline script of the document in order and returns the
// first payload any strategy can parse, or nil when none succeeds. Extract
// never fails the caller: malformed markup and malformed JSON both just
// produce nil.
func Extract(html string) record.Fragment {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var found record.Fragment
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		script := sel.Text()
		if strings.TrimSpace(script) == "" {
			return true
		}
		for _, strat := range strategies {
			if obj, ok := strat(script); ok {
				found = obj
				return false
			}
		}
		return true
	})
	return found
}

// parseBootstrapAssignment handles the `window.__X__ = {...};` convention:
// a recognizable global followed by an assignment whose right-hand side is a
// JSON object literal.
func parseBootstrapAssignment(script string) (record.Fragment, bool) {
	for _, marker := range bootstrapMarkers {
		idx := strings.Index(script, marker)
		if idx < 0 {
			continue
		}
		rest := script[idx+len(marker):]
		eq := strings.Index(rest, "=")
		if eq < 0 {
			continue
		}
		start := strings.Index(rest[eq:], "{")
		if start < 0 {
			continue
		}
		blob := strings.TrimSpace(rest[eq+start:])
		if len(blob) < minPayloadBytes {
			continue
		}
		if obj, ok := parseObject(blob); ok {
			return obj, true
		}
	}
	return nil, false
}

// parseStructuredData handles schema.org-style blocks: a script whose body
// is a bare object literal carrying an @type marker (ld+json and friends).
func parseStructuredData(script string) (record.Fragment, bool) {
	body := strings.TrimSpace(script)
	if !strings.HasPrefix(body, "{") || !strings.Contains(body, `"@type"`) {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		return nil, false
	}
	return record.Fragment(obj), true
}

// parseObject parses blob as a JSON object, retrying once with a trailing
// statement terminator stripped. Inline assignments usually end in ";",
// which the JSON parser rejects.
func parseObject(blob string) (record.Fragment, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(blob), &obj); err == nil {
		return record.Fragment(obj), true
	}
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(blob), ";"))
	if trimmed == blob {
		return nil, false
	}
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, false
	}
	return record.Fragment(obj), true
}
