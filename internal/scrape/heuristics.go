package scrape

import "regexp"

// StatHeuristic reads live-count badges out of the DOM. Selector-based
// scraping is inherently fragile, so the interface is deliberately narrow:
// implementations return "" for anything they cannot find, and callers fall
// through to other sources.
type StatHeuristic interface {
	PlayingText(p ContentProvider) string
	VisitsText(p ContentProvider) string
}

var nonDigits = regexp.MustCompile(`\D+`)

// SelectorHeuristic tries an ordered list of selector candidates per stat
// and keeps the first one that yields any digits.
type SelectorHeuristic struct {
	playing []string
	visits  []string
}

// NewSelectorHeuristic builds a heuristic over the given candidate lists.
func NewSelectorHeuristic(playing, visits []string) *SelectorHeuristic {
	return &SelectorHeuristic{playing: playing, visits: visits}
}

// PlayingText returns the current player count as a digits-only string.
func (h *SelectorHeuristic) PlayingText(p ContentProvider) string {
	return h.scan(p, h.playing)
}

// VisitsText returns the total visit count as a digits-only string.
func (h *SelectorHeuristic) VisitsText(p ContentProvider) string {
	return h.scan(p, h.visits)
}

func (h *SelectorHeuristic) scan(p ContentProvider, selectors []string) string {
	for _, sel := range selectors {
		if sel == "" {
			continue
		}
		if text := p.ElementText(sel); text != "" {
			if ds := digits(text); ds != "" {
				return ds
			}
		}
	}
	return ""
}

// digits strips everything that is not 0-9, so "1,234 playing" becomes
// "1234".
func digits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}
