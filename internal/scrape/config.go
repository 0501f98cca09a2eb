// Package scrape implements the dual-mode harvest: a static-HTML runner and
// a rendered-browser runner that both feed one extraction pipeline.
package scrape

import "time"

// Config captures every knob that influences a harvest run. Mode selection
// is run-wide: either every page goes through the static fetcher or every
// page goes through the browser.
type Config struct {
	StartURLs         []string
	UseAPI            bool
	UseBrowser        bool
	CheckPlaceDetails bool
	SameHostOnly      bool
	Concurrency       int
	MaxRequests       int
	UserAgent         string
	RequestTimeout    time.Duration
	NavTimeout        time.Duration
	SettleTimeout     time.Duration
	PageQPS           float64
	PlayingSelectors  []string
	VisitsSelectors   []string
}
