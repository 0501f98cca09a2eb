package scrape

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ContentProvider abstracts how page content is obtained, so the extraction
// pipeline is written once and shared by both fetch modes.
type ContentProvider interface {
	// HTML returns the raw markup of the page.
	HTML() string
	// ElementText returns the trimmed text of the first element matching
	// selector, or "" when nothing matches or the lookup fails.
	ElementText(selector string) string
	// WaitSettled blocks until in-flight network activity has quieted down
	// or the provider's settle budget elapses. Hitting the budget is not an
	// error; callers proceed with whatever state exists. Static providers
	// return immediately.
	WaitSettled(ctx context.Context)
}

// StaticContent wraps already-fetched markup.
type StaticContent struct {
	html string
	doc  *goquery.Document
}

// NewStaticContent parses html once so selector lookups are cheap. A parse
// failure leaves selectors inert but keeps the raw markup available.
func NewStaticContent(html string) *StaticContent {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		doc = nil
	}
	return &StaticContent{html: html, doc: doc}
}

// HTML returns the original markup.
func (s *StaticContent) HTML() string { return s.html }

// ElementText finds the first match for selector in the parsed document.
func (s *StaticContent) ElementText(selector string) string {
	if s.doc == nil {
		return ""
	}
	return strings.TrimSpace(s.doc.Find(selector).First().Text())
}

// WaitSettled returns immediately; static content is already final.
func (s *StaticContent) WaitSettled(context.Context) {}
