package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Paths that look like experience pages and are worth enqueueing.
var followablePaths = []*regexp.Regexp{
	regexp.MustCompile(`^/games/\d+(?:/|$)`),
	regexp.MustCompile(`^/places/\d+(?:/|$)`),
}

// FollowableLink resolves href against base and reports whether the result
// is a link the crawl should follow. Fragments are dropped; when
// sameHostOnly is set, links leaving base's host are rejected.
func FollowableLink(base *url.URL, href string, sameHostOnly bool) (string, bool) {
	if base == nil || strings.TrimSpace(href) == "" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	if sameHostOnly && !strings.EqualFold(abs.Hostname(), base.Hostname()) {
		return "", false
	}
	for _, re := range followablePaths {
		if re.MatchString(abs.Path) {
			abs.Fragment = ""
			return abs.String(), true
		}
	}
	return "", false
}

// collectHrefs pulls every anchor href out of html, in document order. Used
// by the browser runner, which discovers links from the rendered DOM rather
// than through a collector.
func collectHrefs(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && href != "" {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}
