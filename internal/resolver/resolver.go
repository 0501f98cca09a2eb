// Package resolver extracts canonical place identifiers from the URL shapes
// the platform serves for one and the same experience.
package resolver

import (
	"net/url"
	"regexp"
)

var (
	gamesPath  = regexp.MustCompile(`(?:^|/)games/(\d+)(?:/|$)`)
	placesPath = regexp.MustCompile(`(?:^|/)places/(\d+)(?:/|$)`)
	allDigits  = regexp.MustCompile(`^\d+$`)
)

// PlaceID returns the numeric place id encoded in rawURL. Candidate shapes
// are checked in a fixed precedence order: a /games/<id>/... path segment,
// an id query parameter, then a /places/<id> path segment. A URL that
// matches none of them, or does not parse at all, yields ("", false); that
// is the normal "no identifier available" state, not an error.
func PlaceID(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	if m := gamesPath.FindStringSubmatch(u.Path); m != nil {
		return m[1], true
	}
	if id := u.Query().Get("id"); id != "" && allDigits.MatchString(id) {
		return id, true
	}
	if m := placesPath.FindStringSubmatch(u.Path); m != nil {
		return m[1], true
	}
	return "", false
}
