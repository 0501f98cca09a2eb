package record

import (
	"fmt"
	"time"
)

// Input carries everything known about one URL at merge time. Any of the
// fragments may be nil and PlaceID may be empty.
type Input struct {
	APIData  Fragment
	PageData Fragment
	URL      string
	PlaceID  string
}

// Normalize merges the API fragment, the page fragment, and the explicitly
// resolved place id into one canonical record. Each field is resolved
// independently as first-non-empty in a fixed trust order: caller input,
// then API, then page. The merge is pure and total; it returns a valid
// record for any combination of present and absent inputs.
func Normalize(in Input, now time.Time) Record {
	api := in.APIData
	page := in.PageData

	placeID := any(nil)
	if in.PlaceID != "" {
		placeID = in.PlaceID
	}

	return Record{
		ExperienceID: first(api.Lookup("universeId"), page.Lookup("experienceId")),
		PlaceID:      first(placeID, api.Lookup("rootPlaceId"), api.Lookup("placeId"), page.Lookup("placeId")),
		Name:         asString(first(api.Lookup("name"), page.Lookup("name"))),
		Creator:      asString(first(api.Lookup("creator", "name"), api.Lookup("creator", "creatorType"), page.Lookup("creator"))),
		Visits:       first(api.Lookup("visits"), page.Lookup("visits")),
		Favorites:    first(api.Lookup("favoritedCount"), page.Lookup("favorites")),
		Playing:      first(api.Lookup("playing"), page.Lookup("playing")),
		MaxPlayers:   first(api.Lookup("maxPlayers"), page.Lookup("maxPlayers")),
		Price:        first(api.Lookup("price"), page.Lookup("price")),
		Genre:        asString(first(api.Lookup("genre"), page.Lookup("genre"))),
		URL:          in.URL,
		ExtractedAt:  now,
		RawAPI:       api,
		RawPage:      page,
	}
}

func first(values ...any) any {
	for _, v := range values {
		if !isEmpty(v) {
			return v
		}
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
