package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalize_EmptyInput(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := Normalize(Input{URL: "https://example.com/games/refer"}, now)

	require.Nil(t, rec.ExperienceID)
	require.Nil(t, rec.PlaceID)
	require.Empty(t, rec.Name)
	require.Empty(t, rec.Creator)
	require.Nil(t, rec.Visits)
	require.Nil(t, rec.Favorites)
	require.Nil(t, rec.Playing)
	require.Nil(t, rec.MaxPlayers)
	require.Nil(t, rec.Price)
	require.Empty(t, rec.Genre)
	require.Equal(t, "https://example.com/games/refer", rec.URL)
	require.Equal(t, now, rec.ExtractedAt)
	require.Nil(t, rec.RawAPI)
	require.Nil(t, rec.RawPage)
}

func TestNormalize_APIDataPreferred(t *testing.T) {
	t.Parallel()

	api := Fragment{
		"universeId":  float64(999),
		"rootPlaceId": float64(1818),
		"name":        "Adventure Forward",
		"creator":     map[string]any{"name": "Explorer Games"},
		"visits":      float64(1000000),
	}
	page := Fragment{
		"experienceId": float64(111),
		"placeId":      "2020",
		"name":         "Stale Page Title",
		"creator":      "page-creator",
		"visits":       "999",
		"playing":      "1234",
	}

	rec := Normalize(Input{APIData: api, PageData: page, URL: "u", PlaceID: "1818"}, time.Now())

	require.Equal(t, float64(999), rec.ExperienceID)
	require.Equal(t, "1818", rec.PlaceID, "caller-resolved id outranks everything")
	require.Equal(t, "Adventure Forward", rec.Name)
	require.Equal(t, "Explorer Games", rec.Creator)
	require.Equal(t, float64(1000000), rec.Visits)
	require.Equal(t, "1234", rec.Playing, "page fills fields the api does not have")
	require.Equal(t, api, rec.RawAPI)
	require.Equal(t, page, rec.RawPage)
}

func TestNormalize_PlaceIDPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Input
		want any
	}{
		{
			name: "caller id wins",
			in: Input{
				PlaceID: "1",
				APIData: Fragment{"rootPlaceId": float64(2), "placeId": float64(3)},
			},
			want: "1",
		},
		{
			name: "api rootPlaceId over api placeId",
			in: Input{
				APIData: Fragment{"rootPlaceId": float64(2), "placeId": float64(3)},
			},
			want: float64(2),
		},
		{
			name: "api placeId over page",
			in: Input{
				APIData:  Fragment{"placeId": float64(3)},
				PageData: Fragment{"placeId": float64(4)},
			},
			want: float64(3),
		},
		{
			name: "page placeId as last resort",
			in: Input{
				PageData: Fragment{"placeId": float64(4)},
			},
			want: float64(4),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := Normalize(tt.in, time.Now())
			require.Equal(t, tt.want, rec.PlaceID)
		})
	}
}

func TestNormalize_CreatorFallbacks(t *testing.T) {
	t.Parallel()

	rec := Normalize(Input{APIData: Fragment{"creator": map[string]any{"creatorType": "Group"}}}, time.Now())
	require.Equal(t, "Group", rec.Creator)

	rec = Normalize(Input{PageData: Fragment{"creator": "Builderman"}}, time.Now())
	require.Equal(t, "Builderman", rec.Creator)
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	in := Input{
		APIData:  Fragment{"universeId": float64(7), "name": "Stable"},
		PageData: Fragment{"playing": "12"},
		URL:      "https://example.com/games/7",
		PlaceID:  "7",
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.Equal(t, Normalize(in, now), Normalize(in, now))
}
