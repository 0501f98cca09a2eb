package embedded

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract_BootstrapAssignment(t *testing.T) {
	t.Parallel()

	html := `<html><head><script>
		window.__INITIAL_STATE__ = {"universeId": 123, "name": "Adventure Forward", "placeId": 456};
	</script></head><body></body></html>`

	frag := Extract(html)
	require.NotNil(t, frag)
	require.Equal(t, float64(123), frag["universeId"])
	require.Equal(t, "Adventure Forward", frag["name"])
}

func TestExtract_BareMarkerWithoutWindowPrefix(t *testing.T) {
	t.Parallel()

	html := `<script>var x = 1; __PRELOADED_STATE__ = {"placeId": 77, "visits": 9000}</script>`

	frag := Extract(html)
	require.NotNil(t, frag)
	require.Equal(t, float64(77), frag["placeId"])
}

func TestExtract_StructuredData(t *testing.T) {
	t.Parallel()

	html := `<script type="application/ld+json">
		{"@type": "VideoGame", "name": "Crossroads", "aggregateRating": {"ratingValue": 4.5}}
	</script>`

	frag := Extract(html)
	require.NotNil(t, frag)
	require.Equal(t, "VideoGame", frag["@type"])
	require.Equal(t, "Crossroads", frag["name"])
}

func TestExtract_FirstParsableScriptWins(t *testing.T) {
	t.Parallel()

	html := `
	<script>window.__INITIAL_STATE__ = {"name": "first", "universeId": 1};</script>
	<script>window.__INITIAL_STATE__ = {"name": "second", "universeId": 2};</script>`

	frag := Extract(html)
	require.NotNil(t, frag)
	require.Equal(t, "first", frag["name"])
}

func TestExtract_MalformedPayloadSkipped(t *testing.T) {
	t.Parallel()

	html := `
	<script>window.__INITIAL_STATE__ = {broken json;</script>
	<script>bootstrapData = {"universeId": 5, "genre": "Adventure"};</script>`

	frag := Extract(html)
	require.NotNil(t, frag)
	require.Equal(t, float64(5), frag["universeId"])
}

func TestExtract_NothingParsable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
	}{
		{"no scripts", `<html><body><p>hello</p></body></html>`},
		{"script without markers", `<script>console.log("hi")</script>`},
		{"marker without object", `<script>window.__INITIAL_STATE__ = load();</script>`},
		{"trivial payload", `<script>window.__INITIAL_STATE__ = {};</script>`},
		{"structured data without type", `<script type="application/ld+json">{"name": "x"}</script>`},
		{"empty document", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Nil(t, Extract(tt.html))
		})
	}
}

func TestParseObject_TrailingTerminator(t *testing.T) {
	t.Parallel()

	frag, ok := parseObject(`{"playing": 42, "ok": true};`)
	require.True(t, ok)
	require.Equal(t, float64(42), frag["playing"])

	_, ok = parseObject(`{"playing": 42`)
	require.False(t, ok)
}
