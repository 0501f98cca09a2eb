package scrape

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/Baccarat456/experience-harvester/internal/clock"
	"github.com/Baccarat456/experience-harvester/internal/dataset"
	"github.com/Baccarat456/experience-harvester/internal/embedded"
	"github.com/Baccarat456/experience-harvester/internal/metrics"
	"github.com/Baccarat456/experience-harvester/internal/notify"
	"github.com/Baccarat456/experience-harvester/internal/record"
	"github.com/Baccarat456/experience-harvester/internal/resolver"
	"github.com/Baccarat456/experience-harvester/internal/storage"
)

// PlaceAPI is the authoritative lookup side of the pipeline. Both methods
// are best effort; nil means "no data", never an error.
type PlaceAPI interface {
	ByPlaceID(ctx context.Context, placeID string) record.Fragment
	ByUniverseID(ctx context.Context, universeID string) record.Fragment
}

// Pipeline is the shared post-fetch half of both harvest modes: resolve the
// identifier, recover embedded data, consult the API, merge, persist. Each
// invocation is an isolated unit; there is no shared mutable state between
// concurrently processed URLs.
type Pipeline struct {
	cfg     Config
	api     PlaceAPI
	stats   StatHeuristic
	dataset dataset.Appender
	blobs   storage.Provider
	notif   notify.Notifier
	mets    *metrics.Set
	clock   clock.Clock
	logger  *zap.Logger
}

// NewPipeline wires the pipeline's collaborators together.
func NewPipeline(
	cfg Config,
	api PlaceAPI,
	stats StatHeuristic,
	ds dataset.Appender,
	blobs storage.Provider,
	notifier notify.Notifier,
	mets *metrics.Set,
	clk clock.Clock,
	logger *zap.Logger,
) *Pipeline {
	if stats == nil {
		stats = NewSelectorHeuristic(cfg.PlayingSelectors, cfg.VisitsSelectors)
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:     cfg,
		api:     api,
		stats:   stats,
		dataset: ds,
		blobs:   blobs,
		notif:   notifier,
		mets:    mets,
		clock:   clk,
		logger:  logger,
	}
}

// ProcessPage runs the full extraction for one fetched URL and returns the
// merged record. A page with no identifier and no usable data still yields
// a minimal record; nothing in here aborts the run.
func (p *Pipeline) ProcessPage(ctx context.Context, pageURL string, content ContentProvider) record.Record {
	content.WaitSettled(ctx)
	html := content.HTML()

	placeID, _ := resolver.PlaceID(pageURL)
	pageJSON := embedded.Extract(html)

	// The API round trip and the DOM reads have no data dependency, so
	// they overlap.
	apiCh := make(chan record.Fragment, 1)
	if p.cfg.UseAPI {
		go func() { apiCh <- p.lookupAPI(ctx, placeID, pageJSON) }()
	} else {
		apiCh <- nil
	}

	playing := p.stats.PlayingText(content)
	visits := p.stats.VisitsText(content)
	pageData := pageFragment(pageJSON, playing, visits)

	apiData := <-apiCh

	rec := record.Normalize(record.Input{
		APIData:  apiData,
		PageData: pageData,
		URL:      pageURL,
		PlaceID:  placeID,
	}, p.clock.Now())

	p.persist(ctx, rec, placeID, pageURL, apiData, pageJSON, pageData)
	return rec
}

func (p *Pipeline) lookupAPI(ctx context.Context, placeID string, pageJSON record.Fragment) record.Fragment {
	if placeID != "" {
		if frag := p.api.ByPlaceID(ctx, placeID); frag != nil {
			p.mets.APILookups.WithLabelValues(metrics.OutcomePlace).Inc()
			return frag
		}
	}
	if p.cfg.CheckPlaceDetails {
		if universeID := universeIDFrom(pageJSON); universeID != "" {
			if frag := p.api.ByUniverseID(ctx, universeID); frag != nil {
				p.mets.APILookups.WithLabelValues(metrics.OutcomeUniverse).Inc()
				return frag
			}
		}
	}
	p.mets.APILookups.WithLabelValues(metrics.OutcomeMiss).Inc()
	return nil
}

func (p *Pipeline) persist(ctx context.Context, rec record.Record, placeID, pageURL string, apiData, pageJSON, pageData record.Fragment) {
	if err := p.dataset.Append(ctx, rec); err != nil {
		p.logger.Warn("append record", zap.String("url", pageURL), zap.Error(err))
		p.mets.SinkFailures.WithLabelValues(metrics.SinkDataset).Inc()
	} else {
		p.mets.RecordsAppended.Inc()
		p.notif.RecordStored(ctx, placeID, pageURL)
	}

	rawPage := pageJSON
	if rawPage == nil {
		rawPage = pageData
	}
	payload, err := json.Marshal(map[string]any{
		"url":      pageURL,
		"apiData":  apiData,
		"pageData": rawPage,
	})
	if err != nil {
		p.logger.Warn("marshal blob payload", zap.String("url", pageURL), zap.Error(err))
	} else if err := p.blobs.Save(ctx, blobKey(placeID, pageURL), payload); err != nil {
		p.logger.Warn("save blob", zap.String("url", pageURL), zap.Error(err))
		p.mets.SinkFailures.WithLabelValues(metrics.SinkBlob).Inc()
	}

	p.mets.PagesProcessed.Inc()
	p.logger.Info("processed page",
		zap.String("url", pageURL),
		zap.String("place_id", placeID),
		zap.Bool("api_data", apiData != nil),
		zap.Bool("page_data", pageData != nil),
	)
}

// blobKey keys raw payloads by place id when one was resolvable, falling
// back to the escaped URL so every processed page lands somewhere.
func blobKey(placeID, pageURL string) string {
	if placeID != "" {
		return "experiences/" + placeID
	}
	return "experiences/" + url.QueryEscape(pageURL)
}

// pageKeyAliases maps canonical page-fragment fields to the key spellings
// embedded payloads have been seen to use.
var pageKeyAliases = map[string][]string{
	"experienceId": {"universeId", "experienceId"},
	"placeId":      {"placeId", "rootPlaceId"},
	"name":         {"name", "gameName"},
	"creator":      {"creatorName", "creator"},
	"visits":       {"visits", "visitCount"},
	"favorites":    {"favoritedCount", "favorites"},
	"playing":      {"playing", "playerCount", "playingCount"},
	"maxPlayers":   {"maxPlayers"},
	"price":        {"price"},
	"genre":        {"genre"},
}

// pageFragment folds the embedded payload and the DOM fallbacks into one
// page-sourced fragment. DOM values only fill fields the payload left
// empty.
func pageFragment(pageJSON record.Fragment, playing, visits string) record.Fragment {
	frag := record.Fragment{}
	for field, keys := range pageKeyAliases {
		for _, key := range keys {
			if v := pageJSON.Find(key); v != nil {
				frag[field] = flattenName(v)
				break
			}
		}
	}
	if playing != "" && frag["playing"] == nil {
		frag["playing"] = playing
	}
	if visits != "" && frag["visits"] == nil {
		frag["visits"] = visits
	}
	if len(frag) == 0 {
		return nil
	}
	return frag
}

// flattenName unwraps {name: ...} objects, which is how creators are
// usually embedded.
func flattenName(v any) any {
	if m, ok := v.(map[string]any); ok {
		if name, ok := m["name"]; ok {
			return name
		}
	}
	return v
}

func universeIDFrom(pageJSON record.Fragment) string {
	return idString(pageJSON.Find("universeId"))
}

// idString renders a numeric identifier the way the API expects it in a
// query string. JSON numbers decode as float64, so whole floats are
// formatted without an exponent or decimals.
func idString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}
