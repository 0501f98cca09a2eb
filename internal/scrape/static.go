package scrape

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// StaticRunner drives the static-HTML mode: a Colly collector fetches raw
// markup, discovers experience links, and hands every successful response
// to the shared pipeline.
type StaticRunner struct {
	cfg      Config
	pipeline *Pipeline
	logger   *zap.Logger
	requests atomic.Int64
}

// NewStaticRunner builds a runner around the shared pipeline.
func NewStaticRunner(cfg Config, pipeline *Pipeline, logger *zap.Logger) *StaticRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaticRunner{cfg: cfg, pipeline: pipeline, logger: logger}
}

// Run visits every seed and crawls until the frontier drains or the request
// budget is spent. Individual page failures are logged and skipped.
func (r *StaticRunner) Run(ctx context.Context) error {
	collector := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(r.cfg.UserAgent),
	)
	collector.AllowURLRevisit = false
	collector.WithTransport(&http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        64,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     30 * time.Second,
	})
	if r.cfg.RequestTimeout > 0 {
		collector.SetRequestTimeout(r.cfg.RequestTimeout)
	}
	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: maxInt(1, r.cfg.Concurrency),
	}); err != nil {
		return err
	}

	collector.OnRequest(func(req *colly.Request) {
		if ctx.Err() != nil {
			req.Abort()
			return
		}
		if r.cfg.MaxRequests > 0 && r.requests.Add(1) > int64(r.cfg.MaxRequests) {
			req.Abort()
		}
	})

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link, ok := FollowableLink(e.Request.URL, e.Attr("href"), r.cfg.SameHostOnly)
		if !ok {
			return
		}
		// AlreadyVisited and budget errors are routine here.
		if err := e.Request.Visit(link); err != nil {
			r.logger.Debug("skip link", zap.String("link", link), zap.Error(err))
		}
	})

	collector.OnResponse(func(resp *colly.Response) {
		if resp.StatusCode != http.StatusOK || len(resp.Body) == 0 {
			r.logger.Warn("skipping response",
				zap.String("url", resp.Request.URL.String()),
				zap.Int("status_code", resp.StatusCode),
			)
			return
		}
		r.pipeline.ProcessPage(ctx, resp.Request.URL.String(), NewStaticContent(string(resp.Body)))
	})

	collector.OnError(func(resp *colly.Response, err error) {
		r.logger.Warn("request failed",
			zap.String("url", resp.Request.URL.String()),
			zap.Int("status_code", resp.StatusCode),
			zap.Error(err),
		)
	})

	for _, seed := range r.cfg.StartURLs {
		if err := collector.Visit(seed); err != nil {
			r.logger.Error("visit seed", zap.String("url", seed), zap.Error(err))
		}
	}
	collector.Wait()
	return ctx.Err()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
