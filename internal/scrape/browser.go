package scrape

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// How long the network must stay quiet before a page counts as settled.
	settleQuietWindow = 500 * time.Millisecond
	settlePollEvery   = 50 * time.Millisecond

	elementReadTimeout = 2 * time.Second
)

// BrowserRunner drives the rendered mode: a headless Chrome instance loads
// each URL in its own tab, waits for the network to settle, and hands the
// rendered DOM to the shared pipeline. Link discovery happens on the
// rendered markup, so script-inserted anchors are followed too.
type BrowserRunner struct {
	cfg      Config
	pipeline *Pipeline
	logger   *zap.Logger
	limiters sync.Map // host -> *rate.Limiter
}

// NewBrowserRunner builds a runner around the shared pipeline.
func NewBrowserRunner(cfg Config, pipeline *Pipeline, logger *zap.Logger) *BrowserRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowserRunner{cfg: cfg, pipeline: pipeline, logger: logger}
}

// Run crawls from the seeds until the frontier drains, the request budget is
// spent, or ctx is cancelled. One browser process is shared by all workers;
// each URL gets a fresh tab.
func (r *BrowserRunner) Run(ctx context.Context) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(r.cfg.UserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// Start the browser before the workers race to open tabs.
	if err := chromedp.Run(browserCtx); err != nil {
		return err
	}

	fr := newFrontier(r.cfg.MaxRequests)
	seeded := 0
	for _, seed := range r.cfg.StartURLs {
		if fr.Add(seed) {
			seeded++
		} else {
			r.logger.Warn("seed rejected", zap.String("url", seed))
		}
	}
	if seeded == 0 {
		return nil
	}

	workers := maxInt(1, r.cfg.Concurrency)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				pageURL, ok := fr.Next()
				if !ok {
					return
				}
				if ctx.Err() == nil {
					r.processURL(browserCtx, ctx, pageURL, fr)
				}
				fr.Done()
			}
		}()
	}
	wg.Wait()
	return ctx.Err()
}

func (r *BrowserRunner) processURL(browserCtx, runCtx context.Context, pageURL string, fr *frontier) {
	base, err := url.Parse(pageURL)
	if err != nil {
		r.logger.Warn("bad url", zap.String("url", pageURL), zap.Error(err))
		return
	}
	if err := r.waitHostBudget(runCtx, base.Hostname()); err != nil {
		return
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	if r.cfg.NavTimeout > 0 {
		var cancelNav context.CancelFunc
		tabCtx, cancelNav = context.WithTimeout(tabCtx, r.cfg.NavTimeout)
		defer cancelNav()
	}

	tracker := newSettleTracker(tabCtx)
	if err := chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.Navigate(pageURL),
	); err != nil {
		r.logger.Warn("navigate", zap.String("url", pageURL), zap.Error(err))
		return
	}

	content := newBrowserContent(tabCtx, tracker, r.cfg.SettleTimeout, r.logger)
	r.pipeline.ProcessPage(runCtx, pageURL, content)

	for _, href := range collectHrefs(content.HTML()) {
		if link, ok := FollowableLink(base, href, r.cfg.SameHostOnly); ok {
			fr.Add(link)
		}
	}
}

// waitHostBudget blocks until the per-host pacing allows another page load.
func (r *BrowserRunner) waitHostBudget(ctx context.Context, host string) error {
	if r.cfg.PageQPS <= 0 {
		return nil
	}
	v, _ := r.limiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(r.cfg.PageQPS), 1))
	return v.(*rate.Limiter).Wait(ctx)
}

// settleTracker watches CDP network events on one tab and reports when no
// requests have been in flight for the quiet window.
type settleTracker struct {
	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
	lastBusy time.Time
}

func newSettleTracker(tabCtx context.Context) *settleTracker {
	t := &settleTracker{
		inflight: make(map[network.RequestID]struct{}),
		lastBusy: time.Now(),
	}
	chromedp.ListenTarget(tabCtx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			t.track(e.RequestID)
		case *network.EventLoadingFinished:
			t.untrack(e.RequestID)
		case *network.EventLoadingFailed:
			t.untrack(e.RequestID)
		}
	})
	return t
}

func (t *settleTracker) track(id network.RequestID) {
	t.mu.Lock()
	t.inflight[id] = struct{}{}
	t.lastBusy = time.Now()
	t.mu.Unlock()
}

func (t *settleTracker) untrack(id network.RequestID) {
	t.mu.Lock()
	delete(t.inflight, id)
	t.lastBusy = time.Now()
	t.mu.Unlock()
}

func (t *settleTracker) quietSince() (bool, time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight) == 0, t.lastBusy
}

// Wait blocks until the tab's network has been idle for the quiet window or
// the budget runs out. Running out of budget is not an error; the page is
// simply harvested as-is.
func (t *settleTracker) Wait(ctx context.Context, budget time.Duration) {
	if budget <= 0 {
		return
	}
	deadline := time.Now().Add(budget)
	ticker := time.NewTicker(settlePollEvery)
	defer ticker.Stop()
	for {
		if quiet, since := t.quietSince(); quiet && time.Since(since) >= settleQuietWindow {
			return
		}
		if time.Now().After(deadline) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// BrowserContent exposes a live tab through the ContentProvider interface.
// HTML is captured once; element reads go back to the tab so they see the
// current DOM.
type BrowserContent struct {
	tabCtx  context.Context
	tracker *settleTracker
	budget  time.Duration
	logger  *zap.Logger

	once sync.Once
	html string
}

func newBrowserContent(tabCtx context.Context, tracker *settleTracker, budget time.Duration, logger *zap.Logger) *BrowserContent {
	return &BrowserContent{tabCtx: tabCtx, tracker: tracker, budget: budget, logger: logger}
}

// HTML serializes the rendered document. The first call snapshots it; later
// calls return the same markup.
func (c *BrowserContent) HTML() string {
	c.once.Do(func() {
		if err := chromedp.Run(c.tabCtx, chromedp.OuterHTML("html", &c.html)); err != nil {
			c.logger.Warn("capture html", zap.Error(err))
		}
	})
	return c.html
}

// ElementText reads the text of the first node matching selector from the
// live DOM. Missing nodes and timeouts both come back as "".
func (c *BrowserContent) ElementText(selector string) string {
	readCtx, cancel := context.WithTimeout(c.tabCtx, elementReadTimeout)
	defer cancel()
	var text string
	err := chromedp.Run(readCtx,
		chromedp.Text(selector, &text, chromedp.ByQuery, chromedp.AtLeast(0)),
	)
	if err != nil {
		return ""
	}
	return text
}

// WaitSettled blocks until the tab's network has gone quiet, bounded by the
// configured settle budget.
func (c *BrowserContent) WaitSettled(ctx context.Context) {
	if c.tracker == nil {
		return
	}
	c.tracker.Wait(ctx, c.budget)
}
