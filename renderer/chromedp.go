package renderer

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"rooms-aggregator/config"
	"rooms-aggregator/utils"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// clickScript clicks the first element matching a selector and reports whether one existed.
const clickScript = `(function() {
	var el = document.querySelector(%q);
	if (!el) return false;
	el.click();
	return true;
})()`

// Browser is a headless Chrome process shared by all sessions of one run. Each
// session is a tab in that process.
type Browser struct {
	cancelAlloc   context.CancelFunc
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	navTimeout    time.Duration
	logger        *utils.Logger

	startOnce sync.Once
	startErr  error
}

// NewBrowser prepares the Chrome allocator. The process starts lazily with the
// first session.
func NewBrowser(cfg *config.Config, logger *utils.Logger) *Browser {
	chromeBin := cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[renderer] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(1366, 900),
		chromedp.UserAgent(userAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	return &Browser{
		cancelAlloc:   cancelAlloc,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		navTimeout:    cfg.NavTimeout,
		logger:        logger,
	}
}

// start launches the Chrome process once. Its first tab stays idle.
func (b *Browser) start() error {
	b.startOnce.Do(func() {
		if b.startErr = chromedp.Run(b.browserCtx); b.startErr != nil {
			b.startErr = fmt.Errorf("start browser: %w", b.startErr)
		}
	})
	return b.startErr
}

// Open starts a new tab in the shared browser process, launching it on first use.
func (b *Browser) Open(ctx context.Context) (Session, error) {
	started := make(chan error, 1)
	go func() { started <- b.start() }()
	select {
	case err := <-started:
		if err != nil {
			return nil, err
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)

	// The first Run attaches the tab; it must use the tab context itself so a
	// later per-operation timeout does not tear the tab down.
	go func() { started <- chromedp.Run(tabCtx) }()
	select {
	case err := <-started:
		if err != nil {
			cancelTab()
			return nil, fmt.Errorf("open browser tab: %w", err)
		}
	case <-ctx.Done():
		cancelTab()
		return nil, ctx.Err()
	}

	return &chromeSession{tabCtx: tabCtx, cancelTab: cancelTab, navTimeout: b.navTimeout}, nil
}

// Close shuts the browser process down.
func (b *Browser) Close() {
	b.logger.Debug("[renderer] Closing browser")
	b.cancelBrowser()
	b.cancelAlloc()
}

type chromeSession struct {
	tabCtx     context.Context
	cancelTab  context.CancelFunc
	navTimeout time.Duration
}

// scope derives an operation context bounded by timeout that also ends when the
// caller's ctx ends.
func (s *chromeSession) scope(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithTimeout(s.tabCtx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

func (s *chromeSession) Navigate(ctx context.Context, pageURL string) error {
	opCtx, done := s.scope(ctx, s.navTimeout)
	defer done()

	if err := chromedp.Run(opCtx, chromedp.Navigate(pageURL)); err != nil {
		return fmt.Errorf("navigate %s: %w", pageURL, err)
	}
	return nil
}

func (s *chromeSession) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) bool {
	opCtx, done := s.scope(ctx, timeout)
	defer done()

	return chromedp.Run(opCtx, chromedp.WaitReady(selector, chromedp.ByQuery)) == nil
}

func (s *chromeSession) FindAndClick(ctx context.Context, selector string) bool {
	opCtx, done := s.scope(ctx, 5*time.Second)
	defer done()

	var clicked bool
	if err := chromedp.Run(opCtx, chromedp.Evaluate(fmt.Sprintf(clickScript, selector), &clicked)); err != nil {
		return false
	}
	return clicked
}

func (s *chromeSession) Document(ctx context.Context) (*goquery.Document, error) {
	opCtx, done := s.scope(ctx, s.navTimeout)
	defer done()

	var html, location string
	if err := chromedp.Run(opCtx,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("read rendered html: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse rendered html: %w", err)
	}
	if u, err := url.Parse(location); err == nil {
		doc.Url = u
	}
	return doc, nil
}

func (s *chromeSession) Close() error {
	s.cancelTab()
	return nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
