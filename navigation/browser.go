package navigation

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"estate-browser/utils"
)

// Browser drives a headless Chrome tab pointed at the web front end.
// Paths passed to Push are resolved against BaseURL.
type Browser struct {
	baseURL *url.URL
	timeout time.Duration
	logger  *utils.Logger

	ctx         context.Context
	cancelAlloc context.CancelFunc
	cancelTab   context.CancelFunc

	mu        sync.Mutex
	nextID    int
	listeners []listener
}

// BrowserOptions configures NewBrowser.
type BrowserOptions struct {
	BaseURL   string
	ChromeBin string
	Timeout   time.Duration
}

// NewBrowser starts a headless browser and opens a blank tab.
func NewBrowser(parent context.Context, opts BrowserOptions, logger *utils.Logger) (*Browser, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("browser: parse base url: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	chromeBin := opts.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if chromeBin != "" {
		logger.Debug("[browser] Using browser binary: %s", chromeBin)
		allocOpts = append(allocOpts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	b := &Browser{
		baseURL:     base,
		timeout:     opts.Timeout,
		logger:      logger,
		ctx:         tabCtx,
		cancelAlloc: cancelAlloc,
		cancelTab:   cancelTab,
	}

	// The first Run launches the browser process.
	if err := b.run(chromedp.Navigate("about:blank")); err != nil {
		b.Close()
		return nil, fmt.Errorf("browser: launch: %w", err)
	}
	return b, nil
}

// Close shuts the tab and the browser down.
func (b *Browser) Close() {
	b.cancelTab()
	b.cancelAlloc()
}

// Location returns the query string of the tab's current URL. It returns
// an empty string when the location cannot be read.
func (b *Browser) Location() string {
	var current string
	if err := b.run(chromedp.Location(&current)); err != nil {
		b.logger.Warn("[browser] Read location failed: %v", err)
		return ""
	}
	return QueryOf(current)
}

// Push navigates the tab to path, resolved against the base URL.
func (b *Browser) Push(path string) error {
	target, err := b.resolve(path)
	if err != nil {
		return err
	}
	b.logger.Debug("[browser] Navigate %s", target)
	if err := b.run(chromedp.Navigate(target)); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", target, err)
	}
	b.emitCurrent()
	return nil
}

// Back goes one entry back in the tab's history.
func (b *Browser) Back() error {
	if err := b.run(chromedp.NavigateBack()); err != nil {
		return fmt.Errorf("browser: back: %w", err)
	}
	b.emitCurrent()
	return nil
}

// Forward goes one entry forward in the tab's history.
func (b *Browser) Forward() error {
	if err := b.run(chromedp.NavigateForward()); err != nil {
		return fmt.Errorf("browser: forward: %w", err)
	}
	b.emitCurrent()
	return nil
}

// Listen registers fn for navigations made through this Browser.
func (b *Browser) Listen(fn func(rawQuery string)) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, listener{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, l := range b.listeners {
			if l.id == id {
				b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

func (b *Browser) emitCurrent() {
	q := b.Location()
	b.mu.Lock()
	fns := make([]func(string), len(b.listeners))
	for i, l := range b.listeners {
		fns[i] = l.fn
	}
	b.mu.Unlock()
	emit(fns, q)
}

func (b *Browser) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(b.ctx, b.timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// resolve joins a root-relative path such as "/search?x=1" onto the base
// URL, keeping any base path prefix.
func (b *Browser) resolve(path string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("browser: path %q must start with '/'", path)
	}
	u := *b.baseURL
	p, q, _ := strings.Cut(path, "?")
	u.Path = u.Path + p
	u.RawQuery = q
	return u.String(), nil
}

// findChromeBinary locates a Chrome/Chromium binary.
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
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
