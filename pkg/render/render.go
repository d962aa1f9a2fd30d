package render

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/honeycarbs/jobscout/pkg/fetch"
)

// ErrClosed is returned by Render after Close
var ErrClosed = errors.New("render: chrome is closed")

// Renderer returns the HTML of a page after any client side rendering.
// On a non-2xx response the body is still returned along with the error.
type Renderer interface {
	Render(ctx context.Context, url string) ([]byte, error)
}

// HTTP renders by plain GET through a fetch client. It is used when a source
// serves usable markup without JavaScript, and by harness replays.
type HTTP struct {
	Client *fetch.Client
	// Accept vets each page before it may be cached, see fetch.Request
	Accept func(*fetch.Response) error
}

func (h HTTP) Render(ctx context.Context, url string) ([]byte, error) {
	if h.Client == nil {
		return nil, fmt.Errorf("render: fetch client is nil")
	}
	resp, err := h.Client.Do(ctx, fetch.Request{
		Method: http.MethodGet,
		URL:    url,
		Header: http.Header{"Accept": []string{"text/html,application/xhtml+xml"}},
		Accept: h.Accept,
	})
	if resp == nil {
		return nil, err
	}
	return resp.Body, err
}

// ChromeConfig configures the headless browser
type ChromeConfig struct {
	UserAgent   string
	Timeout     time.Duration
	SettleDelay time.Duration // extra wait after DOM ready for XHR-filled lists
	WaitFor     string        // CSS selector that must be visible before capture
	Limiter     fetch.Waiter
	ExecPath    string
}

// Chrome renders pages as tabs of one shared headless Chrome process
type Chrome struct {
	cfg         ChromeConfig
	allocCtx    context.Context
	cancelAlloc context.CancelFunc

	mu            sync.Mutex
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	closed        bool
}

// NewChrome prepares a browser allocator; Chrome itself starts on first Render
func NewChrome(cfg ChromeConfig) *Chrome {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if cfg.WaitFor == "" {
		cfg.WaitFor = "body"
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Chrome{cfg: cfg, allocCtx: allocCtx, cancelAlloc: cancel}
}

// browser returns the context owning the Chrome process, starting it on
// first use and again if it has died
func (c *Chrome) browser() (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if c.browserCtx != nil && c.browserCtx.Err() == nil {
		return c.browserCtx, nil
	}

	ctx, cancel := chromedp.NewContext(c.allocCtx)
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("render: start chrome: %w", err)
	}
	c.browserCtx, c.cancelBrowser = ctx, cancel
	return ctx, nil
}

func (c *Chrome) Render(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.cfg.Limiter != nil {
		if err := c.cfg.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	browserCtx, err := c.browser()
	if err != nil {
		return nil, err
	}

	// cancelling a tab context closes the tab, not the browser
	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.cfg.Timeout)
	defer cancelTimeout()

	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var html string
	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitVisible(c.cfg.WaitFor, chromedp.ByQuery),
	}
	if c.cfg.SettleDelay > 0 {
		actions = append(actions, chromedp.Sleep(c.cfg.SettleDelay))
	}
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("render: chrome %s: %w", url, err)
	}
	return []byte(html), nil
}

// Close shuts the browser down. Render fails with ErrClosed afterwards.
func (c *Chrome) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.cancelBrowser != nil {
		c.cancelBrowser()
		c.cancelBrowser = nil
	}
	if c.cancelAlloc != nil {
		c.cancelAlloc()
	}
}

var (
	_ Renderer = HTTP{}
	_ Renderer = (*Chrome)(nil)
)
