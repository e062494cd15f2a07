package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ErrGotoTimeout is returned by Tab.Goto when the engine's own navigation
// deadline expires.
var ErrGotoTimeout = errors.New("navigation deadline exceeded")

// Engine is a running browser that hands out tabs.
type Engine interface {
	NewTab(userAgent string) (Tab, error)
	Close() error
}

// Tab is one browser page. Goto returns once the network has been idle for
// the engine's quiescence window or the timeout expires.
type Tab interface {
	Goto(url string, timeout time.Duration) error
	Content() (string, error)
	URL() string
	Close() error
}

// Launcher starts an Engine. Sessions call it at most once per successful launch.
type Launcher func(opts Options) (Engine, error)

type Options struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	Locale         string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       true,
		Timeout:        30 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		Locale:         "en-US",
	}
}

func launchArgs() []string {
	return []string{
		"--no-sandbox",
		"--disable-setuid-sandbox",
		"--disable-dev-shm-usage",
		"--disable-blink-features=AutomationControlled",
	}
}

type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
	logger  *slog.Logger
}

// Launch starts a headless Chromium through playwright. It satisfies Launcher.
func Launch(opts Options) (Engine, error) {
	defaults := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.ViewportWidth == 0 || opts.ViewportHeight == 0 {
		opts.ViewportWidth, opts.ViewportHeight = defaults.ViewportWidth, defaults.ViewportHeight
	}
	if opts.Locale == "" {
		opts.Locale = defaults.Locale
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Timeout:  playwright.Float(float64(opts.Timeout.Milliseconds())),
		Args:     launchArgs(),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &Browser{
		pw:      pw,
		browser: browser,
		opts:    opts,
		logger:  slog.Default().With("component", "browser"),
	}, nil
}

// NewTab opens a page in its own browser context so that the user agent and
// cookies of concurrent operations never mix.
func (b *Browser) NewTab(userAgent string) (Tab, error) {
	if userAgent == "" {
		userAgent = b.opts.UserAgent
	}

	page, err := b.browser.NewPage(playwright.BrowserNewPageOptions{
		UserAgent:         playwright.String(userAgent),
		Locale:            playwright.String(b.opts.Locale),
		JavaScriptEnabled: playwright.Bool(true),
		AcceptDownloads:   playwright.Bool(false),
		Viewport: &playwright.Size{
			Width:  b.opts.ViewportWidth,
			Height: b.opts.ViewportHeight,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}

	page.SetDefaultTimeout(float64(b.opts.Timeout.Milliseconds()))

	return &playwrightTab{page: page}, nil
}

func (b *Browser) Close() error {
	var errs []error

	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}

	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %w", errors.Join(errs...))
	}

	b.logger.Debug("browser closed")
	return nil
}

type playwrightTab struct {
	page playwright.Page
}

func (t *playwrightTab) Goto(url string, timeout time.Duration) error {
	_, err := t.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return fmt.Errorf("%w: %v", ErrGotoTimeout, err)
		}
		return err
	}
	return nil
}

func (t *playwrightTab) Content() (string, error) {
	return t.page.Content()
}

func (t *playwrightTab) URL() string {
	return t.page.URL()
}

func (t *playwrightTab) Close() error {
	return t.page.Close()
}
