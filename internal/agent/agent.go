package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/maltedev/manga-crawler-agents/internal/browser"
	"github.com/maltedev/manga-crawler-agents/internal/config"
	"github.com/maltedev/manga-crawler-agents/internal/models"
	"github.com/maltedev/manga-crawler-agents/internal/parser"
	"golang.org/x/net/html"
)

var (
	ErrNotFound     = errors.New("not found or layout mismatch")
	ErrInvalidInput = errors.New("invalid input")
)

// Agent is the capability set every site adapter provides. Every operation
// except GetFavicon opens one tab, navigates once and closes the tab. Close
// releases the browser and HTTP client; an agent is not usable afterwards.
type Agent interface {
	Name() string
	BaseURL() *url.URL
	GetByID(ctx context.Context, id string) (*models.Manga, error)
	GetChapters(ctx context.Context, manga *models.Manga, opts models.PaginationOptions) (*models.PagedResult[*models.Chapter], error)
	GetChapterPages(ctx context.Context, chapter *models.Chapter) ([]*models.Page, error)
	Search(ctx context.Context, query string, opts models.PaginationOptions) (*models.PagedResult[*models.Manga], error)
	GetFavicon(ctx context.Context) (*url.URL, error)
	Close() error
}

// Document is a parsed, rendered page and the URL it was served from.
type Document struct {
	URL  string
	HTML string
	Root *html.Node
}

// Base carries what adapters share: the session, options and logger.
// Adapters embed it and implement the extraction side.
type Base struct {
	name    string
	baseURL *url.URL
	opts    config.Options
	session *browser.Session
	logger  *slog.Logger
}

func NewBase(name, baseURL string, opts config.Options, launch browser.Launcher, logger *slog.Logger) (*Base, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("agent", name)

	session := browser.NewSession(u, browser.Options{
		Headless:  opts.Headless,
		Timeout:   opts.Timeout,
		UserAgent: opts.UserAgent,
	}, launch, logger)

	return &Base{
		name:    name,
		baseURL: u,
		opts:    opts,
		session: session,
		logger:  logger,
	}, nil
}

func (b *Base) Name() string { return b.name }

func (b *Base) BaseURL() *url.URL {
	u := *b.baseURL
	return &u
}

func (b *Base) Options() config.Options { return b.opts }

func (b *Base) Logger() *slog.Logger { return b.logger }

func (b *Base) Session() *browser.Session { return b.session }

// Resolve builds a site URL from a path relative to the base origin, using
// the shared HTTP client.
func (b *Base) Resolve(ref string) (*url.URL, error) {
	client, err := b.session.AcquireHTTPClient()
	if err != nil {
		return nil, err
	}
	return client.Resolve(ref)
}

// Fetch navigates to target and parses the rendered markup.
func (b *Base) Fetch(ctx context.Context, target string) (*Document, error) {
	doc, err := b.session.Navigate(ctx, target)
	if err != nil {
		return nil, err
	}

	root, err := parser.Parse(doc.HTML)
	if err != nil {
		return nil, err
	}

	return &Document{URL: doc.URL, HTML: doc.HTML, Root: root}, nil
}

// Anchor finds the structural anchor of doc for a lookup of what. When it is
// missing the markup is checked for a challenge page: that yields
// parser.ErrBlocked, anything else ErrNotFound.
func (b *Base) Anchor(doc *Document, expr, what string) (*html.Node, error) {
	root, err := parser.Anchor(doc.Root, expr)
	if err == nil {
		return root, nil
	}
	if err := b.Blocked(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return nil, NotFound(what, err)
}

// Blocked returns a parser.ErrBlocked error when doc is a challenge page.
// Only call it once the expected content is known to be absent: a real page
// may carry a title such as "Access Denied".
func (b *Base) Blocked(doc *Document) error {
	if !parser.DetectBlock(doc.HTML) {
		return nil
	}
	b.logger.Warn("challenge page served", "url", doc.URL)
	return fmt.Errorf("%s: %w", doc.URL, parser.ErrBlocked)
}

// Reachable sends a plain GET for ref through the shared HTTP client and
// fails unless the site answers with a non-error status. No tab is opened.
func (b *Base) Reachable(ctx context.Context, ref string) error {
	client, err := b.session.AcquireHTTPClient()
	if err != nil {
		return err
	}

	resp, err := client.Get(ctx, ref)
	if err != nil {
		return fmt.Errorf("site unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("site unreachable: %s returned %d", resp.Request.URL, resp.StatusCode)
	}
	return nil
}

// Close disposes the session. It always succeeds.
func (b *Base) Close() error {
	b.session.Dispose()
	return nil
}

// NotFound wraps a missing-anchor failure for a lookup of what.
func NotFound(what string, err error) error {
	if errors.Is(err, parser.ErrMissingAnchor) {
		return fmt.Errorf("%s: %w: %w", what, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}
