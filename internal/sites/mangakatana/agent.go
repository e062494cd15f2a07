// Package mangakatana is the crawler agent for mangakatana.com.
package mangakatana

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/maltedev/manga-crawler-agents/internal/agent"
	"github.com/maltedev/manga-crawler-agents/internal/browser"
	"github.com/maltedev/manga-crawler-agents/internal/config"
	"github.com/maltedev/manga-crawler-agents/internal/models"
	"github.com/maltedev/manga-crawler-agents/internal/parser"
)

const (
	Name       = "mangakatana"
	BaseURL    = "https://mangakatana.com"
	FaviconURL = "https://mangakatana.com/static/img/fav.png"
)

var _ agent.Agent = (*Agent)(nil)

type Agent struct {
	*agent.Base
}

type Option func(*settings)

type settings struct {
	launch   browser.Launcher
	logger   *slog.Logger
	headless *bool
}

// WithLauncher replaces the playwright launcher, e.g. with a test double.
func WithLauncher(l browser.Launcher) Option {
	return func(s *settings) { s.launch = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

func WithHeadless(headless bool) Option {
	return func(s *settings) { s.headless = &headless }
}

// New builds the agent from an options bag (see config.FromOptions).
// Nothing is launched until the first operation that needs the browser.
func New(options map[string]any, opts ...Option) (*Agent, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	cfg := config.FromOptions(options)
	if s.headless != nil {
		cfg.Headless = *s.headless
	}

	base, err := agent.NewBase(Name, BaseURL, cfg, s.launch, s.logger)
	if err != nil {
		return nil, err
	}

	return &Agent{Base: base}, nil
}

func (a *Agent) detailURL(id string) (*url.URL, error) {
	return a.Resolve("manga/" + url.PathEscape(id))
}

func (a *Agent) GetByID(ctx context.Context, id string) (*models.Manga, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty manga id", agent.ErrInvalidInput)
	}

	target, err := a.detailURL(id)
	if err != nil {
		return nil, err
	}

	doc, err := a.Fetch(ctx, target.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manga %q: %w", id, err)
	}

	root, err := a.Anchor(doc, detailAnchor, fmt.Sprintf("manga %q", id))
	if err != nil {
		return nil, err
	}

	return mangaFromDetail(a.BaseURL(), root, id, target.String())
}

func (a *Agent) GetChapters(ctx context.Context, manga *models.Manga, opts models.PaginationOptions) (*models.PagedResult[*models.Chapter], error) {
	if manga == nil || manga.ID == "" {
		return nil, fmt.Errorf("%w: manga without id", agent.ErrInvalidInput)
	}

	target, err := a.detailURL(manga.ID)
	if err != nil {
		return nil, err
	}

	doc, err := a.Fetch(ctx, target.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chapters of %q: %w", manga.ID, err)
	}

	root, err := a.Anchor(doc, detailAnchor, fmt.Sprintf("chapters of %q", manga.ID))
	if err != nil {
		return nil, err
	}

	chapters := chaptersFromDetail(a.BaseURL(), manga, root)
	a.Logger().Debug("chapters extracted", "manga_id", manga.ID, "count", len(chapters), "requested_page", opts.PageIndex)

	return models.SinglePage(chapters), nil
}

// GetChapterPages returns pages in document order.
func (a *Agent) GetChapterPages(ctx context.Context, chapter *models.Chapter) ([]*models.Page, error) {
	if chapter == nil || chapter.URI == nil || chapter.ID == "" {
		return nil, fmt.Errorf("%w: chapter without id or uri", agent.ErrInvalidInput)
	}
	if err := a.checkSiteURL(chapter.URI); err != nil {
		return nil, err
	}

	doc, err := a.Fetch(ctx, chapter.URI.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pages of chapter %q: %w", chapter.ID, err)
	}

	reader, err := a.Anchor(doc, readerAnchor, fmt.Sprintf("pages of chapter %q", chapter.ID))
	if err != nil {
		return nil, err
	}

	pages := pagesFromReader(a.BaseURL(), chapter, reader)
	a.Logger().Debug("pages extracted", "chapter_id", chapter.ID, "count", len(pages))

	return pages, nil
}

func (a *Agent) searchURL(query string) *url.URL {
	u := a.BaseURL()
	u.Path = "/"
	u.RawQuery = url.Values{
		"search":    {query},
		"search_by": {"book_name"},
	}.Encode()
	return u
}

// Search extracts the result grid. A layout without the grid yields an empty
// result, except when the site redirected a single hit to its detail page.
func (a *Agent) Search(ctx context.Context, query string, opts models.PaginationOptions) (*models.PagedResult[*models.Manga], error) {
	target := a.searchURL(query)

	doc, err := a.Fetch(ctx, target.String())
	if err != nil {
		return nil, fmt.Errorf("failed to search %q: %w", query, err)
	}

	mangas, err := a.searchResults(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to search %q: %w", query, err)
	}
	a.Logger().Debug("search results extracted", "query", query, "count", len(mangas), "requested_page", opts.PageIndex)

	return models.SinglePage(mangas), nil
}

func (a *Agent) searchResults(doc *agent.Document) ([]*models.Manga, error) {
	base := a.BaseURL()

	grid := parser.One(doc.Root, gridAnchor)
	if grid == nil {
		root := parser.One(doc.Root, detailAnchor)
		if root == nil {
			if err := a.Blocked(doc); err != nil {
				return nil, err
			}
			return make([]*models.Manga, 0), nil
		}
		manga, err := mangaFromDetail(base, root, parser.LastSegment(doc.URL), doc.URL)
		if err != nil {
			a.Logger().Warn("dropping redirected search hit", "url", doc.URL, "error", err)
			return make([]*models.Manga, 0), nil
		}
		return []*models.Manga{manga}, nil
	}

	items := parser.All(grid, gridItems)
	mangas := make([]*models.Manga, 0, len(items))
	for _, item := range items {
		manga, err := mangaFromListItem(base, item)
		if err != nil {
			a.Logger().Warn("dropping search item", "error", err)
			continue
		}
		mangas = append(mangas, manga)
	}
	return mangas, nil
}

// checkSiteURL keeps navigation on the site: only http(s) URLs on the agent's
// own host are accepted.
func (a *Agent) checkSiteURL(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", agent.ErrInvalidInput, u.Scheme)
	}
	if !strings.EqualFold(u.Host, a.BaseURL().Host) {
		return fmt.Errorf("%w: host %q is not %s", agent.ErrInvalidInput, u.Host, a.BaseURL().Host)
	}
	return nil
}

// Ping checks that the site answers. It fetches the favicon over plain HTTP,
// so no browser is launched.
func (a *Agent) Ping(ctx context.Context) error {
	return a.Reachable(ctx, FaviconURL)
}

func (a *Agent) GetFavicon(ctx context.Context) (*url.URL, error) {
	return url.Parse(FaviconURL)
}
