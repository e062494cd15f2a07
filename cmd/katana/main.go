package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/maltedev/manga-crawler-agents/internal/agent"
	"github.com/maltedev/manga-crawler-agents/internal/api"
	"github.com/maltedev/manga-crawler-agents/internal/config"
	"github.com/maltedev/manga-crawler-agents/internal/models"
	"github.com/maltedev/manga-crawler-agents/internal/parser"
	"github.com/maltedev/manga-crawler-agents/internal/sites/mangakatana"
	"github.com/maltedev/manga-crawler-agents/pkg/logger"
)

type options struct {
	search      string
	id          string
	chapters    bool
	pages       bool
	chapterURL  string
	sortPages   bool
	concurrency int
}

func main() {
	var (
		opts      options
		timeoutMs = flag.Int("timeout", int(config.DefaultTimeout.Milliseconds()), "Navigation timeout in milliseconds")
		userAgent = flag.String("user-agent", config.DefaultUserAgent, "User agent sent by the browser")
		headless  = flag.Bool("headless", true, "Run browser in headless mode")
	)
	flag.StringVar(&opts.search, "search", "", "Search query")
	flag.StringVar(&opts.id, "id", "", "Manga id, e.g. one-piece.3")
	flag.BoolVar(&opts.chapters, "chapters", false, "List chapters of -id")
	flag.BoolVar(&opts.pages, "pages", false, "List pages of every chapter of -id")
	flag.StringVar(&opts.chapterURL, "chapter-url", "", "List pages of a single chapter URL")
	flag.BoolVar(&opts.sortPages, "sort", false, "Sort pages by page number instead of document order")
	flag.IntVar(&opts.concurrency, "concurrency", 4, "Chapters fetched in parallel with -pages")
	flag.Parse()

	if err := opts.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logger.NewWithWriter(os.Stderr, cfg.Logging.Level, "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := mangakatana.New(map[string]any{
		"timeoutMs": *timeoutMs,
		"userAgent": *userAgent,
	}, mangakatana.WithHeadless(*headless), mangakatana.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create agent: %v", err)
	}

	err = run(ctx, a, opts, os.Stdout)
	a.Close()
	if err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func (o options) validate() error {
	modes := 0
	for _, set := range []bool{o.search != "", o.id != "", o.chapterURL != ""} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		return errors.New("exactly one of -search, -id or -chapter-url is required")
	}
	if (o.chapters || o.pages) && o.id == "" {
		return errors.New("-chapters and -pages need -id")
	}
	if o.concurrency < 1 {
		return errors.New("-concurrency must be at least 1")
	}
	return nil
}

// run executes one command against a and writes the JSON result to w.
func run(ctx context.Context, a agent.Agent, opts options, w io.Writer) error {
	var (
		out any
		err error
	)

	switch {
	case opts.search != "":
		var result *models.PagedResult[*models.Manga]
		result, err = a.Search(ctx, opts.search, models.PaginationOptions{})
		if err == nil {
			out = api.NewPagedResponse(result, api.NewMangaResponse)
		}
	case opts.chapterURL != "":
		out, err = chapterPages(ctx, a, opts.chapterURL, opts.sortPages)
	case opts.pages:
		out, err = allPages(ctx, a, opts)
	case opts.chapters:
		var result *models.PagedResult[*models.Chapter]
		result, err = a.GetChapters(ctx, &models.Manga{ID: opts.id}, models.PaginationOptions{})
		if err == nil {
			out = api.NewPagedResponse(result, api.NewChapterResponse)
		}
	default:
		var manga *models.Manga
		manga, err = a.GetByID(ctx, opts.id)
		if err == nil {
			out = api.NewMangaResponse(manga)
		}
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func chapterPages(ctx context.Context, a agent.Agent, rawURL string, sorted bool) ([]api.PageResponse, error) {
	uri, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || uri.Scheme == "" || uri.Host == "" {
		return nil, fmt.Errorf("%w: chapter url %q is not absolute", agent.ErrInvalidInput, rawURL)
	}

	pages, err := a.GetChapterPages(ctx, &models.Chapter{ID: parser.LastSegment(uri.String()), URI: uri})
	if err != nil {
		return nil, err
	}
	if sorted {
		models.SortPages(pages)
	}
	return api.NewPageResponses(pages), nil
}

type chapterPagesOutput struct {
	Chapter api.ChapterResponse `json:"chapter"`
	Pages   []api.PageResponse  `json:"pages"`
}

// allPages lists every chapter of opts.id and fetches their pages in
// parallel. All tabs share the agent's single browser.
func allPages(ctx context.Context, a agent.Agent, opts options) ([]chapterPagesOutput, error) {
	chapters, err := a.GetChapters(ctx, &models.Manga{ID: opts.id}, models.PaginationOptions{})
	if err != nil {
		return nil, err
	}

	out := make([]chapterPagesOutput, len(chapters.Data))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency)
	for i, chapter := range chapters.Data {
		i, chapter := i, chapter
		g.Go(func() error {
			pages, err := a.GetChapterPages(gctx, chapter)
			if err != nil {
				return fmt.Errorf("chapter %s: %w", chapter.ID, err)
			}
			if opts.sortPages {
				models.SortPages(pages)
			}
			out[i] = chapterPagesOutput{
				Chapter: api.NewChapterResponse(chapter),
				Pages:   api.NewPageResponses(pages),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
