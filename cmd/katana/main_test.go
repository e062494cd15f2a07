package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/manga-crawler-agents/internal/agent"
	"github.com/maltedev/manga-crawler-agents/internal/api"
	"github.com/maltedev/manga-crawler-agents/internal/browser/browsertest"
	"github.com/maltedev/manga-crawler-agents/internal/sites/mangakatana"
)

const detailPage = `<html><body><div id="single_book">
<h1 class="heading">Berserk</h1>
<div class="chapters"><table>
<tr><td><div class="chapter"><a href="/manga/berserk.1/c2">Chapter 2</a></div></td></tr>
<tr><td><div class="chapter"><a href="/manga/berserk.1/c1">Chapter 1</a></div></td></tr>
</table></div>
</div></body></html>`

const readerPage = `<html><body><div id="imgs">
<div id="page2" class="wrap_img"><img data-src="https://i.example/2.jpg"></div>
<div id="page1" class="wrap_img"><img data-src="https://i.example/1.jpg"></div>
</div></body></html>`

func newAgent(t *testing.T) (*mangakatana.Agent, *browsertest.Site) {
	t.Helper()
	site := browsertest.NewSite(map[string]string{
		"https://mangakatana.com/manga/berserk.1":    detailPage,
		"https://mangakatana.com/manga/berserk.1/c1": readerPage,
		"https://mangakatana.com/manga/berserk.1/c2": readerPage,
	})
	a, err := mangakatana.New(nil, mangakatana.WithLauncher(site.Launcher()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, site
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    options
		wantErr bool
	}{
		{"search", options{search: "x", concurrency: 1}, false},
		{"id with pages", options{id: "x", pages: true, concurrency: 1}, false},
		{"nothing", options{concurrency: 1}, true},
		{"two modes", options{search: "x", id: "y", concurrency: 1}, true},
		{"chapters without id", options{search: "x", chapters: true, concurrency: 1}, true},
		{"zero concurrency", options{id: "x", concurrency: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunGetByID(t *testing.T) {
	a, _ := newAgent(t)

	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), a, options{id: "berserk.1", concurrency: 1}, &buf))

	var manga api.MangaResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &manga))
	assert.Equal(t, "berserk.1", manga.ID)
	assert.Equal(t, "Berserk", manga.Title)
}

func TestRunChapters(t *testing.T) {
	a, _ := newAgent(t)

	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), a, options{id: "berserk.1", chapters: true, concurrency: 1}, &buf))

	var result api.PagedResponse[api.ChapterResponse]
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	require.Len(t, result.Data, 2)
	assert.Equal(t, "c2", result.Data[0].ID)
	assert.Equal(t, 2, result.TotalCount)
}

func TestRunAllPagesSharesOneBrowser(t *testing.T) {
	a, site := newAgent(t)

	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), a, options{id: "berserk.1", pages: true, sortPages: true, concurrency: 2}, &buf))

	var out []chapterPagesOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "c2", out[0].Chapter.ID)
	assert.Equal(t, "c1", out[1].Chapter.ID)
	require.Len(t, out[0].Pages, 2)
	assert.Equal(t, float64(1), out[0].Pages[0].PageNumber)

	assert.Equal(t, 1, site.Launches())
	assert.Equal(t, 3, site.TabsOpened())
	assert.Equal(t, 3, site.TabsClosed())
}

func TestRunChapterURLKeepsDocumentOrder(t *testing.T) {
	a, _ := newAgent(t)

	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), a, options{chapterURL: "https://mangakatana.com/manga/berserk.1/c1", concurrency: 1}, &buf))

	var pages []api.PageResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &pages))
	require.Len(t, pages, 2)
	assert.Equal(t, float64(2), pages[0].PageNumber)
	assert.Equal(t, "c1", pages[0].ChapterID)
}

func TestRunRejectsRelativeChapterURL(t *testing.T) {
	a, site := newAgent(t)

	err := run(context.Background(), a, options{chapterURL: "/manga/berserk.1/c1", concurrency: 1}, &bytes.Buffer{})
	assert.ErrorIs(t, err, agent.ErrInvalidInput)
	assert.Equal(t, 0, site.Launches())
}

func TestRunNotFound(t *testing.T) {
	a, _ := newAgent(t)

	err := run(context.Background(), a, options{id: "missing.9", concurrency: 1}, &bytes.Buffer{})
	assert.ErrorIs(t, err, agent.ErrNotFound)
}

func TestRunRejectsForeignChapterURL(t *testing.T) {
	a, site := newAgent(t)

	err := run(context.Background(), a, options{chapterURL: "http://169.254.169.254/latest/meta-data", concurrency: 1}, &bytes.Buffer{})
	assert.ErrorIs(t, err, agent.ErrInvalidInput)
	assert.Empty(t, site.Visited())
}
