package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var ErrMissingField = errors.New("missing required field")

func missing(entity, field string) error {
	return fmt.Errorf("%s: %w: %s", entity, ErrMissingField, field)
}

type MangaBuilder struct {
	manga Manga
}

func NewMangaBuilder() *MangaBuilder {
	return &MangaBuilder{manga: Manga{Tags: make([]string, 0)}}
}

func (b *MangaBuilder) WithID(id string) *MangaBuilder {
	b.manga.ID = strings.TrimSpace(id)
	return b
}

func (b *MangaBuilder) WithTitle(title string) *MangaBuilder {
	b.manga.Title = strings.TrimSpace(title)
	return b
}

func (b *MangaBuilder) WithDescription(description string) *MangaBuilder {
	b.manga.Description = strings.TrimSpace(description)
	return b
}

func (b *MangaBuilder) WithWebsiteURL(u string) *MangaBuilder {
	b.manga.WebsiteURL = u
	return b
}

func (b *MangaBuilder) WithFirstChapterURL(u string) *MangaBuilder {
	b.manga.FirstChapterURL = u
	return b
}

func (b *MangaBuilder) WithCoverURL(u *url.URL) *MangaBuilder {
	b.manga.CoverURL = u
	return b
}

func (b *MangaBuilder) WithCoverFileName(name string) *MangaBuilder {
	b.manga.CoverFileName = name
	return b
}

// WithTags sets the tags as an ordered set: blanks and repeats are dropped,
// first occurrence wins.
func (b *MangaBuilder) WithTags(tags ...string) *MangaBuilder {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	b.manga.Tags = out
	return b
}

func (b *MangaBuilder) WithReleaseStatus(status ReleaseStatus) *MangaBuilder {
	b.manga.ReleaseStatus = status
	return b
}

func (b *MangaBuilder) WithYear(year int) *MangaBuilder {
	b.manga.Year = year
	return b
}

func (b *MangaBuilder) WithLatestChapterAvailable(n float64) *MangaBuilder {
	b.manga.LatestChapterAvailable = n
	return b
}

func (b *MangaBuilder) WithIsFamilySafe(safe bool) *MangaBuilder {
	b.manga.IsFamilySafe = safe
	return b
}

func (b *MangaBuilder) Build() (*Manga, error) {
	if b.manga.ID == "" {
		return nil, missing("manga", "id")
	}
	if b.manga.Title == "" {
		return nil, missing("manga", "title")
	}
	m := b.manga
	m.Tags = append(make([]string, 0, len(b.manga.Tags)), b.manga.Tags...)
	return &m, nil
}

type ChapterBuilder struct {
	chapter Chapter
}

func NewChapterBuilder() *ChapterBuilder {
	return &ChapterBuilder{}
}

func (b *ChapterBuilder) WithID(id string) *ChapterBuilder {
	b.chapter.ID = strings.TrimSpace(id)
	return b
}

func (b *ChapterBuilder) WithTitle(title string) *ChapterBuilder {
	b.chapter.Title = strings.TrimSpace(title)
	return b
}

func (b *ChapterBuilder) WithParentManga(m *Manga) *ChapterBuilder {
	b.chapter.Parent = m
	return b
}

func (b *ChapterBuilder) WithVolume(volume int) *ChapterBuilder {
	b.chapter.Volume = volume
	return b
}

func (b *ChapterBuilder) WithNumber(n float64) *ChapterBuilder {
	b.chapter.Number = n
	return b
}

func (b *ChapterBuilder) WithURI(u *url.URL) *ChapterBuilder {
	b.chapter.URI = u
	return b
}

func (b *ChapterBuilder) WithUpdatedAt(t time.Time) *ChapterBuilder {
	b.chapter.UpdatedAt = t
	return b
}

func (b *ChapterBuilder) Build() (*Chapter, error) {
	switch {
	case b.chapter.ID == "":
		return nil, missing("chapter", "id")
	case b.chapter.Title == "":
		return nil, missing("chapter", "title")
	case b.chapter.Parent == nil:
		return nil, missing("chapter", "parent manga")
	case b.chapter.URI == nil:
		return nil, missing("chapter", "uri")
	}
	c := b.chapter
	return &c, nil
}

type PageBuilder struct {
	page Page
}

func NewPageBuilder() *PageBuilder {
	return &PageBuilder{}
}

func (b *PageBuilder) WithID(id string) *PageBuilder {
	b.page.ID = id
	return b
}

func (b *PageBuilder) WithChapterID(id string) *PageBuilder {
	b.page.ChapterID = id
	return b
}

func (b *PageBuilder) WithPageNumber(n float64) *PageBuilder {
	b.page.PageNumber = n
	return b
}

func (b *PageBuilder) WithImageURL(u *url.URL) *PageBuilder {
	b.page.ImageURL = u
	return b
}

func (b *PageBuilder) WithParentChapter(c *Chapter) *PageBuilder {
	b.page.Parent = c
	return b
}

func (b *PageBuilder) Build() (*Page, error) {
	switch {
	case b.page.ID == "":
		return nil, missing("page", "id")
	case b.page.ChapterID == "":
		return nil, missing("page", "chapter id")
	case b.page.ImageURL == nil:
		return nil, missing("page", "image url")
	case b.page.Parent == nil:
		return nil, missing("page", "parent chapter")
	}
	p := b.page
	return &p, nil
}

type PagedResultBuilder[T any] struct {
	result PagedResult[T]
}

func NewPagedResultBuilder[T any]() *PagedResultBuilder[T] {
	return &PagedResultBuilder[T]{}
}

func (b *PagedResultBuilder[T]) WithData(data []T) *PagedResultBuilder[T] {
	b.result.Data = data
	return b
}

// WithPaging sets the paging metadata. PageCount is derived: a non-empty
// page size covers the total in ceil(total/size) pages.
func (b *PagedResultBuilder[T]) WithPaging(totalCount, pageSize, pageIndex int) *PagedResultBuilder[T] {
	b.result.TotalCount = totalCount
	b.result.PageSize = pageSize
	b.result.PageIndex = pageIndex
	b.result.PageCount = 0
	if pageSize > 0 {
		b.result.PageCount = (totalCount + pageSize - 1) / pageSize
	}
	return b
}

func (b *PagedResultBuilder[T]) Build() *PagedResult[T] {
	r := b.result
	if r.Data == nil {
		r.Data = make([]T, 0)
	} else {
		r.Data = append(make([]T, 0, len(r.Data)), r.Data...)
	}
	return &r
}
