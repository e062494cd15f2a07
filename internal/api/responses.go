package api

import (
	"time"

	"github.com/maltedev/manga-crawler-agents/internal/models"
)

// MangaResponse is the wire form of a manga.
type MangaResponse struct {
	ID                     string   `json:"id"`
	Title                  string   `json:"title"`
	Description            string   `json:"description,omitempty"`
	WebsiteURL             string   `json:"website_url,omitempty"`
	FirstChapterURL        string   `json:"first_chapter_url,omitempty"`
	CoverURL               string   `json:"cover_url,omitempty"`
	CoverFileName          string   `json:"cover_file_name,omitempty"`
	Tags                   []string `json:"tags"`
	ReleaseStatus          string   `json:"release_status"`
	Year                   int      `json:"year,omitempty"`
	LatestChapterAvailable float64  `json:"latest_chapter_available,omitempty"`
	IsFamilySafe           bool     `json:"is_family_safe"`
}

type ChapterResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	MangaID   string     `json:"manga_id"`
	Volume    int        `json:"volume"`
	Number    float64    `json:"number"`
	URL       string     `json:"url"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type PageResponse struct {
	ID         string  `json:"id"`
	ChapterID  string  `json:"chapter_id"`
	PageNumber float64 `json:"page_number"`
	ImageURL   string  `json:"image_url"`
}

type PagedResponse[T any] struct {
	Data       []T `json:"data"`
	TotalCount int `json:"total_count"`
	PageSize   int `json:"page_size"`
	PageIndex  int `json:"page_index"`
	PageCount  int `json:"page_count"`
}

type FaviconResponse struct {
	URL string `json:"url"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewMangaResponse(m *models.Manga) MangaResponse {
	return MangaResponse{
		ID:                     m.ID,
		Title:                  m.Title,
		Description:            m.Description,
		WebsiteURL:             m.WebsiteURL,
		FirstChapterURL:        m.FirstChapterURL,
		CoverURL:               m.CoverLink(),
		CoverFileName:          m.CoverFileName,
		Tags:                   append(make([]string, 0, len(m.Tags)), m.Tags...),
		ReleaseStatus:          m.ReleaseStatus.String(),
		Year:                   m.Year,
		LatestChapterAvailable: m.LatestChapterAvailable,
		IsFamilySafe:           m.IsFamilySafe,
	}
}

func NewChapterResponse(c *models.Chapter) ChapterResponse {
	resp := ChapterResponse{
		ID:      c.ID,
		Title:   c.Title,
		MangaID: c.MangaID(),
		Volume:  c.Volume,
		Number:  c.Number,
	}
	if c.URI != nil {
		resp.URL = c.URI.String()
	}
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}

func NewPageResponse(p *models.Page) PageResponse {
	resp := PageResponse{
		ID:         p.ID,
		ChapterID:  p.ChapterID,
		PageNumber: p.PageNumber,
	}
	if p.ImageURL != nil {
		resp.ImageURL = p.ImageURL.String()
	}
	return resp
}

func NewPageResponses(pages []*models.Page) []PageResponse {
	out := make([]PageResponse, 0, len(pages))
	for _, p := range pages {
		out = append(out, NewPageResponse(p))
	}
	return out
}

// NewPagedResponse converts a paged result item by item.
func NewPagedResponse[T, R any](r *models.PagedResult[T], convert func(T) R) PagedResponse[R] {
	data := make([]R, 0, len(r.Data))
	for _, item := range r.Data {
		data = append(data, convert(item))
	}
	return PagedResponse[R]{
		Data:       data,
		TotalCount: r.TotalCount,
		PageSize:   r.PageSize,
		PageIndex:  r.PageIndex,
		PageCount:  r.PageCount,
	}
}
