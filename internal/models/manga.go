package models

import (
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	UntitledManga   = "Untitled Manga"
	UntitledChapter = "Untitled Chapter"
)

type ReleaseStatus int

const (
	ReleaseStatusUnreleased ReleaseStatus = iota
	ReleaseStatusContinuing
	ReleaseStatusCompleted
)

func (s ReleaseStatus) String() string {
	switch s {
	case ReleaseStatusCompleted:
		return "completed"
	case ReleaseStatusContinuing:
		return "continuing"
	default:
		return "unreleased"
	}
}

func (s ReleaseStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseReleaseStatus maps site status text to a ReleaseStatus. Anything that
// is not "completed" or "ongoing" (case-insensitive) is Unreleased.
func ParseReleaseStatus(text string) ReleaseStatus {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "completed":
		return ReleaseStatusCompleted
	case "ongoing":
		return ReleaseStatusContinuing
	default:
		return ReleaseStatusUnreleased
	}
}

type Manga struct {
	ID                     string        `json:"id"`
	Title                  string        `json:"title"`
	Description            string        `json:"description,omitempty"`
	WebsiteURL             string        `json:"website_url,omitempty"`
	FirstChapterURL        string        `json:"first_chapter_url,omitempty"`
	CoverURL               *url.URL      `json:"-"`
	CoverFileName          string        `json:"cover_file_name,omitempty"`
	Tags                   []string      `json:"tags"`
	ReleaseStatus          ReleaseStatus `json:"release_status"`
	Year                   int           `json:"year"`
	LatestChapterAvailable float64       `json:"latest_chapter_available"`
	IsFamilySafe           bool          `json:"is_family_safe"`
}

// CoverLink returns the cover URL as a string, empty when the cover is unknown.
func (m *Manga) CoverLink() string {
	if m.CoverURL == nil {
		return ""
	}
	return m.CoverURL.String()
}

type Chapter struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Parent    *Manga    `json:"-"`
	Volume    int       `json:"volume"`
	Number    float64   `json:"number"`
	URI       *url.URL  `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Chapter) MangaID() string {
	if c.Parent == nil {
		return ""
	}
	return c.Parent.ID
}

type Page struct {
	ID         string   `json:"id"`
	ChapterID  string   `json:"chapter_id"`
	PageNumber float64  `json:"page_number"`
	ImageURL   *url.URL `json:"-"`
	Parent     *Chapter `json:"-"`
}

// SortPages orders pages by page number in place. Agents return pages in
// document order; callers that need numeric order sort explicitly.
func SortPages(pages []*Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].PageNumber < pages[j].PageNumber
	})
}
