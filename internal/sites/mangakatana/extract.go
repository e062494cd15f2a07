package mangakatana

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/maltedev/manga-crawler-agents/internal/models"
	"github.com/maltedev/manga-crawler-agents/internal/parser"
)

const (
	detailAnchor = "//*[@id='single_book']"
	gridAnchor   = "//*[@id='book_list']"
	readerAnchor = "//div[@id='imgs']"

	gridItems      = "./div[contains(@class, 'item')]"
	pageContainers = ".//div[contains(@class, 'wrap_img')]"
	pageIDPrefix   = "page"
)

// list view (search grid)
const (
	listTitle        = ".//h3[@class='title']/a"
	listCover        = ".//div[@class='wrap_img']//img"
	listStatus       = ".//div[contains(@class, 'status')]"
	listReleaseDate  = ".//div[@class='uk-width-1-2']/div[contains(@class, 'date')]"
	listFirstChapter = ".//div[@class='uk-text-right']//a"
	listGenres       = ".//div[contains(@class, 'genres')]//a"
	listSummary      = ".//div[contains(@class, 'summary')]"
)

// detail view
const (
	detailTitle         = ".//h1[@class='heading']"
	detailFirstChapter  = ".//a[contains(@class, 'fc_bt')]"
	detailCover         = ".//div[@class='cover']//img"
	detailStatus        = ".//div[contains(@class, 'status')]"
	detailUpdatedAt     = ".//div[contains(@class, 'updateAt')]"
	detailGenres        = ".//div[@class='genres']//a"
	detailSummary       = ".//div[@class='summary']/p"
	detailLatestChapter = ".//li[div[@class='d-cell-small label' and contains(text(), 'Latest chapter(s):')]]//div[@class='new_chap']"

	chapterRows    = ".//div[@class='chapters']//tr"
	chapterLink    = ".//div[@class='chapter']/a"
	chapterUpdated = ".//div[@class='update_time']"
)

// mangaFromListItem maps one search grid item. It always yields a record:
// a missing title link gives the sentinel title and an id derived from the
// title, or from the sentinel when the title has no letters or digits.
func mangaFromListItem(base *url.URL, item *html.Node) (*models.Manga, error) {
	link := parser.One(item, listTitle)
	href := parser.NodeAttr(link, "href")
	title := parser.OrDefault(parser.NodeText(link), models.UntitledManga)

	id := parser.LastSegment(href)
	if id == "" {
		id = slug(title)
	}
	if id == "" {
		id = slug(models.UntitledManga)
	}

	cover := parser.Attr(item, listCover, "src")
	if cover == "" {
		cover = parser.Attr(item, listCover, "data-src")
	}

	return models.NewMangaBuilder().
		WithID(id).
		WithTitle(title).
		WithDescription(parser.Text(item, listSummary)).
		WithWebsiteURL(urlString(parser.Resolve(base, href))).
		WithFirstChapterURL(urlString(parser.Resolve(base, parser.Attr(item, listFirstChapter, "href")))).
		WithCoverURL(parser.Resolve(base, cover)).
		WithCoverFileName(parser.FileName(cover)).
		WithTags(parser.Texts(item, listGenres)...).
		WithReleaseStatus(models.ParseReleaseStatus(parser.Text(item, listStatus))).
		WithYear(parser.Year(parser.Text(item, listReleaseDate))).
		WithIsFamilySafe(true).
		Build()
}

// mangaFromDetail maps the #single_book subtree. id is the caller's id, not
// re-derived from markup.
func mangaFromDetail(base *url.URL, root *html.Node, id, detailURL string) (*models.Manga, error) {
	cover := parser.Attr(root, detailCover, "src")

	return models.NewMangaBuilder().
		WithID(id).
		WithTitle(parser.OrDefault(parser.Text(root, detailTitle), models.UntitledManga)).
		WithDescription(parser.Text(root, detailSummary)).
		WithWebsiteURL(detailURL).
		WithFirstChapterURL(urlString(parser.Resolve(base, parser.Attr(root, detailFirstChapter, "href")))).
		WithCoverURL(parser.Resolve(base, cover)).
		WithCoverFileName(parser.FileName(cover)).
		WithTags(parser.Texts(root, detailGenres)...).
		WithLatestChapterAvailable(parser.FirstNumber(parser.Text(root, detailLatestChapter))).
		WithReleaseStatus(models.ParseReleaseStatus(parser.Text(root, detailStatus))).
		WithYear(parser.Year(parser.Text(root, detailUpdatedAt))).
		WithIsFamilySafe(true).
		Build()
}

// chaptersFromDetail maps the chapter table in document order. Rows without
// a chapter link or a usable URL are skipped.
func chaptersFromDetail(base *url.URL, manga *models.Manga, root *html.Node) []*models.Chapter {
	rows := parser.All(root, chapterRows)
	chapters := make([]*models.Chapter, 0, len(rows))

	for _, row := range rows {
		link := parser.One(row, chapterLink)
		if link == nil {
			continue
		}

		href := parser.NodeAttr(link, "href")
		title := parser.OrDefault(parser.NodeText(link), models.UntitledChapter)

		chapter, err := models.NewChapterBuilder().
			WithID(parser.LastSegment(href)).
			WithTitle(title).
			WithParentManga(manga).
			WithVolume(0).
			WithNumber(parser.ChapterNumber(title)).
			WithURI(parser.Resolve(base, href)).
			WithUpdatedAt(parser.Date(parser.Text(row, chapterUpdated))).
			Build()
		if err != nil {
			continue
		}
		chapters = append(chapters, chapter)
	}

	return chapters
}

// pagesFromReader maps page containers in document order. A container is
// kept only if its id is "page<number>" and its image has a usable source.
func pagesFromReader(base *url.URL, chapter *models.Chapter, reader *html.Node) []*models.Page {
	nodes := parser.All(reader, pageContainers)
	pages := make([]*models.Page, 0, len(nodes))

	for _, node := range nodes {
		id := parser.NodeAttr(node, "id")
		number, ok := parser.NumericSuffix(id, pageIDPrefix)
		if !ok {
			continue
		}

		img := parser.One(node, ".//img")
		src := parser.NodeAttr(img, "data-src")
		if src == "" {
			src = parser.NodeAttr(img, "src")
		}
		imageURL := parser.Resolve(base, src)
		if imageURL == nil {
			continue
		}

		page, err := models.NewPageBuilder().
			WithID(id).
			WithChapterID(chapter.ID).
			WithPageNumber(number).
			WithImageURL(imageURL).
			WithParentChapter(chapter).
			Build()
		if err != nil {
			continue
		}
		pages = append(pages, page)
	}

	return pages
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
