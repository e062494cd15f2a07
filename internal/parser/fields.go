package parser

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ReleaseDateLayout is the "Mon-dd-yyyy" form the sites print, e.g. Jan-05-2020.
const ReleaseDateLayout = "Jan-02-2006"

var (
	numberRe        = regexp.MustCompile(`\d+(?:\.\d+)?`)
	chapterNumberRe = regexp.MustCompile(`Chapter\s+([\d.]+)`)
	numericSuffixRe = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// OrDefault returns the trimmed text, or def when it is empty.
func OrDefault(text, def string) string {
	if t := strings.TrimSpace(text); t != "" {
		return t
	}
	return def
}

// LastSegment is the last "/"-separated segment of a URL, query and fragment
// dropped. A trailing slash does not produce an empty id.
func LastSegment(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// FileName is the file name component of a URL's path.
func FileName(rawURL string) string {
	if strings.TrimSpace(rawURL) == "" {
		return ""
	}
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	name := path.Base(p)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// Year parses ReleaseDateLayout text and returns its year, 0 if it does not match.
func Year(text string) int {
	t, err := time.Parse(ReleaseDateLayout, strings.TrimSpace(text))
	if err != nil {
		return 0
	}
	return t.Year()
}

// Date parses ReleaseDateLayout text, zero time if it does not match.
func Date(text string) time.Time {
	t, err := time.Parse(ReleaseDateLayout, strings.TrimSpace(text))
	if err != nil {
		return time.Time{}
	}
	return t
}

// FirstNumber is the first run of digits with at most one decimal point, 0 if none.
func FirstNumber(text string) float64 {
	m := numberRe.FindString(text)
	if m == "" {
		return 0
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return n
}

// ChapterNumber is n from "Chapter <n>" text. The run of digits and dots
// after "Chapter" must parse as a whole, otherwise the result is 0.
func ChapterNumber(text string) float64 {
	m := chapterNumberRe.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return n
}

// NumericSuffix reads the number after prefix in id, e.g. "page3" -> 3.
// ok is false when the prefix is missing or the rest is not a plain number.
func NumericSuffix(id, prefix string) (float64, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	rest := id[len(prefix):]
	if !numericSuffixRe.MatchString(rest) {
		return 0, false
	}
	n, err := strconv.ParseFloat(rest, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Resolve parses ref relative to base. Empty or unparsable refs give nil.
func Resolve(base *url.URL, ref string) *url.URL {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	u, err := url.Parse(ref)
	if err != nil {
		return nil
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil
	}
	return u
}
