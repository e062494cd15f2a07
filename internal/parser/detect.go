package parser

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var ErrBlocked = errors.New("blocked by anti-bot interstitial")

var blockTitles = []string{
	"just a moment",
	"attention required",
	"access denied",
	"ddos-guard",
}

var blockSelectors = []string{
	"#challenge-form",
	"#cf-challenge-running",
	"#challenge-running",
	"form[action*='__cf_chl']",
	".cf-browser-verification",
}

// DetectBlock reports whether rendered markup is an anti-bot challenge page
// rather than site content.
func DetectBlock(markup string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return false
	}

	title := strings.ToLower(strings.TrimSpace(doc.Find("title").First().Text()))
	for _, t := range blockTitles {
		if strings.Contains(title, t) {
			return true
		}
	}

	for _, selector := range blockSelectors {
		if doc.Find(selector).Length() > 0 {
			return true
		}
	}

	return false
}
