package utils

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy().
	AllowAttrs("style").OnElements("p", "span", "div", "img", "table", "td", "th").
	AllowAttrs("class").Globally()

// SanitizeHTML strips anything dangerous from editor-produced HTML before
// it is stored. The rich-text editor emits styled markup, so the UGC
// policy is widened to keep style/class attributes.
func SanitizeHTML(html string) string {
	return policy.Sanitize(html)
}

// EnhanceHTMLContent hardens embedded images in stored content before it
// is returned to readers: lazy loading and no referrer leakage.
func EnhanceHTMLContent(htmlStr string) string {
	if htmlStr == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return htmlStr
	}

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("loading", "lazy")
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return htmlStr
	}
	return out
}
