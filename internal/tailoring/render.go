package tailoring

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/career-assistant/internal/types"
)

const (
	addSelector = "span.cv-add"
	delSelector = "span.cv-del"
)

// ChangeStats counts the marked-up edits in a tailored CV.
type ChangeStats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

// Stats counts addition and deletion spans. Unparseable markup counts as no changes.
func Stats(cv types.TailoredCV) ChangeStats {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cv.String()))
	if err != nil {
		return ChangeStats{}
	}
	return ChangeStats{
		Additions: doc.Find(addSelector).Length(),
		Deletions: doc.Find(delSelector).Length(),
	}
}

// RenderPlain converts change markup to terminal text: additions become [+text+],
// deletions become [-text-], block elements end a line and any other tag is dropped.
func RenderPlain(cv types.TailoredCV) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cv.String()))
	if err != nil {
		return cv.String()
	}

	doc.Find(addSelector).Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml(html.EscapeString("[+" + s.Text() + "+]"))
	})
	doc.Find(delSelector).Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml(html.EscapeString("[-" + s.Text() + "-]"))
	})
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6").AppendHtml("\n")

	text := doc.Find("body").Text()
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
