package extract

import (
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func (e *Extractor) extractHTML(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("closing html evidence", "path", path, "error", cerr)
		}
	}()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return Result{}, err
	}
	doc.Find("script, style, nav, header, footer, noscript, iframe").Remove()

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if len(text) > MaxTextBytes {
		text = text[:MaxTextBytes]
	}
	return Result{Text: text}, nil
}
