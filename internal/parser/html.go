package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageInfo holds what an HTML document says about the site that served it.
type PageInfo struct {
	Title       string
	SiteName    string
	Description string
}

// Name returns the best human-readable site name: og:site_name, then the
// page title.
func (p *PageInfo) Name() string {
	if p.SiteName != "" {
		return p.SiteName
	}
	return p.Title
}

// IsHTML reports whether a media type denotes an HTML document.
func IsHTML(mimeType string) bool {
	return strings.Contains(strings.ToLower(mimeType), "text/html")
}

// ParseHTML extracts the page title and site metadata from an HTML document.
func ParseHTML(html string) (*PageInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	info := &PageInfo{
		Title: collapseSpace(doc.Find("head title").First().Text()),
	}
	if info.Title == "" {
		info.Title = collapseSpace(doc.Find("title").First().Text())
	}

	doc.Find("meta").Each(func(i int, s *goquery.Selection) {
		content, exists := s.Attr("content")
		if !exists {
			return
		}
		content = collapseSpace(content)

		name, _ := s.Attr("name")
		property, _ := s.Attr("property")

		switch {
		case strings.EqualFold(property, "og:site_name"):
			info.SiteName = content
		case strings.EqualFold(name, "description") && info.Description == "":
			info.Description = content
		}
	})

	return info, nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
