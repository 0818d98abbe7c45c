package html

import (
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"
)

// Sanitize rewrites a raw HTML fragment into embeddable content_html:
// scripts and active content are stripped, recognized third-party widgets
// are replaced with canonical embed placeholders, and images are rebuilt
// through the shared figure fragment. Unrecognized embeddable constructs
// are logged and omitted, never guessed at.
func Sanitize(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML fragment: %w", err)
	}

	doc.Find("script, style, noscript, form, link, meta, object").Remove()

	doc.Find("blockquote, iframe").Each(func(_ int, s *goquery.Selection) {
		if !embedContainer(s) {
			return
		}
		if url, ok := ClassifyEmbed(s); ok {
			s.ReplaceWithHtml(AddEmbed(url))
			return
		}
		slog.Warn("Unhandled embed, omitting", "node", goquery.NodeName(s))
		s.Remove()
	})

	doc.Find("figure").Each(func(_ int, s *goquery.Selection) {
		caption := strings.TrimSpace(s.Find("figcaption").Text())

		if img := s.Find("img").First(); img.Length() > 0 {
			src, _ := img.Attr("src")
			s.ReplaceWithHtml(AddImage(src, caption, ""))
			return
		}

		if video := s.Find("video").First(); video.Length() > 0 {
			src, _ := video.Attr("src")
			if src == "" {
				src, _ = video.Find("source").First().Attr("src")
			}
			mime, _ := video.Find("source").First().Attr("type")
			poster, _ := video.Attr("poster")
			s.ReplaceWithHtml(AddVideo(src, mime, poster, caption))
			return
		}

		// Figures holding an already-canonicalized embed keep their new body.
		if s.Find("iframe, blockquote, audio").Length() > 0 {
			return
		}

		slog.Warn("Unhandled figure content, omitting", "caption", caption)
		s.Remove()
	})

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("figure").Length() > 0 {
			return
		}
		src, _ := s.Attr("src")
		alt, _ := s.Attr("alt")
		s.ReplaceWithHtml(AddImage(src, alt, ""))
	})

	scrubAttributes(doc)

	body := doc.Find("body")
	out, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render sanitized HTML: %w", err)
	}

	return strings.TrimSpace(out), nil
}

// scrubAttributes drops event handlers and javascript: URLs from every
// remaining element.
func scrubAttributes(doc *goquery.Document) {
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			kept := make([]nethtml.Attribute, 0, len(node.Attr))
			for _, attr := range node.Attr {
				if strings.HasPrefix(strings.ToLower(attr.Key), "on") {
					continue
				}
				if (attr.Key == "href" || attr.Key == "src") &&
					strings.HasPrefix(strings.ToLower(strings.TrimSpace(attr.Val)), "javascript:") {
					continue
				}
				kept = append(kept, attr)
			}
			node.Attr = kept
		}
	})
}

// PreviewCard renders the compact embed-preview variant of an item body,
// used when a feed consumer asks for embeds instead of full content.
func PreviewCard(url, title, image, summary string) string {
	var b strings.Builder
	b.WriteString(`<div class="preview-card">`)
	if image != "" {
		b.WriteString(`<img src="` + html.EscapeString(image) + `" loading="lazy"/>`)
	}
	b.WriteString(`<p><a href="` + html.EscapeString(url) + `">` + html.EscapeString(title) + `</a></p>`)
	if summary != "" {
		b.WriteString(`<p><small>` + html.EscapeString(summary) + `</small></p>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}
