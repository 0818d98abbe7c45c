package html

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ClassifyEmbed inspects a node that looks like a third-party widget and
// returns the canonical URL to embed. This is heuristic pattern matching
// over near-arbitrary markup, not a closed grammar; ok=false means the
// node was not recognized and the caller logs it as unhandled.
func ClassifyEmbed(s *goquery.Selection) (string, bool) {
	if s.Is("blockquote.twitter-tweet") {
		if href, ok := s.Find("a[href]").Last().Attr("href"); ok {
			return href, true
		}
		return "", false
	}

	if permalink, ok := s.Attr("data-instgrm-permalink"); ok && permalink != "" {
		return permalink, true
	}

	if s.Is("blockquote.tiktok-embed") {
		if cite, ok := s.Attr("cite"); ok && cite != "" {
			return cite, true
		}
		return "", false
	}

	if s.Is("iframe") {
		if src, ok := s.Attr("src"); ok && src != "" {
			return normalizeSchemeless(src), true
		}
		return "", false
	}

	return "", false
}

// embedContainer reports whether the node is a wrapper that should be
// classified instead of passed through.
func embedContainer(s *goquery.Selection) bool {
	if s.Is("iframe") {
		return true
	}
	if !s.Is("blockquote") {
		return false
	}
	if s.Is(".twitter-tweet") || s.Is(".tiktok-embed") || s.Is(".instagram-media") {
		return true
	}
	_, hasPermalink := s.Attr("data-instgrm-permalink")
	return hasPermalink
}

func normalizeSchemeless(src string) string {
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	return src
}
