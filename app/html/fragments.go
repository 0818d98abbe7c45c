// Package html provides the canonical HTML fragment builders and the body
// sanitization pass shared by every site handler. Fragment shapes are a
// compatibility surface consumed by the feed reader UI and must not change.
package html

import (
	"cmp"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/feedloom/feedloom/app/feed"
)

var (
	youtubeRe   = regexp.MustCompile(`(?:youtube\.com/(?:watch\?v=|embed/|shorts/)|youtu\.be/)([\w-]{6,})`)
	vimeoRe     = regexp.MustCompile(`vimeo\.com/(?:video/)?(\d+)`)
	twitterRe   = regexp.MustCompile(`(?:twitter\.com|x\.com)/[^/]+/status/\d+`)
	instagramRe = regexp.MustCompile(`instagram\.com/(?:p|reel|tv)/[\w-]+`)
	tiktokRe    = regexp.MustCompile(`tiktok\.com/@[^/]+/video/\d+`)
)

// AddImage emits the canonical figure fragment. Caption and credit are
// joined with " | " when both are present.
func AddImage(src, caption, credit string) string {
	if src == "" {
		return ""
	}

	text := caption
	if credit != "" {
		if text != "" {
			text = text + " | " + credit
		} else {
			text = credit
		}
	}

	var b strings.Builder
	b.WriteString(`<figure><img src="` + html.EscapeString(src) + `" loading="lazy"/>`)
	if text != "" {
		b.WriteString(`<figcaption><small>` + html.EscapeString(text) + `</small></figcaption>`)
	}
	b.WriteString(`</figure>`)
	return b.String()
}

// AddVideo emits a poster-backed player fragment, or a plain link when no
// playable source is resolvable.
func AddVideo(src, mimeType, poster, caption string) string {
	if src == "" {
		if poster != "" {
			return AddImage(poster, caption, "")
		}
		return ""
	}

	if !strings.HasPrefix(mimeType, "video/") && !strings.Contains(src, ".mp4") && !strings.Contains(src, ".m3u8") {
		return `<p><a href="` + html.EscapeString(src) + `">` + html.EscapeString(cmp.Or(caption, "Watch video")) + `</a></p>`
	}

	var b strings.Builder
	b.WriteString(`<figure><video controls preload="none"`)
	if poster != "" {
		b.WriteString(` poster="` + html.EscapeString(poster) + `"`)
	}
	b.WriteString(`><source src="` + html.EscapeString(src) + `"`)
	if mimeType != "" {
		b.WriteString(` type="` + html.EscapeString(mimeType) + `"`)
	}
	b.WriteString(`/></video>`)
	if caption != "" {
		b.WriteString(`<figcaption><small>` + html.EscapeString(caption) + `</small></figcaption>`)
	}
	b.WriteString(`</figure>`)
	return b.String()
}

// AddAudioCard emits the fixed-layout "now playing" card used for podcast
// episodes: thumbnail, title, author, duration, player.
func AddAudioCard(src, title, author, image string, durationSec int) string {
	if src == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<div class="audio-card">`)
	if image != "" {
		b.WriteString(`<img class="audio-card-image" src="` + html.EscapeString(image) + `" loading="lazy"/>`)
	}
	b.WriteString(`<div class="audio-card-meta">`)
	if title != "" {
		b.WriteString(`<strong>` + html.EscapeString(title) + `</strong>`)
	}
	if author != "" {
		b.WriteString(`<span>` + html.EscapeString(author) + `</span>`)
	}
	if duration := feed.FormatDuration(durationSec); duration != "" {
		b.WriteString(`<small>` + html.EscapeString(duration) + `</small>`)
	}
	b.WriteString(`</div>`)
	b.WriteString(`<audio controls preload="none" src="` + html.EscapeString(src) + `"></audio>`)
	b.WriteString(`</div>`)
	return b.String()
}

// AddEmbed emits a standardized placeholder for third-party interactive
// content, keyed by recognized URL patterns. No third-party script is ever
// injected; unrecognized URLs degrade to a plain link.
func AddEmbed(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	escaped := html.EscapeString(rawURL)

	if m := youtubeRe.FindStringSubmatch(rawURL); m != nil {
		return fmt.Sprintf(`<iframe src="https://www.youtube.com/embed/%s" loading="lazy" allowfullscreen></iframe>`, html.EscapeString(m[1]))
	}
	if m := vimeoRe.FindStringSubmatch(rawURL); m != nil {
		return fmt.Sprintf(`<iframe src="https://player.vimeo.com/video/%s" loading="lazy" allowfullscreen></iframe>`, html.EscapeString(m[1]))
	}
	if twitterRe.MatchString(rawURL) {
		return `<blockquote class="twitter-tweet"><a href="` + escaped + `">` + escaped + `</a></blockquote>`
	}
	if m := instagramRe.FindString(rawURL); m != "" {
		return `<blockquote class="instagram-media" data-instgrm-permalink="` + escaped + `"><a href="` + escaped + `">` + escaped + `</a></blockquote>`
	}
	if tiktokRe.MatchString(rawURL) {
		return `<blockquote class="tiktok-embed" cite="` + escaped + `"><a href="` + escaped + `">` + escaped + `</a></blockquote>`
	}

	return `<p><a href="` + escaped + `">` + escaped + `</a></p>`
}

// AddPullquote emits a styled pull-quote with optional attribution.
func AddPullquote(text, attribution string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<blockquote class="pullquote"><p>` + html.EscapeString(text) + `</p>`)
	if attribution != "" {
		b.WriteString(`<cite>` + html.EscapeString(attribution) + `</cite>`)
	}
	b.WriteString(`</blockquote>`)
	return b.String()
}

// AddBlockquote wraps an already-sanitized HTML fragment in a quote block.
func AddBlockquote(inner string) string {
	if inner == "" {
		return ""
	}
	return `<blockquote>` + inner + `</blockquote>`
}
