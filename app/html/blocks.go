package html

import (
	"html"
	"log/slog"
	"strings"
)

// Block is the neutral structured-content unit handlers map site payloads
// into. Only the fields relevant to a block's type are set; the rest stay
// empty.
type Block struct {
	Type        string // paragraph, heading, image, video, audio, embed, pullquote, blockquote, html
	Text        string
	Src         string
	MimeType    string
	Poster      string
	Caption     string
	Credit      string
	Attribution string
	Title       string
	Author      string
	Duration    int // seconds, audio blocks
}

// RenderBlocks walks a structured block list and assembles content_html
// from the canonical fragment builders. Block types the pipeline does not
// recognize are logged and left out so the defect stays visible instead of
// corrupting output.
func RenderBlocks(blocks []Block) string {
	var parts []string

	for _, block := range blocks {
		fragment := renderBlock(block)
		if fragment != "" {
			parts = append(parts, fragment)
		}
	}

	return strings.Join(parts, "\n")
}

func renderBlock(block Block) string {
	switch block.Type {
	case "paragraph":
		if block.Text == "" {
			return ""
		}
		return "<p>" + html.EscapeString(block.Text) + "</p>"
	case "heading":
		if block.Text == "" {
			return ""
		}
		return "<h2>" + html.EscapeString(block.Text) + "</h2>"
	case "image":
		return AddImage(block.Src, block.Caption, block.Credit)
	case "video":
		return AddVideo(block.Src, block.MimeType, block.Poster, block.Caption)
	case "audio":
		return AddAudioCard(block.Src, block.Title, block.Author, block.Poster, block.Duration)
	case "embed":
		return AddEmbed(block.Src)
	case "pullquote":
		return AddPullquote(block.Text, block.Attribution)
	case "blockquote":
		return AddBlockquote(html.EscapeString(block.Text))
	case "html":
		sanitized, err := Sanitize(block.Text)
		if err != nil {
			slog.Warn("Failed to sanitize html block, omitting", "error", err)
			return ""
		}
		return sanitized
	default:
		slog.Warn("Unhandled content block, omitting", "type", block.Type)
		return ""
	}
}
