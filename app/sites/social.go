package sites

import (
	"cmp"
	"context"
	"fmt"
	stdhtml "html"
	"log/slog"
	"strings"

	"github.com/feedloom/feedloom/app/feed"
	"github.com/feedloom/feedloom/app/fetch"
	"github.com/feedloom/feedloom/app/html"
)

// maxRepostDepth caps recursive resolution of repost chains. The chain is
// followed to surface the original content, but never unboundedly.
const maxRepostDepth = 2

// SocialHandler serves a social platform's status API. Posts have no
// native listing, so GetFeed is unsupported. Reposts of registered
// publishers resolve to the original item through the dispatcher.
type SocialHandler struct {
	site     *Site
	client   *fetch.Client
	registry *Registry
}

type statusPayload struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	RepostOf  string `json:"repost_of"`

	Author struct {
		Name   string `json:"name"`
		Handle string `json:"handle"`
		URL    string `json:"url"`
	} `json:"author"`

	Photos []struct {
		URL     string `json:"url"`
		Caption string `json:"caption"`
	} `json:"photos"`

	Video struct {
		URL    string `json:"url"`
		Poster string `json:"poster"`
	} `json:"video"`

	Hashtags []string `json:"hashtags"`
}

func NewSocialHandler(site *Site, client *fetch.Client, registry *Registry) *SocialHandler {
	return &SocialHandler{
		site:     site,
		client:   client,
		registry: registry,
	}
}

// GetFeed is unsupported: the platform exposes no native listing.
func (h *SocialHandler) GetFeed(ctx context.Context, url string, opts feed.Options) (*feed.Feed, error) {
	return nil, ErrNoFeed
}

func (h *SocialHandler) GetContent(ctx context.Context, itemURL string, opts feed.Options) (*feed.Item, error) {
	return h.getContent(ctx, itemURL, opts, 0)
}

func (h *SocialHandler) getContent(ctx context.Context, itemURL string, opts feed.Options, depth int) (*feed.Item, error) {
	var payload statusPayload
	apiURL := h.site.APIBase + "/statuses/" + slugOf(itemURL)

	if err := h.client.JSON(ctx, apiURL, nil, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch status %s: %w", itemURL, err)
	}

	if payload.RepostOf != "" {
		if item, ok := h.resolveRepost(ctx, payload.RepostOf, opts, depth); ok {
			return item, nil
		}
	}

	item := &feed.Item{
		ID:      cmp.Or(payload.ID, itemURL),
		URL:     cmp.Or(payload.URL, itemURL),
		Summary: strings.TrimSpace(payload.Text),
	}

	if t, ok := feed.ParseDate(payload.CreatedAt); ok {
		item.SetPublished(t)
	}

	item.Author, item.Authors = feed.MergeAuthors(payload.Author.Name, nil, payload.Author.Handle, h.site.Brand)
	if payload.Author.URL != "" {
		item.Author.URL = payload.Author.URL
	}

	tags := feed.NewTagSet()
	tags.Add(payload.Hashtags...)
	item.Tags = tags.Tags()

	for _, photo := range payload.Photos {
		if photo.URL == "" {
			continue
		}
		if item.Image == "" {
			item.Image = photo.URL
		}
		item.Gallery = append(item.Gallery, feed.MediaEntry{Src: photo.URL, Title: photo.Caption})
	}
	if payload.Video.URL != "" {
		item.Video = payload.Video.URL
		if item.Image == "" {
			item.Image = payload.Video.Poster
		}
	}

	if opts.EmbedPreview {
		item.ContentHTML = html.PreviewCard(item.URL, item.Author.Name, item.Image, item.Summary)
	} else {
		item.ContentHTML = h.renderBody(&payload)
	}

	// Raw posts carry no title; media or text fills the contract.
	if item.URL == "" || (item.Summary == "" && item.Image == "" && item.Video == "") {
		return nil, fmt.Errorf("status %s is missing required fields", itemURL)
	}

	return item, nil
}

// resolveRepost follows a repost to the original publisher's handler when
// one is registered. Failures fall back to rendering the post itself.
func (h *SocialHandler) resolveRepost(ctx context.Context, originalURL string, opts feed.Options, depth int) (*feed.Item, bool) {
	if depth >= maxRepostDepth {
		slog.Warn("Repost chain too deep, rendering post as-is", "url", originalURL, "depth", depth)
		return nil, false
	}

	handler, _, err := h.registry.Resolve(originalURL)
	if err != nil {
		slog.Debug("Repost source not registered, rendering post as-is", "url", originalURL)
		return nil, false
	}

	var item *feed.Item
	if social, ok := handler.(*SocialHandler); ok {
		item, err = social.getContent(ctx, originalURL, opts, depth+1)
	} else {
		item, err = handler.GetContent(ctx, originalURL, opts)
	}
	if err != nil {
		slog.Warn("Failed to resolve repost, rendering post as-is", "url", originalURL, "error", err)
		return nil, false
	}

	return item, true
}

func (h *SocialHandler) renderBody(payload *statusPayload) string {
	var parts []string

	if text := strings.TrimSpace(payload.Text); text != "" {
		parts = append(parts, "<p>"+stdhtml.EscapeString(text)+"</p>")
	}
	for _, photo := range payload.Photos {
		if fragment := html.AddImage(photo.URL, photo.Caption, ""); fragment != "" {
			parts = append(parts, fragment)
		}
	}
	if payload.Video.URL != "" {
		parts = append(parts, html.AddVideo(payload.Video.URL, "video/mp4", payload.Video.Poster, ""))
	}

	return strings.Join(parts, "\n")
}
