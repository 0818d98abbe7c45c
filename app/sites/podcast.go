package sites

import (
	"cmp"
	"context"
	"fmt"
	stdhtml "html"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/feedloom/feedloom/app/feed"
	"github.com/feedloom/feedloom/app/fetch"
	"github.com/feedloom/feedloom/app/html"
)

// PodcastHandler serves podcast platforms with a JSON episode API. The
// item body is the fixed "now playing" card; sibling episodes from the
// payload become the item's playlist.
type PodcastHandler struct {
	site      *Site
	client    *fetch.Client
	assembler *feed.Assembler
}

type episodePayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PageURL     string `json:"page_url"`
	AudioURL    string `json:"audio_url"`
	Image       string `json:"image"`
	Duration    int    `json:"duration"` // seconds
	Published   string `json:"published"`

	Show struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"show"`

	Episodes []struct {
		Title    string `json:"title"`
		AudioURL string `json:"audio_url"`
		Image    string `json:"image"`
		Duration int    `json:"duration"`
	} `json:"episodes"`

	Categories []string `json:"categories"`
}

type episodeListing struct {
	Episodes []struct {
		PageURL string `json:"page_url"`
	} `json:"episodes"`
}

func NewPodcastHandler(site *Site, client *fetch.Client) *PodcastHandler {
	return &PodcastHandler{
		site:      site,
		client:    client,
		assembler: feed.NewAssembler(),
	}
}

func (h *PodcastHandler) GetFeed(ctx context.Context, listingURL string, opts feed.Options) (*feed.Feed, error) {
	listingURL = cmp.Or(listingURL, h.site.ListingURL, h.site.APIBase+"/episodes")

	var listing episodeListing
	if err := h.client.JSON(ctx, listingURL, nil, &listing); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFeed, err)
	}

	candidates := make([]string, 0, len(listing.Episodes))
	for _, episode := range listing.Episodes {
		if episode.PageURL != "" {
			candidates = append(candidates, episode.PageURL)
		}
	}

	extract := func(ctx context.Context, itemURL string) (*feed.Item, error) {
		return h.GetContent(ctx, itemURL, opts)
	}

	result := h.assembler.Run(ctx, h.site.Brand, candidates, extract, opts)
	result.FeedURL = listingURL
	return result, nil
}

func (h *PodcastHandler) GetContent(ctx context.Context, itemURL string, opts feed.Options) (*feed.Item, error) {
	var payload episodePayload
	apiURL := h.site.APIBase + "/episodes/" + slugOf(itemURL)

	if err := h.client.JSON(ctx, apiURL, nil, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch episode %s: %w", itemURL, err)
	}

	if payload.AudioURL == "" {
		return nil, fmt.Errorf("episode %s has no playable audio", itemURL)
	}

	item := &feed.Item{
		ID:      cmp.Or(payload.ID, itemURL),
		URL:     cmp.Or(payload.PageURL, itemURL),
		Title:   strings.TrimSpace(norm.NFC.String(payload.Title)),
		Summary: strings.TrimSpace(payload.Description),
		Image:   payload.Image,
		Audio:   payload.AudioURL,
	}

	if t, ok := feed.ParseDate(payload.Published); ok {
		item.SetPublished(t)
	}

	item.Author, item.Authors = feed.MergeAuthors("", nil, payload.Show.Name, h.site.Brand)
	if payload.Show.URL != "" {
		item.Author.URL = payload.Show.URL
	}

	tags := feed.NewTagSet()
	tags.Add(payload.Categories...)
	item.Tags = tags.Tags()

	item.Attachments = []feed.Attachment{{
		URL:               payload.AudioURL,
		MimeType:          "audio/mpeg",
		Title:             item.Title,
		DurationInSeconds: payload.Duration,
	}}

	// Sibling episodes become the playlist, capped like any nested listing.
	for _, sibling := range payload.Episodes {
		if sibling.AudioURL == "" {
			continue
		}
		if opts.MaxItems > 0 && len(item.Playlist) >= opts.MaxItems {
			break
		}
		item.Playlist = append(item.Playlist, feed.MediaEntry{
			Src:      sibling.AudioURL,
			Title:    sibling.Title,
			Image:    sibling.Image,
			Duration: sibling.Duration,
		})
	}

	if opts.EmbedPreview {
		item.ContentHTML = html.PreviewCard(item.URL, item.Title, item.Image, item.Summary)
	} else {
		card := html.AddAudioCard(payload.AudioURL, item.Title, item.Author.Name, payload.Image, payload.Duration)
		if item.Summary != "" {
			card = card + "\n<p>" + stdhtml.EscapeString(item.Summary) + "</p>"
		}
		item.ContentHTML = card
	}

	if !item.Valid() {
		return nil, fmt.Errorf("episode %s is missing required fields", itemURL)
	}

	return item, nil
}
