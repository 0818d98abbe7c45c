package sites

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/feedloom/feedloom/app/feed"
	"github.com/feedloom/feedloom/app/fetch"
	"github.com/feedloom/feedloom/app/html"
	"github.com/feedloom/feedloom/app/sitecfg"
)

var buildIDRe = regexp.MustCompile(`"buildId"\s*:\s*"([^"]+)"`)

// TubeHandler serves a video platform whose data endpoints are keyed by a
// front-end bundler build ID. The build ID is cached in the site-config
// store; when it drifts the handler rescrapes it and retries the fetch
// exactly once before treating the failure as ordinary.
type TubeHandler struct {
	site      *Site
	client    *fetch.Client
	store     *sitecfg.Store
	assembler *feed.Assembler
}

type videoPayload struct {
	PageProps struct {
		Video struct {
			ID          string   `json:"id"`
			Title       string   `json:"title"`
			Description string   `json:"description"`
			URL         string   `json:"url"`
			StreamURL   string   `json:"stream_url"`
			Poster      string   `json:"poster"`
			Duration    int      `json:"duration"`
			Published   string   `json:"published"`
			Tags        []string `json:"tags"`

			Channel struct {
				Name string `json:"name"`
				URL  string `json:"url"`
			} `json:"channel"`
		} `json:"video"`

		Videos []struct {
			URL string `json:"url"`
		} `json:"videos"`
	} `json:"pageProps"`
}

func NewTubeHandler(site *Site, client *fetch.Client, store *sitecfg.Store) *TubeHandler {
	return &TubeHandler{
		site:      site,
		client:    client,
		store:     store,
		assembler: feed.NewAssembler(),
	}
}

func (h *TubeHandler) GetFeed(ctx context.Context, listingURL string, opts feed.Options) (*feed.Feed, error) {
	var payload videoPayload
	if err := h.fetchData(ctx, "videos", &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFeed, err)
	}

	candidates := make([]string, 0, len(payload.PageProps.Videos))
	for _, video := range payload.PageProps.Videos {
		if video.URL != "" {
			candidates = append(candidates, video.URL)
		}
	}

	extract := func(ctx context.Context, itemURL string) (*feed.Item, error) {
		return h.GetContent(ctx, itemURL, opts)
	}

	result := h.assembler.Run(ctx, h.site.Brand, candidates, extract, opts)
	result.HomePageURL = h.origin()
	return result, nil
}

func (h *TubeHandler) GetContent(ctx context.Context, itemURL string, opts feed.Options) (*feed.Item, error) {
	var payload videoPayload
	if err := h.fetchData(ctx, "videos/"+slugOf(itemURL), &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch video data for %s: %w", itemURL, err)
	}

	video := payload.PageProps.Video
	if video.StreamURL == "" && video.URL == "" {
		return nil, fmt.Errorf("video %s has no playable source", itemURL)
	}

	item := &feed.Item{
		ID:      cmp.Or(video.ID, itemURL),
		URL:     cmp.Or(video.URL, itemURL),
		Title:   strings.TrimSpace(norm.NFC.String(video.Title)),
		Summary: strings.TrimSpace(video.Description),
		Image:   video.Poster,
		Video:   video.StreamURL,
	}

	if t, ok := feed.ParseDate(video.Published); ok {
		item.SetPublished(t)
	}

	item.Author, item.Authors = feed.MergeAuthors("", nil, video.Channel.Name, h.site.Brand)
	if video.Channel.URL != "" {
		item.Author.URL = video.Channel.URL
	}

	tags := feed.NewTagSet()
	tags.Add(video.Tags...)
	item.Tags = tags.Tags()

	if opts.EmbedPreview {
		item.ContentHTML = html.PreviewCard(item.URL, item.Title, item.Image, item.Summary)
	} else {
		item.ContentHTML = html.AddVideo(video.StreamURL, "video/mp4", video.Poster, item.Title)
	}

	if !item.Valid() {
		return nil, fmt.Errorf("video %s is missing required fields", itemURL)
	}

	return item, nil
}

// fetchData retrieves a data-route JSON document, refreshing the cached
// build ID and retrying once when the route 404s under a stale ID.
func (h *TubeHandler) fetchData(ctx context.Context, path string, out any) error {
	buildID, err := h.cachedBuildID()
	if err != nil {
		return err
	}

	if buildID != "" {
		if err := h.client.JSON(ctx, h.dataURL(buildID, path), nil, out); err == nil {
			return nil
		}
		slog.Debug("Data route failed under cached build ID, refreshing", "site", h.site.Name, "build_id", buildID)
	}

	refreshed, err := h.refreshBuildID(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh build ID: %w", err)
	}

	if err := h.client.JSON(ctx, h.dataURL(refreshed, path), nil, out); err != nil {
		return fmt.Errorf("data route failed after build ID refresh: %w", err)
	}

	return nil
}

func (h *TubeHandler) origin() string {
	return cmp.Or(h.site.APIBase, "https://"+h.site.Host)
}

func (h *TubeHandler) dataURL(buildID, path string) string {
	return fmt.Sprintf("%s/_next/data/%s/%s.json", h.origin(), buildID, path)
}

func (h *TubeHandler) cachedBuildID() (string, error) {
	config, err := h.store.Get(h.site.Host)
	if err != nil {
		return "", fmt.Errorf("failed to read site config: %w", err)
	}
	if config == nil {
		return "", nil
	}
	return config.BuildID, nil
}

// refreshBuildID rescrapes the front page for the current build ID and
// persists it for subsequent requests.
func (h *TubeHandler) refreshBuildID(ctx context.Context) (string, error) {
	page, err := h.client.HTML(ctx, h.origin()+"/", nil)
	if err != nil {
		return "", err
	}

	m := buildIDRe.FindSubmatch(page)
	if m == nil {
		return "", fmt.Errorf("no build ID found on front page of %s", h.site.Host)
	}
	buildID := string(m[1])

	config := sitecfg.Config{BuildID: buildID}
	if existing, err := h.store.Get(h.site.Host); err == nil && existing != nil {
		config.Token = existing.Token
		config.Cookie = existing.Cookie
	}

	if err := h.store.Put(h.site.Host, config); err != nil {
		slog.Warn("Failed to persist refreshed build ID", "site", h.site.Name, "error", err)
	} else {
		slog.Info("Build ID refreshed", "site", h.site.Name, "build_id", buildID)
	}

	return buildID, nil
}
