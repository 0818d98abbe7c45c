package sites

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"codeberg.org/readeck/go-readability"
	"golang.org/x/text/unicode/norm"

	"github.com/feedloom/feedloom/app/feed"
	"github.com/feedloom/feedloom/app/fetch"
	"github.com/feedloom/feedloom/app/html"
)

// ArticleHandler serves news sites that publish a JSON content API with a
// structured block list per article. Pages outside the API (or when the
// API is unreachable) degrade to readability extraction over the raw page.
type ArticleHandler struct {
	site      *Site
	client    *fetch.Client
	assembler *feed.Assembler
}

// articlePayload is the expected shape of the site's article API. Fields
// default to absent; the handler is permissive about what the API omits.
type articlePayload struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Headline  string `json:"headline"`
	Summary   string `json:"summary"`
	Byline    string `json:"byline"`
	Published string `json:"published"`
	Modified  string `json:"modified"`
	Section   string `json:"section"`
	Keywords  string `json:"keywords"`

	Authors []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"authors"`

	Tags []string `json:"tags"`

	LeadImage *struct {
		URL     string `json:"url"`
		Caption string `json:"caption"`
		Credit  string `json:"credit"`
	} `json:"lead_image"`

	Blocks []struct {
		Type        string `json:"type"`
		Text        string `json:"text"`
		Src         string `json:"src"`
		MimeType    string `json:"mime_type"`
		Poster      string `json:"poster"`
		Caption     string `json:"caption"`
		Credit      string `json:"credit"`
		Attribution string `json:"attribution"`
	} `json:"blocks"`
}

type articleListing struct {
	Articles []struct {
		URL string `json:"url"`
	} `json:"articles"`
}

func NewArticleHandler(site *Site, client *fetch.Client) *ArticleHandler {
	return &ArticleHandler{
		site:      site,
		client:    client,
		assembler: feed.NewAssembler(),
	}
}

func (h *ArticleHandler) GetFeed(ctx context.Context, listingURL string, opts feed.Options) (*feed.Feed, error) {
	listingURL = cmp.Or(listingURL, h.site.ListingURL, h.site.APIBase+"/articles")

	var listing articleListing
	if err := h.client.JSON(ctx, listingURL, nil, &listing); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFeed, err)
	}

	candidates := make([]string, 0, len(listing.Articles))
	for _, article := range listing.Articles {
		if article.URL != "" {
			candidates = append(candidates, article.URL)
		}
	}

	result := h.assembler.Run(ctx, h.site.Brand, candidates, h.extract(opts), opts)
	result.FeedURL = listingURL
	return result, nil
}

func (h *ArticleHandler) GetContent(ctx context.Context, itemURL string, opts feed.Options) (*feed.Item, error) {
	var payload articlePayload
	apiURL := h.site.APIBase + "/articles/" + slugOf(itemURL)

	if err := h.client.JSON(ctx, apiURL, nil, &payload); err != nil {
		slog.Debug("Article API unavailable, falling back to page extraction", "url", itemURL, "error", err)
		return h.extractPage(ctx, itemURL, opts)
	}

	return h.normalize(itemURL, &payload, opts)
}

func (h *ArticleHandler) extract(opts feed.Options) feed.ExtractFunc {
	return func(ctx context.Context, itemURL string) (*feed.Item, error) {
		return h.GetContent(ctx, itemURL, opts)
	}
}

func (h *ArticleHandler) normalize(itemURL string, payload *articlePayload, opts feed.Options) (*feed.Item, error) {
	item := &feed.Item{
		ID:      cmp.Or(payload.ID, itemURL),
		URL:     cmp.Or(payload.URL, itemURL),
		Title:   strings.TrimSpace(norm.NFC.String(payload.Headline)),
		Summary: strings.TrimSpace(payload.Summary),
	}

	if t, ok := feed.ParseDate(payload.Published); ok {
		item.SetPublished(t)
	}
	if t, ok := feed.ParseDate(payload.Modified); ok {
		item.SetModified(t)
	}

	var contributors []string
	for _, author := range payload.Authors {
		if author.Name != "" {
			contributors = append(contributors, author.Name)
		}
	}
	item.Author, item.Authors = feed.MergeAuthors(payload.Byline, contributors, "", h.site.Brand)

	tags := feed.NewTagSet()
	tags.Add(payload.Section)
	tags.Add(payload.Tags...)
	tags.AddCSV(payload.Keywords)
	item.Tags = tags.Tags()

	var lead string
	if payload.LeadImage != nil && payload.LeadImage.URL != "" {
		item.Image = payload.LeadImage.URL
		lead = html.AddImage(payload.LeadImage.URL, payload.LeadImage.Caption, payload.LeadImage.Credit)
	}

	if opts.EmbedPreview {
		item.ContentHTML = html.PreviewCard(item.URL, item.Title, item.Image, item.Summary)
	} else {
		blocks := make([]html.Block, 0, len(payload.Blocks))
		for _, b := range payload.Blocks {
			blocks = append(blocks, html.Block{
				Type:        b.Type,
				Text:        b.Text,
				Src:         b.Src,
				MimeType:    b.MimeType,
				Poster:      b.Poster,
				Caption:     b.Caption,
				Credit:      b.Credit,
				Attribution: b.Attribution,
			})
		}

		body := html.RenderBlocks(blocks)
		if lead != "" {
			body = lead + "\n" + body
		}
		item.ContentHTML = body
	}

	if !item.Valid() {
		return nil, fmt.Errorf("article %s is missing required fields", itemURL)
	}

	return item, nil
}

// extractPage is the readability fallback for pages the content API does
// not cover.
func (h *ArticleHandler) extractPage(ctx context.Context, itemURL string, opts feed.Options) (*feed.Item, error) {
	data, err := h.client.HTML(ctx, itemURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %s: %w", itemURL, err)
	}

	pageURL, err := url.Parse(itemURL)
	if err != nil {
		return nil, fmt.Errorf("invalid item URL %s: %w", itemURL, err)
	}

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract content from %s: %w", itemURL, err)
	}

	item := &feed.Item{
		ID:      itemURL,
		URL:     itemURL,
		Title:   strings.TrimSpace(norm.NFC.String(article.Title)),
		Summary: strings.TrimSpace(article.Excerpt),
		Image:   article.Image,
	}

	item.Author, item.Authors = feed.MergeAuthors(article.Byline, nil, article.SiteName, h.site.Brand)

	if opts.EmbedPreview {
		item.ContentHTML = html.PreviewCard(item.URL, item.Title, item.Image, item.Summary)
	} else {
		body, err := html.Sanitize(article.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to sanitize extracted content for %s: %w", itemURL, err)
		}
		item.ContentHTML = body
	}

	if !item.Valid() {
		return nil, fmt.Errorf("page %s yielded no usable content", itemURL)
	}

	return item, nil
}

// slugOf returns the last path segment of an item URL, the key most
// content APIs use.
func slugOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	trimmed := strings.TrimRight(parsed.Path, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
