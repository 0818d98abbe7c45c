package sites

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
	"golang.org/x/text/unicode/norm"

	"github.com/feedloom/feedloom/app/feed"
	"github.com/feedloom/feedloom/app/fetch"
	"github.com/feedloom/feedloom/app/html"
)

// WireHandler serves publishers that expose a native RSS/Atom listing.
// The listing document carries full item bodies, so per-item extraction
// normalizes the parsed entry rather than refetching the article page.
type WireHandler struct {
	site      *Site
	client    *fetch.Client
	parser    *gofeed.Parser
	assembler *feed.Assembler
}

func NewWireHandler(site *Site, client *fetch.Client) *WireHandler {
	return &WireHandler{
		site:      site,
		client:    client,
		parser:    gofeed.NewParser(),
		assembler: feed.NewAssembler(),
	}
}

func (h *WireHandler) GetFeed(ctx context.Context, url string, opts feed.Options) (*feed.Feed, error) {
	listingURL := cmp.Or(url, h.site.ListingURL)

	parsed, index, err := h.fetchListing(ctx, listingURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFeed, err)
	}

	candidates := make([]string, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if entry.Link != "" {
			candidates = append(candidates, entry.Link)
		}
	}

	extract := func(ctx context.Context, itemURL string) (*feed.Item, error) {
		if entry, ok := index[itemURL]; ok {
			return h.normalize(entry, opts)
		}
		return h.GetContent(ctx, itemURL, opts)
	}

	result := h.assembler.Run(ctx, cmp.Or(parsed.Title, h.site.Brand), candidates, extract, opts)
	result.HomePageURL = parsed.Link
	result.FeedURL = listingURL
	return result, nil
}

func (h *WireHandler) GetContent(ctx context.Context, url string, opts feed.Options) (*feed.Item, error) {
	_, index, err := h.fetchListing(ctx, h.site.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing for %s: %w", url, err)
	}

	entry, ok := index[url]
	if !ok {
		return nil, fmt.Errorf("item %s not present in listing", url)
	}

	return h.normalize(entry, opts)
}

func (h *WireHandler) fetchListing(ctx context.Context, listingURL string) (*gofeed.Feed, map[string]*gofeed.Item, error) {
	data, err := h.client.HTML(ctx, listingURL, nil)
	if err != nil {
		return nil, nil, err
	}

	parsed, err := h.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	index := make(map[string]*gofeed.Item, len(parsed.Items))
	for _, entry := range parsed.Items {
		if entry.Link != "" {
			index[entry.Link] = entry
		}
	}

	return parsed, index, nil
}

func (h *WireHandler) normalize(entry *gofeed.Item, opts feed.Options) (*feed.Item, error) {
	item := &feed.Item{
		ID:      cmp.Or(entry.GUID, entry.Link),
		URL:     entry.Link,
		Title:   strings.TrimSpace(norm.NFC.String(entry.Title)),
		Summary: strings.TrimSpace(entry.Description),
	}

	if entry.PublishedParsed != nil {
		item.SetPublished(*entry.PublishedParsed)
	} else if t, ok := feed.ParseDate(entry.Published); ok {
		item.SetPublished(t)
	}
	if entry.UpdatedParsed != nil {
		item.SetModified(*entry.UpdatedParsed)
	}

	var contributors []string
	for _, author := range entry.Authors {
		if author != nil && author.Name != "" {
			contributors = append(contributors, author.Name)
		}
	}
	var byline string
	if entry.Author != nil {
		byline = entry.Author.Name
	}
	item.Author, item.Authors = feed.MergeAuthors(byline, contributors, "", h.site.Brand)

	tags := feed.NewTagSet()
	tags.Add(entry.Categories...)
	if entry.ITunesExt != nil {
		tags.AddCSV(entry.ITunesExt.Keywords)
	}
	item.Tags = tags.Tags()

	if entry.Image != nil {
		item.Image = entry.Image.URL
	}
	if item.Image == "" && entry.ITunesExt != nil {
		item.Image = entry.ITunesExt.Image
	}

	var cardHTML string
	for _, enclosure := range entry.Enclosures {
		if enclosure == nil || enclosure.URL == "" {
			continue
		}
		attachment := feed.Attachment{URL: enclosure.URL, MimeType: enclosure.Type}
		if enclosure.Length != "" {
			if size, err := strconv.ParseInt(enclosure.Length, 10, 64); err == nil {
				attachment.SizeInBytes = size
			}
		}
		if strings.HasPrefix(enclosure.Type, "audio/") && item.Audio == "" {
			item.Audio = enclosure.URL
			duration := 0
			if entry.ITunesExt != nil {
				duration = parseDurationText(entry.ITunesExt.Duration)
			}
			attachment.DurationInSeconds = duration
			cardHTML = html.AddAudioCard(enclosure.URL, item.Title, item.Author.Name, item.Image, duration)
		}
		item.Attachments = append(item.Attachments, attachment)
	}

	if opts.EmbedPreview {
		item.ContentHTML = html.PreviewCard(item.URL, item.Title, item.Image, item.Summary)
	} else {
		body, err := html.Sanitize(cmp.Or(entry.Content, entry.Description))
		if err != nil {
			return nil, fmt.Errorf("failed to sanitize content for %s: %w", entry.Link, err)
		}
		if cardHTML != "" {
			body = cardHTML + "\n" + body
		}
		item.ContentHTML = body
	}

	if !item.Valid() {
		return nil, fmt.Errorf("item %s is missing required fields", entry.Link)
	}

	return item, nil
}

// parseDurationText converts "HH:MM:SS", "MM:SS" or plain seconds into
// seconds. Malformed values yield zero; duration is best-effort.
func parseDurationText(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	parts := strings.Split(s, ":")
	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return total
}
