package feed

import (
	"time"
)

// Version is the JSON Feed version the service emits.
const Version = "https://jsonfeed.org/version/1.1"

type Author struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type Attachment struct {
	URL               string `json:"url"`
	MimeType          string `json:"mime_type"`
	Title             string `json:"title,omitempty"`
	SizeInBytes       int64  `json:"size_in_bytes,omitempty"`
	DurationInSeconds int    `json:"duration_in_seconds,omitempty"`
}

// MediaEntry is one member of an episode playlist or photo gallery.
type MediaEntry struct {
	Src      string `json:"src"`
	Title    string `json:"title,omitempty"`
	Image    string `json:"image,omitempty"`
	Duration int    `json:"duration,omitempty"` // seconds
}

// Item is the canonical normalized record for one syndicatable unit
// (article, episode, video, social post). Field names are part of the
// public output shape and must stay stable. Underscore-prefixed fields
// are derived display/sort extensions, never authoritative data.
type Item struct {
	ID            string  `json:"id"`
	URL           string  `json:"url"`
	Title         string  `json:"title,omitempty"`
	DatePublished string  `json:"date_published,omitempty"`
	DateModified  string  `json:"date_modified,omitempty"`
	Timestamp     float64 `json:"_timestamp,omitempty"`
	DisplayDate   string  `json:"_display_date,omitempty"`

	Author  *Author  `json:"author,omitempty"`
	Authors []Author `json:"authors,omitempty"`
	Tags    []string `json:"tags,omitempty"`

	Summary     string `json:"summary,omitempty"`
	Image       string `json:"image,omitempty"`
	ContentHTML string `json:"content_html,omitempty"`

	Attachments []Attachment `json:"attachments,omitempty"`
	Audio       string       `json:"_audio,omitempty"`
	Video       string       `json:"_video,omitempty"`
	Playlist    []MediaEntry `json:"_playlist,omitempty"`
	Gallery     []MediaEntry `json:"_gallery,omitempty"`
}

// SetPublished records the publication time and derives the sort and
// display mirrors from it. This is the only place _timestamp and
// _display_date are ever set.
func (i *Item) SetPublished(t time.Time) {
	utc := t.UTC()
	i.DatePublished = utc.Format(time.RFC3339)
	i.Timestamp = float64(utc.Unix())
	i.DisplayDate = DisplayDate(utc)
}

func (i *Item) SetModified(t time.Time) {
	i.DateModified = t.UTC().Format(time.RFC3339)
}

// Valid reports whether the item carries enough data to be returned.
// Handlers return nil rather than a partially built item when this fails.
func (i *Item) Valid() bool {
	if i.URL == "" {
		return false
	}
	return i.Title != "" || i.Audio != "" || i.Video != "" || len(i.Attachments) > 0
}

// Feed is the aggregate output envelope, sorted newest first.
type Feed struct {
	Version     string  `json:"version"`
	Title       string  `json:"title,omitempty"`
	HomePageURL string  `json:"home_page_url,omitempty"`
	FeedURL     string  `json:"feed_url,omitempty"`
	Items       []*Item `json:"items"`
}

// Options is the generic option bag recognized by every handler.
type Options struct {
	MaxItems     int           // cap on accepted items in a feed or nested listing
	MaxAge       time.Duration // reject items older than this, 0 disables
	EmbedPreview bool          // render a compact embed variant of content_html
	Includes     []string      // substring rules applied by the filterer
	Excludes     []string
}
