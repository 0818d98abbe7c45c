// Package sites holds the per-publisher handlers and the registry that
// dispatches a hostname to one of them. Each handler is a thin extraction
// layer over the shared normalization pipeline in app/feed and app/html.
package sites

import (
	"context"
	"errors"

	"github.com/feedloom/feedloom/app/feed"
)

// ErrNoFeed is returned by GetFeed when a source exposes no native listing,
// or when the listing itself cannot be retrieved. It is distinct from a
// per-item extraction failure, which the assembler tolerates and skips.
var ErrNoFeed = errors.New("no feed available")

// Handler is the one true interface boundary in the system. Every
// site-specific extractor implements exactly these two operations.
type Handler interface {
	// GetContent returns the normalized item for one item URL, or an
	// error on any unrecoverable condition (failed fetch, unparsable
	// payload, missing required fields). There is no partial-item result.
	GetContent(ctx context.Context, url string, opts feed.Options) (*feed.Item, error)

	// GetFeed returns an ordered feed for a listing URL, built by
	// invoking GetContent per discovered item.
	GetFeed(ctx context.Context, url string, opts feed.Options) (*feed.Feed, error)
}
