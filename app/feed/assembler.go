package feed

import (
	"context"
	"log/slog"
	"sort"
)

// ExtractFunc produces a normalized item for one candidate URL. A nil item
// or an error means extraction failed for that unit; the assembler skips it.
type ExtractFunc func(ctx context.Context, url string) (*Item, error)

// Assembler turns a list of candidate item URLs into an ordered Feed.
// Candidates are processed strictly one at a time; one broken article must
// not blank out the whole feed.
type Assembler struct {
	filterer *Filterer
}

func NewAssembler() *Assembler {
	return &Assembler{filterer: NewFilterer()}
}

// Run extracts each candidate in order, applies the filter predicate, and
// stops early once opts.MaxItems items have been accepted. The final list
// is sorted by _timestamp descending regardless of candidate order.
func (a *Assembler) Run(ctx context.Context, title string, candidates []string, extract ExtractFunc, opts Options) *Feed {
	items := make([]*Item, 0, len(candidates))

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			break
		}

		item, err := extract(ctx, candidate)
		if err != nil {
			slog.Warn("Item extraction failed, skipping", "url", candidate, "error", err)
			continue
		}
		if item == nil {
			slog.Warn("Item extraction returned nothing, skipping", "url", candidate)
			continue
		}

		if !a.filterer.Run(item, opts) {
			continue
		}

		items = append(items, item)
		if opts.MaxItems > 0 && len(items) >= opts.MaxItems {
			break
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})

	return &Feed{
		Version: Version,
		Title:   title,
		Items:   items,
	}
}
