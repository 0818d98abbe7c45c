package feed

import (
	"log/slog"
	"strings"
	"time"
)

// Filterer is the item filter predicate applied during feed assembly.
// Rules are deliberately simple: an age cutoff plus case-insensitive
// substring includes/excludes over the item's displayable fields.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run reports whether the item is accepted under the given options.
func (f *Filterer) Run(item *Item, opts Options) bool {
	if opts.MaxAge > 0 && item.Timestamp > 0 {
		published := time.Unix(int64(item.Timestamp), 0)
		if time.Since(published) > opts.MaxAge {
			slog.Debug("Item rejected by age filter", "url", item.URL, "published", item.DatePublished)
			return false
		}
	}

	haystack := f.searchText(item)

	for _, exclude := range opts.Excludes {
		if f.matches(haystack, exclude) {
			slog.Debug("Item rejected by exclude filter", "url", item.URL, "pattern", exclude)
			return false
		}
	}

	if len(opts.Includes) > 0 {
		matched := false
		for _, include := range opts.Includes {
			if f.matches(haystack, include) {
				matched = true
				break
			}
		}
		if !matched {
			slog.Debug("Item rejected by include filter", "url", item.URL, "patterns", opts.Includes)
			return false
		}
	}

	return true
}

func (f *Filterer) matches(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) searchText(item *Item) string {
	parts := []string{item.Title, item.Summary, item.URL}
	if item.Author != nil {
		parts = append(parts, item.Author.Name)
	}
	parts = append(parts, item.Tags...)
	return strings.Join(parts, " ")
}
