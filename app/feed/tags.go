package feed

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TagSet accumulates topic strings from heterogeneous sources (categories,
// keyword CSV, hashtags, section names) in order of first appearance.
// Matching is exact; no case folding.
type TagSet struct {
	seen map[string]struct{}
	tags []string
}

func NewTagSet() *TagSet {
	return &TagSet{seen: make(map[string]struct{})}
}

func (ts *TagSet) Add(tags ...string) {
	for _, tag := range tags {
		tag = strings.TrimSpace(norm.NFC.String(tag))
		if tag == "" {
			continue
		}
		if _, ok := ts.seen[tag]; ok {
			continue
		}
		ts.seen[tag] = struct{}{}
		ts.tags = append(ts.tags, tag)
	}
}

// AddCSV splits a comma-separated keyword string and adds each entry.
func (ts *TagSet) AddCSV(s string) {
	for _, tag := range strings.Split(s, ",") {
		ts.Add(tag)
	}
}

// Tags returns the accumulated list, or nil when empty so the item field
// is omitted entirely rather than serialized as an empty list.
func (ts *TagSet) Tags() []string {
	if len(ts.tags) == 0 {
		return nil
	}
	return ts.tags
}
