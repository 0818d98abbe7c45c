package feed

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var lastComma = regexp.MustCompile(`,([^,]+)$`)

// JoinNames joins display names with ", " and rewrites the final separator
// to " and", producing "A, B and C" style bylines.
func JoinNames(names []string) string {
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(norm.NFC.String(name))
		if name != "" {
			cleaned = append(cleaned, name)
		}
	}

	if len(cleaned) == 0 {
		return ""
	}

	joined := strings.Join(cleaned, ", ")
	return lastComma.ReplaceAllString(joined, " and$1")
}

// MergeAuthors resolves the item author from heterogeneous source fields.
// Tie-break order: explicit contributor list, then single byline, then
// publisher/organization name, then the source's brand name. Downstream
// display assumes a non-empty author always exists, so brand must be set.
func MergeAuthors(byline string, contributors []string, publisher, brand string) (*Author, []Author) {
	var names []string

	switch {
	case len(contributors) > 0:
		names = contributors
	case strings.TrimSpace(byline) != "":
		names = []string{byline}
	case strings.TrimSpace(publisher) != "":
		names = []string{publisher}
	default:
		names = []string{brand}
	}

	merged := JoinNames(names)
	if merged == "" {
		merged = brand
	}

	authors := make([]Author, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(norm.NFC.String(name))
		if name != "" {
			authors = append(authors, Author{Name: name})
		}
	}

	return &Author{Name: merged}, authors
}
