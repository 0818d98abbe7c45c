package feed

import (
	"testing"
	"time"
)

func TestFiltererNoRules(t *testing.T) {
	filterer := NewFilterer()
	item := testItem("https://example.com/a", time.Now())

	if !filterer.Run(item, Options{}) {
		t.Error("Expected item to pass with no rules configured")
	}
}

func TestFiltererAgeCutoff(t *testing.T) {
	filterer := NewFilterer()

	fresh := testItem("https://example.com/fresh", time.Now().Add(-time.Hour))
	stale := testItem("https://example.com/stale", time.Now().Add(-72*time.Hour))

	opts := Options{MaxAge: 24 * time.Hour}
	if !filterer.Run(fresh, opts) {
		t.Error("Expected fresh item to pass age filter")
	}
	if filterer.Run(stale, opts) {
		t.Error("Expected stale item to be rejected by age filter")
	}
}

func TestFiltererAgeIgnoredWithoutTimestamp(t *testing.T) {
	filterer := NewFilterer()
	item := &Item{ID: "1", URL: "https://example.com/a", Title: "A"}

	if !filterer.Run(item, Options{MaxAge: time.Hour}) {
		t.Error("Expected item without timestamp to pass the age filter")
	}
}

func TestFiltererExcludes(t *testing.T) {
	filterer := NewFilterer()
	item := testItem("https://example.com/a", time.Now())
	item.Title = "Breaking News: Sponsored Content"

	if filterer.Run(item, Options{Excludes: []string{"sponsored"}}) {
		t.Error("Expected item with excluded pattern to be rejected")
	}
	if !filterer.Run(item, Options{Excludes: []string{"weather"}}) {
		t.Error("Expected item without excluded pattern to pass")
	}
}

func TestFiltererIncludes(t *testing.T) {
	filterer := NewFilterer()
	item := testItem("https://example.com/a", time.Now())
	item.Title = "Weather Report"
	item.Tags = []string{"Climate"}

	if !filterer.Run(item, Options{Includes: []string{"weather"}}) {
		t.Error("Expected matching include to pass")
	}
	if !filterer.Run(item, Options{Includes: []string{"climate"}}) {
		t.Error("Expected tag match to pass include filter")
	}
	if filterer.Run(item, Options{Includes: []string{"sports"}}) {
		t.Error("Expected item without any include match to be rejected")
	}
}

func TestFiltererAuthorSearched(t *testing.T) {
	filterer := NewFilterer()
	item := testItem("https://example.com/a", time.Now())
	item.Author = &Author{Name: "Jo Reed"}

	if filterer.Run(item, Options{Excludes: []string{"jo reed"}}) {
		t.Error("Expected author name to be searched by exclude rules")
	}
}
