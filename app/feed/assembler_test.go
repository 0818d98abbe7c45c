package feed

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func testItem(url string, published time.Time) *Item {
	item := &Item{ID: url, URL: url, Title: "Item " + url}
	item.SetPublished(published)
	return item
}

func TestAssemblerSortsNewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candidates := []string{"a", "b", "c"}
	times := map[string]time.Time{
		"a": base,
		"b": base.Add(48 * time.Hour),
		"c": base.Add(24 * time.Hour),
	}

	assembler := NewAssembler()
	result := assembler.Run(context.Background(), "Test", candidates, func(ctx context.Context, url string) (*Item, error) {
		return testItem(url, times[url]), nil
	}, Options{})

	if len(result.Items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(result.Items))
	}
	for i := 0; i < len(result.Items)-1; i++ {
		if result.Items[i].Timestamp < result.Items[i+1].Timestamp {
			t.Errorf("Items out of order at %d: %f < %f", i, result.Items[i].Timestamp, result.Items[i+1].Timestamp)
		}
	}
	if result.Items[0].URL != "b" {
		t.Errorf("Expected newest item 'b' first, got '%s'", result.Items[0].URL)
	}
	if result.Version != Version {
		t.Errorf("Expected JSON Feed version, got '%s'", result.Version)
	}
}

func TestAssemblerToleratesPartialFailure(t *testing.T) {
	candidates := []string{"a", "b", "c", "d", "e"}
	failing := map[string]bool{"b": true, "d": true}

	assembler := NewAssembler()
	result := assembler.Run(context.Background(), "Test", candidates, func(ctx context.Context, url string) (*Item, error) {
		if failing[url] {
			return nil, fmt.Errorf("extraction failed for %s", url)
		}
		return testItem(url, time.Now()), nil
	}, Options{})

	if len(result.Items) != 3 {
		t.Errorf("Expected 3 items from 5 candidates with 2 failures, got %d", len(result.Items))
	}
}

func TestAssemblerSkipsNilItems(t *testing.T) {
	assembler := NewAssembler()
	result := assembler.Run(context.Background(), "Test", []string{"a", "b"}, func(ctx context.Context, url string) (*Item, error) {
		if url == "a" {
			return nil, nil
		}
		return testItem(url, time.Now()), nil
	}, Options{})

	if len(result.Items) != 1 {
		t.Errorf("Expected 1 item, got %d", len(result.Items))
	}
}

func TestAssemblerMaxShortCircuits(t *testing.T) {
	candidates := make([]string, 10)
	for i := range candidates {
		candidates[i] = fmt.Sprintf("item-%d", i)
	}

	calls := 0
	assembler := NewAssembler()
	result := assembler.Run(context.Background(), "Test", candidates, func(ctx context.Context, url string) (*Item, error) {
		calls++
		return testItem(url, time.Now()), nil
	}, Options{MaxItems: 2})

	if len(result.Items) != 2 {
		t.Errorf("Expected 2 items, got %d", len(result.Items))
	}
	if calls != 2 {
		t.Errorf("Expected extraction to stop after 2 accepted items, got %d calls", calls)
	}
}

func TestAssemblerOnlyAcceptedItemsCountTowardMax(t *testing.T) {
	candidates := []string{"skip-1", "skip-2", "keep-1", "keep-2", "keep-3"}

	assembler := NewAssembler()
	result := assembler.Run(context.Background(), "Test", candidates, func(ctx context.Context, url string) (*Item, error) {
		item := testItem(url, time.Now())
		return item, nil
	}, Options{MaxItems: 2, Excludes: []string{"skip"}})

	if len(result.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(result.Items))
	}
	for _, item := range result.Items {
		if item.URL == "skip-1" || item.URL == "skip-2" {
			t.Errorf("Excluded item %s should not be present", item.URL)
		}
	}
}
