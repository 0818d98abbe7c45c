package feed

import (
	"testing"
	"time"
)

func TestParseDateWithZone(t *testing.T) {
	parsed, ok := ParseDate("2024-01-05T10:00:00Z")
	if !ok {
		t.Fatal("Expected date to parse")
	}
	if parsed.Unix() != 1704448800 {
		t.Errorf("Expected epoch 1704448800, got %d", parsed.Unix())
	}
	if parsed.Location() != time.UTC {
		t.Errorf("Expected UTC, got %s", parsed.Location())
	}
}

func TestParseDateOffsetConvertedToUTC(t *testing.T) {
	parsed, ok := ParseDate("2024-01-05T05:00:00-05:00")
	if !ok {
		t.Fatal("Expected date to parse")
	}
	if parsed.Unix() != 1704448800 {
		t.Errorf("Expected epoch 1704448800, got %d", parsed.Unix())
	}
}

func TestParseDateNaiveUsesConfiguredZone(t *testing.T) {
	original := time.Local
	defer func() { time.Local = original }()

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("Failed to load location: %v", err)
	}
	time.Local = loc

	parsed, ok := ParseDate("2024-01-05 05:00:00")
	if !ok {
		t.Fatal("Expected date to parse")
	}
	// 05:00 Eastern is 10:00 UTC
	if parsed.Unix() != 1704448800 {
		t.Errorf("Expected epoch 1704448800, got %d", parsed.Unix())
	}
}

func TestParseDateEpochString(t *testing.T) {
	parsed, ok := ParseDate("1704448800")
	if !ok {
		t.Fatal("Expected epoch string to parse")
	}
	if parsed.Unix() != 1704448800 {
		t.Errorf("Expected epoch 1704448800, got %d", parsed.Unix())
	}
}

func TestParseDateUnparsable(t *testing.T) {
	if _, ok := ParseDate("five minutes past teatime"); ok {
		t.Error("Expected unparsable date to return ok=false")
	}
	if _, ok := ParseDate(""); ok {
		t.Error("Expected empty date to return ok=false")
	}
}

func TestDisplayDate(t *testing.T) {
	got := DisplayDate(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC))
	if got != "Jan. 5, 2024" {
		t.Errorf("Expected 'Jan. 5, 2024', got '%s'", got)
	}
}

func TestParseEpoch(t *testing.T) {
	parsed := ParseEpoch(1704448800)
	if parsed.Format(time.RFC3339) != "2024-01-05T10:00:00Z" {
		t.Errorf("Expected '2024-01-05T10:00:00Z', got '%s'", parsed.Format(time.RFC3339))
	}
}
