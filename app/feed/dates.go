package feed

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

// Display dates are pinned to this format across every source.
const displayFormat = "Jan. 2, 2006"

// ParseDate parses an ISO-8601-ish string or stringified epoch into UTC.
// Timestamps without zone information are localized using the process-wide
// configured timezone first. Unparsable input returns ok=false; callers
// leave the date fields unset and keep the item.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ParseEpoch(sec), true
	}

	t, err := dateparse.ParseIn(s, time.Local)
	if err != nil {
		slog.Debug("Unparsable date", "value", s, "error", err)
		return time.Time{}, false
	}

	return t.UTC(), true
}

// ParseEpoch converts POSIX seconds to UTC.
func ParseEpoch(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// DisplayDate renders the fixed human-readable form, e.g. "Jan. 5, 2024".
func DisplayDate(t time.Time) string {
	return t.Format(displayFormat)
}
