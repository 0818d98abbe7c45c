package feed

import "fmt"

// FormatDuration renders a media duration for display cards: hours round
// down, leftover minutes round up. 1925s is "33 min.", 3700s is
// "1 hr. 2 min.", an exact hour is "1 hr.".
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}

	hours := seconds / 3600
	rem := seconds - hours*3600
	minutes := (rem + 59) / 60

	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%d hr. %d min.", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%d hr.", hours)
	default:
		return fmt.Sprintf("%d min.", minutes)
	}
}
