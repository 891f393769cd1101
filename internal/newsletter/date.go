package newsletter

import (
	"fmt"
	"time"
)

// FormatIssueDate renders a date in the newsletter's house style,
// e.g. "November 28th, 2025".
func FormatIssueDate(t time.Time) string {
	return fmt.Sprintf("%s %d%s, %d", t.Month(), t.Day(), ordinalSuffix(t.Day()), t.Year())
}

// IssueTitle builds the post title for an issue date.
func IssueTitle(prefix string, t time.Time) string {
	if prefix == "" {
		prefix = "Weekly Update"
	}
	return fmt.Sprintf("%s: %s", prefix, FormatIssueDate(t))
}

func ordinalSuffix(day int) string {
	if day%100 >= 10 && day%100 <= 20 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
