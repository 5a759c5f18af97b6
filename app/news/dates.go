package news

import (
	"strings"
	"time"
)

// Accepted formats, in priority order: RFC-822 style first (RSS pubDate),
// then ISO-8601 (Atom), then a bare date.
var dateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses a feed date string permissively. When every format fails
// (including empty input) the current time is substituted: articles never
// carry a zero timestamp, at the cost of losing true ordering for feeds with
// unparsable dates.
func ParseDate(dateStr string) time.Time {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr != "" {
		for _, format := range dateFormats {
			if t, err := time.Parse(format, dateStr); err == nil {
				return t
			}
		}
	}
	return time.Now()
}
