package news

import (
	"time"
)

// FeedType classifies the XML dialect of a fetched feed document.
type FeedType int

const (
	FeedTypeUnknown FeedType = iota
	FeedTypeRSS20
	FeedTypeRSS10
	FeedTypeAtom10
)

func (t FeedType) String() string {
	switch t {
	case FeedTypeRSS20:
		return "RSS 2.0"
	case FeedTypeRSS10:
		return "RSS 1.0"
	case FeedTypeAtom10:
		return "Atom 1.0"
	default:
		return "Unknown"
	}
}

// Article is one normalized news item. Articles are immutable once parsed;
// the ID is a deterministic hash of title+link, so the same story syndicated
// by two feeds resolves to the same identity.
type Article struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Link          string    `json:"link"`
	Source        string    `json:"source"`
	Author        string    `json:"author"`
	Category      string    `json:"category"`
	PublishedDate time.Time `json:"published_date"`
	CachedAt      time.Time `json:"cached_at"`
}

// Feed is a configured RSS/Atom source plus its health metadata. Fetch
// failures populate LastError but never flip IsActive.
type Feed struct {
	URL              string    `json:"url"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	LastError        string    `json:"last_error"`
	LastUpdated      time.Time `json:"last_updated"`
	LastFetchAttempt time.Time `json:"last_fetch_attempt"`
	IsActive         bool      `json:"is_active"`
}

// FeedInfo is feed-level metadata extracted while parsing.
type FeedInfo struct {
	Title       string
	Description string
}
