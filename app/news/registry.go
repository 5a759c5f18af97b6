package news

import (
	"sync"
	"time"
)

// Registry holds the configured feeds in insertion order. It owns feed state
// exclusively: the aggregator observes and mutates feeds only through it.
// The lock is never held across network calls; callers snapshot the feed
// list, fetch outside the lock and record outcomes afterwards.
type Registry struct {
	mu    sync.Mutex
	feeds []*Feed
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Seed inserts feeds without liveness validation, for bootstrap from the
// default configuration. Duplicates are skipped.
func (r *Registry) Seed(urls []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, url := range urls {
		if url == "" || r.indexOf(url) >= 0 {
			continue
		}
		r.feeds = append(r.feeds, &Feed{URL: url, IsActive: true})
	}
}

// Add registers a validated feed. It returns false if the URL is already
// present.
func (r *Registry) Add(feed Feed) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(feed.URL) >= 0 {
		return false
	}

	f := feed
	r.feeds = append(r.feeds, &f)
	return true
}

// Remove deletes the feed with the given URL, reporting whether it existed.
func (r *Registry) Remove(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(url)
	if idx < 0 {
		return false
	}

	r.feeds = append(r.feeds[:idx], r.feeds[idx+1:]...)
	return true
}

func (r *Registry) Contains(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.indexOf(url) >= 0
}

// Snapshot returns a copy of all feeds in insertion order.
func (r *Registry) Snapshot() []Feed {
	r.mu.Lock()
	defer r.mu.Unlock()

	feeds := make([]Feed, len(r.feeds))
	for i, f := range r.feeds {
		feeds[i] = *f
	}
	return feeds
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.feeds)
}

func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, f := range r.feeds {
		if f.IsActive {
			count++
		}
	}
	return count
}

// RecordAttempt marks a fetch attempt on the feed.
func (r *Registry) RecordAttempt(url string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx := r.indexOf(url); idx >= 0 {
		r.feeds[idx].LastFetchAttempt = at
	}
}

// RecordSuccess clears the feed's error state and refreshes its metadata.
func (r *Registry) RecordSuccess(url string, info *FeedInfo, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(url)
	if idx < 0 {
		return
	}

	f := r.feeds[idx]
	f.LastError = ""
	f.LastUpdated = at
	if info != nil {
		if info.Title != "" {
			f.Title = info.Title
		}
		if info.Description != "" {
			f.Description = info.Description
		}
	}
}

// RecordError stores the failure reason. Failures never deactivate a feed.
func (r *Registry) RecordError(url string, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx := r.indexOf(url); idx >= 0 {
		r.feeds[idx].LastError = reason
	}
}

// SetActive toggles the feed's activity flag, reporting whether the feed
// exists.
func (r *Registry) SetActive(url string, active bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(url)
	if idx < 0 {
		return false
	}

	r.feeds[idx].IsActive = active
	return true
}

// indexOf assumes r.mu is held.
func (r *Registry) indexOf(url string) int {
	for i, f := range r.feeds {
		if f.URL == url {
			return i
		}
	}
	return -1
}
