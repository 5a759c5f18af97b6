package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type managed struct {
	widget      Widget
	interval    time.Duration
	lastUpdated time.Time
}

// Manager owns the registered widgets and their refresh bookkeeping. All
// access goes through its lock; widget methods themselves are invoked outside
// the lock so a slow widget never blocks registration or lookups.
type Manager struct {
	mu      sync.Mutex
	widgets map[string]*managed
	order   []string
}

func NewManager() *Manager {
	return &Manager{
		widgets: make(map[string]*managed),
	}
}

// Register adds a widget with its refresh interval and initializes it.
func (m *Manager) Register(w Widget, interval time.Duration) error {
	m.mu.Lock()
	if _, exists := m.widgets[w.ID()]; exists {
		m.mu.Unlock()
		return fmt.Errorf("widget %q already registered", w.ID())
	}
	m.widgets[w.ID()] = &managed{widget: w, interval: interval}
	m.order = append(m.order, w.ID())
	m.mu.Unlock()

	if err := w.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize widget %q: %w", w.ID(), err)
	}

	slog.Info("Widget registered", "widget", w.ID(), "interval", interval)
	return nil
}

func (m *Manager) get(id string) (*managed, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.widgets[id]
	return entry, ok
}

// Data returns the widget's current JSON payload.
func (m *Manager) Data(ctx context.Context, id string) (json.RawMessage, error) {
	entry, ok := m.get(id)
	if !ok {
		return nil, fmt.Errorf("widget %q not found", id)
	}

	return entry.widget.Data(ctx)
}

// SetConfig forwards an opaque configuration blob to the widget.
func (m *Manager) SetConfig(ctx context.Context, id string, config json.RawMessage) error {
	entry, ok := m.get(id)
	if !ok {
		return fmt.Errorf("widget %q not found", id)
	}

	return entry.widget.SetConfig(ctx, config)
}

// IDs returns all widget IDs in registration order.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, len(m.order))
	copy(ids, m.order)
	return ids
}

// ActiveIDs returns the IDs of widgets currently reporting active.
func (m *Manager) ActiveIDs() []string {
	m.mu.Lock()
	entries := make([]*managed, 0, len(m.order))
	for _, id := range m.order {
		entries = append(entries, m.widgets[id])
	}
	m.mu.Unlock()

	var ids []string
	for _, entry := range entries {
		if entry.widget.Active() {
			ids = append(ids, entry.widget.ID())
		}
	}
	return ids
}

// Due returns the widgets whose refresh interval has elapsed and marks them
// updated, so one scheduler tick dispatches each at most once.
func (m *Manager) Due(now time.Time) []Widget {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []Widget
	for _, id := range m.order {
		entry := m.widgets[id]
		if entry.interval <= 0 {
			continue
		}
		if entry.lastUpdated.IsZero() || now.Sub(entry.lastUpdated) >= entry.interval {
			entry.lastUpdated = now
			due = append(due, entry.widget)
		}
	}
	return due
}

// Shutdown cleans up all widgets in reverse registration order.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	entries := make([]*managed, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		entries = append(entries, m.widgets[m.order[i]])
	}
	m.mu.Unlock()

	for _, entry := range entries {
		entry.widget.Cleanup()
		slog.Debug("Widget cleaned up", "widget", entry.widget.ID())
	}
}
