package widget

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"
)

var (
	_ Widget = (*MailWidget)(nil)
	_ Widget = (*StreamWidget)(nil)
)

// MailWidget is a placeholder until a real mail backend lands. It serves
// canned data so the host UI can render the widget slot.
type MailWidget struct {
	active atomic.Bool
}

func NewMailWidget() *MailWidget { return &MailWidget{} }

func (w *MailWidget) ID() string { return "mail" }

func (w *MailWidget) Initialize() error {
	w.active.Store(true)
	return nil
}

func (w *MailWidget) Update(ctx context.Context) {}

func (w *MailWidget) Data(ctx context.Context) (json.RawMessage, error) {
	return json.Marshal(map[string]any{
		"unread":     0,
		"messages":   []any{},
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (w *MailWidget) SetConfig(ctx context.Context, config json.RawMessage) error { return nil }

func (w *MailWidget) Active() bool { return w.active.Load() }

func (w *MailWidget) Cleanup() { w.active.Store(false) }

// StreamWidget is a placeholder for the live stream status source.
type StreamWidget struct {
	active atomic.Bool
}

func NewStreamWidget() *StreamWidget { return &StreamWidget{} }

func (w *StreamWidget) ID() string { return "stream" }

func (w *StreamWidget) Initialize() error {
	w.active.Store(true)
	return nil
}

func (w *StreamWidget) Update(ctx context.Context) {}

func (w *StreamWidget) Data(ctx context.Context) (json.RawMessage, error) {
	return json.Marshal(map[string]any{
		"live":       false,
		"streams":    []any{},
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (w *StreamWidget) SetConfig(ctx context.Context, config json.RawMessage) error { return nil }

func (w *StreamWidget) Active() bool { return w.active.Load() }

func (w *StreamWidget) Cleanup() { w.active.Store(false) }
