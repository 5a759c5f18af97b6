package widget

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/homedash/homedash/app/news"
)

var _ Widget = (*NewsWidget)(nil)

// NewsWidget exposes the news aggregation service through the widget
// lifecycle. Periodic refresh happens here, not inside the service: the
// aggregator itself is invoked synchronously and carries no scheduler.
type NewsWidget struct {
	svc    *news.Service
	active atomic.Bool
}

func NewNewsWidget(svc *news.Service) *NewsWidget {
	return &NewsWidget{svc: svc}
}

func (w *NewsWidget) ID() string { return "news" }

func (w *NewsWidget) Initialize() error {
	w.active.Store(true)
	return nil
}

func (w *NewsWidget) Update(ctx context.Context) {
	if !w.active.Load() {
		return
	}
	w.svc.RefreshAllFeeds(ctx)
}

func (w *NewsWidget) Data(ctx context.Context) (json.RawMessage, error) {
	articles := w.svc.GetLatestNews(ctx, false)
	return json.Marshal(articles)
}

func (w *NewsWidget) SetConfig(ctx context.Context, config json.RawMessage) error {
	return w.svc.SetConfig(ctx, config)
}

func (w *NewsWidget) Active() bool { return w.active.Load() }

func (w *NewsWidget) Cleanup() {
	w.active.Store(false)
	w.svc.ClearCache()
}
