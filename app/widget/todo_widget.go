package widget

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/homedash/homedash/app/todo"
)

var _ Widget = (*TodoWidget)(nil)

// TodoWidget surfaces open tasks and counters from the task store. The store
// is its own source of truth, so Update has nothing to refresh.
type TodoWidget struct {
	svc    *todo.Service
	active atomic.Bool
}

func NewTodoWidget(svc *todo.Service) *TodoWidget {
	return &TodoWidget{svc: svc}
}

func (w *TodoWidget) ID() string { return "todo" }

func (w *TodoWidget) Initialize() error {
	w.active.Store(true)
	return nil
}

func (w *TodoWidget) Update(ctx context.Context) {}

func (w *TodoWidget) Data(ctx context.Context) (json.RawMessage, error) {
	items, err := w.svc.List(todo.ListQuery{
		Statuses: []string{"pending", "in_progress"},
		SortBy:   "due",
		Limit:    20,
	})
	if err != nil {
		return nil, err
	}

	stats, err := w.svc.Stats()
	if err != nil {
		return nil, err
	}

	return json.Marshal(map[string]any{
		"items": items,
		"stats": stats,
	})
}

func (w *TodoWidget) SetConfig(ctx context.Context, config json.RawMessage) error {
	return nil
}

func (w *TodoWidget) Active() bool { return w.active.Load() }

func (w *TodoWidget) Cleanup() {
	w.active.Store(false)
}
