package tasks

import (
	"context"
	"log/slog"

	"github.com/homedash/homedash/app/widget"
)

// UpdateWidgetTask refreshes one widget's data. Widgets recover per source
// internally, so a failed refresh only shows up in their own status fields.
type UpdateWidgetTask struct {
	Task
	widget widget.Widget
}

func NewUpdateWidgetTask(w widget.Widget) *UpdateWidgetTask {
	return &UpdateWidgetTask{
		Task:   NewTask(TaskTypeUpdateWidget, w.ID()),
		widget: w,
	}
}

func (t *UpdateWidgetTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.widget.Active() {
		slog.Debug("Widget inactive, skipping update", "widget", t.WidgetID)
		return nil
	}

	t.widget.Update(ctx)

	slog.Info("Task completed",
		"type", TaskTypeUpdateWidget,
		"widget", t.WidgetID,
		"duration", t.GetDuration())

	return nil
}
