package widget

import (
	"context"
	"encoding/json"
)

// Widget is one dashboard data source with an explicit lifecycle. Data and
// SetConfig speak JSON at the boundary; failures surface as errors, never
// panics.
type Widget interface {
	ID() string
	Initialize() error
	Update(ctx context.Context)
	Data(ctx context.Context) (json.RawMessage, error)
	SetConfig(ctx context.Context, config json.RawMessage) error
	Active() bool
	Cleanup()
}
