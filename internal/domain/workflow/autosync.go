package workflow

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/modxel/internal/editor"
)

// Auto-sync results reported to metrics
const (
	SyncUpdated = "updated"
	SyncArmed   = "armed"
	SyncSkipped = "skipped"
)

// AutoSync uploads bound buffers when they are saved
type AutoSync struct {
	deps Deps
}

// NewAutoSync creates the pre-save hook
func NewAutoSync(deps Deps) *AutoSync {
	return &AutoSync{deps: deps}
}

// PreSave runs before buf is written. The first save after binding only
// arms the buffer; later saves push the live content to the server.
func (a *AutoSync) PreSave(ctx context.Context, buf editor.Buffer) (string, error) {
	bound := a.deps.Registry.Lookup(buf)
	if !bound.Actionable() {
		a.deps.Metrics.RecordAutoSync(SyncSkipped)
		return SyncSkipped, nil
	}

	if l, ok := buf.(editor.Loader); ok {
		if err := l.Err(); err != nil {
			return "", fmt.Errorf("autosync: %w", err)
		}
	}

	if !bound.PendingSync {
		a.deps.Registry.MarkPendingSync(buf)
		a.deps.Metrics.RecordAutoSync(SyncArmed)
		return SyncArmed, nil
	}

	params := url.Values{}
	params.Set(bound.Class.NameField(), bound.Name)
	params.Set("id", bound.ID.String())
	params.Set(bound.Class.ContentField(), buf.Content())

	if _, err := a.deps.API.Call(ctx, bound.Class.Action("update"), params); err != nil {
		return "", err
	}

	a.deps.logger().Debug("element synced",
		zap.String("class", bound.Class.String()),
		zap.String("id", bound.ID.String()))
	a.deps.Metrics.RecordAutoSync(SyncUpdated)
	a.deps.Editor.StatusMessage("Modx Element updated")
	return SyncUpdated, nil
}
