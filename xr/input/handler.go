package input

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"sparkxr/xr/metrics"
	"sparkxr/xr/platform"
)

// MarkerSource reports the marker state the frame loop last published. It is
// read from the listener goroutine.
type MarkerSource interface {
	Marker() Marker
}

// Handler converts select events into commands. One select yields at most one
// command; the frame loop is never blocked.
type Handler struct {
	q      *Queue
	marker MarkerSource
	log    *slog.Logger
	m      *metrics.Metrics
}

// NewHandler returns a handler turning select events into commands on q.
func NewHandler(q *Queue, marker MarkerSource, log *slog.Logger, m *metrics.Metrics) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{q: q, marker: marker, log: log, m: m}
}

// Trigger enqueues the command for ev. It reports false if the command was
// dropped.
func (h *Handler) Trigger(ev platform.SelectEvent) bool {
	cmd := Command{ID: uuid.New(), Issued: ev.Time}
	if h.marker != nil {
		cmd.Target = h.marker.Marker()
	}
	if !h.q.TryPush(cmd) {
		h.m.SelectDropped()
		h.log.Warn("select dropped", "id", cmd.ID)
		return false
	}
	h.log.Debug("placement queued", "id", cmd.ID, "visible", cmd.Target.Visible)
	return true
}

// Listen consumes selects until ctx is done or the channel closes.
func (h *Handler) Listen(ctx context.Context, selects <-chan platform.SelectEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-selects:
			if !ok {
				return
			}
			h.Trigger(ev)
		}
	}
}
