package hal

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLogWriterTrimsNewline(t *testing.T) {
	var out bytes.Buffer
	l := &hostLogger{w: &out}

	log := slog.New(slog.NewTextHandler(LogWriter(l), nil))
	log.Info("session started", "mode", "immersive-ar")

	got := out.String()
	if strings.Count(got, "\n") != 1 {
		t.Fatalf("output = %q, want exactly one line", got)
	}
	if !strings.Contains(got, "mode=immersive-ar") {
		t.Fatalf("output = %q, want mode attribute", got)
	}
}

func TestFramebufferResize(t *testing.T) {
	fb := newHostFramebuffer(4, 2)
	if fb.StrideBytes() != 8 || len(fb.Buffer()) != 16 {
		t.Fatalf("stride=%d len=%d, want 8/16", fb.StrideBytes(), len(fb.Buffer()))
	}
	if fb.resize(4, 2) {
		t.Fatalf("resize(same) = true, want false")
	}
	if !fb.resize(3, 3) {
		t.Fatalf("resize(3,3) = false, want true")
	}
	if fb.Width() != 3 || fb.Height() != 3 || len(fb.Buffer()) != 18 {
		t.Fatalf("after resize w=%d h=%d len=%d, want 3/3/18", fb.Width(), fb.Height(), len(fb.Buffer()))
	}
}

func TestRunHeadlessStopsAfterTicks(t *testing.T) {
	h := newHost(&bytes.Buffer{}, 8, 8)
	var steps int
	step := func(time.Duration) error {
		steps++
		return nil
	}

	cfg := HeadlessConfig{Ticks: 5, SelectEvery: 2}
	if err := runHeadless(context.Background(), h, step, time.Millisecond, cfg); err != nil {
		t.Fatalf("runHeadless: %v", err)
	}
	if steps != 5 {
		t.Fatalf("steps = %d, want 5", steps)
	}
	if got := len(h.ptr.Events()); got != 2 {
		t.Fatalf("injected presses = %d, want 2", got)
	}
	ev := <-h.ptr.Events()
	if ev.X != 4 || ev.Y != 4 {
		t.Fatalf("press at (%d,%d), want (4,4)", ev.X, ev.Y)
	}
}

func TestRunHeadlessCanceled(t *testing.T) {
	h := newHost(&bytes.Buffer{}, 8, 8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runHeadless(ctx, h, nil, time.Millisecond, HeadlessConfig{}); err != context.Canceled {
		t.Fatalf("runHeadless() err = %v, want context.Canceled", err)
	}
}

func TestRunHeadlessStepStops(t *testing.T) {
	h := newHost(&bytes.Buffer{}, 8, 8)
	var steps int
	step := func(time.Duration) error {
		steps++
		if steps == 3 {
			return ErrStopped
		}
		return nil
	}
	if err := runHeadless(context.Background(), h, step, time.Millisecond, HeadlessConfig{}); err != nil {
		t.Fatalf("runHeadless() err = %v, want nil", err)
	}
	if steps != 3 {
		t.Fatalf("steps = %d, want 3", steps)
	}
}

func TestRGB565RoundTrip(t *testing.T) {
	tests := []struct {
		r, g, b uint8
	}{
		{0, 0, 0},
		{255, 255, 255},
		{255, 0, 0},
		{0, 255, 0},
		{0, 0, 255},
	}
	for _, tt := range tests {
		r, g, b := rgb888From565(rgb565(tt.r, tt.g, tt.b))
		if r != tt.r || g != tt.g || b != tt.b {
			t.Fatalf("round trip (%d,%d,%d) = (%d,%d,%d)", tt.r, tt.g, tt.b, r, g, b)
		}
	}
}
