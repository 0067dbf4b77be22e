package hal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Width  int
	Height int
	Hz     int
	Ticks  uint64
	// SelectEvery injects a centered pointer press every N ticks (0 = never).
	SelectEvery uint64
}

// RunHeadless drives the step at a fixed rate without opening a window.
func RunHeadless(ctx context.Context, newApp func(HAL) func(now time.Duration) error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	h := newHost(os.Stdout, cfg.Width, cfg.Height)
	return runHeadless(ctx, h, newApp(h), d, cfg)
}

func runHeadless(ctx context.Context, h *hostHAL, step func(now time.Duration) error, d time.Duration, cfg HeadlessConfig) error {
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			tick++
			if cfg.SelectEvery > 0 && tick%cfg.SelectEvery == 0 {
				h.ptr.press(h.fb.Width()/2, h.fb.Height()/2, false)
			}
			if step != nil {
				if err := step(h.clock.Now()); err != nil {
					if errors.Is(err, ErrStopped) {
						return nil
					}
					return err
				}
			}
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}
