package hal

import (
	"errors"
	"io"
	"time"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var (
	ErrNotImplemented = errors.New("not implemented")
	// ErrStopped, returned from a step, ends the host loop without error.
	ErrStopped = errors.New("host loop stopped")
)

// LogWriter adapts a line logger to io.Writer so it can back a slog handler.
//
// Each Write is expected to carry whole lines; a trailing newline is trimmed
// because the Logger adds its own.
func LogWriter(l Logger) io.Writer { return logWriter{l: l} }

type logWriter struct {
	l Logger
}

func (w logWriter) Write(p []byte) (int, error) {
	if w.l == nil {
		return 0, ErrNotImplemented
	}
	b := p
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	w.l.WriteLineBytes(b)
	return len(p), nil
}

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
//
// Width and Height may change between frames (window resize, rotation);
// callers must re-read them every frame.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// KeyCode is a minimal key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEscape
	KeySpace
)

// KeyEvent is a keyboard event.
type KeyEvent struct {
	Code  KeyCode
	Press bool
}

// Keyboard provides key events (best-effort on each platform).
type Keyboard interface {
	Events() <-chan KeyEvent
}

// PointerEvent is a primary-button press from a mouse or a touch screen.
type PointerEvent struct {
	X, Y  int
	Touch bool
}

// Pointer provides press events (best-effort on each platform).
type Pointer interface {
	Events() <-chan PointerEvent
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Input provides access to input devices (if available).
type Input interface {
	Keyboard() Keyboard
	Pointer() Pointer
}

// Clock is the monotonic display clock. Now is the elapsed time since the
// platform started presenting frames.
type Clock interface {
	Now() time.Duration
}

// HAL provides the only contact point between the AR core and the host.
type HAL interface {
	Logger() Logger
	Display() Display
	Input() Input
	Clock() Clock
}
