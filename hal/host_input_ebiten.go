//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var keyMap = []struct {
	key  ebiten.Key
	code KeyCode
}{
	{ebiten.KeyArrowUp, KeyUp},
	{ebiten.KeyArrowDown, KeyDown},
	{ebiten.KeyArrowLeft, KeyLeft},
	{ebiten.KeyArrowRight, KeyRight},
	{ebiten.KeyEnter, KeyEnter},
	{ebiten.KeyEscape, KeyEscape},
	{ebiten.KeySpace, KeySpace},
}

func (k *hostKeyboard) poll() {
	for _, m := range keyMap {
		if inpututil.IsKeyJustPressed(m.key) {
			k.emit(m.code, true)
		}
		if inpututil.IsKeyJustReleased(m.key) {
			k.emit(m.code, false)
		}
	}
}

// poll converts window-space presses to framebuffer coordinates by scale.
func (p *hostPointer) poll(scale int, touches []ebiten.TouchID) []ebiten.TouchID {
	if scale < 1 {
		scale = 1
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		p.press(x/scale, y/scale, false)
	}
	touches = inpututil.AppendJustPressedTouchIDs(touches[:0])
	for _, id := range touches {
		x, y := ebiten.TouchPosition(id)
		p.press(x/scale, y/scale, true)
	}
	return touches
}
