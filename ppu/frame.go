package ppu

import "github.com/kikiginanjar16/emu-gb/constant"

// Shade is one of the four DMG colors, 0 (lightest) to 3 (darkest).
type Shade = uint8

// Frame is one finished 160x144 picture. The PPU reuses its frame in place:
// the pointer handed to the frame callback is valid for the duration of that
// call only, copy it to keep it.
type Frame struct {
	pix [constant.LCD_WIDTH * constant.LCD_HEIGHT]Shade
}

// At returns the shade at (x, y), 0 <= x < 160, 0 <= y < 144.
func (f *Frame) At(x, y int) Shade {
	return f.pix[y*constant.LCD_WIDTH+x]
}

// Pix exposes the backing row-major pixel slice for renderers.
func (f *Frame) Pix() []Shade {
	return f.pix[:]
}

func (f *Frame) clear() {
	for i := range f.pix {
		f.pix[i] = 0
	}
}
