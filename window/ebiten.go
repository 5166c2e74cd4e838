//go:build ebiten

package window

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/kikiginanjar16/emu-gb/constant"
	"github.com/kikiginanjar16/emu-gb/ppu"
)

var palette = [4]uint8{
	constant.COLOR_WHITE,
	constant.COLOR_LIGHT_GRAY,
	constant.COLOR_DARK_GRAY,
	constant.COLOR_BLACK,
}

func EbitenInitialize(title string) {
	if title == "" {
		title = constant.WINDOW_TITLE
	}
	ebiten.SetTPS(60)
	ebiten.SetWindowSize(constant.WINDOW_WIDTH, constant.WINDOW_HEIGHT)
	ebiten.SetWindowTitle(title)
}

// EbitenWindow buffers the latest frame as RGBA; event handling lives in the
// ebiten game loop, so HandleEvents is not part of this backend.
type EbitenWindow struct {
	srcPic [constant.LCD_WIDTH * constant.LCD_HEIGHT]uint8
}

func NewEbitenWindow() *EbitenWindow {
	return &EbitenWindow{}
}

func (wind *EbitenWindow) DrawFrame(frame *ppu.Frame) error {
	copy(wind.srcPic[:], frame.Pix())
	return nil
}

// Render converts the buffered frame to RGBA for (*ebiten.Image).WritePixels.
func (wind *EbitenWindow) Render() []uint8 {
	pixels := make([]uint8, 4*constant.LCD_WIDTH*constant.LCD_HEIGHT)
	for off, shade := range wind.srcPic {
		color := palette[shade]
		pixels[off*4+0] = color // r
		pixels[off*4+1] = color // g
		pixels[off*4+2] = color // b
		pixels[off*4+3] = 0xff  // a
	}
	return pixels
}
