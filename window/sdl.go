//go:build sdl2

package window

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/kikiginanjar16/emu-gb/constant"
	"github.com/kikiginanjar16/emu-gb/ppu"
)

var palette = [4]uint8{
	constant.COLOR_WHITE,
	constant.COLOR_LIGHT_GRAY,
	constant.COLOR_DARK_GRAY,
	constant.COLOR_BLACK,
}

func SDLInitialize() error {
	return sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS)
}

var _ Window = (*SDLWindow)(nil)

type SDLWindow struct {
	window                    *sdl.Window
	renderer                  *sdl.Renderer
	texture                   *sdl.Texture
	prevAction, prevDirection uint8
}

func NewSDLWindow(title string) (*SDLWindow, error) {
	if title == "" {
		title = constant.WINDOW_TITLE
	}
	window, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		constant.WINDOW_WIDTH,
		constant.WINDOW_HEIGHT,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		return nil, err
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return nil, err
	}

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ARGB8888,
		sdl.TEXTUREACCESS_STREAMING,
		constant.LCD_WIDTH,
		constant.LCD_HEIGHT,
	)
	if err != nil {
		return nil, err
	}

	return &SDLWindow{
		window:   window,
		renderer: renderer,
		texture:  texture,
	}, nil
}

func (wind *SDLWindow) HandleEvents() (bool, *WindowEvent) {
	we := &WindowEvent{
		Action:    wind.prevAction,
		Direction: wind.prevDirection,
	}
	escape := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch event.(type) {
		case *sdl.QuitEvent:
			escape = true

		case *sdl.KeyboardEvent:
			kbEvent := event.(*sdl.KeyboardEvent)
			switch kbEvent.Type {
			case sdl.KEYDOWN:
				switch kbEvent.Keysym.Sym {
				case sdl.K_ESCAPE:
					escape = true
				case sdl.K_w:
					we.Direction |= 1 << constant.DIR_UP
				case sdl.K_a:
					we.Direction |= 1 << constant.DIR_LEFT
				case sdl.K_d:
					we.Direction |= 1 << constant.DIR_RIGHT
				case sdl.K_s:
					we.Direction |= 1 << constant.DIR_DOWN
				case sdl.K_k:
					we.Action |= 1 << constant.ACT_A
				case sdl.K_j:
					we.Action |= 1 << constant.ACT_B
				case sdl.K_RETURN:
					we.Action |= 1 << constant.ACT_START
				case sdl.K_SPACE:
					we.Action |= 1 << constant.ACT_SELECT
				}

			case sdl.KEYUP:
				switch kbEvent.Keysym.Sym {
				case sdl.K_w:
					we.Direction &^= 1 << constant.DIR_UP
				case sdl.K_a:
					we.Direction &^= 1 << constant.DIR_LEFT
				case sdl.K_d:
					we.Direction &^= 1 << constant.DIR_RIGHT
				case sdl.K_s:
					we.Direction &^= 1 << constant.DIR_DOWN
				case sdl.K_k:
					we.Action &^= 1 << constant.ACT_A
				case sdl.K_j:
					we.Action &^= 1 << constant.ACT_B
				case sdl.K_RETURN:
					we.Action &^= 1 << constant.ACT_START
				case sdl.K_SPACE:
					we.Action &^= 1 << constant.ACT_SELECT
				}
			}
		}
	}

	wind.prevAction = we.Action
	wind.prevDirection = we.Direction

	return escape, we
}

func (wind *SDLWindow) DrawFrame(frame *ppu.Frame) error {
	pixels, _, err := wind.texture.Lock(nil)
	if err != nil {
		return err
	}
	src := frame.Pix()
	for off, shade := range src {
		color := palette[shade]
		pixels[off*4+0] = color // b
		pixels[off*4+1] = color // g
		pixels[off*4+2] = color // r
		pixels[off*4+3] = 0xff  // a
	}
	wind.texture.Unlock()

	wind.renderer.Clear()
	wind.renderer.Copy(wind.texture, nil, nil)
	wind.renderer.Present()

	return nil
}
