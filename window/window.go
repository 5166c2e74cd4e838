package window

import "github.com/kikiginanjar16/emu-gb/ppu"

// WindowEvent carries the button state sampled once per frame.
type WindowEvent struct {
	Direction, Action uint8
}

// Window is one presentation backend.
type Window interface {
	// HandleEvents pumps the host event queue. It returns true when the user
	// asked to quit, plus the current button state.
	HandleEvents() (bool, *WindowEvent)
	// DrawFrame presents one finished frame.
	DrawFrame(frame *ppu.Frame) error
}
