package joypad

import (
	"github.com/kikiginanjar16/emu-gb/bus"
	"github.com/kikiginanjar16/emu-gb/interrupt"
)

// Joypad holds the P1/JOYP select lines and the two button nibbles. Button
// bits are active low on the real wire; SetDirection/SetAction take
// active-high masks (bit layout per constant.DIR_*/ACT_*) and invert.
type Joypad struct {
	bus                           *bus.Bus
	selectAction, selectDirection bool
	action, direction             uint8
}

func NewJoypad(bus *bus.Bus) *Joypad {
	return &Joypad{
		bus:             bus,
		selectAction:    true,
		selectDirection: true,
		action:          0x0f,
		direction:       0x0f,
	}
}

func (j *Joypad) Set(val uint8) {
	j.selectAction = (val>>5)&1 == 0
	j.selectDirection = (val>>4)&1 == 0
}

// Get composes the read-back: selected lines contribute their nibble, and
// with both lines low the nibbles merge (a press on either matrix pulls the
// column down).
func (j *Joypad) Get() uint8 {
	ret := uint8(0xf0)
	nibble := uint8(0x0f)
	if j.selectAction {
		ret &^= 0x20
		nibble &= j.action
	}
	if j.selectDirection {
		ret &^= 0x10
		nibble &= j.direction
	}
	return ret | nibble
}

// SetDirection updates the d-pad lines and reports whether any button went
// from released to pressed. A pressed edge raises the joypad interrupt.
func (j *Joypad) SetDirection(direction uint8) bool {
	return j.update(&j.direction, direction)
}

func (j *Joypad) SetAction(action uint8) bool {
	return j.update(&j.action, action)
}

func (j *Joypad) update(line *uint8, pressed uint8) bool {
	old := *line
	*line = 0x0f &^ pressed
	edge := old & ^*line & 0x0f
	if edge != 0 {
		j.bus.IRQ.Request(interrupt.Joypad)
		return true
	}
	return false
}
