// Package serial implements the link-port registers SB/SC. There is no peer
// on the other end of the cable, so a transfer shifts in all ones; the
// outgoing byte is still observable, which is how the instruction-correctness
// test ROMs report their results.
package serial

import (
	"io"

	"github.com/kikiginanjar16/emu-gb/bus"
	"github.com/kikiginanjar16/emu-gb/interrupt"
)

// A byte takes 8 bits at 8192 Hz on the internal clock: 4096 ticks.
const transferTicks = 4096

// Keep the tail of the output only; test ROMs write short messages but a
// misbehaving program could spin on the port forever.
const maxOutput = 64 * 1024

type Serial struct {
	bus  *bus.Bus
	echo io.Writer

	sb, sc uint8
	tick   uint
	out    []byte
}

// NewSerial creates the port. echo may be nil; when set, every transferred
// byte is copied to it as it completes.
func NewSerial(bus *bus.Bus, echo io.Writer) *Serial {
	return &Serial{bus: bus, echo: echo}
}

func (s *Serial) SB() uint8 {
	return s.sb
}

func (s *Serial) SetSB(val uint8) {
	s.sb = val
}

func (s *Serial) SC() uint8 {
	return 0x7e | s.sc
}

func (s *Serial) SetSC(val uint8) {
	s.sc = val & 0x81
	if s.sc == 0x81 { // transfer start, internal clock
		s.tick = 0
	}
}

// Update advances an in-flight transfer. On completion the sent byte is
// recorded, SB reads back 0xff (no peer), and the serial interrupt fires.
func (s *Serial) Update(tick uint) {
	if s.sc != 0x81 {
		return
	}
	s.tick += tick
	if s.tick < transferTicks {
		return
	}
	s.tick = 0

	sent := s.sb
	if len(s.out) < maxOutput {
		s.out = append(s.out, sent)
	}
	if s.echo != nil {
		s.echo.Write([]byte{sent})
	}

	s.sb = 0xff
	s.sc &^= 0x80
	s.bus.IRQ.Request(interrupt.Serial)
}

// Output returns everything written to the port so far.
func (s *Serial) Output() string {
	return string(s.out)
}
