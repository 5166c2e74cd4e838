package serial

import (
	"bytes"
	"testing"

	"github.com/kikiginanjar16/emu-gb/bus"
	"github.com/kikiginanjar16/emu-gb/interrupt"
)

func newTestSerial(echo *bytes.Buffer) (*Serial, *interrupt.Controller) {
	b := bus.NewBus()
	irq := interrupt.NewController()
	var s *Serial
	if echo != nil {
		s = NewSerial(b, echo)
	} else {
		s = NewSerial(b, nil)
	}
	b.Register(irq, nil, nil, nil, s, nil)
	return s, irq
}

func TestTransfer(t *testing.T) {
	var echo bytes.Buffer
	s, irq := newTestSerial(&echo)
	irq.SetIE(1 << interrupt.Serial)

	for _, ch := range []byte("OK") {
		s.SetSB(ch)
		s.SetSC(0x81)
		s.Update(transferTicks - 4)
		if s.SC()&0x80 == 0 {
			t.Fatal("transfer finished early")
		}
		s.Update(4)
		if s.SC()&0x80 != 0 {
			t.Fatal("transfer did not finish")
		}
		if s.SB() != 0xff {
			t.Fatalf("SB=%02x, no peer means all ones shift in", s.SB())
		}
		if irq.Pending()&(1<<interrupt.Serial) == 0 {
			t.Fatal("serial interrupt missing")
		}
		irq.Clear(interrupt.Serial)
	}

	if s.Output() != "OK" {
		t.Fatalf("output %q", s.Output())
	}
	if echo.String() != "OK" {
		t.Fatalf("echo %q", echo.String())
	}
}

func TestNoTransferWithoutStart(t *testing.T) {
	s, irq := newTestSerial(nil)
	s.SetSB('X')
	s.SetSC(0x01) // external clock, never completes here
	s.Update(transferTicks * 4)
	if s.Output() != "" || irq.Pending() != 0 {
		t.Fatalf("output=%q pending=%02x", s.Output(), irq.Pending())
	}
}

func TestSCReadback(t *testing.T) {
	s, _ := newTestSerial(nil)
	s.SetSC(0x81)
	if s.SC() != 0xff {
		t.Fatalf("SC=%02x, unused bits must read 1", s.SC())
	}
}
