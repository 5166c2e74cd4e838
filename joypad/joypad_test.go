package joypad

import (
	"testing"

	"github.com/kikiginanjar16/emu-gb/bus"
	"github.com/kikiginanjar16/emu-gb/constant"
	"github.com/kikiginanjar16/emu-gb/interrupt"
)

func newTestJoypad() (*Joypad, *interrupt.Controller) {
	b := bus.NewBus()
	irq := interrupt.NewController()
	j := NewJoypad(b)
	b.Register(irq, nil, nil, nil, nil, j)
	return j, irq
}

func TestIdleReadsAllReleased(t *testing.T) {
	j, _ := newTestJoypad()
	j.Set(0x30) // nothing selected
	if j.Get() != 0xff {
		t.Fatalf("JOYP=%02x", j.Get())
	}
}

func TestDirectionNibble(t *testing.T) {
	j, _ := newTestJoypad()
	j.SetDirection(1<<constant.DIR_DOWN | 1<<constant.DIR_LEFT)
	j.Set(0x20) // select direction (bit 4 low)
	got := j.Get()
	want := uint8(0xc0 | 0x20 | (0x0f &^ (1<<constant.DIR_DOWN | 1<<constant.DIR_LEFT)))
	if got != want {
		t.Fatalf("JOYP=%02x, expected %02x", got, want)
	}
}

func TestActionNibble(t *testing.T) {
	j, _ := newTestJoypad()
	j.SetAction(1 << constant.ACT_START)
	j.Set(0x10) // select action (bit 5 low)
	got := j.Get()
	want := uint8(0xc0 | 0x10 | (0x0f &^ (1 << constant.ACT_START)))
	if got != want {
		t.Fatalf("JOYP=%02x, expected %02x", got, want)
	}
}

func TestBothNibblesMerge(t *testing.T) {
	j, _ := newTestJoypad()
	j.SetDirection(1 << constant.DIR_UP)
	j.SetAction(1 << constant.ACT_B)
	j.Set(0x00) // both lines low
	got := j.Get()
	want := uint8(0xc0 | (0x0f &^ (1<<constant.DIR_UP | 1<<constant.ACT_B)))
	if got != want {
		t.Fatalf("JOYP=%02x, expected %02x", got, want)
	}
}

func TestPressedEdgeInterrupt(t *testing.T) {
	j, irq := newTestJoypad()
	if j.SetAction(0) {
		t.Fatal("no press, no edge")
	}
	if !j.SetAction(1 << constant.ACT_A) {
		t.Fatal("press should report an edge")
	}
	if irq.Pending() != 0 {
		t.Fatalf("pending=%02x without IE", irq.Pending())
	}
	if irq.IF()&(1<<interrupt.Joypad) == 0 {
		t.Fatal("joypad interrupt not requested")
	}
	// holding the button is not a new edge
	if j.SetAction(1 << constant.ACT_A) {
		t.Fatal("held button must not re-trigger")
	}
	// releasing is not an edge either
	if j.SetAction(0) {
		t.Fatal("release must not trigger")
	}
}
