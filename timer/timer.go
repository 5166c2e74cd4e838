// Package timer implements DIV/TIMA/TMA/TAC.
//
// DIV is the high byte of a free-running 16-bit counter. TIMA increments on
// the falling edge of one counter bit selected by TAC, which is what makes the
// hardware quirks fall out naturally: zeroing the counter through a DIV write
// can itself produce a falling edge and tick TIMA.
package timer

import (
	"github.com/kikiginanjar16/emu-gb/bus"
	"github.com/kikiginanjar16/emu-gb/interrupt"
)

// Counter bit feeding TIMA, per TAC clock select: 1024, 16, 64, 256 cycles.
var selBit = [4]uint{9, 3, 5, 7}

type Timer struct {
	bus     *bus.Bus
	counter uint16
	tima    uint8
	tma     uint8
	tac     uint8

	// Ticks left until a pending overflow reload completes. TIMA holds zero
	// for this window, then reloads from TMA and the interrupt fires.
	reload uint
}

func NewTimer(bus *bus.Bus) *Timer {
	return &Timer{bus: bus}
}

func (t *Timer) DIV() uint8 {
	return uint8(t.counter >> 8)
}

func (t *Timer) TIMA() uint8 {
	return t.tima
}

func (t *Timer) TMA() uint8 {
	return t.tma
}

func (t *Timer) TAC() uint8 {
	return 0xf8 | t.tac
}

// ResetDIV zeroes the whole internal counter. If the selected bit was high,
// the reset is a falling edge and TIMA ticks; this is deliberate, games and
// test ROMs depend on it.
func (t *Timer) ResetDIV() {
	old := t.signal()
	t.counter = 0
	if old && !t.signal() {
		t.incTIMA()
	}
}

// SetTIMA cancels a pending overflow reload: the written value wins.
func (t *Timer) SetTIMA(val uint8) {
	t.reload = 0
	t.tima = val
}

func (t *Timer) SetTMA(val uint8) {
	t.tma = val
}

// SetTAC can produce the same spurious edge as a DIV reset when it deselects
// a high counter bit or disables the timer.
func (t *Timer) SetTAC(val uint8) {
	old := t.signal()
	t.tac = val & 0x07
	if old && !t.signal() {
		t.incTIMA()
	}
}

func (t *Timer) enabled() bool {
	return t.tac&0x04 != 0
}

// signal is the multiplexed counter bit gated by the enable flag.
func (t *Timer) signal() bool {
	return t.enabled() && t.counter&(1<<selBit[t.tac&0x03]) != 0
}

func (t *Timer) incTIMA() {
	t.tima++
	if t.tima == 0 {
		// Overflow: reads as zero for a short window, then reloads.
		t.reload = 4
	}
}

// Update advances the counter by the elapsed ticks. The CPU only ever
// produces multiples of 4, so stepping in 4-tick chunks observes every
// possible edge of the selected bits (the fastest rate is every 16 ticks).
func (t *Timer) Update(tick uint) {
	for ; tick >= 4; tick -= 4 {
		if t.reload > 0 {
			t.reload -= 4
			if t.reload == 0 {
				t.tima = t.tma
				t.bus.IRQ.Request(interrupt.Timer)
			}
		}

		old := t.signal()
		t.counter += 4
		if old && !t.signal() {
			t.incTIMA()
		}
	}
}
