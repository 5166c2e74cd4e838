// Package cpu implements the SM83 instruction execution unit: fetch, decode,
// execute against the memory map, and interrupt dispatch at instruction
// boundaries.
package cpu

import (
	"errors"

	"github.com/kikiginanjar16/emu-gb/bus"
	"github.com/kikiginanjar16/emu-gb/interrupt"
	"github.com/kikiginanjar16/emu-gb/util"
)

// ErrLoopDetected is returned by Step when the branch-loop heuristic is armed
// and the same relative jump keeps re-executing with no state change.
var ErrLoopDetected = errors.New("suspected infinite branch loop")

// loopThreshold is how many consecutive identical taken branches count as a
// hang. Tight wait loops that poll memory never trip it because a register or
// pending-interrupt change resets the counter.
const loopThreshold = 128

func compl(v uint8) uint8 {
	return 0xff ^ v
}

func bitN8(n uint8, index int) bool {
	return n>>index&1 != 0
}

func add8(x, y uint8, carry bool) (uint8, bool) {
	// Thanks to: https://cs.opensource.google/go/go/+/refs/tags/go1.17.6:src/math/bits/bits.go;l=354
	sum := x + y + util.BoolToU8(carry)
	carryOut := ((x & y) | ((x | y) &^ sum)) >> 7 != 0
	return sum, carryOut
}

func add4(xu8, yu8 uint8, carry bool) (uint8, bool) {
	x, y := xu8&0x0f, yu8&0x0f
	sum := (x + y + util.BoolToU8(carry)) & 0x0f
	carryOut := ((x & y) | ((x | y) &^ sum)) >> 3 != 0
	return sum, carryOut
}

func sub8(x, y uint8, borrow bool) (uint8, bool) {
	// Thanks to: https://cs.opensource.google/go/go/+/refs/tags/go1.17.6:src/math/bits/bits.go;l=380
	diff := x - y - util.BoolToU8(borrow)
	borrowOut := ((^x & y) | (^(x ^ y) & diff)) >> 7 != 0
	return diff, borrowOut
}

func sub4(xu8, yu8 uint8, borrow bool) (uint8, bool) {
	x, y := xu8&0x0f, yu8&0x0f
	diff := (x - y - util.BoolToU8(borrow)) & 0x0f
	borrowOut := ((^x & y) | (^(x ^ y) & diff)) >> 3 != 0
	return diff, borrowOut
}

type CPU struct {
	bus *bus.Bus
	log *util.Logger

	pc, sp                 uint16
	a, f, b, c, d, e, h, l uint8

	// Interrupt Master Enable plus the one-instruction EI delay.
	ime     bool
	eiDelay int

	halted  bool
	stopped bool

	detectLoop bool
	loopPrev   loopState
	loopCount  int
}

// loopState is the observable state compared between consecutive taken
// branches by the hang heuristic.
type loopState struct {
	pc, af, bc, de, hl, sp uint16
	iflag                  uint8
}

// NewCPU returns a CPU in the documented DMG post-boot-ROM state.
func NewCPU(bus *bus.Bus, lg *util.Logger, detectLoop bool) *CPU {
	return &CPU{
		bus:        bus,
		log:        lg,
		a:          0x01,
		f:          0xb0,
		b:          0x00,
		c:          0x13,
		d:          0x00,
		e:          0xd8,
		h:          0x01,
		l:          0x4d,
		sp:         0xfffe,
		pc:         0x0100,
		detectLoop: detectLoop,
	}
}

func (cpu *CPU) PC() uint16 { return cpu.pc }
func (cpu *CPU) SP() uint16 { return cpu.sp }
func (cpu *CPU) A() uint8 { return cpu.a }
func (cpu *CPU) F() uint8 { return cpu.f }
func (cpu *CPU) B() uint8 { return cpu.b }
func (cpu *CPU) C() uint8 { return cpu.c }
func (cpu *CPU) D() uint8 { return cpu.d }
func (cpu *CPU) E() uint8 { return cpu.e }
func (cpu *CPU) H() uint8 { return cpu.h }
func (cpu *CPU) L() uint8 { return cpu.l }
func (cpu *CPU) IME() bool { return cpu.ime }

func (cpu *CPU) AF() uint16 { return uint16(cpu.a)<<8 | uint16(cpu.f) }
func (cpu *CPU) BC() uint16 { return uint16(cpu.b)<<8 | uint16(cpu.c) }
func (cpu *CPU) DE() uint16 { return uint16(cpu.d)<<8 | uint16(cpu.e) }
func (cpu *CPU) HL() uint16 { return uint16(cpu.h)<<8 | uint16(cpu.l) }

func (cpu *CPU) SetPC(pc uint16) { cpu.pc = pc }
func (cpu *CPU) SetSP(sp uint16) { cpu.sp = sp }
func (cpu *CPU) SetA(v uint8) { cpu.a = v }

// SetAF keeps the invariant that the low nibble of F is always zero.
func (cpu *CPU) SetAF(af uint16) {
	cpu.a = uint8(af >> 8)
	cpu.f = uint8(af) & 0xf0
}
func (cpu *CPU) SetBC(bc uint16) {
	cpu.b = uint8(bc >> 8)
	cpu.c = uint8(bc)
}
func (cpu *CPU) SetDE(de uint16) {
	cpu.d = uint8(de >> 8)
	cpu.e = uint8(de)
}
func (cpu *CPU) SetHL(hl uint16) {
	cpu.h = uint8(hl >> 8)
	cpu.l = uint8(hl)
}

func (cpu *CPU) FlagZ() bool { return cpu.f&(1<<7) != 0 }
func (cpu *CPU) FlagN() bool { return cpu.f&(1<<6) != 0 }
func (cpu *CPU) FlagH() bool { return cpu.f&(1<<5) != 0 }
func (cpu *CPU) FlagC() bool { return cpu.f&(1<<4) != 0 }

func (cpu *CPU) setFlag(flag bool, n uint) {
	if flag {
		cpu.f |= 1 << n
	} else {
		cpu.f &= compl(1 << n)
	}
}

func (cpu *CPU) SetFlagZ(flag bool) { cpu.setFlag(flag, 7) }
func (cpu *CPU) SetFlagN(flag bool) { cpu.setFlag(flag, 6) }
func (cpu *CPU) SetFlagH(flag bool) { cpu.setFlag(flag, 5) }
func (cpu *CPU) SetFlagC(flag bool) { cpu.setFlag(flag, 4) }

func (cpu *CPU) SetFlagZNHC(z, n, h, c bool) {
	cpu.SetFlagZ(z)
	cpu.SetFlagN(n)
	cpu.SetFlagH(h)
	cpu.SetFlagC(c)
}

// Halted reports whether the CPU is in the low-power HALT state.
func (cpu *CPU) Halted() bool {
	return cpu.halted
}

// Stopped reports whether the CPU is in the STOP state; the orchestrator
// gates timer advancement on this.
func (cpu *CPU) Stopped() bool {
	return cpu.stopped
}

// Resume leaves the STOP state. Called on a joypad press.
func (cpu *CPU) Resume() {
	cpu.stopped = false
}

// Step executes one instruction (or services one interrupt, or idles in
// HALT/STOP) and returns the consumed ticks.
func (cpu *CPU) Step() (uint, error) {
	// EI enables interrupts after the instruction following it.
	if cpu.eiDelay > 0 {
		cpu.eiDelay--
		if cpu.eiDelay == 0 {
			cpu.ime = true
		}
	}

	irq := cpu.bus.IRQ
	if cpu.halted {
		if irq.Pending() == 0 {
			return 4, nil
		}
		cpu.halted = false
	}

	if cpu.ime {
		if src, ok := irq.HighestPending(); ok {
			return cpu.serviceInterrupt(src), nil
		}
	}

	if cpu.stopped {
		return 4, nil
	}

	tick, err := cpu.execute()
	if err != nil {
		return tick, err
	}

	if cpu.log.TraceEnabled() {
		cpu.log.Tracef("      af=%04x bc=%04x de=%04x hl=%04x sp=%04x pc=%04x Z=%d N=%d H=%d C=%d",
			cpu.AF(), cpu.BC(), cpu.DE(), cpu.HL(), cpu.SP(), cpu.PC(),
			util.BoolToU8(cpu.FlagZ()), util.BoolToU8(cpu.FlagN()),
			util.BoolToU8(cpu.FlagH()), util.BoolToU8(cpu.FlagC()))
	}
	return tick, nil
}

// serviceInterrupt dispatches the highest-priority pending source: push the
// return address, clear IME and the one pending bit, jump to the fixed
// vector. Costs five machine cycles.
func (cpu *CPU) serviceInterrupt(src int) uint {
	cpu.trace("INT %d -> %04x", src, interrupt.Vector(src))
	cpu.ime = false
	cpu.eiDelay = 0
	cpu.bus.IRQ.Clear(src)
	cpu.push16(cpu.pc)
	cpu.pc = interrupt.Vector(src)
	return 20
}

// watchBranch feeds the hang heuristic after every taken relative jump.
func (cpu *CPU) watchBranch() error {
	if !cpu.detectLoop {
		return nil
	}
	cur := loopState{
		pc: cpu.pc, af: cpu.AF(), bc: cpu.BC(), de: cpu.DE(),
		hl: cpu.HL(), sp: cpu.sp, iflag: cpu.bus.IRQ.IF(),
	}
	if cur == cpu.loopPrev {
		cpu.loopCount++
		if cpu.loopCount >= loopThreshold {
			return ErrLoopDetected
		}
	} else {
		cpu.loopPrev = cur
		cpu.loopCount = 1
	}
	return nil
}

func (cpu *CPU) trace(format string, v ...interface{}) {
	if cpu.log.TraceEnabled() {
		cpu.log.Tracef("%04x: "+format, append([]interface{}{cpu.pc}, v...)...)
	}
}

func (cpu *CPU) get8(addr uint16) uint8 {
	return cpu.bus.MMU.Get8(addr)
}

func (cpu *CPU) set8(addr uint16, val uint8) {
	cpu.bus.MMU.Set8(addr, val)
}

func (cpu *CPU) get16(addr uint16) uint16 {
	return cpu.bus.MMU.Get16(addr)
}

func (cpu *CPU) push16(val uint16) {
	cpu.sp -= 2
	cpu.bus.MMU.Set16(cpu.sp, val)
}

func (cpu *CPU) pop16() uint16 {
	val := cpu.get16(cpu.sp)
	cpu.sp += 2
	return val
}
