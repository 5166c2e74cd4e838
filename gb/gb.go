// Package gb assembles the hardware blocks into a runnable machine and drives
// them on the single shared tick count.
package gb

import (
	"fmt"
	"io"
	"os"

	"github.com/kikiginanjar16/emu-gb/bus"
	"github.com/kikiginanjar16/emu-gb/constant"
	"github.com/kikiginanjar16/emu-gb/cpu"
	"github.com/kikiginanjar16/emu-gb/interrupt"
	"github.com/kikiginanjar16/emu-gb/joypad"
	"github.com/kikiginanjar16/emu-gb/mmu"
	"github.com/kikiginanjar16/emu-gb/ppu"
	"github.com/kikiginanjar16/emu-gb/serial"
	"github.com/kikiginanjar16/emu-gb/timer"
	"github.com/kikiginanjar16/emu-gb/util"
)

// ErrLoopDetected re-exports the CPU's hang sentinel so frontends can match
// it without importing the cpu package.
var ErrLoopDetected = cpu.ErrLoopDetected

type Options struct {
	// DisableLog discards all log output; Silent keeps only the trace.
	DisableLog bool
	Silent     bool

	// Trace logs every executed instruction with a register dump. Slow.
	Trace bool

	// BreakOnLoop arms the hang heuristic: Step returns cpu.ErrLoopDetected
	// when the same backward jump repeats with no state change.
	BreakOnLoop bool

	// EchoSerial receives every link-port byte as the transfer completes.
	EchoSerial io.Writer

	// UnlockedVRAM keeps VRAM/OAM CPU-readable in every PPU mode.
	UnlockedVRAM bool
}

// GameBoy is one emulated DMG. Not safe for concurrent use; everything runs
// on the caller's goroutine.
type GameBoy struct {
	bus    *bus.Bus
	cpu    *cpu.CPU
	ppu    *ppu.PPU
	mmu    *mmu.MMU
	timer  *timer.Timer
	serial *serial.Serial
	joypad *joypad.Joypad
	irq    *interrupt.Controller
	cart   *mmu.Cartridge
	log    *util.Logger
}

// New builds a machine around the given ROM image. savedRAM, when non-nil,
// must match the cartridge RAM size exactly and seeds external RAM.
func New(rom []uint8, opts Options, savedRAM []uint8) (*GameBoy, error) {
	var w io.Writer = os.Stderr
	if opts.DisableLog {
		w = nil
	}
	lg := util.NewLogger(w, opts.Trace, opts.Silent)

	cart, err := mmu.NewCartridge(rom, savedRAM)
	if err != nil {
		return nil, fmt.Errorf("load cartridge: %w", err)
	}
	lg.Printf("cartridge: %q (%s)", cart.Title(), cart.ControllerName())

	b := bus.NewBus()
	irq := interrupt.NewController()
	m := mmu.NewMMU(b, cart, lg, opts.UnlockedVRAM)
	p := ppu.NewPPU(b, lg)
	t := timer.NewTimer(b)
	s := serial.NewSerial(b, opts.EchoSerial)
	j := joypad.NewJoypad(b)
	b.Register(irq, m, p, t, s, j)

	return &GameBoy{
		bus:    b,
		cpu:    cpu.NewCPU(b, lg, opts.BreakOnLoop),
		ppu:    p,
		mmu:    m,
		timer:  t,
		serial: s,
		joypad: j,
		irq:    irq,
		cart:   cart,
		log:    lg,
	}, nil
}

// Step runs one CPU instruction and advances every peripheral by the same
// tick count. Returns the ticks consumed.
func (gb *GameBoy) Step() (uint, error) {
	tick, err := gb.cpu.Step()
	if err != nil {
		return tick, err
	}
	if !gb.cpu.Stopped() {
		gb.timer.Update(tick)
	}
	gb.ppu.Update(tick)
	gb.serial.Update(tick)
	return tick, nil
}

// RunFrame steps the machine until the PPU finishes a frame and returns it.
// The frame is reused on the next call; copy it to keep it. With the LCD off
// no frame ever completes, so a blank frame is returned every frame-length of
// emulated time instead.
func (gb *GameBoy) RunFrame() (*ppu.Frame, error) {
	var elapsed uint
	for {
		tick, err := gb.Step()
		if err != nil {
			return nil, err
		}
		if frame, ok := gb.ppu.TakeFrame(); ok {
			return frame, nil
		}
		elapsed += tick
		if elapsed >= constant.FRAME_TICKS && !gb.ppu.LCDEnabled() {
			return gb.ppu.Frame(), nil
		}
	}
}

// Run drives the machine until shouldClose reports true or a
// callback/emulation error occurs. shouldClose is consulted before every
// instruction step, so callers can cancel mid-frame. onFrame (may be nil) is
// invoked once per completed frame, with the same LCD-off fallback as
// RunFrame.
func (gb *GameBoy) Run(shouldClose func() bool, onFrame func(*ppu.Frame) error) error {
	var elapsed uint
	for !shouldClose() {
		tick, err := gb.Step()
		if err != nil {
			return err
		}
		elapsed += tick
		frame, done := gb.ppu.TakeFrame()
		if !done && elapsed >= constant.FRAME_TICKS && !gb.ppu.LCDEnabled() {
			frame, done = gb.ppu.Frame(), true
		}
		if !done {
			continue
		}
		elapsed = 0
		if onFrame != nil {
			if err := onFrame(frame); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetInput latches the current button state. Masks are active high, bit
// layout per constant.DIR_* and constant.ACT_*. A pressed edge wakes the CPU
// from STOP.
func (gb *GameBoy) SetInput(direction, action uint8) {
	pressed := gb.joypad.SetDirection(direction)
	pressed = gb.joypad.SetAction(action) || pressed
	if pressed {
		gb.cpu.Resume()
	}
}

// Title returns the cartridge title out of the ROM header.
func (gb *GameBoy) Title() string {
	return gb.cart.Title()
}

// BatteryRAM returns the live external RAM if the cartridge is
// battery-backed, nil otherwise. Callers persist this as the save file.
func (gb *GameBoy) BatteryRAM() []uint8 {
	return gb.cart.RAMBytes()
}

// SerialOutput returns everything the program wrote to the link port.
func (gb *GameBoy) SerialOutput() string {
	return gb.serial.Output()
}
