// Package ppu is the pixel pipeline: a scanline/mode state machine that reads
// tile, map, and sprite data out of its own VRAM/OAM and produces one
// finished 160x144 frame every 70224 ticks.
package ppu

import (
	"sort"

	"github.com/kikiginanjar16/emu-gb/bus"
	"github.com/kikiginanjar16/emu-gb/constant"
	"github.com/kikiginanjar16/emu-gb/interrupt"
	"github.com/kikiginanjar16/emu-gb/util"
)

const (
	LCD_WIDTH  = constant.LCD_WIDTH
	LCD_HEIGHT = constant.LCD_HEIGHT
)

// Mode durations. OAM scan is fixed, pixel transfer varies with fetch
// overhead, H-Blank absorbs the remainder of the 456-tick line.
const (
	oamScanTicks  = 80
	transferMin   = 172
	transferMax   = 289
	lineTicks     = constant.SCANLINE_TICKS
	vblankLines   = 10
	visibleLines  = LCD_HEIGHT
	lastLine      = visibleLines + vblankLines - 1
)

// LCDC bits.
const (
	lcdcBGEnable = 1 << iota
	lcdcOBJEnable
	lcdcOBJSize
	lcdcBGMap
	lcdcTileData
	lcdcWinEnable
	lcdcWinMap
	lcdcEnable
)

// STAT interrupt-enable bits (the writable half of the register).
const (
	statIntHBlank = 1 << (3 + iota)
	statIntVBlank
	statIntOAM
	statIntLYC
)

type PPU struct {
	bus *bus.Bus
	log *util.Logger

	vram [0x2000]uint8
	oam  [0xa0]uint8

	lcdc, stat                   uint8
	scy, scx, ly, lyc            uint8
	bgp, obp0, obp1, wy, wx      uint8

	mode     uint8
	tick     uint
	transfer uint // pixel-transfer length for the current line

	winLine  int
	lineObjs []object

	frame     Frame
	frameDone bool
}

func NewPPU(bus *bus.Bus, lg *util.Logger) *PPU {
	return &PPU{
		bus:      bus,
		log:      lg,
		lcdc:     0x91,
		bgp:      0xfc,
		obp0:     0xff,
		obp1:     0xff,
		mode:     2,
		lineObjs: make([]object, 0, 10),
	}
}

func (ppu *PPU) GetVRAM8(off uint16) uint8 {
	return ppu.vram[off]
}

func (ppu *PPU) SetVRAM8(off uint16, val uint8) {
	ppu.vram[off] = val
}

func (ppu *PPU) GetOAM8(off uint16) uint8 {
	return ppu.oam[off]
}

func (ppu *PPU) SetOAM8(off uint16, val uint8) {
	ppu.oam[off] = val
}

func (ppu *PPU) Mode() uint8 {
	return ppu.mode
}

func (ppu *PPU) LCDEnabled() bool {
	return ppu.lcdc&lcdcEnable != 0
}

func (ppu *PPU) LCDC() uint8 { return ppu.lcdc }
func (ppu *PPU) SCY() uint8 { return ppu.scy }
func (ppu *PPU) SCX() uint8 { return ppu.scx }
func (ppu *PPU) LY() uint8 { return ppu.ly }
func (ppu *PPU) LYC() uint8 { return ppu.lyc }
func (ppu *PPU) BGP() uint8 { return ppu.bgp }
func (ppu *PPU) OBP0() uint8 { return ppu.obp0 }
func (ppu *PPU) OBP1() uint8 { return ppu.obp1 }
func (ppu *PPU) WY() uint8 { return ppu.wy }
func (ppu *PPU) WX() uint8 { return ppu.wx }

// STAT composes the live register: unused bit 7 reads 1, bit 2 is the LYC=LY
// coincidence flag, bits 0-1 the current mode.
func (ppu *PPU) STAT() uint8 {
	v := 0x80 | ppu.stat
	if ppu.ly == ppu.lyc {
		v |= 0x04
	}
	if ppu.LCDEnabled() {
		v |= ppu.mode
	}
	return v
}

// SetSTAT takes only the interrupt-enable bits; mode and coincidence are
// read-only.
func (ppu *PPU) SetSTAT(val uint8) {
	ppu.stat = val & 0x78
}

// SetLCDC handles the enable bit: turning the LCD off freezes the pipeline
// in a blank state, turning it on restarts at the top of the frame.
func (ppu *PPU) SetLCDC(val uint8) {
	wasOn := ppu.LCDEnabled()
	ppu.lcdc = val
	isOn := ppu.LCDEnabled()
	if wasOn && !isOn {
		ppu.ly = 0
		ppu.tick = 0
		ppu.mode = 0
		ppu.winLine = 0
		ppu.frame.clear()
	} else if !wasOn && isOn {
		ppu.tick = 0
		ppu.mode = 2
	}
}

func (ppu *PPU) SetSCY(val uint8) { ppu.scy = val }
func (ppu *PPU) SetSCX(val uint8) { ppu.scx = val }
func (ppu *PPU) SetBGP(val uint8) { ppu.bgp = val }
func (ppu *PPU) SetOBP0(val uint8) { ppu.obp0 = val }
func (ppu *PPU) SetOBP1(val uint8) { ppu.obp1 = val }
func (ppu *PPU) SetWY(val uint8) { ppu.wy = val }
func (ppu *PPU) SetWX(val uint8) { ppu.wx = val }

// SetLYC re-evaluates the coincidence immediately: writing a value equal to
// the current LY raises the STAT interrupt without waiting for a line change.
func (ppu *PPU) SetLYC(val uint8) {
	ppu.lyc = val
	ppu.checkLYC()
}

// Frame exposes the in-progress frame. RunFrame falls back to it while the
// LCD is disabled.
func (ppu *PPU) Frame() *Frame {
	return &ppu.frame
}

// TakeFrame returns the finished frame once after each V-Blank entry.
func (ppu *PPU) TakeFrame() (*Frame, bool) {
	if !ppu.frameDone {
		return nil, false
	}
	ppu.frameDone = false
	return &ppu.frame, true
}

// Update advances the mode machine by the elapsed ticks. The intra-line tick
// counter carries across mode transitions so the four durations always sum
// to exactly 456 per line.
func (ppu *PPU) Update(elapsed uint) {
	if !ppu.LCDEnabled() {
		return
	}
	ppu.tick += elapsed

	for {
		switch ppu.mode {
		case 2: // OAM scan
			if ppu.tick < oamScanTicks {
				return
			}
			ppu.tick -= oamScanTicks
			ppu.scanOAM()
			ppu.transfer = ppu.transferTicks()
			ppu.mode = 3 // no STAT interrupt for mode 3

		case 3: // pixel transfer
			if ppu.tick < ppu.transfer {
				return
			}
			ppu.tick -= ppu.transfer
			ppu.renderScanline()
			ppu.setMode(0, statIntHBlank)

		case 0: // H-Blank
			hblank := lineTicks - oamScanTicks - ppu.transfer
			if ppu.tick < hblank {
				return
			}
			ppu.tick -= hblank
			ppu.advanceLine()
			if ppu.ly == visibleLines {
				ppu.setMode(1, statIntVBlank)
				ppu.bus.IRQ.Request(interrupt.VBlank)
				ppu.frameDone = true
			} else {
				ppu.setMode(2, statIntOAM)
			}

		case 1: // V-Blank, ten scanline-equivalents
			if ppu.tick < lineTicks {
				return
			}
			ppu.tick -= lineTicks
			ppu.advanceLine()
			if ppu.ly == 0 {
				ppu.winLine = 0
				ppu.setMode(2, statIntOAM)
			}
		}
	}
}

func (ppu *PPU) setMode(mode uint8, statBit uint8) {
	ppu.mode = mode
	if ppu.stat&statBit != 0 {
		ppu.bus.IRQ.Request(interrupt.LCDStat)
	}
}

func (ppu *PPU) advanceLine() {
	ppu.ly++
	if ppu.ly > lastLine {
		ppu.ly = 0
	}
	ppu.checkLYC()
}

func (ppu *PPU) checkLYC() {
	if ppu.LCDEnabled() && ppu.ly == ppu.lyc && ppu.stat&statIntLYC != 0 {
		ppu.bus.IRQ.Request(interrupt.LCDStat)
	}
}

func (ppu *PPU) objHeight() int {
	if ppu.lcdc&lcdcOBJSize != 0 {
		return 16
	}
	return 8
}

// scanOAM selects up to 10 sprites overlapping the current line, in priority
// order (smaller X wins, then OAM index).
func (ppu *PPU) scanOAM() {
	ppu.lineObjs = ppu.lineObjs[:0]
	h := ppu.objHeight()
	y := int(ppu.ly)
	for i := 0; i < 40 && len(ppu.lineObjs) < 10; i++ {
		o := newObject(ppu.oam[:], i)
		if sy := o.screenY(); sy <= y && y < sy+h {
			ppu.lineObjs = append(ppu.lineObjs, o)
		}
	}
	sort.Sort(byXAndOAMIndex(ppu.lineObjs))
}

// windowOnLine reports whether the window overlay starts on the current line.
// LCDC bit 0 turns off the whole BG/window layer, window enable included.
func (ppu *PPU) windowOnLine() bool {
	if ppu.lcdc&lcdcBGEnable == 0 || ppu.lcdc&lcdcWinEnable == 0 {
		return false
	}
	return ppu.ly >= ppu.wy && ppu.wx <= 166
}

// transferTicks models the pixel-transfer stretch: the base 172 plus the
// discarded scroll pixels, a fetch restart when the window starts, and the
// per-sprite fetch stalls. Clamped to the documented 172..289 range.
func (ppu *PPU) transferTicks() uint {
	n := uint(transferMin) + uint(ppu.scx%8) + 6*uint(len(ppu.lineObjs))
	if ppu.windowOnLine() {
		n += 6
	}
	if n > transferMax {
		n = transferMax
	}
	return n
}
