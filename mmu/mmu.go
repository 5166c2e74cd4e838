// Package mmu is the single point of address decoding: every CPU-initiated
// read or write lands here and is routed to exactly one owner.
package mmu

import (
	"github.com/kikiginanjar16/emu-gb/bus"
	"github.com/kikiginanjar16/emu-gb/util"
)

/*
	GENERAL MEMORY MAP

	0000-3FFF  16KB ROM bank 00        From cartridge
	4000-7FFF  16KB ROM Bank 01-NN     From cartridge
	8000-9FFF  8KB Video RAM (VRAM)
	A000-BFFF  8KB External RAM        In cartridge
	C000-DFFF  8KB Work RAM (WRAM)
	E000-FDFF  Mirror of C000-DDFF (ECHO RAM)
	FE00-FE9F  Sprite attribute table (OAM)
	FEA0-FEFF  Not Usable
	FF00-FF7F  I/O Registers
	FF80-FFFE  High RAM (HRAM)
	FFFF-FFFF  Interrupt Enable Register (IE)
*/

// Reads of unmapped addresses return this; writes there are dropped.
const openBus = 0xff

type MMU struct {
	bus  *bus.Bus
	cart *Cartridge
	log  *util.Logger

	wram [0x2000]uint8
	hram [0x007f]uint8

	// When set, VRAM/OAM stay CPU-accessible in every PPU mode. The hardware
	// locks them during pixel transfer; some debugging flows want them open.
	unlockedVRAM bool
}

func NewMMU(bus *bus.Bus, cart *Cartridge, lg *util.Logger, unlockedVRAM bool) *MMU {
	return &MMU{
		bus:          bus,
		cart:         cart,
		log:          lg,
		unlockedVRAM: unlockedVRAM,
	}
}

// vramBlocked reports whether the CPU is currently locked out of VRAM: only
// during pixel transfer, and only while the LCD runs.
func (mmu *MMU) vramBlocked() bool {
	ppu := mmu.bus.PPU
	return !mmu.unlockedVRAM && ppu.LCDEnabled() && ppu.Mode() == 3
}

// oamBlocked covers OAM scan as well as pixel transfer.
func (mmu *MMU) oamBlocked() bool {
	ppu := mmu.bus.PPU
	return !mmu.unlockedVRAM && ppu.LCDEnabled() && ppu.Mode() >= 2
}

func (mmu *MMU) Get8(addr uint16) uint8 {
	switch {
	case addr <= 0x7fff:
		return mmu.cart.Get8(addr)
	case addr <= 0x9fff:
		if mmu.vramBlocked() {
			return openBus
		}
		return mmu.bus.PPU.GetVRAM8(addr - 0x8000)
	case addr <= 0xbfff:
		return mmu.cart.Get8(addr)
	case addr <= 0xdfff:
		return mmu.wram[addr-0xc000]
	case addr <= 0xfdff: // echo RAM reads the backing WRAM
		return mmu.wram[addr-0xe000]
	case addr <= 0xfe9f:
		if mmu.oamBlocked() {
			return openBus
		}
		return mmu.bus.PPU.GetOAM8(addr - 0xfe00)
	case addr <= 0xfeff: // not usable
		if mmu.oamBlocked() {
			return openBus
		}
		return 0x00
	case addr >= 0xff80 && addr <= 0xfffe:
		return mmu.hram[addr-0xff80]
	}
	return mmu.getIO(addr)
}

func (mmu *MMU) Set8(addr uint16, val uint8) {
	switch {
	case addr <= 0x7fff:
		mmu.cart.Set8(addr, val)
	case addr <= 0x9fff:
		if mmu.vramBlocked() {
			return
		}
		mmu.bus.PPU.SetVRAM8(addr-0x8000, val)
	case addr <= 0xbfff:
		mmu.cart.Set8(addr, val)
	case addr <= 0xdfff:
		mmu.wram[addr-0xc000] = val
	case addr <= 0xfdff: // echo RAM writes through to WRAM
		mmu.wram[addr-0xe000] = val
	case addr <= 0xfe9f:
		if mmu.oamBlocked() {
			return
		}
		mmu.bus.PPU.SetOAM8(addr-0xfe00, val)
	case addr <= 0xfeff:
		// not usable, dropped
	case addr >= 0xff80 && addr <= 0xfffe:
		mmu.hram[addr-0xff80] = val
	default:
		mmu.setIO(addr, val)
	}
}

// getIO reflects current peripheral state out of the FF00-FF7F window (plus
// IE at FFFF). Registers nothing owns read as open bus.
func (mmu *MMU) getIO(addr uint16) uint8 {
	b := mmu.bus
	switch addr {
	case 0xff00:
		return b.Joypad.Get()
	case 0xff01:
		return b.Serial.SB()
	case 0xff02:
		return b.Serial.SC()
	case 0xff04:
		return b.Timer.DIV()
	case 0xff05:
		return b.Timer.TIMA()
	case 0xff06:
		return b.Timer.TMA()
	case 0xff07:
		return b.Timer.TAC()
	case 0xff0f:
		return b.IRQ.IF()
	case 0xff40:
		return b.PPU.LCDC()
	case 0xff41:
		return b.PPU.STAT()
	case 0xff42:
		return b.PPU.SCY()
	case 0xff43:
		return b.PPU.SCX()
	case 0xff44:
		return b.PPU.LY()
	case 0xff45:
		return b.PPU.LYC()
	case 0xff47:
		return b.PPU.BGP()
	case 0xff48:
		return b.PPU.OBP0()
	case 0xff49:
		return b.PPU.OBP1()
	case 0xff4a:
		return b.PPU.WY()
	case 0xff4b:
		return b.PPU.WX()
	case 0xffff:
		return b.IRQ.IE()
	}
	return openBus
}

func (mmu *MMU) setIO(addr uint16, val uint8) {
	b := mmu.bus
	switch addr {
	case 0xff00:
		b.Joypad.Set(val)
	case 0xff01:
		b.Serial.SetSB(val)
	case 0xff02:
		b.Serial.SetSC(val)
	case 0xff04:
		b.Timer.ResetDIV() // any value resets
	case 0xff05:
		b.Timer.SetTIMA(val)
	case 0xff06:
		b.Timer.SetTMA(val)
	case 0xff07:
		b.Timer.SetTAC(val)
	case 0xff0f:
		b.IRQ.SetIF(val)
	case 0xff40:
		b.PPU.SetLCDC(val)
	case 0xff41:
		b.PPU.SetSTAT(val)
	case 0xff42:
		b.PPU.SetSCY(val)
	case 0xff43:
		b.PPU.SetSCX(val)
	case 0xff45:
		b.PPU.SetLYC(val)
	case 0xff46:
		mmu.dmaTransfer(val)
	case 0xff47:
		b.PPU.SetBGP(val)
	case 0xff48:
		b.PPU.SetOBP0(val)
	case 0xff49:
		b.PPU.SetOBP1(val)
	case 0xff4a:
		b.PPU.SetWY(val)
	case 0xff4b:
		b.PPU.SetWX(val)
	case 0xffff:
		b.IRQ.SetIE(val)
	default:
		mmu.log.Tracef("io write dropped: [%04x] <- %02x", addr, val)
	}
}

// dmaTransfer copies 160 bytes from src<<8 into OAM. The copy bypasses the
// CPU-side OAM lock; on hardware the DMA engine owns the bus for the
// duration.
func (mmu *MMU) dmaTransfer(src uint8) {
	base := uint16(src) << 8
	for i := uint16(0); i < 0xa0; i++ {
		mmu.bus.PPU.SetOAM8(i, mmu.dmaRead(base+i))
	}
}

// dmaRead is Get8 without the mode gating.
func (mmu *MMU) dmaRead(addr uint16) uint8 {
	switch {
	case addr <= 0x7fff, 0xa000 <= addr && addr <= 0xbfff:
		return mmu.cart.Get8(addr)
	case 0x8000 <= addr && addr <= 0x9fff:
		return mmu.bus.PPU.GetVRAM8(addr - 0x8000)
	case 0xc000 <= addr && addr <= 0xdfff:
		return mmu.wram[addr-0xc000]
	case 0xe000 <= addr && addr <= 0xfdff:
		return mmu.wram[addr-0xe000]
	}
	return openBus
}

func (mmu *MMU) Get16(addr uint16) uint16 {
	lo := uint16(mmu.Get8(addr))
	hi := uint16(mmu.Get8(addr + 1))
	return lo | hi<<8
}

func (mmu *MMU) Set16(addr uint16, val uint16) {
	mmu.Set8(addr, uint8(val))
	mmu.Set8(addr+1, uint8(val>>8))
}
