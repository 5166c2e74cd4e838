package mmu

import (
	"fmt"
	"strings"
	"time"
)

// Bank controllers are a tagged variant rather than an interface: mapROM and
// mapRAM sit on the hot path of every memory access, and the latch state per
// controller family is a handful of small fields anyway.
type controller int

const (
	ctrlROM controller = iota
	ctrlMBC1
	ctrlMBC2
	ctrlMBC3
	ctrlMBC5
)

var ctrlNames = map[controller]string{
	ctrlROM:  "ROM",
	ctrlMBC1: "MBC1",
	ctrlMBC2: "MBC2",
	ctrlMBC3: "MBC3",
	ctrlMBC5: "MBC5",
}

type Cartridge struct {
	rom, ram []uint8
	ctrl     controller
	title    string
	battery  bool
	hasRTC   bool
	romBanks int
	ramBanks int

	ramEnabled bool

	// MBC1: two bank registers plus the banking mode select.
	bank1, bank2 uint8
	advanced     bool

	// MBC2/MBC3/MBC5 ROM bank (9 bits on MBC5) and RAM bank.
	romBank int
	ramBank int

	// MBC3 RTC: selected register (-1 = RAM mapped), latch handshake seed.
	rtcSel    int
	latchSeed uint8
	rtc       rtcClock
}

// NewCartridge parses the header and restores previously saved external RAM
// verbatim. Malformed headers, unsupported controller types, and size
// mismatches fail construction.
func NewCartridge(rom []uint8, savedRAM []uint8) (*Cartridge, error) {
	if len(rom) < 0x150 {
		return nil, fmt.Errorf("ROM too small for a cartridge header: %d bytes", len(rom))
	}

	c := &Cartridge{rom: rom, rtcSel: -1}
	c.title = strings.TrimRight(string(rom[0x134:0x144]), "\x00")

	catType := rom[0x147]
	switch catType {
	case 0x00, 0x08, 0x09:
		c.ctrl = ctrlROM
		c.battery = catType == 0x09
		c.ramEnabled = true // no controller gating the RAM
	case 0x01, 0x02, 0x03:
		c.ctrl = ctrlMBC1
		c.battery = catType == 0x03
	case 0x05, 0x06:
		c.ctrl = ctrlMBC2
		c.battery = catType == 0x06
	case 0x0f, 0x10, 0x11, 0x12, 0x13:
		c.ctrl = ctrlMBC3
		c.battery = catType == 0x0f || catType == 0x10 || catType == 0x13
		c.hasRTC = catType == 0x0f || catType == 0x10
	case 0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e:
		c.ctrl = ctrlMBC5
		c.battery = catType == 0x1b || catType == 0x1e
	default:
		return nil, fmt.Errorf("unsupported cartridge type: 0x%02x", catType)
	}

	if rom[0x148] > 0x08 {
		return nil, fmt.Errorf("unsupported ROM size code: 0x%02x", rom[0x148])
	}
	c.romBanks = 2 << rom[0x148]
	if len(rom) != c.romBanks*0x4000 {
		return nil, fmt.Errorf("ROM is %d bytes but the header declares %d banks (%d bytes)",
			len(rom), c.romBanks, c.romBanks*0x4000)
	}

	ramSize := 0
	switch rom[0x149] {
	case 0x00, 0x01:
		// none
	case 0x02:
		ramSize = 8 * 1024
	case 0x03:
		ramSize = 32 * 1024
	case 0x04:
		ramSize = 128 * 1024
	case 0x05:
		ramSize = 64 * 1024
	default:
		return nil, fmt.Errorf("unsupported RAM size code: 0x%02x", rom[0x149])
	}
	if c.ctrl == ctrlMBC2 {
		ramSize = 512 // built-in 512x4-bit array, header declares none
	}
	c.ramBanks = ramSize / 0x2000
	c.ram = make([]uint8, ramSize)

	if savedRAM != nil {
		if len(savedRAM) != ramSize {
			return nil, fmt.Errorf("saved RAM is %d bytes, cartridge has %d", len(savedRAM), ramSize)
		}
		copy(c.ram, savedRAM)
	}

	c.bank1 = 1
	c.romBank = 1
	c.rtc.last = time.Now()
	return c, nil
}

func (c *Cartridge) Title() string {
	return c.title
}

func (c *Cartridge) ControllerName() string {
	return ctrlNames[c.ctrl]
}

// RAMBytes exposes the external RAM for battery persistence. Nil when the
// cartridge has no battery; the returned slice is the live backing store.
func (c *Cartridge) RAMBytes() []uint8 {
	if !c.battery || len(c.ram) == 0 {
		return nil
	}
	return c.ram
}

// mapROM translates a CPU address in 0x0000-0x7fff to a physical ROM offset.
// The effective bank index is masked to the header-declared bank count.
func (c *Cartridge) mapROM(addr uint16) int {
	mask := c.romBanks - 1
	bank := 0
	if addr < 0x4000 {
		// Bank-0 window; only MBC1 in advanced mode remaps it.
		if c.ctrl == ctrlMBC1 && c.advanced {
			bank = (int(c.bank2) << 5) & mask
		}
	} else {
		switch c.ctrl {
		case ctrlROM:
			bank = 1
		case ctrlMBC1:
			bank = (int(c.bank2)<<5 | int(c.bank1)) & mask
		default:
			bank = c.romBank & mask
		}
	}
	return bank*0x4000 + int(addr&0x3fff)
}

// mapRAM translates a CPU address in 0xa000-0xbfff to a physical RAM offset.
// The second result is false while RAM is disabled or absent.
func (c *Cartridge) mapRAM(addr uint16) (int, bool) {
	if !c.ramEnabled || len(c.ram) == 0 {
		return 0, false
	}
	if c.ctrl == ctrlMBC2 {
		return int(addr & 0x01ff), true
	}
	bank := 0
	switch c.ctrl {
	case ctrlMBC1:
		if c.advanced {
			bank = int(c.bank2)
		}
	case ctrlMBC3, ctrlMBC5:
		bank = c.ramBank
	}
	if c.ramBanks > 0 {
		bank &= c.ramBanks - 1
	}
	off := bank*0x2000 + int(addr&0x1fff)
	return off % len(c.ram), true
}

// controlWrite updates the bank-select/RAM-enable/mode latches. Write-address
// ranges follow each controller family's documented decoding.
func (c *Cartridge) controlWrite(addr uint16, val uint8) {
	switch c.ctrl {
	case ctrlROM:
		// no latches

	case ctrlMBC1:
		switch {
		case addr < 0x2000:
			c.ramEnabled = val&0x0f == 0x0a
		case addr < 0x4000:
			bank := val & 0x1f
			if bank == 0 {
				bank = 1
			}
			c.bank1 = bank
		case addr < 0x6000:
			c.bank2 = val & 0x03
		default:
			c.advanced = val&0x01 != 0
		}

	case ctrlMBC2:
		if addr >= 0x4000 {
			return
		}
		// A single register range; address bit 8 picks ROM bank vs RAM enable.
		if addr&0x0100 != 0 {
			bank := int(val & 0x0f)
			if bank == 0 {
				bank = 1
			}
			c.romBank = bank
		} else {
			c.ramEnabled = val&0x0f == 0x0a
		}

	case ctrlMBC3:
		switch {
		case addr < 0x2000:
			c.ramEnabled = val&0x0f == 0x0a
		case addr < 0x4000:
			bank := int(val & 0x7f)
			if bank == 0 {
				bank = 1
			}
			c.romBank = bank
		case addr < 0x6000:
			if val <= 0x07 {
				c.ramBank = int(val & 0x03)
				c.rtcSel = -1
			} else if c.hasRTC && val >= 0x08 && val <= 0x0c {
				c.rtcSel = int(val)
			}
		default:
			if c.latchSeed == 0x00 && val == 0x01 {
				c.rtc.latch()
			}
			c.latchSeed = val
		}

	case ctrlMBC5:
		switch {
		case addr < 0x2000:
			c.ramEnabled = val&0x0f == 0x0a
		case addr < 0x3000:
			c.romBank = c.romBank&0x100 | int(val)
		case addr < 0x4000:
			c.romBank = c.romBank&0x0ff | int(val&0x01)<<8
		case addr < 0x6000:
			c.ramBank = int(val & 0x0f)
		}
	}
}

// Get8 serves reads of the two cartridge windows (ROM and external RAM).
func (c *Cartridge) Get8(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		return c.rom[c.mapROM(addr)]
	case 0xa000 <= addr && addr <= 0xbfff:
		if c.rtcSel >= 0 {
			if !c.ramEnabled {
				return 0xff
			}
			return c.rtc.read(c.rtcSel)
		}
		off, ok := c.mapRAM(addr)
		if !ok {
			return 0xff
		}
		if c.ctrl == ctrlMBC2 {
			return c.ram[off] | 0xf0
		}
		return c.ram[off]
	}
	return 0xff
}

// Set8 serves writes: control latches below 0x8000, RAM (or RTC) at
// 0xa000-0xbfff. Writes to disabled RAM are ignored.
func (c *Cartridge) Set8(addr uint16, val uint8) {
	switch {
	case addr < 0x8000:
		c.controlWrite(addr, val)
	case 0xa000 <= addr && addr <= 0xbfff:
		if c.rtcSel >= 0 {
			if c.ramEnabled {
				c.rtc.write(c.rtcSel, val)
			}
			return
		}
		off, ok := c.mapRAM(addr)
		if !ok {
			return
		}
		if c.ctrl == ctrlMBC2 {
			val |= 0xf0
		}
		c.ram[off] = val
	}
}

// rtcClock is the MBC3 real-time clock: seconds/minutes/hours and a 9-bit day
// counter with halt and carry flags in the control register.
type rtcClock struct {
	sec, min, hour uint8
	day            uint16
	halted         bool
	dayCarry       bool

	latched [5]uint8
	last    time.Time
}

// advance folds wall-clock time elapsed since the previous call into the
// counters. Nothing moves while the halt flag is set.
func (r *rtcClock) advance() {
	now := time.Now()
	if r.halted {
		r.last = now
		return
	}
	elapsed := int64(now.Sub(r.last) / time.Second)
	r.last = r.last.Add(time.Duration(elapsed) * time.Second)

	total := int64(r.sec) + elapsed
	r.sec = uint8(total % 60)
	total = int64(r.min) + total/60
	r.min = uint8(total % 60)
	total = int64(r.hour) + total/60
	r.hour = uint8(total % 24)
	total = int64(r.day) + total/24
	r.day = uint16(total & 0x1ff)
	if total > 0x1ff {
		r.dayCarry = true
	}
}

func (r *rtcClock) control() uint8 {
	v := uint8(r.day >> 8)
	if r.halted {
		v |= 0x40
	}
	if r.dayCarry {
		v |= 0x80
	}
	return v
}

func (r *rtcClock) latch() {
	r.advance()
	r.latched = [5]uint8{r.sec, r.min, r.hour, uint8(r.day), r.control()}
}

func (r *rtcClock) read(sel int) uint8 {
	return r.latched[sel-0x08]
}

func (r *rtcClock) write(sel int, val uint8) {
	r.advance()
	switch sel {
	case 0x08:
		r.sec = val & 0x3f
	case 0x09:
		r.min = val & 0x3f
	case 0x0a:
		r.hour = val & 0x1f
	case 0x0b:
		r.day = r.day&0x100 | uint16(val)
	case 0x0c:
		r.day = r.day&0x0ff | uint16(val&0x01)<<8
		r.halted = val&0x40 != 0
		r.dayCarry = val&0x80 != 0
	}
	// refresh the latched view so a read-back sees the write
	r.latch()
}
