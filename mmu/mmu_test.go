package mmu

import (
	"testing"

	"github.com/kikiginanjar16/emu-gb/bus"
	"github.com/kikiginanjar16/emu-gb/interrupt"
	"github.com/kikiginanjar16/emu-gb/ppu"
	"github.com/kikiginanjar16/emu-gb/timer"
	"github.com/kikiginanjar16/emu-gb/util"
)

// stubSerial/stubJoypad keep the IO window total without dragging those
// packages into mmu's tests.
type stubSerial struct{ sb, sc uint8 }

func (s *stubSerial) SB() uint8 { return s.sb }
func (s *stubSerial) SetSB(val uint8) { s.sb = val }
func (s *stubSerial) SC() uint8 { return s.sc }
func (s *stubSerial) SetSC(val uint8) { s.sc = val }

type stubJoypad struct{ val uint8 }

func (j *stubJoypad) Get() uint8 { return j.val }
func (j *stubJoypad) Set(val uint8) { j.val = val }

func newTestMMU(t *testing.T, unlockedVRAM bool) (*MMU, *bus.Bus) {
	t.Helper()
	rom := buildROM(0x00, 0, 0)
	cart, err := NewCartridge(rom, nil)
	if err != nil {
		t.Fatal(err)
	}
	b := bus.NewBus()
	lg := util.NewLogger(nil, false, true)
	m := NewMMU(b, cart, lg, unlockedVRAM)
	b.Register(interrupt.NewController(), m, ppu.NewPPU(b, lg), timer.NewTimer(b), &stubSerial{}, &stubJoypad{})
	return m, b
}

func TestWRAMAndEcho(t *testing.T) {
	m, _ := newTestMMU(t, false)
	m.Set8(0xc123, 0x42)
	if m.Get8(0xe123) != 0x42 {
		t.Fatalf("echo read %02x", m.Get8(0xe123))
	}
	m.Set8(0xedcb, 0x24)
	if m.Get8(0xcdcb) != 0x24 {
		t.Fatalf("echo write-through %02x", m.Get8(0xcdcb))
	}
}

func TestHRAM(t *testing.T) {
	m, _ := newTestMMU(t, false)
	m.Set8(0xff80, 0x11)
	m.Set8(0xfffe, 0x22)
	if m.Get8(0xff80) != 0x11 || m.Get8(0xfffe) != 0x22 {
		t.Fatal("HRAM lost data")
	}
}

func TestVRAMGating(t *testing.T) {
	m, b := newTestMMU(t, false)

	// fresh PPU is in OAM scan: VRAM open, OAM blocked
	m.Set8(0x8000, 0x42)
	if m.Get8(0x8000) != 0x42 {
		t.Fatalf("VRAM read %02x in mode 2", m.Get8(0x8000))
	}
	m.Set8(0xfe00, 0x42)
	if m.Get8(0xfe00) != 0xff {
		t.Fatal("OAM must be blocked in mode 2")
	}

	// advance into pixel transfer: VRAM blocked too
	b.PPU.(*ppu.PPU).Update(80)
	if b.PPU.Mode() != 3 {
		t.Fatalf("mode %d", b.PPU.Mode())
	}
	if m.Get8(0x8000) != 0xff {
		t.Fatal("VRAM must be blocked in mode 3")
	}
	m.Set8(0x8000, 0x99)
	b.PPU.(*ppu.PPU).Update(289) // into H-Blank
	if m.Get8(0x8000) != 0x42 {
		t.Fatal("blocked write must be dropped")
	}
}

func TestVRAMUnlocked(t *testing.T) {
	m, b := newTestMMU(t, true)
	b.PPU.(*ppu.PPU).Update(80) // mode 3
	m.Set8(0x8000, 0x42)
	if m.Get8(0x8000) != 0x42 {
		t.Fatal("unlocked VRAM must ignore mode gating")
	}
	m.Set8(0xfe00, 0x24)
	if m.Get8(0xfe00) != 0x24 {
		t.Fatal("unlocked OAM must ignore mode gating")
	}
}

func TestLCDOffUnblocks(t *testing.T) {
	m, _ := newTestMMU(t, false)
	m.Set8(0xff40, 0x11) // LCD off
	m.Set8(0xfe00, 0x42)
	if m.Get8(0xfe00) != 0x42 {
		t.Fatal("OAM must be open while the LCD is off")
	}
}

func TestOAMDMA(t *testing.T) {
	m, b := newTestMMU(t, false)
	for i := uint16(0); i < 0xa0; i++ {
		m.Set8(0xc000+i, uint8(i)^0x5a)
	}
	m.Set8(0xff46, 0xc0)
	// read through the PPU directly, the CPU-side window is mode-gated
	for i := uint16(0); i < 0xa0; i++ {
		if got := b.PPU.GetOAM8(i); got != uint8(i)^0x5a {
			t.Fatalf("OAM[%02x]=%02x", i, got)
		}
	}
}

func TestIORouting(t *testing.T) {
	m, b := newTestMMU(t, false)

	m.Set8(0xff47, 0xe4)
	if m.Get8(0xff47) != 0xe4 || b.PPU.BGP() != 0xe4 {
		t.Fatalf("BGP %02x", m.Get8(0xff47))
	}

	m.Set8(0xffff, 0x1f)
	if m.Get8(0xffff) != 0x1f {
		t.Fatalf("IE %02x", m.Get8(0xffff))
	}

	m.Set8(0xff0f, 0x01)
	if m.Get8(0xff0f) != 0xe1 {
		t.Fatalf("IF %02x, upper bits read 1", m.Get8(0xff0f))
	}

	// a DIV write resets, regardless of value
	b.Timer.(*timer.Timer).Update(512)
	m.Set8(0xff04, 0x77)
	if m.Get8(0xff04) != 0x00 {
		t.Fatalf("DIV %02x after reset", m.Get8(0xff04))
	}
}

func TestUnmappedIO(t *testing.T) {
	m, _ := newTestMMU(t, false)
	if m.Get8(0xff4c) != 0xff {
		t.Fatalf("open bus read %02x", m.Get8(0xff4c))
	}
	m.Set8(0xff4c, 0x12) // dropped, must not panic
	if m.Get8(0xff7f) != 0xff {
		t.Fatalf("open bus read %02x", m.Get8(0xff7f))
	}
}

func TestNotUsableRegion(t *testing.T) {
	m, _ := newTestMMU(t, false)
	m.Set8(0xff40, 0x11) // LCD off so the region is not OAM-blocked
	m.Set8(0xfea0, 0x42)
	if m.Get8(0xfea0) != 0x00 {
		t.Fatalf("read %02x from the unusable region", m.Get8(0xfea0))
	}
}
