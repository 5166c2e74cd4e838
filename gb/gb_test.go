package gb

import (
	"errors"
	"testing"

	"github.com/kikiginanjar16/emu-gb/constant"
	"github.com/kikiginanjar16/emu-gb/cpu"
	"github.com/kikiginanjar16/emu-gb/ppu"
)

// buildROM assembles a 32KB no-MBC-by-default image with code placed at the
// 0x0100 entry point.
func buildROM(catType, ramSizeCode uint8, code []uint8) []uint8 {
	rom := make([]uint8, 0x8000)
	copy(rom[0x134:], "GBTEST")
	rom[0x147] = catType
	rom[0x149] = ramSizeCode
	copy(rom[0x100:], code)
	return rom
}

func TestSerialProgram(t *testing.T) {
	// Sends "OK" over the link port, pausing long enough for each transfer
	// to complete, then parks in a dead loop.
	code := []uint8{
		0x3e, 'O', // LD A, 'O'
		0xe0, 0x01, // LDH (SB), A
		0x3e, 0x81, // LD A, 0x81
		0xe0, 0x02, // LDH (SC), A
		0x06, 0x00, // LD B, 0
		0x05,       // DEC B
		0x20, 0xfd, // JR NZ, -3
		0x3e, 'K',
		0xe0, 0x01,
		0x3e, 0x81,
		0xe0, 0x02,
		0x06, 0x00,
		0x05,
		0x20, 0xfd,
		0x18, 0xfe, // JR -2
	}
	machine, err := New(buildROM(0x00, 0, code), Options{DisableLog: true, BreakOnLoop: true}, nil)
	if err != nil {
		t.Fatal(err)
	}

	err = machine.Run(func() bool { return false }, nil)
	if !errors.Is(err, cpu.ErrLoopDetected) {
		t.Fatalf("expected loop detection, got %v", err)
	}
	if machine.SerialOutput() != "OK" {
		t.Fatalf("serial output %q", machine.SerialOutput())
	}
}

func TestRunFrame(t *testing.T) {
	machine, err := New(buildROM(0x00, 0, []uint8{0x18, 0xfe}), Options{DisableLog: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		frame, err := machine.RunFrame()
		if err != nil {
			t.Fatal(err)
		}
		if frame == nil {
			t.Fatal("nil frame")
		}
	}
}

func TestRunFrameWithLCDOff(t *testing.T) {
	// Turns the LCD off and spins; RunFrame must still return a blank frame
	// per frame-length of emulated time.
	code := []uint8{
		0x3e, 0x11, // LD A, 0x11
		0xe0, 0x40, // LDH (LCDC), A
		0x18, 0xfe, // JR -2
	}
	machine, err := New(buildROM(0x00, 0, code), Options{DisableLog: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	frame, err := machine.RunFrame()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < constant.LCD_WIDTH*constant.LCD_HEIGHT; i++ {
		if frame.Pix()[i] != 0 {
			t.Fatalf("pixel %d = %d, expected a blank frame", i, frame.Pix()[i])
		}
	}
}

func TestRunStopsMidFrame(t *testing.T) {
	machine, err := New(buildROM(0x00, 0, []uint8{0x18, 0xfe}), Options{DisableLog: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Cancel long before the first frame completes; Run must still return.
	steps := 0
	frames := 0
	err = machine.Run(func() bool {
		steps++
		return steps > 10
	}, func(*ppu.Frame) error {
		frames++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if frames != 0 {
		t.Fatalf("%d frames completed in 10 steps", frames)
	}
}

func TestRunChecksCloseEveryStep(t *testing.T) {
	machine, err := New(buildROM(0x00, 0, []uint8{0x18, 0xfe}), Options{DisableLog: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	checks := 0
	frames := 0
	err = machine.Run(func() bool {
		checks++
		return frames >= 1
	}, func(*ppu.Frame) error {
		frames++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	// JR -2 is 12 ticks, so one 70224-tick frame is ~5852 steps; one check
	// per frame would show up here as a handful.
	if checks < 5000 {
		t.Fatalf("shouldClose consulted %d times over one frame", checks)
	}
}

func TestBatteryRAMPersistence(t *testing.T) {
	// Enables external RAM and writes a marker byte.
	code := []uint8{
		0x3e, 0x0a, // LD A, 0x0a
		0xea, 0x00, 0x00, // LD (0x0000), A ; RAM enable
		0x3e, 0x5a, // LD A, 0x5a
		0xea, 0x00, 0xa0, // LD (0xa000), A
		0x18, 0xfe, // JR -2
	}
	rom := buildROM(0x03, 0x02, code) // MBC1+RAM+BATTERY, 8KB
	machine, err := New(rom, Options{DisableLog: true, BreakOnLoop: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := machine.Run(func() bool { return false }, nil); !errors.Is(err, cpu.ErrLoopDetected) {
		t.Fatalf("expected loop detection, got %v", err)
	}

	ram := machine.BatteryRAM()
	if len(ram) != 8*1024 || ram[0] != 0x5a {
		t.Fatalf("battery RAM len=%d ram[0]=%02x", len(ram), ram[0])
	}

	snapshot := make([]uint8, len(ram))
	copy(snapshot, ram)
	restored, err := New(rom, Options{DisableLog: true}, snapshot)
	if err != nil {
		t.Fatal(err)
	}
	if restored.BatteryRAM()[0] != 0x5a {
		t.Fatalf("restored RAM[0]=%02x", restored.BatteryRAM()[0])
	}
}

func TestSavedRAMSizeMismatch(t *testing.T) {
	rom := buildROM(0x03, 0x02, nil)
	if _, err := New(rom, Options{DisableLog: true}, make([]uint8, 100)); err == nil {
		t.Fatal("mismatched saved RAM accepted")
	}
}

func TestTitle(t *testing.T) {
	machine, err := New(buildROM(0x00, 0, nil), Options{DisableLog: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if machine.Title() != "GBTEST" {
		t.Fatalf("title %q", machine.Title())
	}
}

func TestSetInput(t *testing.T) {
	machine, err := New(buildROM(0x00, 0, []uint8{0x18, 0xfe}), Options{DisableLog: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	machine.SetInput(1<<constant.DIR_UP, 0)
	machine.mmu.Set8(0xff00, 0x20) // select the direction nibble
	got := machine.mmu.Get8(0xff00)
	if got != 0xc0|0x20|0x0b {
		t.Fatalf("JOYP=%02x", got)
	}
}

func TestBadROM(t *testing.T) {
	if _, err := New(make([]uint8, 16), Options{DisableLog: true}, nil); err == nil {
		t.Fatal("tiny ROM accepted")
	}
}
