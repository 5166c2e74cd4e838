package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/kikiginanjar16/emu-gb/gb"
)

var (
	flagTrace       = flag.Bool("trace", false, "log every executed instruction (slow)")
	flagSilent      = flag.Bool("silent", false, "suppress non-trace logging")
	flagNoLog       = flag.Bool("no-log", false, "discard all log output")
	flagDetectLoop  = flag.Bool("detect-loop", false, "stop when the CPU spins on a dead branch loop")
	flagPrintSerial = flag.Bool("print-serial", false, "echo link-port output to stdout")
	flagUnlockVRAM  = flag.Bool("unlock-vram", false, "keep VRAM/OAM readable in every PPU mode")
)

func usageError() error {
	return fmt.Errorf("usage: %s [flags] ROM-PATH", os.Args[0])
}

// newMachine builds a GameBoy from the ROM path on the command line, seeding
// external RAM from an adjacent .sav file when one exists.
func newMachine() (*gb.GameBoy, *saveFile, error) {
	if flag.NArg() < 1 {
		return nil, nil, usageError()
	}
	romPath := flag.Arg(0)
	rom, err := os.ReadFile(romPath)
	if err != nil {
		return nil, nil, err
	}

	save := &saveFile{path: romPath + ".sav"}
	savedRAM, err := save.load()
	if err != nil {
		return nil, nil, err
	}

	var echo io.Writer
	if *flagPrintSerial {
		echo = os.Stdout
	}
	machine, err := gb.New(rom, gb.Options{
		DisableLog:   *flagNoLog,
		Silent:       *flagSilent,
		Trace:        *flagTrace,
		BreakOnLoop:  *flagDetectLoop,
		EchoSerial:   echo,
		UnlockedVRAM: *flagUnlockVRAM,
	}, savedRAM)
	if err != nil {
		return nil, nil, err
	}
	return machine, save, nil
}

// saveFile persists battery-backed cartridge RAM next to the ROM.
type saveFile struct {
	path string
}

func (s *saveFile) load() ([]uint8, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func (s *saveFile) persist(machine *gb.GameBoy) error {
	ram := machine.BatteryRAM()
	if ram == nil {
		return nil
	}
	return os.WriteFile(s.path, ram, 0644)
}

// startProfiling honors EMUGB_CPUPROFILE. The returned stop function is
// always safe to call.
func startProfiling() (func(), error) {
	filename := os.Getenv("EMUGB_CPUPROFILE")
	if filename == "" {
		return func() {}, nil
	}
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(file); err != nil {
		file.Close()
		return nil, err
	}
	return func() {
		pprof.StopCPUProfile()
		file.Close()
	}, nil
}
