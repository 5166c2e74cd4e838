//go:build !sdl2 && !ebiten

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kikiginanjar16/emu-gb/gb"
	"github.com/kikiginanjar16/emu-gb/ppu"
)

// The default build is headless: it runs the machine as fast as the host
// allows, which is what the test-ROM and batch workflows want. Build with
// -tags sdl2 or -tags ebiten for a window.

var flagFrames = flag.Uint("frames", 0, "stop after this many frames (0 runs until an error)")

func run() error {
	flag.Parse()

	stopProfiling, err := startProfiling()
	if err != nil {
		return err
	}
	defer stopProfiling()

	machine, save, err := newMachine()
	if err != nil {
		return err
	}
	defer func() {
		if err := save.persist(machine); err != nil {
			log.Printf("persist save: %v", err)
		}
	}()

	var frames uint
	err = machine.Run(func() bool {
		return *flagFrames > 0 && frames >= *flagFrames
	}, func(*ppu.Frame) error {
		frames++
		return nil
	})
	if errors.Is(err, gb.ErrLoopDetected) {
		// The expected way for a test ROM to "finish".
		fmt.Fprintf(os.Stderr, "%v after %d frames\n", err, frames)
		return nil
	}
	return err
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
