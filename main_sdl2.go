//go:build sdl2

package main

import (
	"flag"
	"log"

	"github.com/kikiginanjar16/emu-gb/constant"
	"github.com/kikiginanjar16/emu-gb/gb"
	"github.com/kikiginanjar16/emu-gb/window"
)

func runSDL2() error {
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

	if err := window.SDLInitialize(); err != nil {
		return err
	}
	wind, err := window.NewSDLWindow(machine.Title())
	if err != nil {
		return err
	}
	return mainLoop(machine, wind)
}

// mainLoop is backend-agnostic: any window.Window with a host event queue
// can drive it.
func mainLoop(machine *gb.GameBoy, wind window.Window) error {
	synchronizer := window.NewTimeSynchronizer(constant.FPS)
	for {
		escape, event := wind.HandleEvents()
		if escape {
			return nil
		}
		machine.SetInput(event.Direction, event.Action)

		frame, err := machine.RunFrame()
		if err != nil {
			return err
		}
		if err := wind.DrawFrame(frame); err != nil {
			return err
		}
		synchronizer.MaySleep()
	}
}

func main() {
	if err := runSDL2(); err != nil {
		log.Fatal(err)
	}
}
