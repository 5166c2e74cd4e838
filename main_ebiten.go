//go:build ebiten

package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/kikiginanjar16/emu-gb/constant"
	"github.com/kikiginanjar16/emu-gb/gb"
	"github.com/kikiginanjar16/emu-gb/util"
	"github.com/kikiginanjar16/emu-gb/window"
)

type Game struct {
	machine *gb.GameBoy
	wind    *window.EbitenWindow
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return constant.LCD_WIDTH, constant.LCD_HEIGHT
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	var direction, action uint8
	direction |= util.BoolToU8(ebiten.IsKeyPressed(ebiten.KeyW)) << constant.DIR_UP
	direction |= util.BoolToU8(ebiten.IsKeyPressed(ebiten.KeyA)) << constant.DIR_LEFT
	direction |= util.BoolToU8(ebiten.IsKeyPressed(ebiten.KeyD)) << constant.DIR_RIGHT
	direction |= util.BoolToU8(ebiten.IsKeyPressed(ebiten.KeyS)) << constant.DIR_DOWN
	action |= util.BoolToU8(ebiten.IsKeyPressed(ebiten.KeyK)) << constant.ACT_A
	action |= util.BoolToU8(ebiten.IsKeyPressed(ebiten.KeyJ)) << constant.ACT_B
	action |= util.BoolToU8(ebiten.IsKeyPressed(ebiten.KeyEnter)) << constant.ACT_START
	action |= util.BoolToU8(ebiten.IsKeyPressed(ebiten.KeySpace)) << constant.ACT_SELECT
	g.machine.SetInput(direction, action)

	frame, err := g.machine.RunFrame()
	if err != nil {
		return err
	}
	return g.wind.DrawFrame(frame)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.WritePixels(g.wind.Render())
}

func runEbiten() error {
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

	window.EbitenInitialize(machine.Title())
	game := &Game{
		machine: machine,
		wind:    window.NewEbitenWindow(),
	}
	return ebiten.RunGame(game)
}

func main() {
	if err := runEbiten(); err != nil {
		log.Fatal(err)
	}
}
