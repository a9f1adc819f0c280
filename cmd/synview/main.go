// Command synview opens a live preview window for a Synthesis script. Each
// frame it re-executes the program against the software renderer, advances
// the deterministic audio feed, and blits the framebuffer to the screen.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"gosynth/pkg/compiler"
	"gosynth/pkg/graphics"
	"gosynth/pkg/runtime"
)

const (
	renderWidth  = 320
	renderHeight = 240
	windowScale  = 2
)

type Game struct {
	prog    *compiler.Program
	interp  *runtime.Interpreter
	engine  *graphics.Engine
	canvas  *ebiten.Image // reused render-size bitmap
	execErr error
}

func (g *Game) Update() error {
	if err := g.interp.ExecuteFrame(g.prog); err != nil {
		// Surface the script error and close the window.
		g.execErr = err
		return err
	}
	g.engine.Advance()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.canvas == nil {
		g.canvas = ebiten.NewImage(renderWidth, renderHeight)
	}

	g.canvas.WritePixels(g.engine.Framebuffer().RGBA())

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(windowScale, windowScale)
	screen.DrawImage(g.canvas, op)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return renderWidth * windowScale, renderHeight * windowScale
}

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("Usage: %s <script.syn>\n", os.Args[0])
		os.Exit(2)
	}
	filename := os.Args[1]
	if !strings.HasSuffix(filename, ".syn") {
		log.Fatal("Synthesis files must have a .syn extension")
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		log.Fatalf("Failed to read source file: %v", err)
	}

	prog, err := compiler.Parse(string(source))
	if err != nil {
		log.Fatalf("Parsing failed: %v", err)
	}

	engine := graphics.NewEngine(renderWidth, renderHeight)
	game := &Game{
		prog:   prog,
		interp: runtime.NewWithRenderer(engine),
		engine: engine,
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(renderWidth*windowScale, renderHeight*windowScale)
	ebiten.SetWindowTitle("Synthesis - " + filename)

	if err := ebiten.RunGame(game); err != nil {
		if game.execErr != nil {
			log.Fatalf("Script failed: %v", game.execErr)
		}
		log.Fatal(err)
	}
}
