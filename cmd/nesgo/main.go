// Command nesgo runs the NES emulator core against a ROM file, rendering
// through ebiten.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"nesgo/internal/console"
	"nesgo/internal/input"
	"nesgo/internal/version"
)

const (
	screenWidth  = 256
	screenHeight = 240
)

func main() {
	var (
		romFlag     = flag.String("rom", "", "path to an iNES ROM file")
		scale       = flag.Int("scale", 1, "host-side integer upscaling factor")
		versionFlag = flag.Bool("version", false, "show version information")
	)
	flag.Usage = printUsage
	flag.Parse()

	if *versionFlag {
		version.PrintBuildInfo()
		os.Exit(0)
	}

	rom := *romFlag
	if rom == "" && flag.NArg() > 0 {
		rom = flag.Arg(0)
	}
	if rom == "" {
		printUsage()
		os.Exit(1)
	}
	if *scale < 1 {
		*scale = 1
	}

	fmt.Printf("nesgo - Go NES Emulator Starting (%s)...\n", version.GetVersion())

	nes, err := console.Load(rom)
	if err != nil {
		log.Fatalf("nesgo: failed to load %s: %v", rom, err)
	}

	game := newGame(nes)
	ebiten.SetWindowSize(screenWidth*(*scale), screenHeight*(*scale))
	ebiten.SetWindowTitle(fmt.Sprintf("nesgo - %s", rom))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatalf("nesgo: %v", err)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: nesgo [-scale N] [-version] (-rom PATH | PATH)")
	flag.PrintDefaults()
}

// game implements ebiten.Game: it steps one emulated frame per Update call
// and blits the core's BGR24 frame buffer into screen on Draw.
type game struct {
	nes   *console.Console
	frame *ebiten.Image
	keys  [2]map[ebiten.Key]input.Button
}

func newGame(nes *console.Console) *game {
	return &game{
		nes:   nes,
		frame: ebiten.NewImage(screenWidth, screenHeight),
		keys: [2]map[ebiten.Key]input.Button{
			{
				ebiten.KeyZ:          input.A,
				ebiten.KeyX:          input.B,
				ebiten.KeyShift:      input.Select,
				ebiten.KeyEnter:      input.Start,
				ebiten.KeyArrowUp:    input.Up,
				ebiten.KeyArrowDown:  input.Down,
				ebiten.KeyArrowLeft:  input.Left,
				ebiten.KeyArrowRight: input.Right,
			},
		},
	}
}

func (g *game) Update() error {
	for key, button := range g.keys[0] {
		g.nes.SetButton(0, button, ebiten.IsKeyPressed(key))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	frame := g.nes.RunFrame()
	g.frame.WritePixels(bgrToRGBA(frame))
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	op := &ebiten.DrawImageOptions{}
	screen.DrawImage(g.frame, op)
	ebitenutil.DebugPrint(screen, "")
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// bgrToRGBA converts the core's tightly-packed BGR24 frame buffer into the
// RGBA32 ebiten.Image.WritePixels expects.
func bgrToRGBA(bgr []uint8) []uint8 {
	rgba := make([]uint8, screenWidth*screenHeight*4)
	for i := 0; i < screenWidth*screenHeight; i++ {
		b, g, r := bgr[i*3], bgr[i*3+1], bgr[i*3+2]
		rgba[i*4+0] = r
		rgba[i*4+1] = g
		rgba[i*4+2] = b
		rgba[i*4+3] = 0xFF
	}
	return rgba
}
