// Command viewer runs a local bot-vs-bot match and renders it. Useful for
// watching agent behavior without standing up a server; the summary report
// can be copied to the clipboard for bug reports.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"islandwar/internal/game"
	"islandwar/internal/worldmap"
)

const (
	windowW = 1600
	windowH = 900
)

type viewer struct {
	w     *game.World
	scale float64
	speed int // ticks per frame
	pause bool

	copiedAt time.Time
}

func newViewer(mapName string, seed int64, diffA, diffB int) *viewer {
	m := worldmap.ByName(mapName)
	w := game.NewWorld(m, game.DefaultTuning(), seed)
	w.AddPlayer("bot-a", true, diffA)
	w.AddPlayer("bot-b", true, diffB)

	scale := windowW / m.Width
	if s := windowH / m.Height; s < scale {
		scale = s
	}
	return &viewer{w: w, scale: scale, speed: 1}
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.pause = !v.pause
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) && v.speed < 16 {
		v.speed *= 2
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) && v.speed > 1 {
		v.speed /= 2
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		if err := clipboard.WriteAll(v.w.Summary()); err == nil {
			v.copiedAt = time.Now()
		}
	}
	if v.pause {
		if inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
			v.w.Step()
		}
		return nil
	}
	for i := 0; i < v.speed; i++ {
		v.w.Step()
	}
	return nil
}

func (v *viewer) Layout(int, int) (int, int) { return windowW, windowH }

func main() {
	var (
		mapName = flag.String("map", "twin-isles", "fixture map name")
		seed    = flag.Int64("seed", 42, "simulation seed")
		diffA   = flag.Int("diff-a", 5, "difficulty of bot A (1-10)")
		diffB   = flag.Int("diff-b", 5, "difficulty of bot B (1-10)")
	)
	flag.Parse()

	ebiten.SetWindowTitle("Island War")
	ebiten.SetWindowSize(windowW, windowH)
	if err := ebiten.RunGame(newViewer(*mapName, *seed, *diffA, *diffB)); err != nil {
		log.Fatal(err)
	}
}
