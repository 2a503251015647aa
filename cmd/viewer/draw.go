package main

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"islandwar/internal/game"
	"islandwar/internal/geom"
)

var (
	waterCol = color.RGBA{R: 18, G: 32, B: 48, A: 255}
	landCol  = color.RGBA{R: 60, G: 96, B: 60, A: 255}
	ridgeCol = color.RGBA{R: 110, G: 104, B: 88, A: 255}
	goldCol  = color.RGBA{R: 212, G: 180, B: 60, A: 255}
	oilCol   = color.RGBA{R: 70, G: 70, B: 80, A: 255}

	playerCols = []color.RGBA{
		{R: 200, G: 70, B: 50, A: 255},
		{R: 60, G: 110, B: 220, A: 255},
		{R: 70, G: 180, B: 90, A: 255},
		{R: 200, G: 160, B: 60, A: 255},
	}
)

func ownerColor(owner game.PlayerID) color.RGBA {
	if owner < 0 {
		return color.RGBA{R: 140, G: 140, B: 140, A: 255}
	}
	return playerCols[int(owner)%len(playerCols)]
}

func (v *viewer) px(x float64) float32 { return float32(x * v.scale) }

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(waterCol)

	v.drawTerrain(screen)
	v.drawLinks(screen)
	v.drawBuildings(screen)
	v.drawUnits(screen)
	v.drawHUD(screen)
}

func (v *viewer) drawTerrain(screen *ebiten.Image) {
	for i := range v.w.Map.Islands {
		isl := &v.w.Map.Islands[i]
		v.strokePoly(screen, isl.Poly, 2, landCol)
		c := isl.Poly.Centroid()
		// Ownership marker at the island center.
		if st := v.w.Island(i); st != nil && st.Owner != game.NeutralPlayer {
			col := ownerColor(st.Owner)
			col.A = 70
			vector.FillCircle(screen, v.px(c.X), v.px(c.Y), 28, col, false)
		}
		for _, sp := range isl.Spots {
			vector.FillCircle(screen, v.px(sp.Pos.X), v.px(sp.Pos.Y), 5, goldCol, false)
		}
	}
	for _, hg := range v.w.Map.HighGround {
		v.strokePoly(screen, hg, 1.5, ridgeCol)
	}
	for _, sp := range v.w.Map.OilSpots {
		vector.FillCircle(screen, v.px(sp.Pos.X), v.px(sp.Pos.Y), 5, oilCol, false)
	}
}

func (v *viewer) strokePoly(screen *ebiten.Image, poly geom.Polygon, width float32, col color.RGBA) {
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		vector.StrokeLine(screen, v.px(a.X), v.px(a.Y), v.px(b.X), v.px(b.Y), width, col, false)
	}
}

func (v *viewer) drawLinks(screen *ebiten.Image) {
	for _, l := range v.w.Links() {
		a := v.w.Building(l.A)
		b := v.w.Building(l.B)
		if a == nil || b == nil {
			continue
		}
		col := ownerColor(l.Owner)
		width := float32(2)
		if l.Kind == game.LinkBridge {
			col = color.RGBA{R: 150, G: 120, B: 80, A: 255}
			width = 5
		}
		vector.StrokeLine(screen, v.px(a.Pos.X), v.px(a.Pos.Y), v.px(b.Pos.X), v.px(b.Pos.Y), width, col, false)
		if l.Kind == game.LinkGate {
			mid := a.Pos.Lerp(b.Pos, 0.5)
			vector.FillRect(screen, v.px(mid.X)-3, v.px(mid.Y)-3, 6, 6, color.RGBA{R: 230, G: 230, B: 230, A: 255}, false)
		}
	}
}

func (v *viewer) drawBuildings(screen *ebiten.Image) {
	for _, b := range v.w.Buildings() {
		col := ownerColor(b.Owner)
		r := v.px(b.Type.Spec().Radius)
		x, y := v.px(b.Pos.X), v.px(b.Pos.Y)
		if b.Constructing() {
			// Sites render hollow with a progress tick.
			vector.StrokeRect(screen, x-r, y-r, r*2, r*2, 1, col, false)
			vector.FillRect(screen, x-r, y+r+1, r*2*float32(b.Progress)/100, 2, col, false)
			continue
		}
		vector.FillRect(screen, x-r, y-r, r*2, r*2, col, false)
		if b.Type == game.BuildingHQ {
			vector.StrokeRect(screen, x-r-2, y-r-2, r*2+4, r*2+4, 1, color.RGBA{R: 255, G: 255, B: 255, A: 160}, false)
		}
		if b.Upgraded {
			vector.FillCircle(screen, x, y-r-3, 2, color.RGBA{R: 255, G: 255, B: 255, A: 220}, false)
		}
		v.healthBar(screen, x, y-r-6, r*2, b.Health/b.Type.Spec().MaxHealth)
	}
}

func (v *viewer) drawUnits(screen *ebiten.Image) {
	for _, u := range v.w.Units() {
		col := ownerColor(u.Owner)
		r := v.px(u.Type.Spec().Radius)
		if r < 2 {
			r = 2
		}
		x, y := v.px(u.Pos.X), v.px(u.Pos.Y)
		vector.FillCircle(screen, x, y, r, col, false)
		if u.Status == game.StatusFighting {
			vector.StrokeCircle(screen, x, y, r+2, 1, color.RGBA{R: 255, G: 90, B: 60, A: 200}, false)
		}
		if u.Health < u.Type.Spec().MaxHealth {
			v.healthBar(screen, x-r, y-r-4, r*2, u.Health/u.Type.Spec().MaxHealth)
		}
	}
}

func (v *viewer) healthBar(screen *ebiten.Image, x, y, w float32, frac float64) {
	if frac < 0 {
		frac = 0
	}
	vector.FillRect(screen, x, y, w, 2, color.RGBA{R: 40, G: 40, B: 40, A: 200}, false)
	vector.FillRect(screen, x, y, w*float32(frac), 2, color.RGBA{R: 90, G: 210, B: 90, A: 220}, false)
}

func (v *viewer) drawHUD(screen *ebiten.Image) {
	line := fmt.Sprintf("tick=%d speed=%dx", v.w.Tick, v.speed)
	if v.pause {
		line += " [paused: . steps]"
	}
	for _, p := range v.w.Players() {
		line += fmt.Sprintf("  |  %s g=%d o=%d", p.Name, p.Gold, p.Oil)
	}
	if v.w.Over {
		if p := v.w.Player(v.w.Winner); p != nil {
			line += "  |  WINNER: " + p.Name
		}
	}
	if time.Since(v.copiedAt) < 2*time.Second {
		line += "  |  summary copied"
	}
	ebitenutil.DebugPrintAt(screen, line, 8, 4)
	ebitenutil.DebugPrintAt(screen, "space pause | +/- speed | c copy summary", 8, windowH-18)
}
