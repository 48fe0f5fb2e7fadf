// Package radar draws the HUD radar as an image.
package radar

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"sync"

	"void-arena/internal/game"

	"github.com/fogleman/gg"
)

const (
	DefaultSize = 256
	contactSize = 4.0
	rings       = 4
)

var (
	backgroundColor = color.RGBA{8, 16, 12, 255}
	ringColor       = color.RGBA{40, 120, 70, 255}
	shipColor       = color.RGBA{120, 255, 160, 255}
	damageColor     = color.RGBA{255, 60, 60, 255}

	kindColors = map[string]color.RGBA{
		"scout":   {255, 220, 60, 255},
		"fighter": {255, 140, 40, 255},
		"heavy":   {255, 60, 200, 255},
	}
	unknownColor = color.RGBA{200, 200, 200, 255}
)

// ContactColor returns the blip color for an enemy kind
func ContactColor(kind string) color.RGBA {
	if c, ok := kindColors[kind]; ok {
		return c
	}
	return unknownColor
}

// Renderer draws radar frames into a reused context. Safe for concurrent use.
type Renderer struct {
	mu   sync.Mutex
	size int
	dc   *gg.Context
}

// NewRenderer creates a square renderer; size <= 0 uses DefaultSize
func NewRenderer(size int) *Renderer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Renderer{size: size, dc: gg.NewContext(size, size)}
}

// Size returns the image edge length in pixels
func (r *Renderer) Size() int {
	return r.size
}

// Project maps a contact to pixel coordinates: ship at the center,
// forward up, RadarRange at the edge.
func (r *Renderer) Project(c game.RadarContact) (x, y float64) {
	half := float64(r.size) / 2
	scale := half / game.RadarRange
	return half + c.X*scale, half - c.Forward*scale
}

// EncodePNG renders snap and writes it as PNG. A nil snapshot renders an
// empty scope.
func (r *Renderer) EncodePNG(w io.Writer, snap *game.GameSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.draw(snap)
	if err := r.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode radar png: %w", err)
	}
	return nil
}

// Render returns a copy of the frame for snap
func (r *Renderer) Render(snap *game.GameSnapshot) image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.draw(snap)
	src := r.dc.Image()
	out := image.NewRGBA(src.Bounds())
	for y := 0; y < r.size; y++ {
		for x := 0; x < r.size; x++ {
			out.Set(x, y, src.At(x, y))
		}
	}
	return out
}

func (r *Renderer) draw(snap *game.GameSnapshot) {
	dc := r.dc
	half := float64(r.size) / 2

	dc.SetColor(backgroundColor)
	dc.Clear()

	dc.SetColor(ringColor)
	dc.SetLineWidth(1)
	for i := 1; i <= rings; i++ {
		dc.DrawCircle(half, half, half*float64(i)/rings-1)
		dc.Stroke()
	}
	dc.DrawLine(half, 0, half, float64(r.size))
	dc.DrawLine(0, half, float64(r.size), half)
	dc.Stroke()

	if snap == nil {
		return
	}

	for _, c := range snap.HUD.Radar {
		x, y := r.Project(c)
		dc.SetColor(ContactColor(c.Kind))
		dc.DrawCircle(x, y, contactSize)
		dc.Fill()
	}

	// Ship marker points up; it flashes red while damaged
	if snap.Ship.DamageFlash > 0 {
		dc.SetColor(damageColor)
	} else {
		dc.SetColor(shipColor)
	}
	dc.DrawRegularPolygon(3, half, half, contactSize+2, -math.Pi/2)
	dc.Fill()
}
