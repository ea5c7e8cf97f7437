package visualization

import (
	"image"
	"image/color"

	"socialnav-sim/internal/common"
	"socialnav-sim/internal/field"
)

// Projector maps grid coordinates onto a square canvas of side canvasSize pixels.
// Grid x runs left to right and grid y top to bottom.
type Projector struct {
	gridSize   int
	canvasSize int
	scale      float64
}

// NewProjector creates a projector for a gridSize grid drawn on canvasSize pixels.
func NewProjector(gridSize, canvasSize int) *Projector {
	scale := 1.0
	if gridSize > 0 {
		scale = float64(canvasSize) / float64(gridSize)
	}
	return &Projector{gridSize: gridSize, canvasSize: canvasSize, scale: scale}
}

// WorldToScreen converts a grid position to canvas coordinates.
func (p *Projector) WorldToScreen(v common.Vector) (float64, float64) {
	return v.X * p.scale, v.Y * p.scale
}

// Scale returns the number of pixels per grid unit.
func (p *Projector) Scale() float64 { return p.scale }

// heatmap renders f at canvas resolution: white where the potential is zero,
// shading to red at the field maximum.
func (p *Projector) heatmap(f *field.Field) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.canvasSize, p.canvasSize))
	if f == nil {
		return img
	}
	for py := 0; py < p.canvasSize; py++ {
		y := min(int(float64(py)/p.scale), f.Size()-1)
		for px := 0; px < p.canvasSize; px++ {
			x := min(int(float64(px)/p.scale), f.Size()-1)
			c := uint8(f.Normalized(x, y) * 255)
			img.SetRGBA(px, py, color.RGBA{255, 255 - c, 255 - c, 255})
		}
	}
	return img
}
