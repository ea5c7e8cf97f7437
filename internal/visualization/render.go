// Package visualization draws simulator frames and persists snapshots.
// It works headless; the live package puts the same pictures in a window.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sync"

	"socialnav-sim/internal/field"
	"socialnav-sim/internal/simulation"

	"github.com/fogleman/gg"
)

const (
	DefaultCanvasSize = 800
	agentRadius       = 6.0
	targetRadius      = 8.0
	personRadius      = 7.0
	headingLength     = 18.0
)

var (
	routeColor  = color.RGBA{40, 40, 40, 255}
	agentColor  = color.RGBA{0, 90, 255, 255}
	targetColor = color.RGBA{0, 170, 60, 255}
	personColor = color.RGBA{120, 0, 160, 255}
)

// Renderer implements simulation.Observer. Redraw only records the frame;
// pictures are drawn when a snapshot or the latest image is requested.
type Renderer struct {
	outputDir  string
	canvasSize int

	mu         sync.Mutex
	frame      simulation.Frame
	version    uint64
	background *image.RGBA
	bgField    *field.Field
}

// NewRenderer creates a renderer writing snapshots under outputDir.
func NewRenderer(outputDir string, canvasSize int) (*Renderer, error) {
	if canvasSize <= 0 {
		canvasSize = DefaultCanvasSize
	}
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}
	return &Renderer{outputDir: outputDir, canvasSize: canvasSize}, nil
}

// Redraw satisfies simulation.Observer.
func (r *Renderer) Redraw(frame simulation.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame = frame
	r.version++
}

// Snapshot satisfies simulation.Observer: it draws frame and writes it as a
// PNG named name inside the output directory.
func (r *Renderer) Snapshot(frame simulation.Frame, name string) error {
	r.mu.Lock()
	dc := r.draw(frame)
	r.mu.Unlock()

	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.outputDir, name)
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", path, err)
	}
	return nil
}

// Version returns the number of frames recorded so far.
func (r *Renderer) Version() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version
}

// Latest draws the most recently recorded frame and returns it with its
// version, which increases on every Redraw.
func (r *Renderer) Latest() (image.Image, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draw(r.frame).Image(), r.version
}

// draw must be called with r.mu held.
func (r *Renderer) draw(frame simulation.Frame) *gg.Context {
	proj := NewProjector(frame.GridSize, r.canvasSize)
	if r.background == nil || r.bgField != frame.Field {
		r.background = proj.heatmap(frame.Field)
		r.bgField = frame.Field
	}

	dc := gg.NewContext(r.canvasSize, r.canvasSize)
	dc.DrawImage(r.background, 0, 0)

	for _, o := range frame.Obstacles {
		x, y := proj.WorldToScreen(o.GetPosition())
		theta := o.Orientation() * math.Pi / 180
		dc.SetColor(personColor)
		dc.DrawCircle(x, y, personRadius)
		dc.Fill()
		dc.SetLineWidth(2)
		dc.DrawLine(x, y, x+headingLength*math.Cos(theta), y+headingLength*math.Sin(theta))
		dc.Stroke()
	}

	if len(frame.Route) > 0 {
		dc.SetColor(routeColor)
		dc.SetLineWidth(1.5)
		dc.MoveTo(proj.WorldToScreen(frame.Route[0]))
		for _, p := range frame.Route[1:] {
			dc.LineTo(proj.WorldToScreen(p))
		}
		dc.Stroke()
	}

	tx, ty := proj.WorldToScreen(frame.Target)
	dc.SetColor(targetColor)
	dc.DrawCircle(tx, ty, targetRadius)
	dc.Fill()

	ax, ay := proj.WorldToScreen(frame.Position)
	dc.SetColor(agentColor)
	dc.DrawCircle(ax, ay, agentRadius)
	dc.Fill()

	dc.SetColor(color.Black)
	dc.DrawString(fmt.Sprintf("Episode %d  Step %d", frame.Episode, frame.Step), 10, 20)
	return dc
}
