// Package live shows a visualization.Renderer's latest frame in an ebiten window.
package live

import (
	"fmt"
	"sync/atomic"

	"socialnav-sim/internal/visualization"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Viewer implements ebiten.Game.
type Viewer struct {
	renderer *visualization.Renderer
	size     int
	done     <-chan struct{}

	image   *ebiten.Image
	version uint64
	status  atomic.Value // string
}

// NewViewer creates a viewer of side size pixels. The window closes once done
// is closed.
func NewViewer(r *visualization.Renderer, size int, done <-chan struct{}) *Viewer {
	v := &Viewer{renderer: r, size: size, done: done}
	v.status.Store("")
	return v
}

// SetStatus sets the text overlaid on the window. Safe to call from any goroutine.
func (v *Viewer) SetStatus(s string) {
	v.status.Store(s)
}

// Update is called every tick.
func (v *Viewer) Update() error {
	select {
	case <-v.done:
		return ebiten.Termination
	default:
	}

	if v.image != nil && v.renderer.Version() == v.version {
		return nil
	}
	img, version := v.renderer.Latest()
	if v.image != nil {
		v.image.Deallocate()
	}
	v.image = ebiten.NewImageFromImage(img)
	v.version = version
	return nil
}

// Draw is called every frame to render the simulation.
func (v *Viewer) Draw(screen *ebiten.Image) {
	if v.image != nil {
		screen.DrawImage(v.image, nil)
	}
	msg := fmt.Sprintf("FPS: %.1f, TPS: %.1f\n%s", ebiten.ActualFPS(), ebiten.ActualTPS(), v.status.Load().(string))
	ebitenutil.DebugPrintAt(screen, msg, 10, 30)
}

// Layout is called when the window size changes.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.size, v.size
}

// Run opens the window and blocks until it is closed or done is closed.
// It must be called from the main goroutine.
func (v *Viewer) Run(title string) error {
	ebiten.SetWindowSize(v.size, v.size)
	ebiten.SetWindowTitle(title)
	ebiten.SetTPS(30)
	if err := ebiten.RunGame(v); err != nil {
		return fmt.Errorf("viewer stopped: %w", err)
	}
	return nil
}
