// Package display shows a captured frame in a window.
package display

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Preview renders one still image, letterboxed to the window, until the
// window is closed or Escape is pressed.
type Preview struct {
	frame       *image.RGBA
	ebitenImage *ebiten.Image
	title       string
}

// NewPreview creates a preview for img.
func NewPreview(img *image.RGBA, title string) *Preview {
	return &Preview{frame: img, title: title}
}

// Run opens the window and blocks. Must be called from the main goroutine.
func (p *Preview) Run() error {
	w, h := windowSize(p.frame.Bounds().Dx(), p.frame.Bounds().Dy())
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(p.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	err := ebiten.RunGame(p)
	if err == ebiten.Termination {
		return nil
	}
	return err
}

// --- ebiten.Game interface ---

func (p *Preview) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	return nil
}

func (p *Preview) Draw(screen *ebiten.Image) {
	if p.ebitenImage == nil {
		p.ebitenImage = ebiten.NewImage(p.frame.Bounds().Dx(), p.frame.Bounds().Dy())
		p.ebitenImage.WritePixels(p.frame.Pix)
	}

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	fw, fh := float64(p.frame.Bounds().Dx()), float64(p.frame.Bounds().Dy())
	scale, offsetX, offsetY := aspectFitTransform(float64(sw), float64(sh), fw, fh)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(p.ebitenImage, op)
}

func (p *Preview) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// aspectFitTransform returns scale and offsets to fit frame into view with letterboxing.
func aspectFitTransform(viewW, viewH, frameW, frameH float64) (scale, offsetX, offsetY float64) {
	scale = math.Min(viewW/frameW, viewH/frameH)
	offsetX = (viewW - frameW*scale) / 2
	offsetY = (viewH - frameH*scale) / 2
	return
}

// maxWindow is the largest initial window edge.
const maxWindow = 1280

// windowSize shrinks w x h to fit within maxWindow, keeping the aspect ratio.
func windowSize(w, h int) (int, int) {
	if w <= maxWindow && h <= maxWindow {
		return w, h
	}
	scale, _, _ := aspectFitTransform(maxWindow, maxWindow, float64(w), float64(h))
	return int(float64(w) * scale), int(float64(h) * scale)
}
