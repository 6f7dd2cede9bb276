// Package effects renders jutsu visual effects on top of video frames.
//
// When a jutsu fires, its sprite is composited over the camera stream
// for a short burst with a fade in and out. Jutsu without a sprite
// asset fall back to a text banner.
package effects

import (
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Overlay timing constants
const (
	// EffectDuration is how long a triggered effect stays on screen.
	EffectDuration = 3 * time.Second
	// FadeDuration is the fade in and fade out length at either end.
	FadeDuration = 500 * time.Millisecond
)

// Overlay composites the active jutsu effect onto video frames.
type Overlay struct {
	assetsDir string

	mu        sync.Mutex
	sprites   map[string]gocv.Mat
	activeAt  time.Time
	asset     string
	label     string
	now       func() time.Time
}

// NewOverlay creates an Overlay that loads sprites from assetsDir.
func NewOverlay(assetsDir string) *Overlay {
	return &Overlay{
		assetsDir: assetsDir,
		sprites:   make(map[string]gocv.Mat),
		now:       time.Now,
	}
}

// Trigger starts the effect for a jutsu. asset is the sprite file name
// relative to the assets directory, label the display name used as the
// text fallback. A new trigger replaces any effect still on screen.
func (o *Overlay) Trigger(asset, label string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.activeAt = o.now()
	o.asset = asset
	o.label = label

	if asset != "" {
		if _, ok := o.sprites[asset]; !ok {
			o.loadSpriteLocked(asset)
		}
	}
}

// Active reports whether an effect is currently on screen.
func (o *Overlay) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opacityLocked() > 0
}

// Render composites the active effect onto the frame in place.
// A frame with no active effect passes through untouched.
func (o *Overlay) Render(frame *gocv.Mat) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if frame == nil || frame.Empty() {
		return
	}

	opacity := o.opacityLocked()
	if opacity <= 0 {
		return
	}

	sprite, ok := o.sprites[o.asset]
	if o.asset != "" && ok && !sprite.Empty() {
		o.blendSprite(frame, sprite, opacity)
		return
	}

	o.drawBanner(frame, opacity)
}

// Close releases loaded sprites.
func (o *Overlay) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for name, sprite := range o.sprites {
		sprite.Close()
		delete(o.sprites, name)
	}
}

func (o *Overlay) opacityLocked() float64 {
	if o.activeAt.IsZero() {
		return 0
	}
	return calcOpacity(o.now().Sub(o.activeAt), EffectDuration, FadeDuration)
}

// calcOpacity returns the effect opacity in [0,1] for the time elapsed
// since the trigger: linear fade in, full opacity, linear fade out.
func calcOpacity(elapsed, duration, fade time.Duration) float64 {
	if elapsed < 0 || elapsed >= duration {
		return 0
	}
	if elapsed < fade {
		return float64(elapsed) / float64(fade)
	}
	if remaining := duration - elapsed; remaining < fade {
		return float64(remaining) / float64(fade)
	}
	return 1
}

func (o *Overlay) loadSpriteLocked(asset string) {
	path := filepath.Join(o.assetsDir, asset)
	if _, err := os.Stat(path); err != nil {
		log.Printf("effect sprite %s not found, using text fallback", asset)
		return
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		log.Printf("failed to decode effect sprite %s", asset)
		return
	}
	o.sprites[asset] = mat
}

// blendSprite alpha-blends the sprite into the top-right corner of the
// frame, scaled to a third of the frame width.
func (o *Overlay) blendSprite(frame *gocv.Mat, sprite gocv.Mat, opacity float64) {
	targetWidth := frame.Cols() / 3
	if targetWidth < 1 {
		return
	}
	scale := float64(targetWidth) / float64(sprite.Cols())
	targetHeight := int(float64(sprite.Rows()) * scale)
	if targetHeight < 1 || targetHeight > frame.Rows() {
		return
	}

	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(sprite, &scaled, image.Point{X: targetWidth, Y: targetHeight}, 0, 0, gocv.InterpolationLinear)

	x := frame.Cols() - targetWidth - 10
	if x < 0 {
		x = 0
	}
	roi := frame.Region(image.Rect(x, 10, x+targetWidth, 10+targetHeight))
	defer roi.Close()

	gocv.AddWeighted(scaled, opacity, roi, 1-opacity, 0, &roi)
}

func (o *Overlay) drawBanner(frame *gocv.Mat, opacity float64) {
	text := o.label
	if text == "" {
		return
	}

	intensity := uint8(255 * opacity)
	origin := image.Point{X: 20, Y: 60}
	gocv.PutText(frame, text, origin, gocv.FontHersheySimplex, 1.5,
		color.RGBA{R: intensity, G: intensity, B: 0, A: 0}, 3)
}
