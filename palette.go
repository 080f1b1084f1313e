package nimbus

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
)

// Palette is a 1-D color ramp sampled by a value normalized into [0,1].
type Palette struct {
	colors []mgl32.Vec3
}

// NewPalette wraps an explicit ramp. At least two entries are required.
func NewPalette(colors []mgl32.Vec3) (*Palette, error) {
	if len(colors) < 2 {
		return nil, fmt.Errorf("palette: need at least 2 colors, got %d", len(colors))
	}
	ramp := make([]mgl32.Vec3, len(colors))
	copy(ramp, colors)
	return &Palette{colors: ramp}, nil
}

// NewGradientPalette builds a two-color ramp, handy for hosts and tests.
func NewGradientPalette(from, to mgl32.Vec3) *Palette {
	return &Palette{colors: []mgl32.Vec3{from, to}}
}

// NewPaletteFromImage resamples an arbitrary image into a ramp of the given
// width. The image is scaled down to width x 1 with bilinear filtering, so
// both horizontal gradient strips and full 2D ramp textures work.
func NewPaletteFromImage(img image.Image, width int) (*Palette, error) {
	if img == nil {
		return nil, fmt.Errorf("palette: nil image")
	}
	if width < 2 {
		return nil, fmt.Errorf("palette: ramp width must be >= 2, got %d", width)
	}

	strip := image.NewRGBA(image.Rect(0, 0, width, 1))
	draw.ApproxBiLinear.Scale(strip, strip.Bounds(), img, img.Bounds(), draw.Src, nil)

	colors := make([]mgl32.Vec3, width)
	for x := 0; x < width; x++ {
		r, g, b, _ := strip.At(x, 0).RGBA()
		colors[x] = mgl32.Vec3{
			float32(r) / 0xffff,
			float32(g) / 0xffff,
			float32(b) / 0xffff,
		}
	}
	return &Palette{colors: colors}, nil
}

// Sample returns the ramp color at u in [0,1], linearly interpolated between
// neighboring entries. u is clamped.
func (p *Palette) Sample(u float32) mgl32.Vec3 {
	if u <= 0 {
		return p.colors[0]
	}
	if u >= 1 {
		return p.colors[len(p.colors)-1]
	}
	f := u * float32(len(p.colors)-1)
	i := int(f)
	frac := f - float32(i)
	a, b := p.colors[i], p.colors[i+1]
	return mgl32.Vec3{
		a.X() + (b.X()-a.X())*frac,
		a.Y() + (b.Y()-a.Y())*frac,
		a.Z() + (b.Z()-a.Z())*frac,
	}
}

// Len returns the number of ramp entries.
func (p *Palette) Len() int { return len(p.colors) }
