package nimbus

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Frame is the renderer's output target: premultiplied float RGBA, one
// sample per pixel, row-major with row 0 at the top.
type Frame struct {
	Width  int
	Height int
	Pix    []float32 // len = Width*Height*4
}

func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*4),
	}
}

func (f *Frame) Clear() {
	for i := range f.Pix {
		f.Pix[i] = 0
	}
}

func (f *Frame) set(x, y int, c mgl32.Vec4) {
	i := (y*f.Width + x) * 4
	f.Pix[i] = c.X()
	f.Pix[i+1] = c.Y()
	f.Pix[i+2] = c.Z()
	f.Pix[i+3] = c.W()
}

// At returns the premultiplied RGBA sample at (x,y).
func (f *Frame) At(x, y int) mgl32.Vec4 {
	i := (y*f.Width + x) * 4
	return mgl32.Vec4{f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]}
}

// CompositeOver blends the frame over dst with premultiplied src-over.
// dst must match the frame dimensions.
func (f *Frame) CompositeOver(dst *image.RGBA) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > f.Width {
		w = f.Width
	}
	if h > f.Height {
		h = f.Height
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s := f.At(x, y)
			a := clamp01(s.W())
			i := dst.PixOffset(b.Min.X+x, b.Min.Y+y)
			dst.Pix[i] = blendChannel(s.X(), dst.Pix[i], a)
			dst.Pix[i+1] = blendChannel(s.Y(), dst.Pix[i+1], a)
			dst.Pix[i+2] = blendChannel(s.Z(), dst.Pix[i+2], a)
			dst.Pix[i+3] = blendChannel(a, dst.Pix[i+3], a)
		}
	}
}

func blendChannel(src float32, dst uint8, alpha float32) uint8 {
	v := clamp01(src)*255 + float32(dst)*(1-alpha)
	if v > 255 {
		v = 255
	}
	return uint8(v + 0.5)
}
