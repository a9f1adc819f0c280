// Package graphics renders the visual primitives into a software
// framebuffer. Everything is CPU-side and deterministic; hosts decide how
// to present the pixels.
package graphics

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// Framebuffer is a fixed-size RGBA pixel surface.
type Framebuffer struct {
	img    *image.RGBA
	width  int
	height int
}

func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		width:  width,
		height: height,
	}
}

func (f *Framebuffer) Width() int  { return f.width }
func (f *Framebuffer) Height() int { return f.height }

// Fill floods every pixel with c.
func (f *Framebuffer) Fill(c color.RGBA) {
	pix := f.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = c.R
		pix[i+1] = c.G
		pix[i+2] = c.B
		pix[i+3] = c.A
	}
}

// Set writes one pixel, ignoring out-of-range coordinates.
func (f *Framebuffer) Set(x, y int, c color.RGBA) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	f.img.SetRGBA(x, y, c)
}

// At reads one pixel; out-of-range coordinates read as transparent black.
func (f *Framebuffer) At(x, y int) color.RGBA {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return color.RGBA{}
	}
	return f.img.RGBAAt(x, y)
}

// RGBA returns the raw RGBA8888 pixel bytes, length width*height*4.
func (f *Framebuffer) RGBA() []byte {
	return f.img.Pix
}

// Image returns the backing image.
func (f *Framebuffer) Image() *image.RGBA {
	return f.img
}

// ScaleTo resizes the framebuffer contents into dst with nearest-neighbor
// sampling, preserving the hard pixel edges of the effects.
func (f *Framebuffer) ScaleTo(dst *image.RGBA) {
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), f.img, f.img.Bounds(), draw.Src, nil)
}

// SaveScreenshot encodes the framebuffer as a PNG and writes it to filename.
func (f *Framebuffer) SaveScreenshot(filename string) error {
	out, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, f.img)
}

// RGB unpacks a 0xRRGGBB color into an opaque RGBA value.
func RGB(rgb uint32) color.RGBA {
	return color.RGBA{
		R: byte(rgb >> 16),
		G: byte(rgb >> 8),
		B: byte(rgb),
		A: 0xFF,
	}
}
