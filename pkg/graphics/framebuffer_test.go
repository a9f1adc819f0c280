package graphics

import (
	"image"
	"image/color"
	"testing"
)

func TestRGBUnpack(t *testing.T) {
	tests := []struct {
		rgb      uint32
		expected color.RGBA
	}{
		{0x000000, color.RGBA{0x00, 0x00, 0x00, 0xFF}},
		{0xFFFFFF, color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}},
		{0xFF0000, color.RGBA{0xFF, 0x00, 0x00, 0xFF}},
		{0x00FF00, color.RGBA{0x00, 0xFF, 0x00, 0xFF}},
		{0x0000FF, color.RGBA{0x00, 0x00, 0xFF, 0xFF}},
		{0x123456, color.RGBA{0x12, 0x34, 0x56, 0xFF}},
	}
	for _, tt := range tests {
		if got := RGB(tt.rgb); got != tt.expected {
			t.Errorf("RGB(%#06x) = %v, want %v", tt.rgb, got, tt.expected)
		}
	}
}

func TestFramebufferFillAndAt(t *testing.T) {
	fb := NewFramebuffer(4, 3)
	red := color.RGBA{0xFF, 0x00, 0x00, 0xFF}
	fb.Fill(red)

	for y := 0; y < fb.Height(); y++ {
		for x := 0; x < fb.Width(); x++ {
			if got := fb.At(x, y); got != red {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, red)
			}
		}
	}
	if got := len(fb.RGBA()); got != 4*3*4 {
		t.Errorf("pixel buffer length = %d, want %d", got, 4*3*4)
	}
}

func TestFramebufferBounds(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	white := color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}

	// Out-of-range writes are silently dropped.
	fb.Set(-1, 0, white)
	fb.Set(0, -1, white)
	fb.Set(2, 0, white)
	fb.Set(0, 2, white)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if got := fb.At(x, y); got != (color.RGBA{}) {
				t.Errorf("pixel (%d,%d) = %v after out-of-range writes", x, y, got)
			}
		}
	}

	// Out-of-range reads come back transparent black.
	fb.Fill(white)
	if got := fb.At(-1, -1); got != (color.RGBA{}) {
		t.Errorf("out-of-range read = %v, want zero", got)
	}
}

func TestFramebufferScaleTo(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.Set(0, 0, color.RGBA{0xFF, 0x00, 0x00, 0xFF})
	fb.Set(1, 1, color.RGBA{0x00, 0x00, 0xFF, 0xFF})

	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fb.ScaleTo(dst)

	// Nearest-neighbor doubling keeps hard edges: each source pixel becomes
	// a 2x2 block.
	if got := dst.RGBAAt(0, 0); got != (color.RGBA{0xFF, 0x00, 0x00, 0xFF}) {
		t.Errorf("top-left block = %v, want red", got)
	}
	if got := dst.RGBAAt(1, 1); got != (color.RGBA{0xFF, 0x00, 0x00, 0xFF}) {
		t.Errorf("top-left block interior = %v, want red", got)
	}
	if got := dst.RGBAAt(3, 3); got != (color.RGBA{0x00, 0x00, 0xFF, 0xFF}) {
		t.Errorf("bottom-right block = %v, want blue", got)
	}
}
