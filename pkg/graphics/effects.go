package graphics

import (
	"image/color"
	"math"
)

// Engine draws the language's visual primitives into a framebuffer. A frame
// counter advances the animated effects; with the same call sequence and
// frame counts the pixel output is identical.
type Engine struct {
	fb    *Framebuffer
	frame int
	flash float64
	stars []star
}

type star struct {
	x, y, z float64
}

func NewEngine(width, height int) *Engine {
	return &Engine{fb: NewFramebuffer(width, height)}
}

// Framebuffer exposes the render target.
func (e *Engine) Framebuffer() *Framebuffer {
	return e.fb
}

// Advance moves to the next frame and decays any active flash.
func (e *Engine) Advance() {
	e.frame++
	e.flash *= 0.85
	if e.flash < 0.01 {
		e.flash = 0
	}
}

// Clear floods the frame with a packed 0xRRGGBB color.
func (e *Engine) Clear(rgb uint32) {
	e.fb.Fill(RGB(rgb))
}

// Plasma renders the classic summed-sine plasma, phase-shifted by the frame
// counter scaled with speed.
func (e *Engine) Plasma(speed float64, palette string) {
	t := float64(e.frame) * 0.05 * speed
	w, h := float64(e.fb.Width()), float64(e.fb.Height())

	for y := 0; y < e.fb.Height(); y++ {
		for x := 0; x < e.fb.Width(); x++ {
			fx, fy := float64(x)/w, float64(y)/h
			v := math.Sin(fx*10+t) +
				math.Sin((fy*10+t)/2) +
				math.Sin((fx*10+fy*10+t)/2)
			cx := fx + 0.5*math.Sin(t/5)
			cy := fy + 0.5*math.Cos(t/3)
			v += math.Sin(math.Sqrt(100*(cx*cx+cy*cy)+1) + t)
			e.fb.Set(x, y, paletteColor(palette, v/4))
		}
	}
	e.applyFlash()
}

// Flash overlays the frame with a color whose intensity decays over the
// following frames. Duration scales the initial intensity hold.
func (e *Engine) Flash(rgb uint32, duration float64) {
	e.flash = math.Min(1.0, 0.5+duration)
	c := RGB(rgb)
	e.blend(c, e.flash)
}

// Starfield renders count stars streaming toward the viewer. Star positions
// derive from a fixed seed, so the field is reproducible.
func (e *Engine) Starfield(count int, speed float64) {
	if len(e.stars) != count {
		e.seedStars(count)
	}
	e.fb.Fill(color.RGBA{A: 0xFF})

	cx, cy := float64(e.fb.Width())/2, float64(e.fb.Height())/2
	for i := range e.stars {
		s := &e.stars[i]
		s.z -= 0.02 * speed
		if s.z <= 0.05 {
			s.z += 1.0
		}
		px := cx + s.x/s.z*cx
		py := cy + s.y/s.z*cy
		shade := byte(255 * math.Max(0, 1.0-s.z))
		e.fb.Set(int(px), int(py), color.RGBA{R: shade, G: shade, B: shade, A: 0xFF})
	}
	e.applyFlash()
}

// seedStars fills the field from a small linear congruential sequence.
func (e *Engine) seedStars(count int) {
	e.stars = make([]star, count)
	seed := uint64(0x2545F4914F6CDD1D)
	next := func() float64 {
		seed = seed*6364136223846793005 + 1442695040888963407
		return float64(seed>>11) / float64(1<<53)
	}
	for i := range e.stars {
		e.stars[i] = star{
			x: next()*2 - 1,
			y: next()*2 - 1,
			z: next()*0.95 + 0.05,
		}
	}
}

func (e *Engine) applyFlash() {
	if e.flash > 0 {
		e.blend(color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, e.flash)
	}
}

// blend mixes c into every pixel at the given intensity.
func (e *Engine) blend(c color.RGBA, intensity float64) {
	if intensity <= 0 {
		return
	}
	if intensity > 1 {
		intensity = 1
	}
	pix := e.fb.RGBA()
	mix := func(dst, src byte) byte {
		return byte(float64(dst)*(1-intensity) + float64(src)*intensity)
	}
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = mix(pix[i+0], c.R)
		pix[i+1] = mix(pix[i+1], c.G)
		pix[i+2] = mix(pix[i+2], c.B)
		pix[i+3] = 0xFF
	}
}

// paletteColor maps a value in [-1, 1] through a named palette. Unknown
// names fall back to neon.
func paletteColor(palette string, v float64) color.RGBA {
	v = (v + 1) / 2 // normalize to [0, 1]
	switch palette {
	case "rainbow":
		return color.RGBA{
			R: wave(v, 0.0),
			G: wave(v, 1.0/3.0),
			B: wave(v, 2.0/3.0),
			A: 0xFF,
		}
	case "mono":
		shade := byte(255 * v)
		return color.RGBA{R: shade, G: shade, B: shade, A: 0xFF}
	default: // neon
		return color.RGBA{
			R: byte(255 * v * v),
			G: byte(64 * v),
			B: byte(255 * (1 - v*v)),
			A: 0xFF,
		}
	}
}

func wave(v, offset float64) byte {
	return byte(255 * (0.5 + 0.5*math.Sin(2*math.Pi*(v+offset))))
}
