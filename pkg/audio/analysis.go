// Package audio provides the deterministic audio front end: a synthetic
// capture source, windowed FFT analysis binned into frequency bands, and
// energy-based beat detection.
package audio

import "math"

// SampleRate is the fixed capture rate in Hz.
const SampleRate = 44100.0

// DefaultFFTSize is the analysis window length in samples.
const DefaultFFTSize = 1024

// Analyzer computes per-band spectral magnitudes over a fixed-size window.
type Analyzer struct {
	size   int
	window []float64
	mags   []float64
}

// NewAnalyzer builds an analyzer for the given window size, which must be a
// power of two; other sizes are rounded up.
func NewAnalyzer(size int) *Analyzer {
	if size < 2 {
		size = 2
	}
	for size&(size-1) != 0 {
		size++
	}

	// Hann window
	window := make([]float64, size)
	for i := range window {
		t := float64(i) / float64(size-1)
		window[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*t))
	}

	return &Analyzer{
		size:   size,
		window: window,
		mags:   make([]float64, size/2),
	}
}

// Size returns the analysis window length.
func (a *Analyzer) Size() int {
	return a.size
}

// Analyze windows the samples, runs the FFT and averages the magnitude
// spectrum into the requested number of bands. The result always has
// exactly `bands` elements; short input yields silence.
func (a *Analyzer) Analyze(samples []float64, bands int) []float64 {
	if len(samples) < a.size {
		return make([]float64, bands)
	}

	re := make([]float64, a.size)
	im := make([]float64, a.size)
	for i := 0; i < a.size; i++ {
		re[i] = samples[i] * a.window[i]
	}

	fft(re, im)

	for i := range a.mags {
		a.mags[i] = math.Hypot(re[i], im[i])
	}
	return a.binToBands(bands)
}

// binToBands averages contiguous runs of magnitude bins into bands.
func (a *Analyzer) binToBands(bands int) []float64 {
	if bands <= 0 {
		return []float64{}
	}

	result := make([]float64, bands)
	binsPerBand := len(a.mags) / bands
	if binsPerBand == 0 {
		binsPerBand = 1
	}

	for band := range result {
		start := band * binsPerBand
		end := (band + 1) * binsPerBand
		if end > len(a.mags) {
			end = len(a.mags)
		}
		if start >= end {
			continue
		}
		sum := 0.0
		for _, m := range a.mags[start:end] {
			sum += m
		}
		result[band] = sum / float64(end-start)
	}
	return result
}

// fft runs an in-place iterative radix-2 transform over re/im, which must
// have equal power-of-two length.
func fft(re, im []float64) {
	n := len(re)
	if n <= 1 {
		return
	}

	// Bit-reversal permutation
	j := 0
	for i := 1; i < n; i++ {
		bit := n >> 1
		for j&bit != 0 {
			j ^= bit
			bit >>= 1
		}
		j ^= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angle := -2.0 * math.Pi / float64(length)
		wlenRe, wlenIm := math.Cos(angle), math.Sin(angle)

		for i := 0; i < n; i += length {
			wRe, wIm := 1.0, 0.0
			for k := 0; k < length/2; k++ {
				uRe, uIm := re[i+k], im[i+k]
				vRe := re[i+k+length/2]*wRe - im[i+k+length/2]*wIm
				vIm := re[i+k+length/2]*wIm + im[i+k+length/2]*wRe
				re[i+k], im[i+k] = uRe+vRe, uIm+vIm
				re[i+k+length/2], im[i+k+length/2] = uRe-vRe, uIm-vIm
				wRe, wIm = wRe*wlenRe-wIm*wlenIm, wRe*wlenIm+wIm*wlenRe
			}
		}
	}
}

// MockCapture synthesizes one deterministic capture window: a fixed mix of
// low, mid and high tones whose phase advances with the frame counter.
// Samples stay within [-1, 1].
func MockCapture(frame, n int) []float64 {
	samples := make([]float64, n)
	phase := float64(frame) * 0.02
	for i := range samples {
		t := float64(i) / SampleRate
		samples[i] = 0.5*math.Sin(2.0*math.Pi*110.0*t+phase) +
			0.3*math.Sin(2.0*math.Pi*440.0*t+phase*2) +
			0.15*math.Sin(2.0*math.Pi*1760.0*t+phase*4)
	}
	return samples
}
