package audio

// BeatDetector flags energy spikes against a rolling average. It is fully
// deterministic: history and refractory tracking are frame-counted, not
// clock-based, so the same sample sequence always yields the same flags.
type BeatDetector struct {
	energy     []float64
	index      int
	filled     bool
	multiplier float64
	frame      int
	lastBeat   int
	minGap     int
}

// NewBeatDetector builds a detector averaging over historySize windows.
func NewBeatDetector(historySize int) *BeatDetector {
	if historySize < 1 {
		historySize = 1
	}
	return &BeatDetector{
		energy:     make([]float64, historySize),
		multiplier: 1.3,
		lastBeat:   -1 << 30,
		minGap:     18, // ~300ms at 60 frames/s
	}
}

// Detect reports whether the window's energy spikes above the rolling
// average. It always reports false until the history fills.
func (d *BeatDetector) Detect(samples []float64) bool {
	energy := meanSquare(samples)

	d.energy[d.index] = energy
	d.index = (d.index + 1) % len(d.energy)
	if d.index == 0 {
		d.filled = true
	}
	d.frame++

	if !d.filled {
		return false
	}

	sum := 0.0
	for _, e := range d.energy {
		sum += e
	}
	average := sum / float64(len(d.energy))

	if energy > average*d.multiplier && d.frame-d.lastBeat > d.minGap {
		d.lastBeat = d.frame
		return true
	}
	return false
}

func meanSquare(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return sum / float64(len(samples))
}

// DetectBeat is the one-shot form used by single executions: with no
// accumulated history it deterministically reports false.
func DetectBeat(samples []float64) bool {
	return NewBeatDetector(43).Detect(samples)
}
