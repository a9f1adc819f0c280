package audio

import "testing"

func quietWindow() []float64 { return make([]float64, 64) }

func loudWindow() []float64 {
	w := make([]float64, 64)
	for i := range w {
		w[i] = 1.0
	}
	return w
}

func TestDetectBeatOneShotIsFalse(t *testing.T) {
	if DetectBeat(loudWindow()) {
		t.Error("one-shot detection has no history and must report false")
	}
	if DetectBeat(MockCapture(0, DefaultFFTSize)) {
		t.Error("one-shot detection on captured audio must report false")
	}
}

func TestDetectorWaitsForHistory(t *testing.T) {
	d := NewBeatDetector(4)
	for i := 0; i < 3; i++ {
		if d.Detect(loudWindow()) {
			t.Fatalf("beat reported on window %d before history filled", i)
		}
	}
}

func TestDetectorFlagsEnergySpike(t *testing.T) {
	d := NewBeatDetector(2)
	d.Detect(quietWindow())
	d.Detect(quietWindow())
	if !d.Detect(loudWindow()) {
		t.Error("spike after quiet history must be a beat")
	}
}

func TestDetectorRefractoryGap(t *testing.T) {
	d := NewBeatDetector(2)
	d.Detect(quietWindow())
	d.Detect(quietWindow())
	if !d.Detect(loudWindow()) {
		t.Fatal("first spike must be a beat")
	}

	// A second spike right away falls inside the minimum gap.
	d.Detect(quietWindow())
	if d.Detect(loudWindow()) {
		t.Error("spike inside the refractory gap must not be a beat")
	}

	// Once the gap has passed, spikes register again.
	for i := 0; i < 16; i++ {
		d.Detect(quietWindow())
	}
	if !d.Detect(loudWindow()) {
		t.Error("spike after the refractory gap must be a beat")
	}
}

func TestDetectorSteadySignalIsNotABeat(t *testing.T) {
	d := NewBeatDetector(3)
	for i := 0; i < 20; i++ {
		if d.Detect(loudWindow()) {
			t.Fatalf("constant energy reported as a beat on window %d", i)
		}
	}
}

func TestMeanSquare(t *testing.T) {
	if got := meanSquare(nil); got != 0 {
		t.Errorf("meanSquare(nil) = %g, want 0", got)
	}
	if got := meanSquare([]float64{1, -1, 1, -1}); got != 1.0 {
		t.Errorf("meanSquare(±1) = %g, want 1", got)
	}
	if got := meanSquare([]float64{0.5, 0.5}); got != 0.25 {
		t.Errorf("meanSquare(0.5) = %g, want 0.25", got)
	}
}
