package audio

import (
	"math"
	"reflect"
	"testing"
)

func TestNewAnalyzerRoundsToPowerOfTwo(t *testing.T) {
	tests := []struct {
		size     int
		expected int
	}{
		{0, 2},
		{2, 2},
		{3, 4},
		{1000, 1024},
		{1024, 1024},
	}
	for _, tt := range tests {
		if got := NewAnalyzer(tt.size).Size(); got != tt.expected {
			t.Errorf("NewAnalyzer(%d).Size() = %d, want %d", tt.size, got, tt.expected)
		}
	}
}

func TestAnalyzeBandCount(t *testing.T) {
	a := NewAnalyzer(256)
	samples := MockCapture(0, a.Size())
	for _, bands := range []int{1, 4, 8, 16, 200} {
		if got := len(a.Analyze(samples, bands)); got != bands {
			t.Errorf("Analyze with %d bands returned %d values", bands, got)
		}
	}
	if got := a.Analyze(samples, 0); len(got) != 0 {
		t.Errorf("zero bands = %v, want empty", got)
	}
}

func TestAnalyzeShortInputIsSilence(t *testing.T) {
	a := NewAnalyzer(256)
	got := a.Analyze(make([]float64, 10), 8)
	if !reflect.DeepEqual(got, make([]float64, 8)) {
		t.Errorf("short input = %v, want all zeros", got)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	a := NewAnalyzer(DefaultFFTSize)
	samples := MockCapture(7, a.Size())
	first := a.Analyze(samples, 8)
	second := a.Analyze(samples, 8)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated analysis differs:\n%v\n%v", first, second)
	}
}

func TestAnalyzeLowToneLandsInFirstBand(t *testing.T) {
	a := NewAnalyzer(DefaultFFTSize)
	// All of the mock capture's tones sit below ~2kHz, so with 8 bands the
	// first band must carry far more energy than the last.
	bands := a.Analyze(MockCapture(0, a.Size()), 8)
	if bands[0] <= bands[7]*10 {
		t.Errorf("band energies = %v; expected the spectrum to be bass-heavy", bands)
	}
}

func TestAnalyzeDCSignal(t *testing.T) {
	a := NewAnalyzer(256)
	dc := make([]float64, 256)
	for i := range dc {
		dc[i] = 1.0
	}
	bands := a.Analyze(dc, 4)
	if bands[0] <= 0 {
		t.Errorf("DC energy missing from first band: %v", bands)
	}
	for i, b := range bands[1:] {
		if b > bands[0]/100 {
			t.Errorf("band %d = %g, expected near-zero for a DC input", i+1, b)
		}
	}
}

func TestMockCapture(t *testing.T) {
	samples := MockCapture(3, 512)
	if len(samples) != 512 {
		t.Fatalf("length = %d, want 512", len(samples))
	}
	for i, s := range samples {
		if math.Abs(s) > 1.0 {
			t.Fatalf("sample %d = %g, outside [-1, 1]", i, s)
		}
	}
	if !reflect.DeepEqual(samples, MockCapture(3, 512)) {
		t.Error("same frame must produce identical samples")
	}
	if reflect.DeepEqual(samples, MockCapture(4, 512)) {
		t.Error("different frames must produce different samples")
	}
}
