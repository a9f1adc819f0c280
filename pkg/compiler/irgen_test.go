package compiler

import (
	"testing"
)

func buildIR(t *testing.T, src string) *IR {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	ir, err := BuildIR(prog, DefaultOptions())
	if err != nil {
		t.Fatalf("BuildIR(%q) failed: %v", src, err)
	}
	return ir
}

func buildIRErr(t *testing.T, src string) error {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	_, err = BuildIR(prog, DefaultOptions())
	if err == nil {
		t.Fatalf("BuildIR(%q) expected error", src)
	}
	return err
}

// lastLoadType finds the register type of the most recent Load, which is
// how assignments record their inferred type.
func lastLoadType(t *testing.T, ir *IR) IRType {
	t.Helper()
	fn := ir.EntryFunction()
	if fn == nil {
		t.Fatal("IR has no entry function")
	}
	var found *Load
	for _, blk := range fn.Blocks {
		for _, in := range blk.Instrs {
			if ld, ok := in.(*Load); ok {
				found = ld
			}
		}
	}
	if found == nil {
		t.Fatal("IR contains no Load instruction")
	}
	return found.Dest.Type
}

func TestBuildIRTypeInference(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected IRType
	}{
		{"Integer Literal", "x = 42", TypeInteger},
		{"Float Literal", "x = 2.5", TypeFloat},
		{"Boolean Literal", "x = true", TypeBoolean},
		{"String Literal", `x = "neon"`, TypeString},
		{"Integer Arithmetic Stays Integer", "x = 10 + 5 * 2", TypeInteger},
		{"Division Is Always Float", "x = 10 / 5", TypeFloat},
		{"Mixed Promotes To Float", "x = 1 + 2.5", TypeFloat},
		{"Comparison Is Boolean", "x = 1 < 2", TypeBoolean},
		{"Equality Is Boolean", "x = 1 == 2", TypeBoolean},
		{"Stream Handle", "x = Audio.mic_input()", StreamOf(IRAudioSample)},
		{"FFT Buffer", "a = Audio.mic_input()\nx = Audio.analyze_fft(a, 8)", TypeAudioBuffer},
		{"Beat Flag", "a = Audio.mic_input()\nx = Audio.beat_detect(a)", TypeBoolean},
		{"Buffer Index Is Float", "a = Audio.mic_input()\nf = Audio.analyze_fft(a, 8)\nx = f[0]", TypeFloat},
		{"Constant Resolution", "x = Graphics.black", TypeInteger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ir := buildIR(t, tt.src)
			if got := lastLoadType(t, ir); got != tt.expected {
				t.Errorf("inferred type = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestBuildIRRegistersAreUnique(t *testing.T) {
	ir := buildIR(t, "x = 1 + 2\ny = x * 3\nz = y / 2")
	fn := ir.EntryFunction()
	seen := make(map[int]bool)
	for _, blk := range fn.Blocks {
		for _, in := range blk.Instrs {
			if dest, ok := destRegister(in); ok {
				if seen[dest.ID] {
					t.Fatalf("register %%%d assigned twice", dest.ID)
				}
				seen[dest.ID] = true
			}
		}
	}
}

func TestBuildIRLoopBecomesStreamLoop(t *testing.T) {
	ir := buildIR(t, "loop {\n x = 1\n}")
	fn := ir.EntryFunction()
	if !fn.IsStreamProcessor {
		t.Error("function with a loop should be marked as a stream processor")
	}
	var loops int
	for _, blk := range fn.Blocks {
		if _, ok := blk.Term.(*StreamLoop); ok {
			loops++
		}
	}
	if loops != 1 {
		t.Errorf("found %d StreamLoop terminators, want 1", loops)
	}
}

func TestBuildIREveryBlockTerminated(t *testing.T) {
	src := `audio = Audio.mic_input()
loop {
	beat = Audio.beat_detect(audio)
	if beat {
		x = 1
	} else {
		x = 2
	}
}`
	ir := buildIR(t, src)
	for _, blk := range ir.EntryFunction().Blocks {
		if blk.Term == nil {
			t.Errorf("block %q has no terminator", blk.Label)
		}
	}
}

func TestBuildIRIfLowersToBranch(t *testing.T) {
	ir := buildIR(t, "x = 1 < 2\nif x {\n y = 1\n}")
	var branches int
	for _, blk := range ir.EntryFunction().Blocks {
		if _, ok := blk.Term.(*Branch); ok {
			branches++
		}
	}
	if branches != 1 {
		t.Errorf("found %d Branch terminators, want 1", branches)
	}
}

func TestBuildIRStreamMetadata(t *testing.T) {
	opts := DefaultOptions()
	opts.StreamBufferSize = 512
	opts.RealTimePriority = true

	prog, err := Parse("audio = Audio.mic_input()")
	if err != nil {
		t.Fatal(err)
	}
	ir, err := BuildIR(prog, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(ir.GlobalStreams) != 1 {
		t.Fatalf("got %d global streams, want 1", len(ir.GlobalStreams))
	}
	s := ir.GlobalStreams[0]
	if s.Name != "microphone" {
		t.Errorf("stream name = %q, want microphone", s.Name)
	}
	if s.BufferSize != 512 {
		t.Errorf("stream buffer = %d, want 512", s.BufferSize)
	}
	if !s.RealTime {
		t.Error("stream should inherit real-time priority from options")
	}
}

func TestBuildIRErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected ErrorKind
	}{
		{"Undefined Variable", "x = missing + 1", UndefinedVariable},
		{"Unknown Module", "x = Sound.mic_input()", UnknownFunction},
		{"Unknown Function", "x = Audio.reverb()", UnknownFunction},
		{"Unqualified Call", "x = analyze()", UnknownFunction},
		{"Arity Too Many", "a = Audio.mic_input()\nx = Audio.analyze_fft(a, 8, 9)", ArityMismatch},
		{"Arity Too Few", "x = Audio.analyze_fft()", ArityMismatch},
		{"Condition Not Boolean", "if 1 {\n x = 2\n}", TypeMismatch},
		{"String Arithmetic", `x = "a" * 2`, TypeMismatch},
		{"Bad Import Name", "import Audio.{echo}", UnknownFunction},
		{"Void Assignment", "x = Graphics.clear(Graphics.black)", TypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := buildIRErr(t, tt.src)
			if kind, ok := KindOf(err); !ok || kind != tt.expected {
				t.Errorf("error = %v, want kind %s", err, tt.expected)
			}
		})
	}
}
