package runtime

import (
	"strings"

	"gosynth/pkg/audio"
	"gosynth/pkg/compiler"
)

// evalCall dispatches a builtin call. The builtin set is a closed
// enumeration, so the switch below is exhaustive by construction.
func (in *Interpreter) evalCall(ex *compiler.CallExpr) (Value, error) {
	if ex.Module == "" {
		return nil, compiler.NewError(compiler.UnknownFunction, "unknown function %q", ex.Name).
			WithSuggestion("builtins are called through their module, e.g. Audio.%s", ex.Name)
	}
	builtin, ok := compiler.LookupBuiltin(ex.Module, ex.Name)
	if !ok {
		err := compiler.NewError(compiler.UnknownFunction, "unknown function %s.%s", ex.Module, ex.Name)
		if names := compiler.ModuleFunctions(ex.Module); len(names) > 0 {
			err = err.WithSuggestion("%s exports: %s", ex.Module, strings.Join(names, ", "))
		}
		return nil, err
	}

	min, max := builtin.Arity()
	if len(ex.Args) < min || len(ex.Args) > max {
		return nil, compiler.NewError(compiler.ArityMismatch,
			"%s takes %d to %d arguments, got %d", builtin, min, max, len(ex.Args))
	}

	args := make([]Value, len(ex.Args))
	for i, a := range ex.Args {
		v, err := in.evalExpr(a)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, compiler.NewError(compiler.TypeMismatch,
				"void value passed to %s", builtin)
		}
		args[i] = v
	}

	switch builtin {
	case compiler.BuiltinAudioMicInput:
		return Stream{Name: "microphone", Kind: StreamAudio, SampleRate: audio.SampleRate}, nil

	case compiler.BuiltinAudioAnalyzeFFT:
		return in.audioAnalyzeFFT(args)

	case compiler.BuiltinAudioBeatDetect:
		if err := wantAudioStream(builtin, args[0]); err != nil {
			return nil, err
		}
		samples := audio.MockCapture(in.frame, in.analyzer.Size())
		return Boolean(audio.DetectBeat(samples)), nil

	case compiler.BuiltinGraphicsClear:
		rgb, err := toRGB(builtin, args[0])
		if err != nil {
			return nil, err
		}
		in.renderer.Clear(rgb)
		return nil, nil

	case compiler.BuiltinGraphicsPlasma:
		return nil, in.graphicsPlasma(args[0])

	case compiler.BuiltinGraphicsFlash:
		rgb, err := toRGB(builtin, args[0])
		if err != nil {
			return nil, err
		}
		duration := 0.1
		if len(args) == 2 {
			d, ok := asNumber(args[1])
			if !ok {
				return nil, compiler.NewError(compiler.TypeMismatch,
					"%s duration must be a number, got %s", builtin, args[1].TypeName())
			}
			duration = d
		}
		in.renderer.Flash(rgb, duration)
		return nil, nil

	case compiler.BuiltinGraphicsStarfield:
		return nil, in.graphicsStarfield(args[0])
	}
	return nil, compiler.NewError(compiler.CompilationFailed, "unhandled builtin %s", builtin)
}

func (in *Interpreter) audioAnalyzeFFT(args []Value) (Value, error) {
	if err := wantAudioStream(compiler.BuiltinAudioAnalyzeFFT, args[0]); err != nil {
		return nil, err
	}
	bands := 8
	if len(args) == 2 {
		n, ok := args[1].(Integer)
		if !ok {
			return nil, compiler.NewError(compiler.TypeMismatch,
				"analyze_fft band count must be Integer, got %s", args[1].TypeName())
		}
		if n < 0 {
			return nil, compiler.NewError(compiler.TypeMismatch,
				"analyze_fft band count must be non-negative, got %d", int64(n))
		}
		bands = int(n)
	}

	samples := audio.MockCapture(in.frame, in.analyzer.Size())
	mags := in.analyzer.Analyze(samples, bands)
	result := make(Array, len(mags))
	for i, m := range mags {
		result[i] = Float(m)
	}
	return result, nil
}

func (in *Interpreter) graphicsPlasma(arg Value) error {
	block, ok := arg.(Block)
	if !ok {
		return compiler.NewError(compiler.TypeMismatch,
			"Graphics.plasma takes named arguments, got %s", arg.TypeName()).
			WithSuggestion("call it as Graphics.plasma(speed: 2.0, palette: Graphics.neon)")
	}
	speed := 1.0
	palette := "neon"
	if v, ok := block.Field("speed"); ok {
		n, isNum := asNumber(v)
		if !isNum {
			return compiler.NewError(compiler.TypeMismatch,
				"plasma speed must be a number, got %s", v.TypeName())
		}
		speed = n
	}
	if v, ok := block.Field("palette"); ok {
		s, isStr := v.(String)
		if !isStr {
			return compiler.NewError(compiler.TypeMismatch,
				"plasma palette must be String, got %s", v.TypeName())
		}
		palette = string(s)
	}
	in.renderer.Plasma(speed, palette)
	return nil
}

func (in *Interpreter) graphicsStarfield(arg Value) error {
	block, ok := arg.(Block)
	if !ok {
		return compiler.NewError(compiler.TypeMismatch,
			"Graphics.starfield takes named arguments, got %s", arg.TypeName()).
			WithSuggestion("call it as Graphics.starfield(count: 200, speed: 1.5)")
	}
	count := 100
	speed := 1.0
	if v, ok := block.Field("count"); ok {
		n, isInt := v.(Integer)
		if !isInt {
			return compiler.NewError(compiler.TypeMismatch,
				"starfield count must be Integer, got %s", v.TypeName())
		}
		count = int(n)
	}
	if v, ok := block.Field("speed"); ok {
		n, isNum := asNumber(v)
		if !isNum {
			return compiler.NewError(compiler.TypeMismatch,
				"starfield speed must be a number, got %s", v.TypeName())
		}
		speed = n
	}
	in.renderer.Starfield(count, speed)
	return nil
}

func wantAudioStream(b compiler.Builtin, v Value) error {
	s, ok := v.(Stream)
	if !ok {
		return compiler.NewError(compiler.TypeMismatch,
			"%s needs a Stream argument, got %s", b, v.TypeName()).
			WithSuggestion("connect a source first: audio = Audio.mic_input()")
	}
	if s.Kind != StreamAudio {
		return compiler.NewError(compiler.InvalidStreamFormat,
			"%s needs an audio stream, got a %s stream", b, s.Kind)
	}
	return nil
}

// toRGB accepts a packed 0xRRGGBB Integer color.
func toRGB(b compiler.Builtin, v Value) (uint32, error) {
	n, ok := v.(Integer)
	if !ok {
		return 0, compiler.NewError(compiler.TypeMismatch,
			"%s color must be Integer, got %s", b, v.TypeName()).
			WithSuggestion("use a module constant like Graphics.black")
	}
	return uint32(n) & 0xFFFFFF, nil
}
