package compiler

// Builtin enumerates every callable the language ships. The set is closed:
// both the interpreter and the IR builder dispatch over these values with
// exhaustive switches, so adding a builtin means extending this enum and
// every switch over it.
type Builtin int

const (
	BuiltinAudioMicInput Builtin = iota
	BuiltinAudioAnalyzeFFT
	BuiltinAudioBeatDetect
	BuiltinGraphicsClear
	BuiltinGraphicsPlasma
	BuiltinGraphicsFlash
	BuiltinGraphicsStarfield
)

// builtinInfo describes a builtin's call surface. Arity counts positional
// arguments after named-argument folding; MinArity allows trailing optional
// arguments (flash duration, fft band count).
type builtinInfo struct {
	Module   string
	Name     string
	MinArity int
	Arity    int
}

var builtinInfos = [...]builtinInfo{
	BuiltinAudioMicInput:     {Module: "Audio", Name: "mic_input", MinArity: 0, Arity: 0},
	BuiltinAudioAnalyzeFFT:   {Module: "Audio", Name: "analyze_fft", MinArity: 1, Arity: 2},
	BuiltinAudioBeatDetect:   {Module: "Audio", Name: "beat_detect", MinArity: 1, Arity: 1},
	BuiltinGraphicsClear:     {Module: "Graphics", Name: "clear", MinArity: 1, Arity: 1},
	BuiltinGraphicsPlasma:    {Module: "Graphics", Name: "plasma", MinArity: 1, Arity: 1},
	BuiltinGraphicsFlash:     {Module: "Graphics", Name: "flash", MinArity: 1, Arity: 2},
	BuiltinGraphicsStarfield: {Module: "Graphics", Name: "starfield", MinArity: 1, Arity: 1},
}

func (b Builtin) String() string {
	info := builtinInfos[b]
	return info.Module + "." + info.Name
}

// Arity returns the minimum and maximum positional argument counts.
func (b Builtin) Arity() (min, max int) {
	info := builtinInfos[b]
	return info.MinArity, info.Arity
}

// LookupBuiltin resolves a qualified call target. It reports false for any
// name outside the closed set.
func LookupBuiltin(module, name string) (Builtin, bool) {
	for b, info := range builtinInfos {
		if info.Module == module && info.Name == name {
			return Builtin(b), true
		}
	}
	return 0, false
}

// ModuleFunctions lists the builtin names a module exports, for import
// validation and error suggestions.
func ModuleFunctions(module string) []string {
	var names []string
	for _, info := range builtinInfos {
		if info.Module == module {
			names = append(names, info.Name)
		}
	}
	return names
}

// ConstantValue is the compile-time value of a module constant. Exactly one
// of the two shapes is active, selected by IsString.
type ConstantValue struct {
	Integer  int64
	String   string
	IsString bool
}

var moduleConstants = map[string]ConstantValue{
	"Graphics.black": {Integer: 0x000000},
	"Graphics.white": {Integer: 0xFFFFFF},
	"Graphics.neon":  {String: "neon", IsString: true},
}

// LookupConstant resolves a qualified module constant like "Graphics.black".
// Constants are checked before function dispatch, so a constant name can
// never shadow a builtin call.
func LookupConstant(qualified string) (ConstantValue, bool) {
	v, ok := moduleConstants[qualified]
	return v, ok
}
