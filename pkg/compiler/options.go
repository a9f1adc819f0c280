package compiler

import "fmt"

// Target selects the code generator and, for native targets, the
// OS/architecture pair.
type Target int

const (
	TargetWasm Target = iota
	TargetLinuxX64
	TargetWindowsX64
	TargetMacOSX64
	TargetLinuxARM64
	TargetMacOSARM64
)

var targetNames = [...]string{
	TargetWasm:       "wasm",
	TargetLinuxX64:   "native-linux",
	TargetWindowsX64: "native-windows",
	TargetMacOSX64:   "native-macos",
	TargetLinuxARM64: "native-linux-arm64",
	TargetMacOSARM64: "native-macos-arm64",
}

func (t Target) String() string {
	if int(t) < len(targetNames) {
		return targetNames[t]
	}
	return fmt.Sprintf("Target(%d)", int(t))
}

// IsNative reports whether t is handled by the native backend.
func (t Target) IsNative() bool {
	return t != TargetWasm
}

// MarshalYAML renders the target by name in metadata sidecars.
func (t Target) MarshalYAML() (any, error) {
	return t.String(), nil
}

// ParseTarget maps a CLI spelling to a Target. Every name the front end
// accepts is listed here, including targets the backend cannot emit yet.
func ParseTarget(s string) (Target, error) {
	if s == "webassembly" {
		return TargetWasm, nil
	}
	for t, name := range targetNames {
		if name == s {
			return Target(t), nil
		}
	}
	return 0, NewError(CompilationFailed, "unknown target %q", s).
		WithSuggestion("try --target wasm or --target native-linux")
}

// OptimizationLevel tags how aggressively the optimizer may rewrite IR.
type OptimizationLevel int

const (
	OptNone OptimizationLevel = iota
	OptBasic
	OptAggressive
	OptCreative
)

var optLevelNames = [...]string{
	OptNone:       "none",
	OptBasic:      "basic",
	OptAggressive: "aggressive",
	OptCreative:   "creative",
}

func (l OptimizationLevel) String() string {
	if int(l) < len(optLevelNames) {
		return optLevelNames[l]
	}
	return fmt.Sprintf("OptimizationLevel(%d)", int(l))
}

// ParseOptimizationLevel maps a CLI spelling to a level.
func ParseOptimizationLevel(s string) (OptimizationLevel, error) {
	for l, name := range optLevelNames {
		if name == s {
			return OptimizationLevel(l), nil
		}
	}
	return 0, NewError(CompilationFailed, "unknown optimization level %q", s).
		WithSuggestion("supported levels: none, basic, aggressive, creative")
}

// CompilationOptions configures one Compile call.
type CompilationOptions struct {
	Target           Target
	Optimization     OptimizationLevel
	IncludeDebugInfo bool
	StreamBufferSize int
	RealTimePriority bool
}

// DefaultOptions returns the defaults: wasm target, basic optimization,
// debug info on, 1024-sample stream buffers, real-time priority requested.
func DefaultOptions() CompilationOptions {
	return CompilationOptions{
		Target:           TargetWasm,
		Optimization:     OptBasic,
		IncludeDebugInfo: true,
		StreamBufferSize: 1024,
		RealTimePriority: true,
	}
}

// StreamInterface describes a host-visible stream endpoint in artifact
// metadata. LatencyMs is the budget the host scheduler must honor.
type StreamInterface struct {
	Name       string  `yaml:"name"`
	InputType  string  `yaml:"input_type"`
	OutputType string  `yaml:"output_type"`
	BufferSize int     `yaml:"buffer_size"`
	LatencyMs  float64 `yaml:"latency_ms"`
}

// ArtifactMetadata travels with the bytecode and is persisted as a YAML
// sidecar next to it.
type ArtifactMetadata struct {
	Target            Target            `yaml:"target"`
	EntryPoint        string            `yaml:"entry_point"`
	ExportedFunctions []string          `yaml:"exported_functions"`
	Dependencies      []string          `yaml:"dependencies"`
	StreamInterfaces  []StreamInterface `yaml:"stream_interfaces"`
}

// CompiledArtifact is the final product of a Compile call.
type CompiledArtifact struct {
	Bytecode []byte
	Metadata ArtifactMetadata
}
