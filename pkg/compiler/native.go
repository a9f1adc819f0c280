package compiler

import "errors"

// ErrStubBackend marks artifacts produced by a placeholder code generator.
// Callers get the artifact and this sentinel together, so the stub can never
// be mistaken for real instruction selection. Check with errors.Is.
var ErrStubBackend = errors.New("native backend is a stub: instruction selection is not implemented")

// targetConfig captures the toolchain parameters of one supported native
// target.
type targetConfig struct {
	Triple   string
	CPU      string
	Features []string
}

// Only the x86-64 desktop triples are wired up. ARM64 targets parse at the
// CLI but have no entry here, so they fail target lookup below.
var nativeTargets = map[Target]targetConfig{
	TargetLinuxX64: {
		Triple:   "x86_64-unknown-linux-gnu",
		CPU:      "x86-64",
		Features: []string{"+sse2", "+sse4.1"},
	},
	TargetWindowsX64: {
		Triple:   "x86_64-pc-windows-msvc",
		CPU:      "x86-64",
		Features: []string{"+sse2", "+sse4.1"},
	},
	TargetMacOSX64: {
		Triple:   "x86_64-apple-darwin",
		CPU:      "x86-64",
		Features: []string{"+sse2", "+sse4.1"},
	},
}

// NativeBackend emits native machine code for a target from the table
// above. Codegen itself is a stub: the emitted bytes are a valid empty
// x86-64 function, and every artifact is returned with ErrStubBackend.
type NativeBackend struct{}

func NewNativeBackend() *NativeBackend {
	return &NativeBackend{}
}

// Generate produces the placeholder artifact for target. The returned error
// is ErrStubBackend on success, so callers must treat it as a warning, not
// a failure, when the artifact is non-nil.
func (b *NativeBackend) Generate(ir *IR, target Target, opts CompilationOptions) (*CompiledArtifact, error) {
	if _, ok := nativeTargets[target]; !ok {
		return nil, NewError(CodeGenerationFailed, "unsupported native target: %s", target).
			WithSuggestion("native code generation supports native-linux, native-windows and native-macos")
	}

	// xor eax, eax; ret
	bytecode := []byte{0x48, 0x31, 0xC0, 0xC3}

	artifact := &CompiledArtifact{
		Bytecode: bytecode,
		Metadata: ArtifactMetadata{
			Target:            target,
			EntryPoint:        ir.EntryPoint,
			ExportedFunctions: []string{ir.EntryPoint},
			Dependencies:      []string{RuntimeDependency},
		},
	}
	return artifact, ErrStubBackend
}
