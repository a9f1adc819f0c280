// Package compiler implements the Synthesis compilation pipeline: lexing,
// parsing, typed IR construction, optimization, and code generation for the
// WebAssembly and native targets.
package compiler

// Compiler drives the pipeline stages in order: IR construction, then
// optimization, then the backend selected by the compilation target.
type Compiler struct {
	optimizer *Optimizer
	wasm      *WasmBackend
	native    *NativeBackend
}

func NewCompiler() *Compiler {
	return &Compiler{
		optimizer: NewOptimizer(),
		wasm:      NewWasmBackend(),
		native:    NewNativeBackend(),
	}
}

// Compile lowers a parsed program into a compiled artifact. The returned
// error may be ErrStubBackend alongside a usable artifact; every other
// error means no artifact was produced.
func (c *Compiler) Compile(prog *Program, opts CompilationOptions) (*CompiledArtifact, error) {
	if prog == nil || len(prog.Items) == 0 {
		return nil, NewError(CompilationFailed, "program is empty")
	}

	ir, err := BuildIR(prog, opts)
	if err != nil {
		return nil, err
	}

	ir, err = c.optimizer.Optimize(ir, opts)
	if err != nil {
		return nil, err
	}

	if opts.Target.IsNative() {
		return c.native.Generate(ir, opts.Target, opts)
	}
	return c.wasm.Generate(ir, opts)
}

// CompileSource is the one-call form: lex, parse and compile src.
func CompileSource(src string, opts CompilationOptions) (*CompiledArtifact, error) {
	prog, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return NewCompiler().Compile(prog, opts)
}
