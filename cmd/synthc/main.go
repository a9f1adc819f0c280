// Command synthc compiles Synthesis source files to WebAssembly or native
// artifacts and writes a YAML metadata sidecar next to the bytecode.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"

	"gosynth/pkg/compiler"
)

const version = "0.1.0"

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
	okColor   = color.New(color.FgGreen)
)

func main() {
	if err := run(); err != nil {
		errColor.Fprint(os.Stderr, "error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	defaults := compiler.DefaultOptions()

	var (
		targetName  string
		optName     string
		output      string
		debug       bool
		noDebug     bool
		bufferSize  int
		noRealtime  bool
		showVersion bool
	)

	flag.StringVar(&targetName, "target", "wasm", "compilation target (wasm, native-linux, native-windows, native-macos)")
	flag.StringVar(&optName, "optimization", "basic", "optimization level (none, basic, aggressive, creative)")
	flag.StringVar(&optName, "O", "basic", "shorthand for -optimization")
	flag.StringVar(&output, "output", "", "output file path")
	flag.StringVar(&output, "o", "", "shorthand for -output")
	flag.BoolVar(&debug, "debug", true, "include debug information")
	flag.BoolVar(&noDebug, "no-debug", false, "exclude debug information")
	flag.IntVar(&bufferSize, "buffer-size", defaults.StreamBufferSize, "default stream buffer size")
	flag.BoolVar(&noRealtime, "no-realtime", false, "disable real-time optimization priority")
	flag.BoolVar(&showVersion, "version", false, "show version information")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("Synthesis Language Compiler v%s\n", version)
		return nil
	}
	if flag.NArg() != 1 {
		usage()
		return fmt.Errorf("exactly one input file is required")
	}

	input := flag.Arg(0)
	if !strings.HasSuffix(input, ".syn") {
		return compiler.NewError(compiler.CompilationFailed, "input file must have a .syn extension").
			WithSuggestion("rename %s or pass a Synthesis source file", input)
	}

	opts := defaults
	opts.IncludeDebugInfo = includeDebug(debug, noDebug)
	opts.StreamBufferSize = bufferSize
	opts.RealTimePriority = !noRealtime

	var err error
	if opts.Target, err = compiler.ParseTarget(targetName); err != nil {
		return err
	}
	if opts.Optimization, err = compiler.ParseOptimizationLevel(optName); err != nil {
		return err
	}

	if output == "" {
		output = defaultOutput(input, opts.Target)
	}

	source, err := readSource(input)
	if err != nil {
		return err
	}

	fmt.Printf("Synthesis Language Compiler v%s\n", version)
	fmt.Printf("Compiling: %s -> %s\n", input, output)
	fmt.Printf("Target: %s\n", opts.Target)
	fmt.Printf("Optimization: %s\n", opts.Optimization)

	artifact, err := compiler.CompileSource(source, opts)
	if errors.Is(err, compiler.ErrStubBackend) {
		warnColor.Printf("warning: %v\n", err)
		warnColor.Println("the emitted binary is a placeholder, not a runnable program")
	} else if err != nil {
		return err
	}

	if err := os.WriteFile(output, artifact.Bytecode, 0o644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if err := writeMetadata(output+".meta.yaml", artifact.Metadata); err != nil {
		return err
	}

	okColor.Println("\nCompilation successful!")
	fmt.Printf("Output: %s (%d bytes)\n", output, len(artifact.Bytecode))
	fmt.Printf("Metadata: %s.meta.yaml\n", output)
	fmt.Printf("Entry point: %s\n", artifact.Metadata.EntryPoint)
	if n := len(artifact.Metadata.StreamInterfaces); n > 0 {
		fmt.Printf("Stream interfaces: %d\n", n)
		for _, s := range artifact.Metadata.StreamInterfaces {
			fmt.Printf("  - %s (%s -> %s, %gms latency)\n",
				s.Name, s.InputType, s.OutputType, s.LatencyMs)
		}
	}
	if len(artifact.Metadata.Dependencies) > 0 {
		fmt.Printf("Dependencies: %s\n", strings.Join(artifact.Metadata.Dependencies, ", "))
	}
	return nil
}

// includeDebug combines the -debug and -no-debug spellings; the negative
// form wins when both are given.
func includeDebug(debug, noDebug bool) bool {
	return debug && !noDebug
}

// defaultOutput derives the output path from the input stem: `.wasm` for the
// wasm target, a bare executable name for native targets, `.exe` on Windows.
func defaultOutput(input string, target compiler.Target) string {
	stem := strings.TrimSuffix(input, ".syn")
	switch {
	case target == compiler.TargetWindowsX64:
		return stem + ".exe"
	case target.IsNative():
		return stem
	default:
		return stem + ".wasm"
	}
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", compiler.NewError(compiler.FileNotFound, "cannot find %s", path).
			WithSuggestion("check the path and working directory")
	case errors.Is(err, os.ErrPermission):
		return "", compiler.NewError(compiler.PermissionDenied, "cannot read %s", path)
	case err != nil:
		return "", err
	}
	if len(data) == 0 {
		return "", compiler.NewError(compiler.SyntaxError, "%s is empty", path).
			WithSuggestion("add some code to get started")
	}
	return string(data), nil
}

func writeMetadata(path string, meta compiler.ArtifactMetadata) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing metadata sidecar: %w", err)
	}
	return nil
}

func usage() {
	name := os.Args[0]
	fmt.Printf("Synthesis Language Compiler v%s\n", version)
	fmt.Printf("Usage: %s [OPTIONS] <input.syn>\n\n", name)
	fmt.Println("OPTIONS:")
	fmt.Println("  -target <target>          Compilation target (wasm, native-linux, native-windows, native-macos)")
	fmt.Println("  -O, -optimization <level> Optimization level (none, basic, aggressive, creative)")
	fmt.Println("  -o, -output <file>        Output file path")
	fmt.Println("  -debug                    Include debug information (default)")
	fmt.Println("  -no-debug                 Exclude debug information")
	fmt.Println("  -buffer-size <size>       Default stream buffer size (default: 1024)")
	fmt.Println("  -no-realtime              Disable real-time optimization priority")
	fmt.Println("  -version                  Show version information")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Printf("  %s audio_visualizer.syn\n", name)
	fmt.Printf("  %s -target wasm -O creative visualizer.syn\n", name)
	fmt.Printf("  %s -target native-linux -o myapp main.syn\n", name)
}
