//go:build !js

// The synthesis command runs a Synthesis script once through the
// interpreter: parse, execute, report. Use cmd/synview for a live window
// and cmd/synthc to compile artifacts.
package main

import (
	"fmt"
	"os"
	"strings"

	"gosynth/pkg/compiler"
	"gosynth/pkg/runtime"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("Synthesis Language Interpreter v%s\n", version)
		fmt.Printf("Usage: %s <script.syn>\n", os.Args[0])
		fmt.Println("\nAvailable commands:")
		fmt.Println("  --version    Show version information")
		fmt.Println("  --help       Show this help message")
		return
	}

	switch os.Args[1] {
	case "--version":
		fmt.Printf("Synthesis Language v%s\n", version)
		return
	case "--help":
		fmt.Println("Synthesis Language Interpreter")
		fmt.Printf("Usage: %s <script.syn>\n", os.Args[0])
		fmt.Println("\nOptions:")
		fmt.Println("  --version    Show version information")
		fmt.Println("  --help       Show this help message")
		fmt.Println("\nExamples:")
		fmt.Printf("  %s examples/plasma.syn\n", os.Args[0])
		return
	}

	filename := os.Args[1]
	if !strings.HasSuffix(filename, ".syn") {
		fmt.Fprintln(os.Stderr, "Error: Synthesis files must have a .syn extension")
		os.Exit(1)
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Can't read %s: %v\n", filename, err)
		os.Exit(1)
	}

	fmt.Printf("Parsing %s...\n", filename)
	prog, err := compiler.Parse(string(source))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("Running %s...\n", filename)
	interp := runtime.New()
	if err := interp.Execute(prog); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("Program completed successfully.")
	if n := interp.Env().Len(); n > 0 {
		fmt.Printf("Final environment: %d bindings (%s)\n",
			n, strings.Join(interp.Env().Names(), ", "))
	}
}
