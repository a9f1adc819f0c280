package main

import (
	"testing"

	"gosynth/pkg/compiler"
)

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		input    string
		target   compiler.Target
		expected string
	}{
		{"visualizer.syn", compiler.TargetWasm, "visualizer.wasm"},
		{"visualizer.syn", compiler.TargetLinuxX64, "visualizer"},
		{"visualizer.syn", compiler.TargetMacOSX64, "visualizer"},
		{"visualizer.syn", compiler.TargetWindowsX64, "visualizer.exe"},
		{"demos/plasma.syn", compiler.TargetLinuxX64, "demos/plasma"},
	}
	for _, tt := range tests {
		if got := defaultOutput(tt.input, tt.target); got != tt.expected {
			t.Errorf("defaultOutput(%q, %s) = %q, want %q", tt.input, tt.target, got, tt.expected)
		}
	}
}

func TestIncludeDebug(t *testing.T) {
	tests := []struct {
		debug    bool
		noDebug  bool
		expected bool
	}{
		{debug: true, noDebug: false, expected: true},
		{debug: true, noDebug: true, expected: false},
		{debug: false, noDebug: false, expected: false},
		{debug: false, noDebug: true, expected: false},
	}
	for _, tt := range tests {
		if got := includeDebug(tt.debug, tt.noDebug); got != tt.expected {
			t.Errorf("includeDebug(%v, %v) = %v, want %v", tt.debug, tt.noDebug, got, tt.expected)
		}
	}
}
