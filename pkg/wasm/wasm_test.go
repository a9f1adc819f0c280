package wasm

import (
	"bytes"
	"reflect"
	"testing"
)

func TestAppendUleb(t *testing.T) {
	tests := []struct {
		value    uint64
		expected []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xAC, 0x02}},
		{624485, []byte{0xE5, 0x8E, 0x26}},
	}
	for _, tt := range tests {
		if got := AppendUleb(nil, tt.value); !bytes.Equal(got, tt.expected) {
			t.Errorf("AppendUleb(%d) = % X, want % X", tt.value, got, tt.expected)
		}
	}
}

func TestAppendSleb(t *testing.T) {
	tests := []struct {
		value    int64
		expected []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{-1, []byte{0x7F}},
		{63, []byte{0x3F}},
		{64, []byte{0xC0, 0x00}},
		{-64, []byte{0x40}},
		{-123456, []byte{0xC0, 0xBB, 0x78}},
	}
	for _, tt := range tests {
		if got := AppendSleb(nil, tt.value); !bytes.Equal(got, tt.expected) {
			t.Errorf("AppendSleb(%d) = % X, want % X", tt.value, got, tt.expected)
		}
	}
}

func TestAddTypeDeduplicates(t *testing.T) {
	m := &Module{}
	a := m.AddType(FuncType{Params: []ValueType{I32}, Results: []ValueType{I32}})
	b := m.AddType(FuncType{Params: []ValueType{I32}, Results: []ValueType{F64}})
	c := m.AddType(FuncType{Params: []ValueType{I32}, Results: []ValueType{I32}})
	if a == b {
		t.Error("distinct signatures must get distinct type indices")
	}
	if a != c {
		t.Errorf("identical signatures interned to %d and %d", a, c)
	}
	if len(m.Types) != 2 {
		t.Errorf("module has %d types, want 2", len(m.Types))
	}
}

func TestImportFuncIndices(t *testing.T) {
	m := &Module{}
	first := m.ImportFunc("env", "a", FuncType{})
	m.ImportMemory("env", "memory", MemoryType{Min: 1})
	second := m.ImportFunc("env", "b", FuncType{})
	if first != 0 || second != 1 {
		t.Errorf("import indices = %d, %d; memory imports must not consume function indices", first, second)
	}
	if got := m.NumImportedFuncs(); got != 2 {
		t.Errorf("NumImportedFuncs() = %d, want 2", got)
	}
}

func TestEncodeHeader(t *testing.T) {
	m := &Module{}
	data, err := m.Encode()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	if !bytes.Equal(data, want) {
		t.Errorf("empty module = % X, want just the header % X", data, want)
	}
}

func TestEncodeMinimalModule(t *testing.T) {
	m := &Module{}
	code := &Code{}
	code.I32Const(42)
	code.Drop()
	idx := m.AddFunction(Function{
		TypeIndex: m.AddType(FuncType{}),
		Body:      code.Bytes(),
	})
	m.ExportFunc("main", idx)

	data, err := m.Encode()
	if err != nil {
		t.Fatal(err)
	}

	want := []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00, // header
		0x01, 0x04, 0x01, 0x60, 0x00, 0x00, // type section: () -> ()
		0x03, 0x02, 0x01, 0x00, // function section: one func, type 0
		0x07, 0x08, 0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00, // export section
		0x0A, 0x07, 0x01, 0x05, 0x00, 0x41, 0x2A, 0x1A, 0x0B, // code section
	}
	if !bytes.Equal(data, want) {
		t.Errorf("module bytes:\n got % X\nwant % X", data, want)
	}
}

func TestEncodeLocalsRunLength(t *testing.T) {
	body := encodeBody(Function{
		Locals: []ValueType{I32, I32, F64, I32},
	})
	// 3 groups: 2×i32, 1×f64, 1×i32, then the end opcode.
	want := []byte{0x03, 0x02, 0x7F, 0x01, 0x7C, 0x01, 0x7F, 0x0B}
	if !bytes.Equal(body, want) {
		t.Errorf("body = % X, want % X", body, want)
	}
}

func TestCodeEmitsImmediates(t *testing.T) {
	tests := []struct {
		name     string
		build    func(c *Code)
		expected []byte
	}{
		{"I32Const Negative", func(c *Code) { c.I32Const(-1) }, []byte{0x41, 0x7F}},
		{"LocalGet", func(c *Code) { c.LocalGet(5) }, []byte{0x20, 0x05}},
		{"Call", func(c *Code) { c.Call(3) }, []byte{0x10, 0x03}},
		{"Loop Br End", func(c *Code) { c.Loop(); c.Br(0); c.End() }, []byte{0x03, 0x40, 0x0C, 0x00, 0x0B}},
		{"F64Load", func(c *Code) { c.F64Load(0) }, []byte{0x2B, 0x03, 0x00}},
		{
			"F64Const",
			func(c *Code) { c.F64Const(1.0) },
			[]byte{0x44, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF0, 0x3F},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Code{}
			tt.build(c)
			if got := c.Bytes(); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("bytes = % X, want % X", got, tt.expected)
			}
		})
	}
}
