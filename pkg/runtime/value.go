// Package runtime implements the tree-walking evaluator for Synthesis
// programs: runtime values, the flat variable environment, and builtin
// dispatch against the audio and graphics backends.
package runtime

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a runtime value. The variant set is closed.
type Value interface {
	valueNode()
	TypeName() string
	String() string
}

// Integer is a 64-bit signed integer value.
type Integer int64

func (Integer) valueNode()       {}
func (Integer) TypeName() string { return "Integer" }
func (v Integer) String() string { return strconv.FormatInt(int64(v), 10) }

// Float is a 64-bit floating point value.
type Float float64

func (Float) valueNode()       {}
func (Float) TypeName() string { return "Float" }
func (v Float) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }

// Boolean is true or false.
type Boolean bool

func (Boolean) valueNode()       {}
func (Boolean) TypeName() string { return "Boolean" }
func (v Boolean) String() string { return strconv.FormatBool(bool(v)) }

// String is a text value.
type String string

func (String) valueNode()       {}
func (String) TypeName() string { return "String" }
func (v String) String() string { return strconv.Quote(string(v)) }

// Array is an ordered value sequence.
type Array []Value

func (Array) valueNode()       {}
func (Array) TypeName() string { return "Array" }
func (v Array) String() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// StreamKind tags what flows through a stream.
type StreamKind int

const (
	StreamAudio StreamKind = iota
	StreamVisual
	StreamControl
)

var streamKindNames = [...]string{
	StreamAudio:   "audio",
	StreamVisual:  "visual",
	StreamControl: "control",
}

func (k StreamKind) String() string {
	if int(k) < len(streamKindNames) {
		return streamKindNames[k]
	}
	return fmt.Sprintf("StreamKind(%d)", int(k))
}

// Stream is a live data source handle.
type Stream struct {
	Name       string
	Kind       StreamKind
	SampleRate float64
}

func (Stream) valueNode()       {}
func (Stream) TypeName() string { return "Stream" }
func (v Stream) String() string {
	return fmt.Sprintf("<%s stream %q @ %gHz>", v.Kind, v.Name, v.SampleRate)
}

// BlockField is one named field of a Block, in declaration order.
type BlockField struct {
	Name  string
	Value Value
}

// Block is an ordered collection of named values, the runtime form of a
// block expression and of folded named arguments.
type Block []BlockField

func (Block) valueNode()       {}
func (Block) TypeName() string { return "Block" }
func (v Block) String() string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = f.Name + ": " + f.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Field looks up a named field.
func (v Block) Field(name string) (Value, bool) {
	for _, f := range v {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Equal compares two values structurally. Mixed Integer/Float comparisons
// compare numerically.
func Equal(a, b Value) bool {
	if an, aok := asNumber(a); aok {
		if bn, bok := asNumber(b); bok {
			return an == bn
		}
		return false
	}
	switch av := a.(type) {
	case Boolean:
		bv, ok := b.(Boolean)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Stream:
		bv, ok := b.(Stream)
		return ok && av == bv
	}
	return false
}

// asNumber widens Integer and Float to float64 for mixed arithmetic.
func asNumber(v Value) (float64, bool) {
	switch n := v.(type) {
	case Integer:
		return float64(n), true
	case Float:
		return float64(n), true
	}
	return 0, false
}

// copyValue deep-copies arrays and blocks so environment snapshots cannot
// alias live interpreter state.
func copyValue(v Value) Value {
	switch val := v.(type) {
	case Array:
		dup := make(Array, len(val))
		for i, e := range val {
			dup[i] = copyValue(e)
		}
		return dup
	case Block:
		dup := make(Block, len(val))
		for i, f := range val {
			dup[i] = BlockField{Name: f.Name, Value: copyValue(f.Value)}
		}
		return dup
	}
	return v
}
