// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package wavelog

import "strconv"

// A Handle is an opaque reference to a simulated object. Handles are issued by
// the Kernel and are only ever compared for identity. The zero Handle is never
// valid.
//
type Handle uint64

// String returns h as an hexadecimal string.
//
func (h Handle) String() string { return "#" + strconv.FormatUint(uint64(h), 16) }

// Class is the value classification of an object.
//
type Class uint8

// Value classifications.
//
const (
	Unavailable Class = iota // no waveform available
	Primary                  // directly loggable
	Secondary                // can be reconstructed from a map expression
	Literal                  // constant value
)

var classNames = [...]string{
	Unavailable: "unavailable",
	Primary:     "primary",
	Secondary:   "secondary",
	Literal:     "literal",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "Class(" + strconv.Itoa(int(c)) + ")"
}

// Lang identifies the design language an object originates from.
//
type Lang uint8

// Supported languages. Verilog objects accept at most one fast callback; VHDL
// objects accept any number.
//
const (
	Verilog Lang = iota
	VHDL
)

func (l Lang) String() string {
	if l == VHDL {
		return "vhdl"
	}
	return "verilog"
}

func (l Lang) singleSubscriber() bool { return l == Verilog }

// Shape is the structural kind of an object.
//
type Shape uint8

// Object shapes.
//
const (
	ShapeScalar Shape = iota
	ShapeVector
	ShapeUnpacked // unpacked array
	ShapeStruct
	ShapeClass
)

// Composite returns true for shapes that can never get a fast callback.
//
func (s Shape) Composite() bool { return s >= ShapeUnpacked }

// Fate is the verdict of the kernel's optimizer for an object.
//
type Fate uint8

// Optimizer verdicts.
//
const (
	FateRemoved  Fate = iota // optimized away, not reconstructable
	FateLive                 // value kept in the kernel's memory image
	FateFolded               // storage eliminated, value derivable from others
	FateConstant             // value never changes
)

// ObjectInfo is what the kernel knows about an object.
//
type ObjectInfo struct {
	Name  string
	Lang  Lang
	Shape Shape
	// Declared range [Left:Right]. Left may be lower than Right.
	Left, Right int
	// Encoding of the value location for that object.
	Encoding ValueKind
	// Number of expanded drivers. Strength callbacks require Expanded > 0.
	Expanded int
	Fate     Fate
}

// Width returns the object's bit width.
//
func (o *ObjectInfo) Width() int {
	if o.Left > o.Right {
		return o.Left - o.Right + 1
	}
	return o.Right - o.Left + 1
}

// Low returns the object's declared low bound. Bit offsets are relative to
// this bound.
//
func (o *ObjectInfo) Low() int {
	if o.Left < o.Right {
		return o.Left
	}
	return o.Right
}

// Contains returns true if the declared index i is within the object's range.
//
func (o *ObjectInfo) Contains(i int) bool {
	l := o.Low()
	return i >= l && i < l+o.Width()
}
