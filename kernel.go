// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package wavelog

// Kernel is the capability interface a simulation kernel provides to a
// Session. All methods are called from the kernel's control thread.
//
type Kernel interface {
	// Open attaches a fast logging client to the kernel. It fails if fast
	// logging is not available in this simulation or if a client is already
	// attached.
	Open() error

	// Info returns what the kernel knows about h. The second return value is
	// false if h is not a valid handle.
	Info(h Handle) (ObjectInfo, bool)

	// Derivation returns the kernel's description of a folded object's value.
	// It returns nil for objects that are not folded.
	Derivation(h Handle) *Derivation

	// Location returns the live value location of a live object, or the
	// constant value of a constant object. If strength is true, the location
	// must carry drive strengths. It returns nil if no such location exists.
	Location(h Handle, strength bool) *Location

	// Materialize forces the kernel to compute and store the value of a folded
	// object on every change and returns its location.
	Materialize(h Handle) *Location

	// Watch installs fn as a value change hook on h. fn receives the current
	// simulation time. The returned function removes the hook.
	Watch(h Handle, fn func(t uint64)) (cancel func())
}

// A Derivation is the kernel's own description of how a folded object's value
// is computed. Unlike map expressions, bit and part selects use declared
// (source level) indices.
//
// Operand usage depends on Op: OpBitNeg and OpBitBuf use Operands[0], infix
// operators use Operands[0] and Operands[1], OpReplicate uses Count and
// Operands[0], OpConcat uses all operands (most significant first), OpTernary
// uses exactly 3 operands (condition, true and false values).
//
type Derivation struct {
	Op          Op
	Object      Handle // OpVar, OpBitSel, OpPartSel
	Index       int    // OpBitSel
	Left, Right int    // OpPartSel, as written in the source
	Count       int    // OpReplicate
	Operands    []*Derivation
	Value       Vector // OpLiteral
}
