// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package wavelog

import (
	"strconv"
	"strings"
)

// Op is a map expression operator. It is the discriminant of Node values.
//
// More operators may be added in the future. Clients that find an operator
// they do not know about should use SetCallbackForSecondary for that object.
//
type Op uint8

// Map expression operators.
//
const (
	OpVar       Op = iota // *VarRef
	OpBitSel              // *BitSelect
	OpPartSel             // *PartSelect
	OpConcat              // *Concat
	OpReplicate           // *Replicate
	OpBitAnd              // *Infix
	OpBitOr               // *Infix
	OpBitXor              // *Infix
	OpBitNeg              // *Prefix
	OpBitBuf              // *Prefix
	OpTernary             // *Ternary
	OpLiteral             // *Const
)

var opNames = [...]string{
	OpVar:       "var",
	OpBitSel:    "bitsel",
	OpPartSel:   "partsel",
	OpConcat:    "concat",
	OpReplicate: "replicate",
	OpBitAnd:    "&",
	OpBitOr:     "|",
	OpBitXor:    "^",
	OpBitNeg:    "~",
	OpBitBuf:    "buf",
	OpTernary:   "?:",
	OpLiteral:   "literal",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "Op(" + strconv.Itoa(int(op)) + ")"
}

// IsInfix returns true for binary bitwise operators.
//
func (op Op) IsInfix() bool { return op == OpBitAnd || op == OpBitOr || op == OpBitXor }

// IsPrefix returns true for unary bitwise operators.
//
func (op Op) IsPrefix() bool { return op == OpBitNeg || op == OpBitBuf }

// A Node is an immutable map expression tree node. The set of node types is
// closed: *VarRef, *BitSelect, *PartSelect, *Prefix, *Infix, *Replicate,
// *Concat, *Ternary and *Const.
//
// Internal nodes own their children. Terminal nodes refer to objects by
// Handle; the referenced object may itself be Secondary, in which case the
// client must reconstruct it too.
//
type Node interface {
	Op() Op
	node()
}

func (*VarRef) node()     {}
func (*BitSelect) node()  {}
func (*PartSelect) node() {}
func (*Prefix) node()     {}
func (*Infix) node()      {}
func (*Replicate) node()  {}
func (*Concat) node()     {}
func (*Ternary) node()    {}
func (*Const) node()      {}

// VarRef is the whole value of an object.
//
type VarRef struct{ h Handle }

// NewVarRef returns a reference to h.
//
func NewVarRef(h Handle) *VarRef { return &VarRef{h} }

// Op implements Node.
//
func (*VarRef) Op() Op { return OpVar }

// Handle returns the referenced object.
//
func (n *VarRef) Handle() Handle { return n.h }

// BitSelect is a single bit of an object. The offset is a physical bit offset
// from the object's declared low bound, not a source level index: for
// 'wire [7:4] w', w[6] has offset 2.
//
type BitSelect struct {
	h   Handle
	off int
}

// NewBitSelect returns a select of bit offset off in h.
//
func NewBitSelect(h Handle, off int) *BitSelect { return &BitSelect{h, off} }

// Op implements Node.
//
func (*BitSelect) Op() Op { return OpBitSel }

// Handle returns the selected object.
//
func (n *BitSelect) Handle() Handle { return n.h }

// Offset returns the physical bit offset.
//
func (n *BitSelect) Offset() int { return n.off }

// PartSelect is a contiguous range of bits of an object. Lsb and Msb are
// physical bit offsets and Msb >= Lsb always holds, regardless of the
// object's declared direction.
//
type PartSelect struct {
	h        Handle
	lsb, msb int
}

// NewPartSelect returns a part select of h between bit offsets a and b, in
// any order.
//
func NewPartSelect(h Handle, a, b int) *PartSelect {
	if a > b {
		a, b = b, a
	}
	return &PartSelect{h, a, b}
}

// Op implements Node.
//
func (*PartSelect) Op() Op { return OpPartSel }

// Handle returns the selected object.
//
func (n *PartSelect) Handle() Handle { return n.h }

// Lsb returns the offset of the least significant selected bit.
//
func (n *PartSelect) Lsb() int { return n.lsb }

// Msb returns the offset of the most significant selected bit.
//
func (n *PartSelect) Msb() int { return n.msb }

// Width returns the number of selected bits.
//
func (n *PartSelect) Width() int { return n.msb - n.lsb + 1 }

// Prefix is a unary bitwise operation: OpBitNeg or OpBitBuf (the Verilog buf
// primitive).
//
type Prefix struct {
	op Op
	x  Node
}

// NewPrefix returns op applied to x. It panics if op is not a prefix operator.
//
func NewPrefix(op Op, x Node) *Prefix {
	if !op.IsPrefix() {
		panic("not a prefix operator: " + op.String())
	}
	return &Prefix{op, x}
}

// Op implements Node.
//
func (n *Prefix) Op() Op { return n.op }

// Operand returns the operand.
//
func (n *Prefix) Operand() Node { return n.x }

// Infix is a binary bitwise operation: OpBitAnd, OpBitOr or OpBitXor.
//
type Infix struct {
	op       Op
	lhs, rhs Node
}

// NewInfix returns lhs op rhs. It panics if op is not an infix operator.
//
func NewInfix(op Op, lhs, rhs Node) *Infix {
	if !op.IsInfix() {
		panic("not an infix operator: " + op.String())
	}
	return &Infix{op, lhs, rhs}
}

// Op implements Node.
//
func (n *Infix) Op() Op { return n.op }

// Lhs returns the left hand side operand.
//
func (n *Infix) Lhs() Node { return n.lhs }

// Rhs returns the right hand side operand.
//
func (n *Infix) Rhs() Node { return n.rhs }

// Replicate is {count{operand}}.
//
type Replicate struct {
	count int
	x     Node
}

// NewReplicate returns x replicated count times.
//
func NewReplicate(count int, x Node) *Replicate { return &Replicate{count, x} }

// Op implements Node.
//
func (*Replicate) Op() Op { return OpReplicate }

// Count returns the replication count.
//
func (n *Replicate) Count() int { return n.count }

// Operand returns the replicated operand.
//
func (n *Replicate) Operand() Node { return n.x }

// Concat is {operand[0], operand[1], ...}. Operand 0 is the most significant.
//
type Concat struct{ xs []Node }

// NewConcat returns the concatenation of xs.
//
func NewConcat(xs ...Node) *Concat {
	return &Concat{append([]Node(nil), xs...)}
}

// Op implements Node.
//
func (*Concat) Op() Op { return OpConcat }

// Len returns the number of operands.
//
func (n *Concat) Len() int { return len(n.xs) }

// Operand returns operand i.
//
func (n *Concat) Operand(i int) Node { return n.xs[i] }

// Ternary is cond ? then : else.
//
type Ternary struct{ xs [3]Node }

// NewTernary returns cond ? t : f.
//
func NewTernary(cond, t, f Node) *Ternary { return &Ternary{[3]Node{cond, t, f}} }

// Op implements Node.
//
func (*Ternary) Op() Op { return OpTernary }

// Operand returns operand i: 0 is the condition, 1 the value if true, 2 the
// value if false.
//
func (n *Ternary) Operand(i int) Node { return n.xs[i] }

// Cond returns the condition.
//
func (n *Ternary) Cond() Node { return n.xs[0] }

// Then returns the value if the condition is true.
//
func (n *Ternary) Then() Node { return n.xs[1] }

// Else returns the value if the condition is false.
//
func (n *Ternary) Else() Node { return n.xs[2] }

// Const is an inlined constant.
//
type Const struct{ v Vector }

// NewConst returns a constant node holding a copy of v.
//
func NewConst(v Vector) *Const { return &Const{v.Copy()} }

// Op implements Node.
//
func (*Const) Op() Op { return OpLiteral }

// Value returns a copy of the constant value.
//
func (n *Const) Value() Vector { return n.v.Copy() }

// Width returns the constant's width.
//
func (n *Const) Width() int { return len(n.v) }

// Walk traverses n depth first, parents before children, operands in order.
// It stops descending into a node's children when fn returns false.
//
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case *Prefix:
		Walk(n.x, fn)
	case *Infix:
		Walk(n.lhs, fn)
		Walk(n.rhs, fn)
	case *Replicate:
		Walk(n.x, fn)
	case *Concat:
		for _, x := range n.xs {
			Walk(x, fn)
		}
	case *Ternary:
		for _, x := range n.xs {
			Walk(x, fn)
		}
	}
}

// Terminals returns the handles referenced by n, in traversal order and
// without duplicates.
//
func Terminals(n Node) []Handle {
	var hs []Handle
	seen := make(map[Handle]bool)
	Walk(n, func(n Node) bool {
		var h Handle
		switch n := n.(type) {
		case *VarRef:
			h = n.h
		case *BitSelect:
			h = n.h
		case *PartSelect:
			h = n.h
		default:
			return true
		}
		if !seen[h] {
			seen[h] = true
			hs = append(hs, h)
		}
		return true
	})
	return hs
}

// key returns a string that is identical for structurally identical trees.
//
func key(n Node) string {
	var b strings.Builder
	writeKey(&b, n)
	return b.String()
}

func writeKey(b *strings.Builder, n Node) {
	u := func(v uint64) { b.WriteString(strconv.FormatUint(v, 36)) }
	i := func(v int) { b.WriteString(strconv.Itoa(v)) }
	switch n := n.(type) {
	case *VarRef:
		b.WriteByte('v')
		u(uint64(n.h))
	case *BitSelect:
		b.WriteByte('b')
		u(uint64(n.h))
		b.WriteByte(':')
		i(n.off)
	case *PartSelect:
		b.WriteByte('p')
		u(uint64(n.h))
		b.WriteByte(':')
		i(n.lsb)
		b.WriteByte(':')
		i(n.msb)
	case *Prefix:
		b.WriteString(n.op.String())
		b.WriteByte('(')
		writeKey(b, n.x)
		b.WriteByte(')')
	case *Infix:
		b.WriteString(n.op.String())
		b.WriteByte('(')
		writeKey(b, n.lhs)
		b.WriteByte(',')
		writeKey(b, n.rhs)
		b.WriteByte(')')
	case *Replicate:
		b.WriteByte('r')
		i(n.count)
		b.WriteByte('(')
		writeKey(b, n.x)
		b.WriteByte(')')
	case *Concat:
		b.WriteString("c(")
		for j, x := range n.xs {
			if j > 0 {
				b.WriteByte(',')
			}
			writeKey(b, x)
		}
		b.WriteByte(')')
	case *Ternary:
		b.WriteString("t(")
		for j, x := range n.xs {
			if j > 0 {
				b.WriteByte(',')
			}
			writeKey(b, x)
		}
		b.WriteByte(')')
	case *Const:
		b.WriteByte('l')
		b.WriteString(n.v.String())
	}
}
