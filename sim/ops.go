// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package sim

import wl "github.com/db47h/wavelog"

// Expression functions. Indices are declared (source level) indices.

// Ref returns the whole value of h.
//
func Ref(h wl.Handle) *wl.Derivation { return &wl.Derivation{Op: wl.OpVar, Object: h} }

// Bit returns h[index].
//
func Bit(h wl.Handle, index int) *wl.Derivation {
	return &wl.Derivation{Op: wl.OpBitSel, Object: h, Index: index}
}

// Part returns h[left:right].
//
func Part(h wl.Handle, left, right int) *wl.Derivation {
	return &wl.Derivation{Op: wl.OpPartSel, Object: h, Left: left, Right: right}
}

func prefix(op wl.Op) func(x *wl.Derivation) *wl.Derivation {
	return func(x *wl.Derivation) *wl.Derivation {
		return &wl.Derivation{Op: op, Operands: []*wl.Derivation{x}}
	}
}

func infix(op wl.Op) func(a, b *wl.Derivation) *wl.Derivation {
	return func(a, b *wl.Derivation) *wl.Derivation {
		return &wl.Derivation{Op: op, Operands: []*wl.Derivation{a, b}}
	}
}

var (
	// Not returns ~x.
	Not = prefix(wl.OpBitNeg)
	// Buf returns buf(x).
	Buf = prefix(wl.OpBitBuf)
	// And returns a & b.
	And = infix(wl.OpBitAnd)
	// Or returns a | b.
	Or = infix(wl.OpBitOr)
	// Xor returns a ^ b.
	Xor = infix(wl.OpBitXor)
)

// Repl returns {n{x}}.
//
func Repl(n int, x *wl.Derivation) *wl.Derivation {
	return &wl.Derivation{Op: wl.OpReplicate, Count: n, Operands: []*wl.Derivation{x}}
}

// Cat returns {xs[0], xs[1], ...}.
//
func Cat(xs ...*wl.Derivation) *wl.Derivation {
	return &wl.Derivation{Op: wl.OpConcat, Operands: xs}
}

// Cond returns c ? t : f.
//
func Cond(c, t, f *wl.Derivation) *wl.Derivation {
	return &wl.Derivation{Op: wl.OpTernary, Operands: []*wl.Derivation{c, t, f}}
}

// Lit returns a constant.
//
func Lit(v wl.Vector) *wl.Derivation { return &wl.Derivation{Op: wl.OpLiteral, Value: v.Copy()} }
