// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package recon reconstructs the values of secondary objects from their map
// expressions.
//
// It works on the 4-state values of package wavelog with Verilog semantics:
// bitwise operators zero extend the narrower operand, buf turns z into x,
// concatenation puts its first operand in the most significant bits and a
// ternary with an unknown condition merges both values.
//
package recon

import (
	wl "github.com/db47h/wavelog"
	"github.com/pkg/errors"
)

// ErrUnknownOp is returned for map expression operators this package does not
// know about. Clients should ask the kernel to log such objects with
// SetCallbackForSecondary.
//
var ErrUnknownOp = errors.New("unknown map expression operator")

// Eval computes the value of n. value returns the current value of terminal
// objects.
//
func Eval(n wl.Node, value func(wl.Handle) (wl.Vector, error)) (wl.Vector, error) {
	ev := func(n wl.Node) (wl.Vector, error) { return Eval(n, value) }
	switch n := n.(type) {
	case *wl.VarRef:
		return value(n.Handle())
	case *wl.BitSelect:
		v, err := value(n.Handle())
		if err != nil {
			return nil, err
		}
		return Slice(v, n.Offset(), n.Offset()), nil
	case *wl.PartSelect:
		v, err := value(n.Handle())
		if err != nil {
			return nil, err
		}
		return Slice(v, n.Lsb(), n.Msb()), nil
	case *wl.Prefix:
		x, err := ev(n.Operand())
		if err != nil {
			return nil, err
		}
		if n.Op() == wl.OpBitBuf {
			return Buf(x), nil
		}
		return Not(x), nil
	case *wl.Infix:
		a, err := ev(n.Lhs())
		if err != nil {
			return nil, err
		}
		b, err := ev(n.Rhs())
		if err != nil {
			return nil, err
		}
		switch n.Op() {
		case wl.OpBitAnd:
			return And(a, b), nil
		case wl.OpBitOr:
			return Or(a, b), nil
		}
		return Xor(a, b), nil
	case *wl.Replicate:
		x, err := ev(n.Operand())
		if err != nil {
			return nil, err
		}
		return Replicate(n.Count(), x), nil
	case *wl.Concat:
		xs := make([]wl.Vector, n.Len())
		for i := range xs {
			x, err := ev(n.Operand(i))
			if err != nil {
				return nil, err
			}
			xs[i] = x
		}
		return Concat(xs...), nil
	case *wl.Ternary:
		var xs [3]wl.Vector
		for i := range xs {
			x, err := ev(n.Operand(i))
			if err != nil {
				return nil, err
			}
			xs[i] = x
		}
		return Select(xs[0], xs[1], xs[2]), nil
	case *wl.Const:
		return n.Value(), nil
	case nil:
		return nil, errors.New("nil map expression")
	}
	return nil, errors.Wrap(ErrUnknownOp, n.Op().String())
}

// A Resolver reconstructs object values through a Session, following chains
// of secondaries.
//
type Resolver struct {
	S *wl.Session
	// Primary returns the current value of a Primary or Literal object,
	// usually by loading the location returned by SetCallback.
	Primary func(wl.Handle) (wl.Vector, error)

	busy map[wl.Handle]bool
}

// Value returns the current value of h. Secondary objects are reconstructed
// recursively and sized to their declared width. X and z bits of 2-state
// objects read as 0.
//
func (r *Resolver) Value(h wl.Handle) (wl.Vector, error) {
	switch c := r.S.Classify(h); c {
	case wl.Primary, wl.Literal:
		return r.Primary(h)
	case wl.Secondary:
	default:
		return nil, errors.Errorf("object %v is %v", h, c)
	}
	if r.busy == nil {
		r.busy = make(map[wl.Handle]bool)
	}
	if r.busy[h] {
		return nil, errors.Errorf("map expression loop through %v", h)
	}
	n, _ := r.S.MapExpr(h)
	if n == nil {
		return nil, errors.Errorf("no map expression for %v", h)
	}
	r.busy[h] = true
	defer delete(r.busy, h)
	v, err := Eval(n, r.Value)
	if err != nil {
		return nil, errors.Wrapf(err, "reconstruct %v", h)
	}
	if info, ok := r.S.Object(h); ok {
		v = Resize(v, info.Width())
		if info.Encoding == wl.TwoState {
			v = TwoState(v)
		}
	}
	return v, nil
}
