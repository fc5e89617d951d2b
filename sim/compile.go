// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package sim

import (
	wl "github.com/db47h/wavelog"
	"github.com/db47h/wavelog/recon"
	"github.com/pkg/errors"
)

// folded returns the evaluation function of a folded object, compiling it on
// first use.
//
func (c *Circuit) folded(o *object) (evalFn, error) {
	switch o.mark {
	case markDone:
		return o.eval, nil
	case markBusy:
		return nil, errors.New("combinational loop through " + o.decl.Name)
	}
	o.mark = markBusy
	ev, err := c.expr(o.expr)
	if err != nil {
		return nil, errors.Wrap(err, o.decl.Name)
	}
	o.eval = func(c *Circuit) wl.Vector { return o.decl.fit(ev(c)) }
	o.mark = markDone
	return o.eval, nil
}

// source returns a function reading the whole value of o.
//
func (c *Circuit) source(o *object) (evalFn, error) {
	switch o.fate {
	case wl.FateLive:
		pins := o.pins
		return func(c *Circuit) wl.Vector {
			v := make(wl.Vector, len(pins))
			for i, p := range pins {
				v[i] = c.s0[p]
			}
			return v
		}, nil
	case wl.FateFolded:
		return c.folded(o)
	case wl.FateConstant:
		v := o.value
		return func(*Circuit) wl.Vector { return v.Copy() }, nil
	}
	return nil, errors.New("reference to removed object " + o.decl.Name)
}

// expr compiles e.
//
func (c *Circuit) expr(e *wl.Derivation) (evalFn, error) {
	switch e.Op {
	case wl.OpVar, wl.OpBitSel, wl.OpPartSel:
		o := c.d.object(e.Object)
		if o == nil {
			return nil, errors.Errorf("object %v not in design", e.Object)
		}
		src, err := c.source(o)
		if err != nil {
			return nil, err
		}
		l := o.decl.low()
		switch e.Op {
		case wl.OpBitSel:
			off := e.Index - l
			if o.pins != nil {
				p := o.pins[off]
				return func(c *Circuit) wl.Vector { return wl.Vector{c.s0[p]} }, nil
			}
			return func(c *Circuit) wl.Vector { return recon.Slice(src(c), off, off) }, nil
		case wl.OpPartSel:
			lsb, msb := e.Left-l, e.Right-l
			return func(c *Circuit) wl.Vector { return recon.Slice(src(c), lsb, msb) }, nil
		}
		return src, nil
	case wl.OpLiteral:
		v := e.Value.Copy()
		return func(*Circuit) wl.Vector { return v }, nil
	}

	xs := make([]evalFn, len(e.Operands))
	for i, x := range e.Operands {
		ev, err := c.expr(x)
		if err != nil {
			return nil, err
		}
		xs[i] = ev
	}
	switch e.Op {
	case wl.OpBitNeg:
		x := xs[0]
		return func(c *Circuit) wl.Vector { return recon.Not(x(c)) }, nil
	case wl.OpBitBuf:
		x := xs[0]
		return func(c *Circuit) wl.Vector { return recon.Buf(x(c)) }, nil
	case wl.OpBitAnd, wl.OpBitOr, wl.OpBitXor:
		f := map[wl.Op]func(a, b wl.Vector) wl.Vector{
			wl.OpBitAnd: recon.And,
			wl.OpBitOr:  recon.Or,
			wl.OpBitXor: recon.Xor,
		}[e.Op]
		a, b := xs[0], xs[1]
		return func(c *Circuit) wl.Vector { return f(a(c), b(c)) }, nil
	case wl.OpReplicate:
		n, x := e.Count, xs[0]
		return func(c *Circuit) wl.Vector { return recon.Replicate(n, x(c)) }, nil
	case wl.OpConcat:
		return func(c *Circuit) wl.Vector {
			vs := make([]wl.Vector, len(xs))
			for i, x := range xs {
				vs[i] = x(c)
			}
			return recon.Concat(vs...)
		}, nil
	case wl.OpTernary:
		cond, t, f := xs[0], xs[1], xs[2]
		return func(c *Circuit) wl.Vector { return recon.Select(cond(c), t(c), f(c)) }, nil
	}
	return nil, errors.New("unsupported operator " + e.Op.String())
}
