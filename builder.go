// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package wavelog

// MapExpr returns the map expression for a Secondary object.
//
// The tree is built on first request and cached. If another secondary with a
// structurally identical tree was queried before, MapExpr returns that
// secondary's tree and isAlias is true; AliasOf then returns the canonical
// secondary.
//
// Terminal nodes may refer to other Secondary objects. MapExpr does not
// flatten such chains: clients reconstruct them recursively.
//
// Calling MapExpr on an object that is not Secondary is a precondition
// violation: it logs a warning and returns nil.
//
func (s *Session) MapExpr(h Handle) (n Node, isAlias bool) {
	if s.cleanedUp("MapExpr", h) {
		return nil, false
	}
	e := s.entry(h)
	if e == nil || e.class != Secondary {
		s.violation("MapExpr", h, e)
		return nil, false
	}
	if e.expr != nil {
		return e.expr, e.aliasOf != 0
	}
	d := s.k.Derivation(h)
	if d == nil {
		s.log.Warn("MapExpr: kernel has no derivation for secondary", "handle", h, "name", e.info.Name)
		return nil, false
	}
	n = s.build(d)
	k := key(n)
	if c, ok := s.reg.canon[k]; ok && c != h {
		ce, _ := s.reg.lookup(c)
		e.expr, e.aliasOf = ce.expr, c
		s.log.Debug("alias", "handle", h, "name", e.info.Name, "of", c)
		return e.expr, true
	}
	s.reg.canon[k] = h
	e.expr = n
	return n, false
}

// AliasOf returns the canonical secondary h is an alias of. It only reports
// aliases discovered by previous MapExpr calls.
//
func (s *Session) AliasOf(h Handle) (Handle, bool) {
	if s.cleanedUp("AliasOf", h) {
		return 0, false
	}
	if e, ok := s.reg.lookup(h); ok && e.aliasOf != 0 {
		return e.aliasOf, true
	}
	return 0, false
}

// low returns the declared low bound of h.
//
func (s *Session) low(h Handle) int {
	if e := s.entry(h); e != nil {
		return e.info.Low()
	}
	if info, ok := s.k.Info(h); ok {
		return info.Low()
	}
	return 0
}

// build converts a kernel derivation into an immutable tree. Declared
// indices become physical offsets and part selects are ordered lsb first.
//
// The kernel guarantees well formed derivations; operands missing from a
// malformed one become nil children.
//
func (s *Session) build(d *Derivation) Node {
	if d == nil {
		return nil
	}
	op := func(i int) Node {
		if i < len(d.Operands) {
			return s.build(d.Operands[i])
		}
		return nil
	}
	switch d.Op {
	case OpVar:
		return NewVarRef(d.Object)
	case OpBitSel:
		return NewBitSelect(d.Object, d.Index-s.low(d.Object))
	case OpPartSel:
		l := s.low(d.Object)
		return NewPartSelect(d.Object, d.Left-l, d.Right-l)
	case OpBitNeg, OpBitBuf:
		return NewPrefix(d.Op, op(0))
	case OpBitAnd, OpBitOr, OpBitXor:
		return NewInfix(d.Op, op(0), op(1))
	case OpReplicate:
		return NewReplicate(d.Count, op(0))
	case OpConcat:
		xs := make([]Node, len(d.Operands))
		for i := range xs {
			xs[i] = op(i)
		}
		return &Concat{xs}
	case OpTernary:
		return NewTernary(op(0), op(1), op(2))
	case OpLiteral:
		return NewConst(d.Value)
	}
	panic("unsupported derivation operator " + d.Op.String())
}
