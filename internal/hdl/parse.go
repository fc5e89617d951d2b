// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hdl reads the small netlist language used by the wavelog command.
//
// A design is a list of declarations, optionally grouped in modules whose name
// becomes the hierarchical prefix of the objects they declare:
//
//	module top;
//	  wire [7:0] a;                // 2-state, undriven
//	  logic [3:0] b;               // 4-state
//	  tri pull en;                 // 4-state with drive strength
//	  signal s : [1:0];            // VHDL object
//	  wire [3:0] mem [4];          // unpacked array of 4 elements
//	  wire [7:0] c = a & ~{2{b}};  // continuous assignment
//	  const [3:0] k = 4'b1010;     // constant
//	endmodule
//
// Expressions support bit and part selects, ~, buf(x), &, ^, |, c ? t : f,
// concatenations {a, b} and replications {n{x}}, from highest to lowest
// precedence.
//
package hdl

import (
	"strings"

	wl "github.com/db47h/wavelog"
	"github.com/db47h/wavelog/internal/lex"
	"github.com/db47h/wavelog/sim"
	"github.com/pkg/errors"
)

var strengths = map[string]wl.Strength{
	"small":  wl.Small,
	"medium": wl.Medium,
	"weak":   wl.Weak,
	"large":  wl.Large,
	"pull":   wl.Pull,
	"strong": wl.Strong,
	"supply": wl.Supply,
}

// Parser reads a design description into a sim.Design.
//
type Parser struct {
	// Name of the input, used in error messages.
	Name  string
	Input string

	l     lex.Interface
	i     lex.Item
	d     *sim.Design
	scope string
}

// Parse parses the input and declares its objects in d.
//
func (p *Parser) Parse(d *sim.Design) error {
	p.d = d
	p.l = Lexer(p.Input)
	p.next()
	for p.i.Type != EOF {
		if p.i.Type != Ident {
			return p.unexpected("declaration")
		}
		var err error
		switch kw := p.i.Value.(string); kw {
		case "module":
			err = p.module()
		case "endmodule":
			p.scope = ""
			p.next()
		case "wire", "logic", "tri", "const":
			err = p.decl(kw)
		case "signal":
			err = p.signal()
		default:
			return p.unexpected("declaration")
		}
		if err != nil {
			return err
		}
	}
	if e, ok := p.i.Value.(error); ok {
		return errors.Wrap(e, p.Name)
	}
	return nil
}

// Read is a shorthand for (&Parser{Name: name, Input: input}).Parse(d).
//
func Read(d *sim.Design, name, input string) error {
	p := &Parser{Name: name, Input: input}
	return p.Parse(d)
}

func (p *Parser) next() { p.i = p.l.Lex() }

func (p *Parser) punct(r rune) bool {
	v, ok := p.i.Value.(rune)
	return p.i.Type == Punct && ok && v == r
}

func (p *Parser) expect(r rune) error {
	if !p.punct(r) {
		return p.unexpected("'" + string(r) + "'")
	}
	p.next()
	return nil
}

func (p *Parser) ident() (string, lex.Pos, error) {
	if p.i.Type != Ident {
		return "", 0, p.unexpected("identifier")
	}
	s, pos := p.i.Value.(string), p.i.Pos
	p.next()
	return s, pos, nil
}

func (p *Parser) integer() (int, error) {
	if p.i.Type != Int {
		return 0, p.unexpected("integer")
	}
	n := p.i.Value.(int)
	p.next()
	return n, nil
}

func (p *Parser) unexpected(what string) error {
	if p.i.Type == Error {
		return parseError(p.Name, p.Input, p.i.Pos, p.i.String())
	}
	return parseError(p.Name, p.Input, p.i.Pos, "expected "+what+", got "+p.i.String())
}

func (p *Parser) module() error {
	p.next()
	name, _, err := p.ident()
	if err != nil {
		return err
	}
	p.scope = name + "."
	return p.expect(';')
}

// rng parses [left:right].
//
func (p *Parser) rng() (left, right int, err error) {
	if err = p.expect('['); err != nil {
		return
	}
	if left, err = p.integer(); err != nil {
		return
	}
	if err = p.expect(':'); err != nil {
		return
	}
	if right, err = p.integer(); err != nil {
		return
	}
	err = p.expect(']')
	return
}

func (p *Parser) decl(kw string) error {
	var decl sim.Decl
	switch kw {
	case "logic":
		decl.States = wl.FourState
	case "tri":
		decl.States, decl.Strength = wl.FourState, wl.Strong
	}
	p.next()
	if p.i.Type == Ident {
		if s, ok := strengths[p.i.Value.(string)]; ok {
			decl.Strength = s
			p.next()
		}
	}
	if p.punct('[') {
		l, r, err := p.rng()
		if err != nil {
			return err
		}
		decl.Left, decl.Right = l, r
	}
	name, pos, err := p.ident()
	if err != nil {
		return err
	}
	decl.Name = p.scope + name
	if p.punct('[') {
		// unpacked array
		p.next()
		n, err := p.integer()
		if err != nil {
			return err
		}
		if err = p.expect(']'); err != nil {
			return err
		}
		w := decl.Left - decl.Right
		if w < 0 {
			w = -w
		}
		decl.Shape = wl.ShapeUnpacked
		decl.Left, decl.Right = (w+1)*n-1, 0
	}
	return p.object(decl, pos, kw == "const")
}

func (p *Parser) signal() error {
	p.next()
	name, pos, err := p.ident()
	if err != nil {
		return err
	}
	decl := sim.Decl{Name: p.scope + name, Lang: wl.VHDL}
	if p.punct(':') {
		p.next()
		if decl.Left, decl.Right, err = p.rng(); err != nil {
			return err
		}
	}
	return p.object(decl, pos, false)
}

// object declares an object and parses its optional value.
//
func (p *Parser) object(decl sim.Decl, pos lex.Pos, cst bool) error {
	h, err := p.d.Declare(decl)
	if err != nil {
		return parseError(p.Name, p.Input, pos, err.Error())
	}
	if !p.punct('=') {
		if cst {
			return parseError(p.Name, p.Input, pos, "missing value for constant "+decl.Name)
		}
		return p.expect(';')
	}
	p.next()
	vpos := p.i.Pos
	e, err := p.expr()
	if err != nil {
		return err
	}
	if cst {
		if e.Op != wl.OpLiteral {
			return parseError(p.Name, p.Input, vpos, "constant value must be a literal")
		}
		err = p.d.Const(h, e.Value)
	} else {
		err = p.d.Assign(h, e)
	}
	if err != nil {
		return parseError(p.Name, p.Input, vpos, err.Error())
	}
	return p.expect(';')
}

func (p *Parser) expr() (*wl.Derivation, error) {
	c, err := p.binary(0)
	if err != nil || !p.punct('?') {
		return c, err
	}
	p.next()
	t, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err = p.expect(':'); err != nil {
		return nil, err
	}
	f, err := p.expr()
	if err != nil {
		return nil, err
	}
	return sim.Cond(c, t, f), nil
}

// binary operators, lowest precedence first.
//
var binOps = [...]struct {
	r  rune
	fn func(a, b *wl.Derivation) *wl.Derivation
}{
	{'|', sim.Or},
	{'^', sim.Xor},
	{'&', sim.And},
}

func (p *Parser) binary(level int) (*wl.Derivation, error) {
	if level == len(binOps) {
		return p.unary()
	}
	a, err := p.binary(level + 1)
	if err != nil {
		return nil, err
	}
	for p.punct(binOps[level].r) {
		p.next()
		b, err := p.binary(level + 1)
		if err != nil {
			return nil, err
		}
		a = binOps[level].fn(a, b)
	}
	return a, nil
}

func (p *Parser) unary() (*wl.Derivation, error) {
	switch {
	case p.punct('~'):
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return sim.Not(x), nil
	case p.i.Type == Ident && p.i.Value.(string) == "buf":
		p.next()
		if err := p.expect('('); err != nil {
			return nil, err
		}
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err = p.expect(')'); err != nil {
			return nil, err
		}
		return sim.Buf(x), nil
	}
	return p.primary()
}

func (p *Parser) primary() (*wl.Derivation, error) {
	switch p.i.Type {
	case Ident:
		return p.ref()
	case Int:
		n := p.i.Value.(int)
		p.next()
		return sim.Lit(wl.FromUint64(32, uint64(n))), nil
	case Literal:
		v := p.i.Value.(wl.Vector)
		p.next()
		return sim.Lit(v), nil
	}
	switch {
	case p.punct('('):
		p.next()
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		return x, p.expect(')')
	case p.punct('{'):
		return p.concat()
	}
	return nil, p.unexpected("expression")
}

func (p *Parser) lookup(name string) (wl.Handle, bool) {
	if p.scope != "" && !strings.Contains(name, ".") {
		if h, ok := p.d.Lookup(p.scope + name); ok {
			return h, true
		}
	}
	return p.d.Lookup(name)
}

// ref parses name, name[index] or name[left:right].
//
func (p *Parser) ref() (*wl.Derivation, error) {
	name, pos, _ := p.ident()
	h, ok := p.lookup(name)
	if !ok {
		return nil, parseError(p.Name, p.Input, pos, "undeclared object "+name)
	}
	if !p.punct('[') {
		return sim.Ref(h), nil
	}
	p.next()
	l, err := p.integer()
	if err != nil {
		return nil, err
	}
	if !p.punct(':') {
		return sim.Bit(h, l), p.expect(']')
	}
	p.next()
	r, err := p.integer()
	if err != nil {
		return nil, err
	}
	return sim.Part(h, l, r), p.expect(']')
}

// concat parses {a, b, ...} and {n{a, b, ...}}.
//
func (p *Parser) concat() (*wl.Derivation, error) {
	p.next()
	first, err := p.expr()
	if err != nil {
		return nil, err
	}
	if !p.punct('{') {
		xs, err := p.list(first)
		if err != nil {
			return nil, err
		}
		return sim.Cat(xs...), nil
	}
	if first.Op != wl.OpLiteral {
		return nil, p.unexpected("',' or '}'")
	}
	n, ok := first.Value.Uint64()
	if !ok || n > maxInt {
		return nil, parseError(p.Name, p.Input, p.i.Pos, "invalid replication count")
	}
	p.next()
	x, err := p.expr()
	if err != nil {
		return nil, err
	}
	xs, err := p.list(x)
	if err != nil {
		return nil, err
	}
	if len(xs) == 1 {
		x = xs[0]
	} else {
		x = sim.Cat(xs...)
	}
	return sim.Repl(int(n), x), p.expect('}')
}

// list parses the remaining items of a comma separated list of expressions
// and its closing brace.
//
func (p *Parser) list(first *wl.Derivation) ([]*wl.Derivation, error) {
	xs := []*wl.Derivation{first}
	for p.punct(',') {
		p.next()
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
	return xs, p.expect('}')
}

func parseError(name, in string, pos lex.Pos, msg string) error {
	line, col := 1, 1
	for i, r := range []rune(in) {
		if i >= int(pos) {
			break
		}
		if r == '\n' {
			line, col = line+1, 1
		} else {
			col++
		}
	}
	return errors.Errorf("%s:%d:%d: %s", name, line, col, msg)
}
