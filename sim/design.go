// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package sim

import (
	"strconv"
	"sync/atomic"

	wl "github.com/db47h/wavelog"
	"github.com/pkg/errors"
)

// Clk is the name of the built-in clock object.
//
const Clk = "clk"

// A Decl declares a simulated object.
//
type Decl struct {
	// Full hierarchical name. Must be unique in a design.
	Name string
	Lang wl.Lang
	// Shape defaults to wl.ShapeScalar for single bit objects and to
	// wl.ShapeVector otherwise.
	Shape wl.Shape
	// Declared range [Left:Right]. [7:0] and [0:7] are both 8 bits wide, bit
	// offset 0 being the bit at index 0 in both cases.
	Left, Right int
	// Value states of Verilog objects: wl.TwoState (the default) or
	// wl.FourState. VHDL objects always use wl.ForeignValue locations.
	States wl.ValueKind
	// Drive strength of the object's driver. If not wl.HighZ, the object
	// supports strength callbacks.
	Strength wl.Strength
}

func (d *Decl) width() int {
	if d.Left > d.Right {
		return d.Left - d.Right + 1
	}
	return d.Right - d.Left + 1
}

func (d *Decl) low() int {
	if d.Left < d.Right {
		return d.Left
	}
	return d.Right
}

func (d *Decl) encoding() wl.ValueKind {
	if d.Lang == wl.VHDL {
		return wl.ForeignValue
	}
	if d.States == wl.FourState {
		return wl.FourState
	}
	return wl.TwoState
}

// fit sizes v to the object's width and drops x/z bits for 2-state objects.
//
func (d *Decl) fit(v wl.Vector) wl.Vector {
	w := d.width()
	r := make(wl.Vector, w)
	copy(r, v)
	if d.encoding() == wl.TwoState {
		for i, l := range r {
			if l != wl.L1 {
				r[i] = wl.L0
			}
		}
	}
	return r
}

// object drivers
const (
	driverNone = iota
	driverProcess
	driverAssign
	driverConst
	driverClock
)

// compilation marks for folded objects
const (
	markNone = iota
	markBusy
	markDone
)

type object struct {
	decl   Decl
	driver int
	drive  func() wl.Vector
	expr   *wl.Derivation
	value  wl.Vector // constant value
	refs   int       // number of references from assignments

	fate     wl.Fate
	pins     []int
	eval     evalFn // folded objects
	mark     int
	loc      *wl.Location
	watchers []*watcher
}

// A Design is a set of objects and their drivers. Designs are turned into
// runnable circuits by NewCircuit.
//
type Design struct {
	// Optimize enables the optimizer: assigned objects are folded into the
	// expressions that read them, constants become literals and undriven
	// objects that nothing reads are removed.
	Optimize bool
	// NoFastLog disables fast logging for circuits built from this design.
	NoFastLog bool

	id    uint64
	objs  []*object
	names map[string]int
}

var designID uint64

// NewDesign returns a new design with a single object: the clock.
//
func NewDesign() *Design {
	d := &Design{
		id:    atomic.AddUint64(&designID, 1) & 0xffffffff,
		names: make(map[string]int),
	}
	h, err := d.Declare(Decl{Name: Clk})
	if err != nil {
		panic(err)
	}
	d.object(h).driver = driverClock
	return d
}

func (d *Design) handle(i int) wl.Handle { return wl.Handle(d.id<<32 | uint64(i+1)) }

func (d *Design) object(h wl.Handle) *object {
	if uint64(h)>>32 != d.id {
		return nil
	}
	i := int(uint32(h)) - 1
	if i < 0 || i >= len(d.objs) {
		return nil
	}
	return d.objs[i]
}

// Declare adds a new object to the design and returns its handle.
//
func (d *Design) Declare(decl Decl) (wl.Handle, error) {
	if decl.Name == "" {
		return 0, errors.New("empty object name")
	}
	if _, ok := d.names[decl.Name]; ok {
		return 0, errors.New("duplicate object name " + decl.Name)
	}
	if decl.States != wl.KindNone && decl.States != wl.TwoState && decl.States != wl.FourState {
		return 0, errors.Errorf("object %s: invalid value states %v", decl.Name, decl.States)
	}
	if decl.Shape == wl.ShapeScalar && decl.width() > 1 {
		decl.Shape = wl.ShapeVector
	}
	i := len(d.objs)
	d.objs = append(d.objs, &object{decl: decl})
	d.names[decl.Name] = i
	return d.handle(i), nil
}

// Lookup returns the handle of the named object.
//
func (d *Design) Lookup(name string) (wl.Handle, bool) {
	i, ok := d.names[name]
	if !ok {
		return 0, false
	}
	return d.handle(i), true
}

// Objects returns the handles of all objects, in declaration order.
//
func (d *Design) Objects() []wl.Handle {
	hs := make([]wl.Handle, len(d.objs))
	for i := range hs {
		hs[i] = d.handle(i)
	}
	return hs
}

// Name returns the name of the object h, or h.String() if h is not part of
// the design.
//
func (d *Design) Name(h wl.Handle) string {
	if o := d.object(h); o != nil {
		return o.decl.Name
	}
	return h.String()
}

// Driven returns true if h has a driver.
//
func (d *Design) Driven(h wl.Handle) bool {
	o := d.object(h)
	return o != nil && o.driver != driverNone
}

func (d *Design) driven(h wl.Handle) (*object, error) {
	o := d.object(h)
	if o == nil {
		return nil, errors.Errorf("object %v not in design", h)
	}
	if o.driver != driverNone {
		return nil, errors.New("multiple drivers for " + o.decl.Name)
	}
	return o, nil
}

// Drive drives h from a testbench process: fn is called on every simulation
// step and its result becomes the next value of h.
//
func (d *Design) Drive(h wl.Handle, fn func() wl.Vector) error {
	o, err := d.driven(h)
	if err != nil {
		return err
	}
	o.driver, o.drive = driverProcess, fn
	return nil
}

// DriveUint64 is like Drive for processes producing integers.
//
func (d *Design) DriveUint64(h wl.Handle, fn func() uint64) error {
	o := d.object(h)
	if o == nil {
		return errors.Errorf("object %v not in design", h)
	}
	w := o.decl.width()
	return d.Drive(h, func() wl.Vector { return wl.FromUint64(w, fn()) })
}

// Assign continuously assigns the value of e to h. Build e with the
// expression functions of this package (Ref, Bit, And, ...).
//
func (d *Design) Assign(h wl.Handle, e *wl.Derivation) error {
	o, err := d.driven(h)
	if err != nil {
		return err
	}
	if err = d.check(e); err != nil {
		return errors.Wrap(err, "assign "+o.decl.Name)
	}
	d.countRefs(e)
	o.driver, o.expr = driverAssign, e
	return nil
}

// Const makes h a constant object with value v.
//
func (d *Design) Const(h wl.Handle, v wl.Vector) error {
	o, err := d.driven(h)
	if err != nil {
		return err
	}
	if len(v) == 0 {
		return errors.New("empty constant value for " + o.decl.Name)
	}
	o.driver, o.value = driverConst, o.decl.fit(v)
	return nil
}

func (d *Design) countRefs(e *wl.Derivation) {
	if o := d.object(e.Object); o != nil && refOp(e.Op) {
		o.refs++
	}
	for _, x := range e.Operands {
		d.countRefs(x)
	}
}

func refOp(op wl.Op) bool { return op == wl.OpVar || op == wl.OpBitSel || op == wl.OpPartSel }

// check validates an expression tree.
//
func (d *Design) check(e *wl.Derivation) error {
	if e == nil {
		return errors.New("nil expression")
	}
	if refOp(e.Op) {
		o := d.object(e.Object)
		if o == nil {
			return errors.Errorf("object %v not in design", e.Object)
		}
		in := func(i int) bool { l := o.decl.low(); return i >= l && i < l+o.decl.width() }
		switch {
		case e.Op == wl.OpBitSel && !in(e.Index):
			return errors.Errorf("index %d out of range for %s", e.Index, o.decl.Name)
		case e.Op == wl.OpPartSel && (!in(e.Left) || !in(e.Right)):
			return errors.Errorf("range [%d:%d] out of range for %s", e.Left, e.Right, o.decl.Name)
		}
		return nil
	}
	n := -1
	switch e.Op {
	case wl.OpBitNeg, wl.OpBitBuf:
		n = 1
	case wl.OpBitAnd, wl.OpBitOr, wl.OpBitXor:
		n = 2
	case wl.OpReplicate:
		if e.Count < 0 {
			return errors.New("negative replication count " + strconv.Itoa(e.Count))
		}
		n = 1
	case wl.OpTernary:
		n = 3
	case wl.OpConcat:
	case wl.OpLiteral:
		if len(e.Value) == 0 {
			return errors.New("empty literal")
		}
		n = 0
	default:
		return errors.New("unsupported operator " + e.Op.String())
	}
	if n >= 0 && len(e.Operands) != n {
		return errors.Errorf("%v: expected %d operands, got %d", e.Op, n, len(e.Operands))
	}
	for _, x := range e.Operands {
		if err := d.check(x); err != nil {
			return err
		}
	}
	return nil
}
