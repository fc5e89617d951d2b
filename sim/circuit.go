// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package sim is a small cycle based logic simulator that implements the
// wavelog.Kernel interface.
//
// A Design declares objects and their drivers: testbench processes, continuous
// assignments and constants. NewCircuit runs an optimizer over the design
// (when Design.Optimize is set) that folds assigned objects into the
// expressions that read them, turns constants into literals and removes dead
// objects, then compiles what remains into components updated by a pool of
// worker goroutines.
//
package sim

import (
	"runtime"
	"sync"

	wl "github.com/db47h/wavelog"
	"github.com/pkg/errors"
)

// A Component is a component in a circuit that reads the current frame and
// writes the next one.
//
type Component func(c *Circuit)

type evalFn func(c *Circuit) wl.Vector

type watcher struct {
	fn   func(t uint64)
	dead bool
}

// Circuit is a runnable circuit simulation.
//
type Circuit struct {
	s0    []wl.Logic // states frame #0
	s1    []wl.Logic // states frame #1
	cs    []Component
	count int  // pin count
	tpc   uint // ticks per clock cycle
	tick  uint64
	clk   int // clock pin

	wc []chan struct{}
	wg sync.WaitGroup

	d        *Design
	tracked  []*object
	attached bool
}

// NewCircuit builds a new circuit from the given design. The design must not
// be modified afterwards.
//
// workers is the number of goroutines used to update the state of the Circuit
// each step of the simulation. If less or equal to 0, the value of GOMAXPROCS
// will be used.
//
// stepsPerCycle indicates how many simulation steps to run per clock cycle
// (the clk object, not wall clock). It is rounded up to the next power of 2.
//
// Callers must make sure to call Dispose() once the circuit is no longer needed
// in order to release allocated resources.
//
func NewCircuit(workers int, stepsPerCycle uint, d *Design) (*Circuit, error) {
	if d == nil || len(d.objs) < 2 {
		return nil, errors.New("empty design")
	}

	if stepsPerCycle < 2 {
		stepsPerCycle = 2
	}
	stepsPerCycle--
	stepsPerCycle |= stepsPerCycle >> 1
	stepsPerCycle |= stepsPerCycle >> 2
	stepsPerCycle |= stepsPerCycle >> 4
	stepsPerCycle |= stepsPerCycle >> 8
	stepsPerCycle |= stepsPerCycle >> 16
	stepsPerCycle |= stepsPerCycle >> 32
	stepsPerCycle++

	cc := &Circuit{tpc: stepsPerCycle, d: d}
	cc.analyze()
	for _, o := range d.objs {
		if o.fate == wl.FateLive {
			o.pins = cc.allocPins(o.decl.width())
		}
	}
	ups, err := cc.compile()
	if err != nil {
		return nil, err
	}
	cc.cs = ups
	cc.s0 = make([]wl.Logic, cc.count)
	cc.s1 = make([]wl.Logic, cc.count)
	cc.reset()

	// workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(-1)
	}
	if workers == 0 {
		workers = 1
	}
	for len(ups) > 0 {
		size := len(ups) / workers
		if size*workers < len(ups) {
			size++
		}
		wc := make(chan struct{}, 1)
		cc.wc = append(cc.wc, wc)
		go worker(cc, ups[:size], wc)
		ups = ups[size:]
	}

	return cc, nil
}

// analyze decides the fate of every object.
//
func (c *Circuit) analyze() {
	opt := c.d.Optimize
	for _, o := range c.d.objs {
		o.fate, o.pins, o.eval, o.mark = wl.FateLive, nil, nil, markNone
		o.loc, o.watchers = nil, nil
		switch o.driver {
		case driverConst:
			o.fate = wl.FateConstant
		case driverAssign:
			if opt && !o.decl.Shape.Composite() {
				o.fate = wl.FateFolded
			}
		case driverNone:
			if opt && o.refs == 0 {
				o.fate = wl.FateRemoved
			}
		}
	}
}

// compile returns the components that update live objects.
//
func (c *Circuit) compile() ([]Component, error) {
	var ups []Component
	for _, o := range c.d.objs {
		o := o
		switch {
		case o.fate == wl.FateFolded:
			// check for loops and bad references now.
			if _, err := c.folded(o); err != nil {
				return nil, err
			}
			continue
		case o.fate != wl.FateLive:
			continue
		}
		switch o.driver {
		case driverClock:
			c.clk = o.pins[0]
			ups = append(ups, updClock)
		case driverProcess:
			ups = append(ups, func(c *Circuit) { c.set(o, o.drive()) })
		case driverAssign:
			ev, err := c.expr(o.expr)
			if err != nil {
				return nil, errors.Wrap(err, o.decl.Name)
			}
			ups = append(ups, func(c *Circuit) { c.set(o, ev(c)) })
		}
	}
	return ups, nil
}

// reset sets the initial state of all pins: the clock is high, 2-state
// objects are 0, undriven 4-state objects are z and everything else is x.
//
func (c *Circuit) reset() {
	for _, o := range c.d.objs {
		l := wl.L0
		switch {
		case o.driver == driverClock:
			l = wl.L1
		case o.decl.encoding() == wl.TwoState:
		case o.driver == driverNone && o.decl.encoding() == wl.FourState:
			l = wl.LZ
		default:
			l = wl.LX
		}
		for _, p := range o.pins {
			c.s0[p], c.s1[p] = l, l
		}
	}
}

func updClock(c *Circuit) {
	// update clock signal
	tick := c.tick + 1
	tpc := uint64(c.tpc)
	if tick&(tpc-1) == 0 {
		c.s1[c.clk] = wl.L1
	} else if tick&(tpc/2-1) == 0 {
		c.s1[c.clk] = wl.L0
	} else {
		c.s1[c.clk] = c.s0[c.clk]
	}
}

// Dispose releases all resources allocated for a circuit and stops
// worker goroutines.
//
func (c *Circuit) Dispose() {
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		close(wc)
	}
	c.wg.Wait()
	c.wc = nil
}

func worker(c *Circuit, cs []Component, wc <-chan struct{}) {
	for {
		_, ok := <-wc
		if !ok {
			c.wg.Done()
			return
		}
		for _, f := range cs {
			f(c)
		}
		c.wg.Done()
	}
}

// allocPins allocates n pins and returns their numbers.
//
func (c *Circuit) allocPins(n int) []int {
	ps := make([]int, n)
	for i := range ps {
		ps[i] = c.count
		c.count++
	}
	return ps
}

// set sets the next value of a live object.
//
func (c *Circuit) set(o *object, v wl.Vector) {
	v = o.decl.fit(v)
	for i, p := range o.pins {
		c.s1[p] = v[i]
	}
}

// read returns the current value of o.
//
func (c *Circuit) read(o *object) wl.Vector {
	switch o.fate {
	case wl.FateLive:
		v := make(wl.Vector, len(o.pins))
		for i, p := range o.pins {
			v[i] = c.s0[p]
		}
		return v
	case wl.FateFolded:
		return o.eval(c)
	case wl.FateConstant:
		return o.value.Copy()
	}
	return wl.MakeVector(o.decl.width(), wl.LX)
}

// Steps returns the value of the step counter.
//
func (c *Circuit) Steps() uint64 {
	return c.tick
}

// SPC returns the stepsPerCycle value.
//
func (c *Circuit) SPC() uint {
	return c.tpc
}

// AtTick returns true if the current step is at the beginning of a clock cycle
// (raising edge of clk).
//
func (c *Circuit) AtTick() bool {
	return c.Steps()&uint64(c.SPC()-1) == 0
}

// AtTock returns true if the current step is at the beginning of the second
// half of a clock cycle (falling edge of clk).
//
func (c *Circuit) AtTock() bool {
	return (c.Steps()+uint64(c.SPC()/2))&uint64(c.SPC()-1) == 0
}

// Step advances the simulation by one step, then updates the value locations
// of logged objects and notifies their watchers.
//
func (c *Circuit) Step() {
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		wc <- struct{}{}
	}

	c.wg.Wait()
	c.tick++
	c.s0, c.s1 = c.s1, c.s0
	c.notify()
}

// Tick runs the simulation until the beginning of the next half clock cycle.
//
func (c *Circuit) Tick() {
	for c.s0[c.clk] == wl.L1 {
		c.Step()
	}
}

// Tock runs the simulation until the beginning of the next clock cycle.
// Once Tock returns, the output of clocked components should have stabilized.
//
func (c *Circuit) Tock() {
	for c.s0[c.clk] != wl.L1 {
		c.Step()
	}
}

// TickTock runs the simulation for a whole clock cycle.
//
func (c *Circuit) TickTock() {
	c.Tick()
	c.Tock()
}

// Size returns the component count in the circuit.
//
func (c *Circuit) Size() int { return len(c.cs) }

// Design returns the circuit's design.
//
func (c *Circuit) Design() *Design { return c.d }

// Value returns the current value of h as computed by the simulator, whatever
// its fate.
//
func (c *Circuit) Value(h wl.Handle) (wl.Vector, error) {
	o := c.d.object(h)
	if o == nil {
		return nil, errors.Errorf("object %v not in design", h)
	}
	if o.fate == wl.FateRemoved {
		return nil, errors.New("object " + o.decl.Name + " removed by optimizer")
	}
	return c.read(o), nil
}
