package sim_test

import (
	"testing"

	wl "github.com/db47h/wavelog"
	"github.com/db47h/wavelog/sim"
	"github.com/pkg/errors"
)

const testTPC = 4

func declare(t *testing.T, d *sim.Design, decl sim.Decl) wl.Handle {
	t.Helper()
	h, err := d.Declare(decl)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func value(t *testing.T, c *sim.Circuit, h wl.Handle) string {
	t.Helper()
	v, err := c.Value(h)
	if err != nil {
		t.Fatal(err)
	}
	return v.String()
}

func Test_clock(t *testing.T) {
	d := sim.NewDesign()
	declare(t, d, sim.Decl{Name: "unused"})
	c, err := sim.NewCircuit(0, testTPC, d)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()
	clk, _ := d.Lookup(sim.Clk)

	if v := value(t, c, clk); v != "1" {
		t.Fatalf("initial clock: expected 1, got %s", v)
	}
	exp := "10011001"
	for i := range exp {
		c.Step()
		if v := value(t, c, clk); v != exp[i:i+1] {
			t.Errorf("step %d: expected %s, got %s", c.Steps(), exp[i:i+1], v)
		}
	}
	if !c.AtTick() {
		t.Errorf("AtTick false at step %d", c.Steps())
	}
	c.Tick()
	if c.Steps() != 10 || !c.AtTock() {
		t.Errorf("Tick stopped at step %d", c.Steps())
	}
	c.Tock()
	if c.Steps() != 12 || !c.AtTick() {
		t.Errorf("Tock stopped at step %d", c.Steps())
	}
	c.TickTock()
	if c.Steps() != 16 {
		t.Errorf("TickTock stopped at step %d", c.Steps())
	}
}

// propagation delays: live objects are updated one step after their inputs,
// folded objects are computed from the current values of their inputs.
//
func Test_propagation(t *testing.T) {
	for _, opt := range []bool{false, true} {
		d := sim.NewDesign()
		d.Optimize = opt
		a := declare(t, d, sim.Decl{Name: "a", Left: 3})
		b := declare(t, d, sim.Decl{Name: "b", Left: 3})
		in := uint64(0)
		if err := d.DriveUint64(a, func() uint64 { return in }); err != nil {
			t.Fatal(err)
		}
		if err := d.Assign(b, sim.Not(sim.Ref(a))); err != nil {
			t.Fatal(err)
		}
		c, err := sim.NewCircuit(2, testTPC, d)
		if err != nil {
			t.Fatal(err)
		}
		in = 5
		c.Step()
		exp := "1010"
		if !opt {
			// b still sees the initial value of a.
			exp = "1111"
		}
		if v := value(t, c, b); v != exp {
			t.Errorf("optimize=%v: expected %s, got %s", opt, exp, v)
		}
		c.Step()
		if v := value(t, c, b); v != "1010" {
			t.Errorf("optimize=%v: expected 1010, got %s", opt, v)
		}
		c.Dispose()
	}
}

func Test_initialValues(t *testing.T) {
	d := sim.NewDesign()
	a := declare(t, d, sim.Decl{Name: "a", Left: 1})
	b := declare(t, d, sim.Decl{Name: "b", Left: 1, States: wl.FourState})
	v := declare(t, d, sim.Decl{Name: "v", Left: 1, Lang: wl.VHDL})
	f := declare(t, d, sim.Decl{Name: "f", Left: 1, States: wl.FourState})
	if err := d.Assign(f, sim.Ref(a)); err != nil {
		t.Fatal(err)
	}
	c, err := sim.NewCircuit(1, testTPC, d)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()
	for _, td := range []struct {
		h   wl.Handle
		exp string
	}{{a, "00"}, {b, "zz"}, {v, "xx"}, {f, "xx"}} {
		if got := value(t, c, td.h); got != td.exp {
			t.Errorf("%s: expected %s, got %s", d.Name(td.h), td.exp, got)
		}
	}
}

func TestDesign_errors(t *testing.T) {
	data := []struct {
		name  string
		build func(d *sim.Design) error
		err   string
	}{
		{"empty", func(d *sim.Design) error { return nil }, "empty design"},
		{"duplicate", func(d *sim.Design) error {
			d.Declare(sim.Decl{Name: "a"})
			_, err := d.Declare(sim.Decl{Name: "a"})
			return err
		}, "duplicate object name a"},
		{"states", func(d *sim.Design) error {
			_, err := d.Declare(sim.Decl{Name: "a", States: wl.ForeignValue})
			return err
		}, "object a: invalid value states vhdl"},
		{"multi_drivers", func(d *sim.Design) error {
			a, _ := d.Declare(sim.Decl{Name: "a"})
			d.Drive(a, func() wl.Vector { return nil })
			return d.Assign(a, sim.Lit(wl.Vector{wl.L1}))
		}, "multiple drivers for a"},
		{"clk_driven", func(d *sim.Design) error {
			clk, _ := d.Lookup(sim.Clk)
			return d.Const(clk, wl.Vector{wl.L0})
		}, "multiple drivers for clk"},
		{"bit_range", func(d *sim.Design) error {
			a, _ := d.Declare(sim.Decl{Name: "a", Left: 7})
			b, _ := d.Declare(sim.Decl{Name: "b"})
			return d.Assign(b, sim.Bit(a, 8))
		}, "assign b: index 8 out of range for a"},
		{"part_range", func(d *sim.Design) error {
			a, _ := d.Declare(sim.Decl{Name: "a", Left: 4, Right: 7})
			b, _ := d.Declare(sim.Decl{Name: "b", Left: 1})
			return d.Assign(b, sim.Part(a, 3, 4))
		}, "assign b: range [3:4] out of range for a"},
		{"operands", func(d *sim.Design) error {
			a, _ := d.Declare(sim.Decl{Name: "a"})
			return d.Assign(a, &wl.Derivation{Op: wl.OpBitAnd, Operands: []*wl.Derivation{sim.Lit(wl.Vector{wl.L1})}})
		}, "assign a: &: expected 2 operands, got 1"},
		{"nil_expr", func(d *sim.Design) error {
			a, _ := d.Declare(sim.Decl{Name: "a"})
			return d.Assign(a, sim.Not(nil))
		}, "assign a: nil expression"},
		{"loop", func(d *sim.Design) error {
			d.Optimize = true
			x, _ := d.Declare(sim.Decl{Name: "x"})
			y, _ := d.Declare(sim.Decl{Name: "y"})
			d.Assign(x, sim.Not(sim.Ref(y)))
			d.Assign(y, sim.Not(sim.Ref(x)))
			return nil
		}, "x: y: combinational loop through x"},
		{"live_loop", func(d *sim.Design) error {
			x, _ := d.Declare(sim.Decl{Name: "x"})
			y, _ := d.Declare(sim.Decl{Name: "y"})
			d.Assign(x, sim.Not(sim.Ref(y)))
			d.Assign(y, sim.Not(sim.Ref(x)))
			return nil
		}, ""},
	}
	for _, td := range data {
		t.Run(td.name, func(t *testing.T) {
			d := sim.NewDesign()
			err := td.build(d)
			if err == nil {
				var c *sim.Circuit
				c, err = sim.NewCircuit(1, testTPC, d)
				if c != nil {
					c.Dispose()
				}
			}
			if err == nil && td.err != "" || err != nil && err.Error() != td.err {
				t.Errorf("Got error %q, expected %q", err, td.err)
			}
		})
	}
}

func TestCircuit_Open(t *testing.T) {
	d := sim.NewDesign()
	declare(t, d, sim.Decl{Name: "a"})
	c, err := sim.NewCircuit(1, testTPC, d)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()
	if err = c.Open(); err != nil {
		t.Fatal(err)
	}
	if err = c.Open(); errors.Cause(err) != wl.ErrAttached {
		t.Errorf("second Open: expected ErrAttached, got %v", err)
	}

	d = sim.NewDesign()
	d.NoFastLog = true
	declare(t, d, sim.Decl{Name: "a"})
	c2, err := sim.NewCircuit(1, testTPC, d)
	if err != nil {
		t.Fatal(err)
	}
	defer c2.Dispose()
	if err = c2.Open(); errors.Cause(err) != wl.ErrUnavailable {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
