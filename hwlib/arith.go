// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	wl "github.com/db47h/wavelog"
	"github.com/db47h/wavelog/sim"
	"github.com/pkg/errors"
)

// HalfAdder declares a half adder.
//
//	Inputs: a, b
//	Outputs: name.s, name.c
//	Function: s = lsb(a + b)
//	          c = msb(a + b)
//
func HalfAdder(d *sim.Design, name string, a, b *wl.Derivation) (s, c wl.Handle, err error) {
	if s, err = wire(d, name+".s", 1, sim.Xor(a, b)); err != nil {
		return 0, 0, err
	}
	if c, err = wire(d, name+".c", 1, sim.And(a, b)); err != nil {
		return 0, 0, err
	}
	return s, c, nil
}

// FullAdder declares a full adder built from two half adders.
//
//	Inputs: a, b, cin
//	Outputs: name.s, name.cout
//	Function: s = lsb(a + b + cin)
//	          cout = msb(a + b + cin)
//
func FullAdder(d *sim.Design, name string, a, b, cin *wl.Derivation) (s, cout wl.Handle, err error) {
	s0, c0, err := HalfAdder(d, name+".h0", a, b)
	if err != nil {
		return 0, 0, err
	}
	s, c1, err := HalfAdder(d, name+".h1", sim.Ref(s0), cin)
	if err != nil {
		return 0, 0, err
	}
	// s is h1's sum: expose it under the adder's name as well.
	if s, err = wire(d, name+".s", 1, sim.Ref(s)); err != nil {
		return 0, 0, err
	}
	if cout, err = wire(d, name+".cout", 1, sim.Or(sim.Ref(c0), sim.Ref(c1))); err != nil {
		return 0, 0, err
	}
	return s, cout, nil
}

// AdderN declares a ripple carry adder. a and b must be declared [bits-1:0].
//
//	Inputs: a[bits], b[bits]
//	Outputs: name.out[bits], name.c
//
func AdderN(d *sim.Design, name string, a, b wl.Handle, bits int) (out, c wl.Handle, err error) {
	if bits < 1 {
		return 0, 0, errors.Errorf("%s: invalid width %d", name, bits)
	}
	sums := make([]*wl.Derivation, bits)
	var carry *wl.Derivation
	for i := 0; i < bits; i++ {
		n := name + "." + strconv.Itoa(i)
		var s, co wl.Handle
		if i == 0 {
			s, co, err = HalfAdder(d, n, sim.Bit(a, 0), sim.Bit(b, 0))
		} else {
			s, co, err = FullAdder(d, n, sim.Bit(a, i), sim.Bit(b, i), carry)
		}
		if err != nil {
			return 0, 0, errors.Wrap(err, name)
		}
		sums[bits-1-i] = sim.Ref(s)
		carry = sim.Ref(co)
	}
	if out, err = wire(d, name+".out", bits, sim.Cat(sums...)); err != nil {
		return 0, 0, err
	}
	if c, err = wire(d, name+".c", 1, carry); err != nil {
		return 0, 0, err
	}
	return out, c, nil
}
