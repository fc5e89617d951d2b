// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	wl "github.com/db47h/wavelog"
	"github.com/db47h/wavelog/sim"
)

// Mux declares a multiplexer.
//
//	Inputs: a[width], b[width], sel
//	Outputs: name[width]
//	Function: if sel == 0 { out = a } else { out = b }
//
func Mux(d *sim.Design, name string, a, b, sel *wl.Derivation, width int) (wl.Handle, error) {
	return wire(d, name, width, sim.Cond(sel, b, a))
}

// DMux declares a demultiplexer.
//
//	Inputs: in[width], sel
//	Outputs: name.a[width], name.b[width]
//	Function: if sel == 0 { a = in; b = 0 } else { a = 0; b = in }
//
func DMux(d *sim.Design, name string, in, sel *wl.Derivation, width int) (a, b wl.Handle, err error) {
	if a, err = wire(d, name+".a", width, sim.Cond(sel, zero(width), in)); err != nil {
		return 0, 0, err
	}
	if b, err = wire(d, name+".b", width, sim.Cond(sel, in, zero(width))); err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// Mux4Way declares a 4-way multiplexer built from three muxes. sel must be
// declared [1:0].
//
//	Inputs: in[4][width], sel[2]
//	Outputs: name[width]
//	Function: out = in[sel]
//
func Mux4Way(d *sim.Design, name string, in [4]*wl.Derivation, sel wl.Handle, width int) (wl.Handle, error) {
	s0 := sim.Bit(sel, 0)
	ab, err := Mux(d, name+".ab", in[0], in[1], s0, width)
	if err != nil {
		return 0, err
	}
	cd, err := Mux(d, name+".cd", in[2], in[3], s0, width)
	if err != nil {
		return 0, err
	}
	return Mux(d, name, sim.Ref(ab), sim.Ref(cd), sim.Bit(sel, 1), width)
}
