// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package sim

import (
	"math/rand"
	"strings"

	wl "github.com/db47h/wavelog"
)

// A Bench drives all the undriven objects of a design with random values.
//
type Bench struct {
	// XZ enables random x and z bits for 4-state and VHDL inputs.
	XZ bool

	d      *Design
	inputs []wl.Handle
	vals   []wl.Vector
	rnd    *rand.Rand
}

// NewBench adds a testbench process to every undriven object of d, except
// the clock. The design must not be built into a circuit yet.
//
func NewBench(d *Design, seed int64) (*Bench, error) {
	b := &Bench{d: d, rnd: rand.New(rand.NewSource(seed))}
	for _, h := range d.Objects() {
		if d.Driven(h) || d.Name(h) == Clk {
			continue
		}
		i := len(b.inputs)
		b.inputs = append(b.inputs, h)
		b.vals = append(b.vals, nil)
		if err := d.Drive(h, func() wl.Vector { return b.vals[i] }); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Inputs returns the objects driven by the bench.
//
func (b *Bench) Inputs() []wl.Handle { return b.inputs }

// Set sets the next value of input h.
//
func (b *Bench) Set(h wl.Handle, v wl.Vector) {
	for i, in := range b.inputs {
		if in == h {
			b.vals[i] = v
			return
		}
	}
}

// Randomize draws new random values for all inputs.
//
func (b *Bench) Randomize() {
	for i := range b.vals {
		v := b.vals[i]
		if v == nil {
			v = make(wl.Vector, 64)
			b.vals[i] = v
		}
		for bit := range v {
			r := b.rnd.Int63()
			l := wl.Logic(r & 1)
			if b.XZ && r&0xf00 == 0 {
				l = wl.Logic(r&1) + wl.LX
			}
			v[bit] = l
		}
	}
}

// Values returns the current input values, formatted as name=value pairs.
//
func (b *Bench) Values() string {
	var sb strings.Builder
	for i, h := range b.inputs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(b.d.Name(h))
		sb.WriteRune('=')
		sb.WriteString(b.vals[i].String())
	}
	return sb.String()
}
