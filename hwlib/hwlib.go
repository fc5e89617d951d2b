// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides common logic blocks for sim designs.
//
// Every block declares its outputs and internal wires in a design, named
// after the block instance ("add.s0", "add.c0", ...), and assigns them
// expressions over the block's inputs. With the optimizer enabled, these
// objects are folded away: they become Secondary objects whose map
// expressions refer to each other.
//
// Block outputs are 4-state objects. Inputs are expressions built with the
// sim expression functions.
//
package hwlib

import (
	wl "github.com/db47h/wavelog"
	"github.com/db47h/wavelog/sim"
	"github.com/pkg/errors"
)

// wire declares name as a 4-state object of the given width driven by e.
//
func wire(d *sim.Design, name string, width int, e *wl.Derivation) (wl.Handle, error) {
	if width < 1 {
		return 0, errors.Errorf("%s: invalid width %d", name, width)
	}
	h, err := d.Declare(sim.Decl{Name: name, Left: width - 1, States: wl.FourState})
	if err != nil {
		return 0, err
	}
	if err = d.Assign(h, e); err != nil {
		return 0, err
	}
	return h, nil
}

func zero(width int) *wl.Derivation { return sim.Lit(wl.MakeVector(width, wl.L0)) }
