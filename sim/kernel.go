// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package sim

import (
	wl "github.com/db47h/wavelog"
	"github.com/pkg/errors"
)

// Open implements wl.Kernel.
//
func (c *Circuit) Open() error {
	if c.d.NoFastLog {
		return errors.Wrap(wl.ErrUnavailable, "fast logging disabled")
	}
	if c.attached {
		return errors.Wrap(wl.ErrAttached, "circuit")
	}
	c.attached = true
	return nil
}

// Info implements wl.Kernel.
//
func (c *Circuit) Info(h wl.Handle) (wl.ObjectInfo, bool) {
	o := c.d.object(h)
	if o == nil {
		return wl.ObjectInfo{}, false
	}
	info := wl.ObjectInfo{
		Name:     o.decl.Name,
		Lang:     o.decl.Lang,
		Shape:    o.decl.Shape,
		Left:     o.decl.Left,
		Right:    o.decl.Right,
		Encoding: o.decl.encoding(),
		Fate:     o.fate,
	}
	if o.decl.Strength != wl.HighZ {
		info.Expanded = o.decl.width()
	}
	return info, true
}

// Derivation implements wl.Kernel.
//
func (c *Circuit) Derivation(h wl.Handle) *wl.Derivation {
	if o := c.d.object(h); o != nil && o.fate == wl.FateFolded {
		return o.expr
	}
	return nil
}

// Location implements wl.Kernel.
//
func (c *Circuit) Location(h wl.Handle, strength bool) *wl.Location {
	o := c.d.object(h)
	if o == nil || strength && o.decl.Strength == wl.HighZ {
		return nil
	}
	switch o.fate {
	case wl.FateConstant:
		if o.loc == nil {
			o.loc = c.newLocation(o)
		}
		return o.loc
	case wl.FateLive:
		if o.decl.Shape.Composite() {
			return nil
		}
		return c.track(o)
	}
	return nil
}

// Materialize implements wl.Kernel.
//
func (c *Circuit) Materialize(h wl.Handle) *wl.Location {
	if o := c.d.object(h); o != nil && o.fate == wl.FateFolded {
		return c.track(o)
	}
	return nil
}

// Watch implements wl.Kernel. Watchers are called after each simulation step
// where the value of h changed.
//
func (c *Circuit) Watch(h wl.Handle, fn func(t uint64)) (cancel func()) {
	o := c.d.object(h)
	if o == nil || o.fate == wl.FateRemoved || o.fate == wl.FateConstant {
		return func() {}
	}
	c.track(o)
	w := &watcher{fn: fn}
	o.watchers = append(o.watchers, w)
	return func() {
		if w.dead {
			return
		}
		w.dead = true
		for i, x := range o.watchers {
			if x == w {
				o.watchers = append(o.watchers[:i:i], o.watchers[i+1:]...)
				break
			}
		}
	}
}

func (c *Circuit) newLocation(o *object) *wl.Location {
	loc := wl.NewLocation(o.decl.encoding(), o.decl.width(), o.decl.Strength != wl.HighZ)
	loc.SetStrength(o.decl.Strength)
	loc.Store(c.read(o))
	return loc
}

// track makes sure that o's location is updated on every step.
//
func (c *Circuit) track(o *object) *wl.Location {
	if o.loc == nil {
		o.loc = c.newLocation(o)
		c.tracked = append(c.tracked, o)
	}
	return o.loc
}

func (c *Circuit) notify() {
	for _, o := range c.tracked {
		if !o.loc.Store(c.read(o)) || len(o.watchers) == 0 {
			continue
		}
		ws := append([]*watcher(nil), o.watchers...)
		for _, w := range ws {
			if !w.dead {
				w.fn(c.tick)
			}
		}
	}
}
