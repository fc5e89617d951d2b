// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package recon

import (
	wl "github.com/db47h/wavelog"
	"github.com/pkg/errors"
)

// A Recorder sets fast callbacks on Primary and Literal objects and keeps
// their value locations so that their current values can be read at any
// time. It is the usual source of terminal values for a Resolver.
//
type Recorder struct {
	S *wl.Session
	// OnChange, if not nil, is called on every value change of a subscribed
	// object.
	OnChange func(h wl.Handle, t uint64)

	locs map[wl.Handle]*wl.Location
}

// NewRecorder returns a new Recorder for s.
//
func NewRecorder(s *wl.Session) *Recorder {
	return &Recorder{S: s, locs: make(map[wl.Handle]*wl.Location)}
}

func (r *Recorder) changed(data interface{}, high, low uint32) {
	if r.OnChange != nil {
		r.OnChange(data.(wl.Handle), uint64(high)<<32|uint64(low))
	}
}

// Subscribe sets a fast callback on h, which must be a Primary or a Literal
// object, and returns true on success. It must be called between
// Session.Start and Session.Finalize.
//
// The handle itself is used as the callback's user data.
//
func (r *Recorder) Subscribe(h wl.Handle) bool {
	loc := r.S.SetCallback(h, r.changed, h)
	if loc == nil {
		return false
	}
	r.locs[h] = loc
	return true
}

// SubscribeSecondary asks the kernel to materialize the Secondary object h
// and sets a fast callback on it. See Session.SetCallbackForSecondary.
//
func (r *Recorder) SubscribeSecondary(h wl.Handle) bool {
	loc := r.S.SetCallbackForSecondary(h, r.changed, h)
	if loc == nil {
		return false
	}
	r.locs[h] = loc
	return true
}

// Subscribed returns true if h has a value location.
//
func (r *Recorder) Subscribed(h wl.Handle) bool {
	_, ok := r.locs[h]
	return ok
}

// Value returns the current value of a subscribed object.
//
func (r *Recorder) Value(h wl.Handle) (wl.Vector, error) {
	loc, ok := r.locs[h]
	if !ok {
		return nil, errors.Errorf("no value location for %v", h)
	}
	return loc.Load(), nil
}

// Resolver returns a Resolver that reads terminal values from r.
//
func (r *Recorder) Resolver() *Resolver {
	return &Resolver{S: r.S, Primary: r.Value}
}
