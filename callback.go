// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package wavelog

// Func is a fast value change callback. The current simulation time is
// passed as two 32 bit halves.
//
type Func func(userData interface{}, high, low uint32)

// a subscription binds a callback to an object.
//
type subscription struct {
	h      Handle
	fn     Func
	data   interface{}
	cancel func()
}

func (sub *subscription) fire(t uint64) {
	sub.fn(sub.data, uint32(t>>32), uint32(t))
}

// SetCallback sets a fast value change callback on a Primary object and
// returns its live value location, to be interpreted according to ValueKind.
// fn is called with userData on every change of the object's value. userData
// is also set as the object's user data.
//
// For Literal objects, userData is ignored, no callback is ever made and the
// returned location holds the object's constant value.
//
// SetCallback returns nil when fast logging is not possible for h: composite
// objects (unpacked arrays, structs, classes) and Verilog objects that already
// have a fast callback. Clients should then use the kernel's slow callbacks.
//
// Callbacks must be set between Start and Finalize. Outside of a
// Start/Finalize bracket, the location is returned and userData is set, but
// the callback is never installed. A call that conflicts with an existing
// callback returns nil and has no effect, inside or outside a bracket.
//
func (s *Session) SetCallback(h Handle, fn Func, userData interface{}) *Location {
	return s.subscribe("SetCallback", h, fn, userData, false)
}

// SetStrengthCallback works like SetCallback but the returned location also
// carries drive strengths, available through its ValAndStrength method. It
// must only be called for objects whose kernel info reports Expanded > 0; it
// returns nil otherwise.
//
func (s *Session) SetStrengthCallback(h Handle, fn Func, userData interface{}) *Location {
	return s.subscribe("SetStrengthCallback", h, fn, userData, true)
}

func (s *Session) subscribe(op string, h Handle, fn Func, userData interface{}, strength bool) *Location {
	if s.cleanedUp(op, h) {
		return nil
	}
	e := s.entry(h)
	if e == nil {
		return nil
	}
	switch e.class {
	case Literal:
		return s.k.Location(h, false)
	case Primary:
	default:
		s.violation(op, h, e)
		return nil
	}
	if e.info.Shape.Composite() {
		s.log.Debug(op+": composite object", "handle", h, "name", e.info.Name, "shape", e.info.Shape)
		return nil
	}
	if strength && e.info.Expanded == 0 {
		s.violation(op, h, e)
		return nil
	}
	loc := s.k.Location(h, strength)
	if loc == nil {
		return nil
	}
	return s.attach(op, e, fn, userData, loc)
}

// SetCallbackForSecondary sets a fast value change callback on a Secondary
// object. The kernel then reconstructs the object's value on every change,
// at the cost of simulation performance and memory, and fn is called as for
// a Primary object.
//
func (s *Session) SetCallbackForSecondary(h Handle, fn Func, userData interface{}) *Location {
	const op = "SetCallbackForSecondary"
	if s.cleanedUp(op, h) {
		return nil
	}
	e := s.entry(h)
	if e == nil || e.class != Secondary {
		s.violation(op, h, e)
		return nil
	}
	loc := s.k.Materialize(h)
	if loc == nil {
		return nil
	}
	return s.attach(op, e, fn, userData, loc)
}

func (s *Session) attach(op string, e *entry, fn Func, userData interface{}, loc *Location) *Location {
	if fn == nil {
		s.log.Warn(op+": nil callback", "handle", e.h)
		return nil
	}
	if e.info.Lang.singleSubscriber() && len(e.subs) > 0 {
		s.log.Debug(op+": object already has a fast callback", "handle", e.h, "name", e.info.Name)
		return nil
	}
	if s.state != Started {
		s.log.Warn(op+" outside Start/Finalize, callback will not be installed", "handle", e.h, "state", s.state)
		e.userData = userData
		return loc
	}
	sub := &subscription{h: e.h, fn: fn, data: userData}
	e.subs = append(e.subs, sub)
	e.userData = userData
	s.pending = append(s.pending, sub)
	return loc
}

// RemoveCallback removes all fast callbacks of h. It returns false if h has
// no callback. The object's classification and map expression are kept.
//
func (s *Session) RemoveCallback(h Handle) bool {
	if s.cleanedUp("RemoveCallback", h) {
		return false
	}
	e, ok := s.reg.lookup(h)
	if !ok || len(e.subs) == 0 {
		return false
	}
	for _, sub := range e.subs {
		if sub.cancel != nil {
			sub.cancel()
			sub.cancel = nil
		}
	}
	s.pending = without(s.pending, h)
	s.armed = without(s.armed, h)
	e.subs = nil
	return true
}

func without(subs []*subscription, h Handle) []*subscription {
	out := subs[:0]
	for _, sub := range subs {
		if sub.h != h {
			out = append(out, sub)
		}
	}
	for i := len(out); i < len(subs); i++ {
		subs[i] = nil
	}
	return out
}

// SetUserData associates data with h, independently of any callback. It
// returns false if h cannot carry user data (unknown or Unavailable objects).
//
func (s *Session) SetUserData(h Handle, data interface{}) bool {
	if s.cleanedUp("SetUserData", h) {
		return false
	}
	if s.entry(h) == nil {
		return false
	}
	return s.reg.setUserData(h, data)
}

// UserData returns the user data associated with h, or nil.
//
func (s *Session) UserData(h Handle) interface{} {
	if s.cleanedUp("UserData", h) {
		return nil
	}
	return s.reg.userData(h)
}
