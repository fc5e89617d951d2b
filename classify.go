// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package wavelog

// classOf maps the kernel's optimizer verdict to a value classification.
//
// Composite objects are classified like any other object. They are rejected
// later by SetCallback, which lets the client fall back to slow callbacks.
//
func classOf(info *ObjectInfo) Class {
	switch info.Fate {
	case FateLive:
		return Primary
	case FateFolded:
		if info.Shape.Composite() {
			// folded aggregates have no bit level map expression.
			return Unavailable
		}
		return Secondary
	case FateConstant:
		return Literal
	}
	return Unavailable
}

// entry returns the registry entry for h, classifying h on first use. It
// returns nil for handles the kernel does not know about; those are never
// added to the registry.
//
func (s *Session) entry(h Handle) *entry {
	if e, ok := s.reg.lookup(h); ok {
		return e
	}
	if h == 0 {
		return nil
	}
	info, ok := s.k.Info(h)
	if !ok {
		s.log.Debug("unknown handle", "handle", h)
		return nil
	}
	c := classOf(&info)
	s.log.Debug("classify", "handle", h, "name", info.Name, "class", c)
	return s.reg.upsertClassification(h, info, c)
}

// Classify returns the value classification of h. The result for a given
// handle never changes for the life of the session. Unknown handles are
// Unavailable.
//
func (s *Session) Classify(h Handle) Class {
	if s.cleanedUp("Classify", h) {
		return Unavailable
	}
	if e := s.entry(h); e != nil {
		return e.class
	}
	return Unavailable
}

// ValueKind describes how to interpret the locations returned for h by
// SetCallback, SetStrengthCallback and SetCallbackForSecondary. size is the
// location size in 32 bit words for TwoState and FourState, and in bytes for
// ForeignValue. It returns KindNone for Unavailable objects and for composite
// objects, which never get a value location.
//
func (s *Session) ValueKind(h Handle) (kind ValueKind, size int) {
	if s.cleanedUp("ValueKind", h) {
		return KindNone, 0
	}
	e := s.entry(h)
	if e == nil || e.class == Unavailable || e.info.Shape.Composite() {
		return KindNone, 0
	}
	return e.info.Encoding, e.info.Encoding.size(e.info.Width())
}

// Object returns the kernel's information about h, as recorded in the
// registry.
//
func (s *Session) Object(h Handle) (ObjectInfo, bool) {
	if s.cleanedUp("Object", h) {
		return ObjectInfo{}, false
	}
	if e := s.entry(h); e != nil {
		return e.info, true
	}
	return ObjectInfo{}, false
}
