// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package wavelog

// entry is the registry record for one object.
//
type entry struct {
	h     Handle
	info  ObjectInfo
	class Class

	userData interface{}
	expr     Node   // map expression, Secondary only
	aliasOf  Handle // canonical secondary if expr is shared

	subs []*subscription // pending or armed
}

// registry associates handles with their entry. It also keeps the table of
// canonical map expressions used for alias discovery.
//
// The registry is dropped as a whole on Cleanup. Subscriptions do not point
// back into it, so armed callbacks keep working afterwards.
//
type registry struct {
	m     map[Handle]*entry
	canon map[string]Handle // expression key -> canonical secondary
}

func newRegistry() *registry {
	return &registry{
		m:     make(map[Handle]*entry),
		canon: make(map[string]Handle),
	}
}

func (r *registry) lookup(h Handle) (*entry, bool) {
	e, ok := r.m[h]
	return e, ok
}

func (r *registry) add(h Handle, info ObjectInfo) *entry {
	e := &entry{h: h, info: info}
	r.m[h] = e
	return e
}

// upsertClassification sets the classification of h, adding an entry if
// needed.
//
func (r *registry) upsertClassification(h Handle, info ObjectInfo, c Class) *entry {
	e, ok := r.m[h]
	if !ok {
		e = r.add(h, info)
	}
	e.class = c
	return e
}

// setUserData fails for unknown handles and for objects that cannot carry
// user data.
//
func (r *registry) setUserData(h Handle, data interface{}) bool {
	e, ok := r.m[h]
	if !ok || e.class == Unavailable {
		return false
	}
	e.userData = data
	return true
}

func (r *registry) userData(h Handle) interface{} {
	if e, ok := r.m[h]; ok {
		return e.userData
	}
	return nil
}

func (r *registry) len() int { return len(r.m) }
