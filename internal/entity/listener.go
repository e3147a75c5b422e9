package entity

import "fmt"

// Listener observes a live entity instance. Update and Delete fire after
// the corresponding store operation; NewReference and RemoveReference fire
// when a foreign key pointing at the observed entity is assigned or
// overwritten on some referrer. AddListenee and RemoveListenee are
// bookkeeping hooks called symmetrically by the entity layer; don't call
// them yourself, go through AddListener/RemoveListener.
//
// No ordering is guaranteed between listeners, and no hook should assume
// synchronous delivery relative to storage commit beyond the triggering
// call itself.
type Listener interface {
	Update(obj *Instance)
	Delete(obj *Instance)
	NewReference(obj, referrer *Instance)
	RemoveReference(obj, referrer *Instance)
	AddListenee(obj *Instance)
	RemoveListenee(obj *Instance)
}

func (in *Instance) mustRealTime() {
	if !in.typ.realTime {
		panic(fmt.Sprintf("entity: %s is not a real-time type", in.typ.name))
	}
}

// AddListener registers a listener on this instance and the instance as a
// listenee on the listener.
func (in *Instance) AddListener(l Listener) {
	in.mustRealTime()
	in.listeners[l] = struct{}{}
	l.AddListenee(in)
}

// RemoveListener is the inverse of AddListener; unknown listeners are
// ignored.
func (in *Instance) RemoveListener(l Listener) {
	in.mustRealTime()
	if _, ok := in.listeners[l]; ok {
		delete(in.listeners, l)
		l.RemoveListenee(in)
	}
}

// RemoveAllListeners unregisters every listener.
func (in *Instance) RemoveAllListeners() {
	in.mustRealTime()
	for l := range in.listeners {
		delete(in.listeners, l)
		l.RemoveListenee(in)
	}
}

// Listeners reports how many listeners are registered.
func (in *Instance) Listeners() int { return len(in.listeners) }

// SendUpdate notifies every listener's update hook without touching the
// store.
func (in *Instance) SendUpdate() {
	in.mustRealTime()
	for l := range in.listeners {
		l.Update(in)
	}
}

func (in *Instance) notifyNewReference(referrer *Instance) {
	for l := range in.listeners {
		l.NewReference(in, referrer)
	}
}

func (in *Instance) notifyRemoveReference(referrer *Instance) {
	for l := range in.listeners {
		l.RemoveReference(in, referrer)
	}
}
