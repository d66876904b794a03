package core

// listeners is an ordered subscriber list. Handlers run in subscription
// order; removing one while the list is being dispatched is safe.
type listeners[F any] struct {
	nextID  int
	entries []listener[F]
}

type listener[F any] struct {
	id int
	fn F
}

func (l *listeners[F]) add(fn F) func() {
	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, listener[F]{id: id, fn: fn})
	return func() { l.remove(id) }
}

func (l *listeners[F]) remove(id int) {
	for i, e := range l.entries {
		if e.id == id {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return
		}
	}
}

func (l *listeners[F]) snapshot() []F {
	out := make([]F, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.fn
	}
	return out
}

func (l *listeners[F]) len() int {
	return len(l.entries)
}
