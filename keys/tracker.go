package keys

// Event is one newly pressed key together with every key held at that moment,
// the trigger included.
type Event struct {
	Key  Key
	Held []Key
}

// Tracker keeps the set of held keys and turns transitions into events.
// It is not safe for concurrent use.
type Tracker struct {
	held  map[ID]Key
	order []ID
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{held: make(map[ID]Key)}
}

// Apply records t. It returns an event only when t presses a key that was not
// already held; releases and repeated presses yield ok=false.
func (tr *Tracker) Apply(t Transition) (ev Event, ok bool) {
	id := t.Key.ID()
	if !t.Down {
		if _, held := tr.held[id]; held {
			delete(tr.held, id)
			for i, o := range tr.order {
				if o == id {
					tr.order = append(tr.order[:i], tr.order[i+1:]...)
					break
				}
			}
		}
		return Event{}, false
	}
	if _, held := tr.held[id]; held {
		return Event{}, false
	}
	tr.held[id] = t.Key
	tr.order = append(tr.order, id)
	return Event{Key: t.Key, Held: tr.Held()}, true
}

// Held returns the held keys in press order.
func (tr *Tracker) Held() []Key {
	out := make([]Key, 0, len(tr.order))
	for _, id := range tr.order {
		out = append(out, tr.held[id])
	}
	return out
}

// Reset releases every key.
func (tr *Tracker) Reset() {
	clear(tr.held)
	tr.order = tr.order[:0]
}
