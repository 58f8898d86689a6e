package keys

import "sync"

// Registry resolves key identities by name, the way firmware keymaps refer
// to them: a single printable character ("a", "!"), or a key name
// ("BKSP", "NUMPAD_SLASH", "LSHIFT").
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Key
}

// NewRegistry returns a registry holding every named key of KeyName and the
// modifier keys.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Key, len(KeyName)+10)}
	for code, name := range KeyName {
		r.byName[name] = Key{Code: code, Name: name}
	}
	for _, k := range []Key{LeftCtrl, LeftShift, LeftAlt, LeftGUI, RightCtrl, RightShift, RightAlt, RightGUI, Meh, Hyper} {
		r.byName[k.Name] = k
	}
	return r
}

// Default is the registry used when no other is configured.
var Default = NewRegistry()

// Lookup resolves name to a key identity.
func (r *Registry) Lookup(name string) (Key, bool) {
	if len(name) == 1 {
		if k, ok := ForChar(name[0]); ok {
			return k, true
		}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.byName[name]
	return k, ok
}

// Register adds or replaces a named key.
func (r *Registry) Register(name string, k Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if k.Name == "" {
		k.Name = name
	}
	r.byName[name] = k
}

// Remove drops a named key; later lookups of name fail.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byName, name)
}
