package keylock

import "sync"

// Registry hands out one mutex per string key so callers can serialize
// read-modify-write sections per entity (submission, contributor) without a
// global lock. Entries are reference counted and removed once unused.
type Registry struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func New() *Registry {
	return &Registry{locks: make(map[string]*entry)}
}

// Lock blocks until the key's mutex is held and returns the unlock function.
func (r *Registry) Lock(key string) func() {
	r.mu.Lock()
	e, ok := r.locks[key]
	if !ok {
		e = &entry{}
		r.locks[key] = e
	}
	e.refs++
	r.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		r.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(r.locks, key)
		}
		r.mu.Unlock()
	}
}
