package keylock

import (
	"hash/fnv"
	"sync"
)

const stripes = 64

// Striped serializes in-process work per key. Distinct keys may share a
// stripe; callers must not take two locks from the same Striped at once.
type Striped struct {
	mu [stripes]sync.Mutex
}

// Lock blocks until the stripe for the joined parts is free and returns its
// unlock func.
func (s *Striped) Lock(parts ...string) func() {
	h := fnv.New32a()
	for i, p := range parts {
		if i > 0 {
			_, _ = h.Write([]byte{0})
		}
		_, _ = h.Write([]byte(p))
	}
	m := &s.mu[h.Sum32()%stripes]
	m.Lock()
	return m.Unlock
}
