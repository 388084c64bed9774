// Package memo recomputes a value only when its inputs change.
package memo

import "sync"

// Memo caches the result of the last call to Get. K must be comparable;
// pointer keys compare by identity, so an unchanged *Snapshot reuses the
// result even if another snapshot with equal contents exists.
//
// A Memo is safe for concurrent use. Concurrent calls with different keys
// serialize.
type Memo[K comparable, V any] struct {
	mu    sync.Mutex
	valid bool
	key   K
	val   V
}

// Get returns the cached value when key equals the key of the last
// successful call. Otherwise it calls compute, caches the result unless
// compute failed, and returns it. The second result reports a cache hit.
func (m *Memo[K, V]) Get(key K, compute func(K) (V, error)) (V, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && m.key == key {
		return m.val, true, nil
	}
	v, err := compute(key)
	if err != nil {
		var zero V
		return zero, false, err
	}
	m.key, m.val, m.valid = key, v, true
	return v, false, nil
}

// Reset forgets the cached value.
func (m *Memo[K, V]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zeroK K
	var zeroV V
	m.key, m.val, m.valid = zeroK, zeroV, false
}
