package cache

// ScopedKeyer wraps a Keyer with a prefix, giving separate namespaces to
// processes or users that share one cache directory.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "ui:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TopologyKey generates a prefixed topology key.
func (k *ScopedKeyer) TopologyKey(topologyID string, options map[string]string) string {
	return k.prefix + k.inner.TopologyKey(topologyID, options)
}

// LayoutKey generates a prefixed storage key.
func (k *ScopedKeyer) LayoutKey(topologyKey string) string {
	return k.prefix + k.inner.LayoutKey(topologyKey)
}
