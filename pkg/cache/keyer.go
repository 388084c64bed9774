package cache

import (
	"maps"
	"slices"
)

// Keyer derives cache keys from a topology identity.
type Keyer interface {
	// TopologyKey identifies one topology view: the topology ID plus the
	// options that change which nodes it shows. Equal inputs give equal keys
	// regardless of map iteration order.
	TopologyKey(topologyID string, options map[string]string) string

	// LayoutKey is the storage key of the layout cache for a topology key.
	LayoutKey(topologyKey string) string
}

// DefaultKeyer produces readable topology keys and hashed storage keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TopologyKey returns "topology:<id>" when there are no options and
// "topology:<id>:<hash>" otherwise.
func (DefaultKeyer) TopologyKey(topologyID string, options map[string]string) string {
	if len(options) == 0 {
		return "topology:" + topologyID
	}
	keys := slices.Sorted(maps.Keys(options))
	pairs := make([][2]string, len(keys))
	for i, k := range keys {
		pairs[i] = [2]string{k, options[k]}
	}
	return hashKey("topology:"+topologyID, pairs)
}

// LayoutKey hashes the topology key so arbitrary IDs are safe as file names.
func (DefaultKeyer) LayoutKey(topologyKey string) string {
	return hashKey("layout", topologyKey)
}
