package cli

import (
	"context"

	"github.com/matzehuels/topolayout/pkg/cache"
	"github.com/matzehuels/topolayout/pkg/chart"
	"github.com/matzehuels/topolayout/pkg/layout"
)

type view struct{ topology, options string }

// history moves selector layout caches between a byte store and memory, so
// a later run continues where the previous one stopped.
type history struct {
	store cache.Cache
	keyer cache.Keyer
	views map[view]bool
}

func newHistory(store cache.Cache, keyer cache.Keyer) *history {
	return &history{store: store, keyer: keyer, views: make(map[view]bool)}
}

// restore loads the stored cache of a view into sel the first time the view
// is seen. It reports whether a stored cache was found.
func (h *history) restore(ctx context.Context, sel *chart.Selector, topologyID, options string) (bool, error) {
	v := view{topologyID, options}
	if _, seen := h.views[v]; seen {
		return false, nil
	}
	h.views[v] = true

	key, err := h.key(topologyID, options)
	if err != nil {
		return false, err
	}
	var c layout.Cache
	ok, err := cache.GetJSON(ctx, h.store, layoutKeyType, key, &c)
	if err != nil || !ok {
		return false, err
	}
	return true, sel.SetCache(topologyID, options, &c)
}

// save writes the current cache of every restored view.
func (h *history) save(ctx context.Context, sel *chart.Selector) error {
	for v := range h.views {
		c := sel.Cache(v.topology, v.options)
		if c == nil {
			continue
		}
		key, err := h.key(v.topology, v.options)
		if err != nil {
			return err
		}
		if err := cache.SetJSON(ctx, h.store, layoutKeyType, key, c, 0); err != nil {
			return err
		}
	}
	return nil
}

func (h *history) key(topologyID, options string) (string, error) {
	opts, err := chart.ParseTopologyOptions(options)
	if err != nil {
		return "", err
	}
	return h.keyer.LayoutKey(h.keyer.TopologyKey(topologyID, opts)), nil
}
