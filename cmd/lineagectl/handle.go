package main

import (
	"github.com/lineagehub/lineage/internal/cache"
	"github.com/lineagehub/lineage/internal/graph"
)

// newCacheHandle wires a cache.Handle's reload callback to rebuild and
// publish a graph.Engine on gh, so every successful Reload (startup or
// file-watch triggered) republishes a fresh, fully-indexed engine.
func newCacheHandle(gh *graph.Handle) *cache.Handle {
	return cache.NewHandle(cfg.CachePath, func(c *cache.Cache) {
		gh.Set(graph.Build(c))
	})
}
