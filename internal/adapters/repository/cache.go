package repository

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/okian/trainhist/pkg/metrics"
)

const defaultCacheSize = 256

// ReportCache keeps the most recently computed reports by entity id so
// prices can be re-converted without fetching again.
type ReportCache[V any] struct {
	cache *lru.Cache
}

// NewReportCache returns a cache holding up to size reports.
func NewReportCache[V any](size int) (*ReportCache[V], error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create report cache: %w", err)
	}
	return &ReportCache[V]{cache: c}, nil
}

// Get returns the cached report for id.
func (c *ReportCache[V]) Get(id string) (V, bool) {
	var zero V
	v, ok := c.cache.Get(id)
	if !ok {
		metrics.RecordCacheMiss()
		return zero, false
	}
	r, ok := v.(V)
	if !ok {
		metrics.RecordCacheMiss()
		return zero, false
	}
	metrics.RecordCacheHit()
	return r, true
}

// Put stores the report for id, evicting the least recently used one when full.
func (c *ReportCache[V]) Put(id string, r V) {
	c.cache.Add(id, r)
	metrics.UpdateCacheEntries(c.cache.Len())
}

// Len returns the number of cached reports.
func (c *ReportCache[V]) Len() int { return c.cache.Len() }
