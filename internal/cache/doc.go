// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package cache provides a thread-safe LRU cache with TTL expiration.

The API uses it to memoize evaluation responses. Keys include the run ID,
so entries computed against a replaced run are never served; they simply
age out or get evicted.

# Usage Example

	c := cache.NewLRU[models.EvaluationResponse](64, 10*time.Minute)

	key := run.ID + "|3|stratified|30"
	if resp, ok := c.Get(key); ok {
	    return resp
	}
	resp := compute()
	c.Add(key, resp)

# Implementation

A hash map gives O(1) lookup and a doubly-linked list with sentinel nodes
keeps recency order. Get, Add, Remove and eviction are all O(1). Expired
entries are removed lazily on access, or in bulk with CleanupExpired.

# Thread Safety

All methods are safe for concurrent use. Get takes the write lock because
it reorders the list.
*/
package cache
