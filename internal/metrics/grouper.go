package metrics

// Groups is a key → bucket mapping that remembers first-seen key order
type Groups[K comparable, T any] struct {
	keys    []K
	buckets map[K][]T
}

// GroupBy partitions items by key. Bucket order follows the first occurrence
// of each key; items inside a bucket keep input order.
func GroupBy[T any, K comparable](items []T, key func(T) K) *Groups[K, T] {
	g := &Groups[K, T]{buckets: make(map[K][]T)}
	for _, item := range items {
		g.Add(key(item), item)
	}
	return g
}

// Add appends item to the bucket for k, creating it on first sight
func (g *Groups[K, T]) Add(k K, item T) {
	if g.buckets == nil {
		g.buckets = make(map[K][]T)
	}
	bucket, exists := g.buckets[k]
	if !exists {
		g.keys = append(g.keys, k)
	}
	g.buckets[k] = append(bucket, item)
}

// Keys returns keys in first-occurrence order
func (g *Groups[K, T]) Keys() []K {
	return g.keys
}

// Get returns the bucket for k (nil if absent)
func (g *Groups[K, T]) Get(k K) []T {
	return g.buckets[k]
}

// Len is the number of distinct keys
func (g *Groups[K, T]) Len() int {
	return len(g.keys)
}

// Each visits buckets in key order
func (g *Groups[K, T]) Each(fn func(k K, bucket []T)) {
	for _, k := range g.keys {
		fn(k, g.buckets[k])
	}
}
