package sampling

import "slices"

// Group is a set of items sharing one key.
type Group[K comparable, T any] struct {
	Key   K
	Items []T
}

// GroupBy partitions items by key and returns one group per distinct key,
// ordered ascending by compare. Every item lands in exactly one group and
// items keep their input order inside a group.
func GroupBy[T any, K comparable](items []T, key func(T) K, compare func(a, b K) int) []Group[K, T] {
	if len(items) == 0 {
		return nil
	}

	index := make(map[K]int)
	groups := make([]Group[K, T], 0)

	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[K, T]{Key: k})
		}
		groups[i].Items = append(groups[i].Items, item)
	}

	// Keys are distinct, so a stable sort is not needed.
	slices.SortFunc(groups, func(a, b Group[K, T]) int {
		return compare(a.Key, b.Key)
	})

	return groups
}
