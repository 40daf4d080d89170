// Package cluster resolves duplicate records within one source into merge
// clusters. Records are indexed by candidate keys, matching strategies
// yield equivalence edges inside key buckets, and a union-find over record
// ids turns the edge set into connected components.
package cluster

import "sort"

// unionFind is a disjoint-set forest over record indices. The root of every
// set is always its smallest member, which makes the resulting partition
// and representative selection independent of edge application order.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}

	return &unionFind{parent: parent}
}

// find returns the root of i with path compression.
func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}

	return i
}

// union merges the sets of a and b, keeping the smaller root.
func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}

	if ra < rb {
		u.parent[rb] = ra
	} else {
		u.parent[ra] = rb
	}
}

// components returns the sets of the forest, each sorted ascending, ordered
// by their smallest member.
func (u *unionFind) components() [][]int {
	groups := make(map[int][]int)
	for i := range u.parent {
		root := u.find(i)
		groups[root] = append(groups[root], i)
	}

	// Iterating members in index order means each group is already sorted
	// and the root is its first element.
	roots := make([]int, 0, len(groups))
	for root := range groups {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	out := make([][]int, 0, len(groups))
	for _, root := range roots {
		out = append(out, groups[root])
	}

	return out
}
