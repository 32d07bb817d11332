// Package tree turns flat parent-linked records into a forest.
//
// Records name their parent by id. A record whose parent id is the zero value,
// equals its own id, or matches no other record is a root. Output order follows
// input order at every level.
package tree

// Node is one record with its children. Children is never nil.
type Node[T any] struct {
	Value    T
	Children []*Node[T]
}

// KeyFunc returns a record's id and its parent's id.
type KeyFunc[T any, K comparable] func(T) (id, parent K)

// Build links items into a forest in two passes over the input.
//
// When several records share an id the last one wins and the earlier ones are
// dropped, so no record appears twice. Cycles are not detected: records on a
// cycle are linked to each other but unreachable from the returned roots.
func Build[T any, K comparable](items []T, key KeyFunc[T, K]) []*Node[T] {
	byID := make(map[K]*Node[T], len(items))
	last := make(map[K]int, len(items))
	for i, item := range items {
		id, _ := key(item)
		byID[id] = &Node[T]{Value: item, Children: []*Node[T]{}}
		last[id] = i
	}

	var zero K
	roots := make([]*Node[T], 0)
	for i, item := range items {
		id, parent := key(item)
		if last[id] != i {
			continue
		}
		node := byID[id]
		if p, ok := byID[parent]; ok && parent != zero && parent != id {
			p.Children = append(p.Children, node)
			continue
		}
		roots = append(roots, node)
	}
	return roots
}

// Duplicates returns ids that occur more than once, in first-seen order.
func Duplicates[T any, K comparable](items []T, key KeyFunc[T, K]) []K {
	seen := make(map[K]int, len(items))
	var dups []K
	for _, item := range items {
		id, _ := key(item)
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}

// Index groups items by parent id, keeping input order inside each group.
func Index[T any, K comparable](items []T, key KeyFunc[T, K]) map[K][]T {
	idx := make(map[K][]T)
	for _, item := range items {
		_, parent := key(item)
		idx[parent] = append(idx[parent], item)
	}
	return idx
}

// Walk visits every node depth-first, parents before children. Returning
// false from fn skips that node's subtree.
func Walk[T any](roots []*Node[T], fn func(n *Node[T], depth int) bool) {
	var visit func(nodes []*Node[T], depth int)
	visit = func(nodes []*Node[T], depth int) {
		for _, n := range nodes {
			if fn(n, depth) {
				visit(n.Children, depth+1)
			}
		}
	}
	visit(roots, 0)
}

// Count returns the number of nodes reachable from roots.
func Count[T any](roots []*Node[T]) int {
	n := 0
	Walk(roots, func(*Node[T], int) bool {
		n++
		return true
	})
	return n
}

// Map converts a forest of Node[T] into any other recursive shape.
func Map[T, R any](roots []*Node[T], fn func(value T, children []R) R) []R {
	out := make([]R, 0, len(roots))
	for _, n := range roots {
		out = append(out, fn(n.Value, Map(n.Children, fn)))
	}
	return out
}
