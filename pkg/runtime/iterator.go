// Package runtime provides the support types called by generated Go code.
// Generated enums return an Iterator for every one-to-many relation.
package runtime

import "iter"

// Iterator walks the records of a one-to-many relation in declaration order.
// Each accessor call returns a fresh Iterator positioned before the first
// record.
type Iterator[T any] interface {
	// Next returns the next record, or false once every record has been
	// returned.
	Next() (T, bool)
}

// Collect drains it into a slice.
func Collect[T any](it Iterator[T]) []T {
	items := make([]T, 0)
	for {
		item, ok := it.Next()
		if !ok {
			return items
		}
		items = append(items, item)
	}
}

// All adapts it to a range-over-func sequence:
//
//	for child := range runtime.All(parent.Children()) { ... }
func All[T any](it Iterator[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			item, ok := it.Next()
			if !ok || !yield(item) {
				return
			}
		}
	}
}

// Count drains it and returns the number of records it held.
func Count[T any](it Iterator[T]) int {
	n := 0
	for {
		if _, ok := it.Next(); !ok {
			return n
		}
		n++
	}
}
