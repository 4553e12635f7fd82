// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

// Package xsort provides key-extracting sort helpers, used by the quota's
// LRU-by-atime pass. The layer builder's (z_index, image_id) render order
// uses slices.SortFunc directly, not this package.
package xsort

import (
	"slices"

	"golang.org/x/exp/constraints"
)

func sortWithKey[T any, C constraints.Ordered](stable bool, s []T, key func(a T) C) []T {
	cmp := func(a, b T) int {
		ka, kb := key(a), key(b)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	}
	if stable {
		slices.SortStableFunc(s, cmp)
	} else {
		slices.SortFunc(s, cmp)
	}
	return s
}

// SortWithKey sorts s in place by the ordered key extracted by key, with no
// stability guarantee.
func SortWithKey[T any, C constraints.Ordered](s []T, key func(a T) C) []T {
	return sortWithKey(false, s, key)
}

// StableSortWithKey sorts s in place preserving the relative order of equal
// keys (used for the quota's atime pass, where ties should not reorder
// images that were touched in the same instant).
func StableSortWithKey[T any, C constraints.Ordered](s []T, key func(a T) C) []T {
	return sortWithKey(true, s, key)
}
