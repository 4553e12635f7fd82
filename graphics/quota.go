// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package graphics

import "github.com/kitty-term/grman/internal/xsort"

// totalUsedStorage sums used_storage across all resident images.
func (m *Manager) totalUsedStorage() int64 {
	var total int64
	for _, img := range m.store.all() {
		total += img.UsedStorage
	}
	return total
}

// destroyImage releases an image's GPU texture, load buffers and refs. It
// does not remove it from the store; callers do that via store.remove /
// store.removeWhere.
func (m *Manager) destroyImage(img *Image) {
	if img.TextureID != 0 {
		m.GPU.FreeTexture(img.TextureID)
		img.TextureID = 0
	}
	if img.Load != nil {
		img.Load.Release()
		img.Load = nil
	}
	img.Refs = nil
	img.UsedStorage = 0
}

// enforceQuota implements section 4.4, triggered after every successful
// add. just_added is never evicted by the first (trim-unreferenced) phase,
// matching section 4.4's explicit exception.
func (m *Manager) enforceQuota(justAdded *Image) {
	// Phase 1: trim images that never finished loading or that have no
	// placements, except the image just added.
	m.store.removeWhere(func(img *Image) bool {
		if img == justAdded {
			return false
		}
		return !img.DataLoaded || len(img.Refs) == 0
	}, m.destroyImage)

	if m.totalUsedStorage() <= m.Limits.StorageLimit {
		return
	}

	// Phase 2: sort by atime descending (oldest last) and pop from the
	// tail until back under budget.
	ordered := append([]*Image(nil), m.store.all()...)
	xsort.StableSortWithKey(ordered, func(img *Image) int64 { return -img.Atime.UnixNano() })

	for m.totalUsedStorage() > m.Limits.StorageLimit && len(ordered) > 0 {
		victim := ordered[len(ordered)-1]
		ordered = ordered[:len(ordered)-1]
		m.destroyImage(victim)
		m.store.remove(victim)
	}
}
