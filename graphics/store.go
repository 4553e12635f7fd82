// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package graphics

import "slices"

// store is the append-only array of Images keyed by internal id, client id
// and client number (section 4.3). It has no locking: the manager owning it
// is used from a single cooperative thread (section 5).
type store struct {
	images        []*Image
	nextInternal  uint64
}

func newStore() *store {
	return &store{}
}

func (s *store) all() []*Image { return s.images }

// byInternalID looks up the unique, identity-stable internal id.
func (s *store) byInternalID(id uint64) *Image {
	for _, img := range s.images {
		if img.InternalID == id {
			return img
		}
	}
	return nil
}

// byClientID returns the first match for a nonzero client id (unique by
// invariant, so "first" and "only" coincide).
func (s *store) byClientID(id uint32) *Image {
	if id == 0 {
		return nil
	}
	for _, img := range s.images {
		if img.ClientID == id {
			return img
		}
	}
	return nil
}

// byClientNumber returns the newest image with the given client number,
// scanning from the end per section 4.3.
func (s *store) byClientNumber(number uint32) *Image {
	for i := len(s.images) - 1; i >= 0; i-- {
		if s.images[i].ClientNumber == number {
			return s.images[i]
		}
	}
	return nil
}

// freeClientID returns the smallest positive integer not currently used by
// any image's nonzero client id (section 4.3).
func (s *store) freeClientID() uint32 {
	used := make([]uint32, 0, len(s.images))
	for _, img := range s.images {
		if img.ClientID != 0 {
			used = append(used, img.ClientID)
		}
	}
	slices.Sort(used)
	candidate := uint32(1)
	for _, id := range used {
		if id == candidate {
			candidate++
		} else if id > candidate {
			break
		}
	}
	return candidate
}

// findOrCreate implements section 4.3's find-or-create: if clientID is
// nonzero and matches an existing image, it is returned with reused=true
// (the caller resets its load state and refs); otherwise a new,
// zero-initialized slot is appended.
func (s *store) findOrCreate(clientID uint32) (img *Image, reused bool) {
	if clientID != 0 {
		if existing := s.byClientID(clientID); existing != nil {
			return existing, true
		}
	}
	s.nextInternal++
	img = &Image{InternalID: s.nextInternal, ClientID: clientID}
	s.images = append(s.images, img)
	return img, false
}

// remove deletes img from the store by pointer identity.
func (s *store) remove(img *Image) {
	for i, candidate := range s.images {
		if candidate == img {
			s.images = slices.Delete(s.images, i, i+1)
			return
		}
	}
}

// removeWhere deletes every image for which pred returns true, invoking
// onRemove for each before it is dropped (used by the quota to release GPU
// textures/buffers).
func (s *store) removeWhere(pred func(*Image) bool, onRemove func(*Image)) {
	s.images = slices.DeleteFunc(s.images, func(img *Image) bool {
		if pred(img) {
			if onRemove != nil {
				onRemove(img)
			}
			return true
		}
		return false
	})
}
