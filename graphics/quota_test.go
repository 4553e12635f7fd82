// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package graphics

import (
	"testing"
	"time"
)

func newTestManagerWithClock() (*Manager, *time.Time) {
	m := NewManager(nil, nil)
	now := time.Unix(1_700_000_000, 0)
	m.Now = func() time.Time { return now }
	return m, &now
}

func residentImage(m *Manager, clientID uint32, storage int64, refs int, atime time.Time) *Image {
	img, _ := m.store.findOrCreate(clientID)
	img.DataLoaded = true
	img.UsedStorage = storage
	img.TextureID = clientID + 1000
	img.Atime = atime
	for i := 0; i < refs; i++ {
		img.Refs = append(img.Refs, &ImageRef{})
	}
	return img
}

func TestEnforceQuotaTrimsUnreferencedExceptJustAdded(t *testing.T) {
	m, _ := newTestManagerWithClock()
	justAdded := residentImage(m, 1, 100, 0, time.Now())
	residentImage(m, 2, 100, 0, time.Now())
	kept := residentImage(m, 3, 100, 2, time.Now())

	m.enforceQuota(justAdded)

	remaining := m.store.all()
	if len(remaining) != 2 {
		t.Fatalf("expected 2 images to survive (just-added + referenced), got %d: %+v", len(remaining), remaining)
	}
	found := map[uint64]bool{}
	for _, img := range remaining {
		found[img.InternalID] = true
	}
	if !found[justAdded.InternalID] || !found[kept.InternalID] {
		t.Fatalf("expected just-added and referenced images to survive trim, got %+v", remaining)
	}
}

func TestEnforceQuotaEvictsOldestByAtimeWhenOverBudget(t *testing.T) {
	m, _ := newTestManagerWithClock()
	m.Limits.StorageLimit = 250

	base := time.Unix(1_700_000_000, 0)
	oldest := residentImage(m, 1, 100, 1, base)
	middle := residentImage(m, 2, 100, 1, base.Add(time.Minute))
	justAdded := residentImage(m, 3, 100, 1, base.Add(2*time.Minute))

	m.enforceQuota(justAdded)

	if m.totalUsedStorage() > m.Limits.StorageLimit {
		t.Fatalf("total used storage %d exceeds limit %d after eviction", m.totalUsedStorage(), m.Limits.StorageLimit)
	}
	if m.store.byInternalID(oldest.InternalID) != nil {
		t.Fatal("expected the oldest-atime image to be evicted")
	}
	if m.store.byInternalID(justAdded.InternalID) == nil {
		t.Fatal("the just-added image must survive eviction")
	}
	_ = middle
}

func TestEnforceQuotaNoOpUnderBudget(t *testing.T) {
	m, _ := newTestManagerWithClock()
	img := residentImage(m, 1, 10, 1, time.Now())
	m.enforceQuota(img)
	if len(m.store.all()) != 1 {
		t.Fatalf("expected the single referenced image to survive, got %d images", len(m.store.all()))
	}
}

func TestDestroyImageReleasesResources(t *testing.T) {
	m := NewManager(nil, nil)
	img := residentImage(m, 1, 100, 1, time.Now())
	img.Load = &LoadData{Buf: []byte("staged"), BufUsed: 6}
	freed := uint32(0)
	m.GPU = fakeGPUFreeTracker{freed: &freed}
	m.destroyImage(img)
	if img.TextureID != 0 {
		t.Fatal("expected TextureID to be cleared")
	}
	if img.Load != nil {
		t.Fatal("expected Load to be released and cleared")
	}
	if img.Refs != nil {
		t.Fatal("expected Refs to be cleared")
	}
	if img.UsedStorage != 0 {
		t.Fatal("expected UsedStorage to be zeroed")
	}
	if freed != 1001 {
		t.Fatalf("expected FreeTexture to be called with 1001, recorded %d", freed)
	}
}

type fakeGPUFreeTracker struct{ freed *uint32 }

func (fakeGPUFreeTracker) UploadTexture(pixels []byte, w, h int, isOpaque, is4 bool) (uint32, error) {
	return 1, nil
}
func (f fakeGPUFreeTracker) FreeTexture(id uint32) { *f.freed = id }
