// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package graphics

import "testing"

func TestFindOrCreateAppendsNewSlot(t *testing.T) {
	s := newStore()
	img, reused := s.findOrCreate(5)
	if reused {
		t.Fatal("expected reused=false for a brand new client id")
	}
	if img.ClientID != 5 || img.InternalID == 0 {
		t.Fatalf("unexpected new image: %+v", img)
	}
	if len(s.all()) != 1 {
		t.Fatalf("expected 1 image in store, got %d", len(s.all()))
	}
}

func TestFindOrCreateReusesExistingClientID(t *testing.T) {
	s := newStore()
	first, _ := s.findOrCreate(5)
	second, reused := s.findOrCreate(5)
	if !reused {
		t.Fatal("expected reused=true for a repeated client id")
	}
	if second != first {
		t.Fatal("expected findOrCreate to return the same *Image for a repeated client id")
	}
}

func TestFindOrCreateZeroClientIDAlwaysCreatesNew(t *testing.T) {
	s := newStore()
	a, _ := s.findOrCreate(0)
	b, _ := s.findOrCreate(0)
	if a == b {
		t.Fatal("expected two distinct images for two client_id=0 creates")
	}
	if a.InternalID == b.InternalID {
		t.Fatal("expected distinct internal ids")
	}
}

func TestByClientNumberReturnsNewestMatch(t *testing.T) {
	s := newStore()
	a, _ := s.findOrCreate(0)
	a.ClientNumber = 7
	b, _ := s.findOrCreate(0)
	b.ClientNumber = 7

	got := s.byClientNumber(7)
	if got != b {
		t.Fatalf("byClientNumber did not return the newest match")
	}
}

func TestFreeClientIDFindsFirstGap(t *testing.T) {
	s := newStore()
	s.findOrCreate(1)
	s.findOrCreate(3)
	s.findOrCreate(4)
	if got := s.freeClientID(); got != 2 {
		t.Fatalf("freeClientID() = %d, want 2", got)
	}
}

func TestFreeClientIDOnEmptyStoreIsOne(t *testing.T) {
	s := newStore()
	if got := s.freeClientID(); got != 1 {
		t.Fatalf("freeClientID() = %d, want 1", got)
	}
}

func TestRemoveWhereInvokesCallback(t *testing.T) {
	s := newStore()
	s.findOrCreate(1)
	s.findOrCreate(2)
	var destroyed []uint32
	s.removeWhere(func(img *Image) bool { return img.ClientID == 1 }, func(img *Image) {
		destroyed = append(destroyed, img.ClientID)
	})
	if len(s.all()) != 1 || s.all()[0].ClientID != 2 {
		t.Fatalf("unexpected store contents after removeWhere: %+v", s.all())
	}
	if len(destroyed) != 1 || destroyed[0] != 1 {
		t.Fatalf("onRemove not invoked for the removed image: %+v", destroyed)
	}
}
