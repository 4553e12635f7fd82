// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package graphics

import "testing"

func TestResolveSrcRectDefaultsToFullImage(t *testing.T) {
	r := &ImageRef{}
	resolveSrcRect(r, 100, 50)
	if r.SrcX != 0 || r.SrcY != 0 || r.SrcWidth != 100 || r.SrcHeight != 50 {
		t.Fatalf("expected the full image rect, got %+v", r)
	}
}

func TestResolveSrcRectClampsOffsetThenClipsSize(t *testing.T) {
	r := &ImageRef{SrcX: 90, SrcY: 40, SrcWidth: 50, SrcHeight: 50}
	resolveSrcRect(r, 100, 50)
	if r.SrcX != 90 || r.SrcY != 40 {
		t.Fatalf("expected offsets within bounds to be left alone, got %+v", r)
	}
	if r.SrcWidth != 10 || r.SrcHeight != 10 {
		t.Fatalf("expected width/height clipped to the remaining image extent, got %+v", r)
	}
}

func TestResolveSrcRectClampsOffsetBeyondImage(t *testing.T) {
	r := &ImageRef{SrcX: 500, SrcY: 500}
	resolveSrcRect(r, 100, 50)
	if r.SrcX != 100 || r.SrcY != 50 {
		t.Fatalf("expected offsets clamped to image dims, got %+v", r)
	}
	if r.SrcWidth != 0 || r.SrcHeight != 0 {
		t.Fatalf("expected zero remaining extent, got %+v", r)
	}
}

func TestRecomputeEffectiveSpanClampsCellOffsets(t *testing.T) {
	cell := CellSize{Width: 8, Height: 16}
	r := &ImageRef{CellXOffset: 99, CellYOffset: 99, SrcWidth: 8, SrcHeight: 16}
	recomputeEffectiveSpan(r, cell)
	if r.CellXOffset != 7 || r.CellYOffset != 15 {
		t.Fatalf("expected cell offsets clamped to cell size - 1, got %+v", r)
	}
}

func TestRecomputeEffectiveSpanDerivesFromSourceSize(t *testing.T) {
	cell := CellSize{Width: 8, Height: 16}
	r := &ImageRef{SrcWidth: 17, SrcHeight: 33}
	recomputeEffectiveSpan(r, cell)
	if r.EffectiveNumCols != 3 {
		t.Fatalf("EffectiveNumCols = %d, want ceil(17/8) = 3", r.EffectiveNumCols)
	}
	if r.EffectiveNumRows != 3 {
		t.Fatalf("EffectiveNumRows = %d, want ceil(33/16) = 3", r.EffectiveNumRows)
	}
}

func TestRecomputeEffectiveSpanHonorsExplicitSpan(t *testing.T) {
	cell := CellSize{Width: 8, Height: 16}
	r := &ImageRef{SrcWidth: 100, SrcHeight: 100, NumCols: 2, NumRows: 2}
	recomputeEffectiveSpan(r, cell)
	if r.EffectiveNumCols != 2 || r.EffectiveNumRows != 2 {
		t.Fatalf("explicit num_cols/num_rows should be used as-is, got %+v", r)
	}
}

func TestRecomputeEffectiveSpanNeverLessThanOneRow(t *testing.T) {
	cell := CellSize{Width: 8, Height: 16}
	r := &ImageRef{SrcWidth: 1, SrcHeight: 0}
	recomputeEffectiveSpan(r, cell)
	if r.EffectiveNumRows < 1 {
		t.Fatalf("EffectiveNumRows = %d, want >= 1", r.EffectiveNumRows)
	}
}

func TestPutAppendsRefAndAdvancesCursor(t *testing.T) {
	m := NewManager(nil, nil)
	m.SetCellSize(CellSize{Width: 8, Height: 16})
	m.SetCursor(Cursor{X: 2, Y: 3})
	img := &Image{InternalID: 1, Width: 16, Height: 32}

	cmd := &Command{Width: 16, Height: 32}
	if cerr := m.put(cmd, img); cerr != nil {
		t.Fatal(cerr)
	}
	if len(img.Refs) != 1 {
		t.Fatalf("expected 1 ref, got %d", len(img.Refs))
	}
	ref := img.Refs[0]
	if ref.StartColumn != 2 || ref.StartRow != 3 {
		t.Fatalf("expected the ref anchored at the cursor (2,3), got (%d,%d)", ref.StartColumn, ref.StartRow)
	}
	// 16px/8px = 2 cols, 32px/16px = 2 rows.
	wantCursor := Cursor{X: 2 + 2, Y: 3 + 2 - 1}
	if m.Cursor() != wantCursor {
		t.Fatalf("cursor after put = %+v, want %+v", m.Cursor(), wantCursor)
	}
}

func TestPutReplacesExistingPlacementID(t *testing.T) {
	m := NewManager(nil, nil)
	m.SetCellSize(CellSize{Width: 8, Height: 16})
	img := &Image{InternalID: 1, ClientID: 9, Width: 16, Height: 16}

	if cerr := m.put(&Command{PlacementID: 1, Width: 16, Height: 16}, img); cerr != nil {
		t.Fatal(cerr)
	}
	if cerr := m.put(&Command{PlacementID: 1, Width: 8, Height: 8}, img); cerr != nil {
		t.Fatal(cerr)
	}
	if len(img.Refs) != 1 {
		t.Fatalf("expected the second put to replace, not append; got %d refs", len(img.Refs))
	}
	if img.Refs[0].SrcWidth != 8 {
		t.Fatalf("expected the replaced ref to reflect the second put's geometry, got %+v", img.Refs[0])
	}
}

func TestPutWithDifferentPlacementIDsAppends(t *testing.T) {
	m := NewManager(nil, nil)
	m.SetCellSize(CellSize{Width: 8, Height: 16})
	img := &Image{InternalID: 1, ClientID: 9, Width: 16, Height: 16}

	m.put(&Command{PlacementID: 1, Width: 16, Height: 16}, img)
	m.put(&Command{PlacementID: 2, Width: 16, Height: 16}, img)
	if len(img.Refs) != 2 {
		t.Fatalf("expected 2 distinct refs for 2 distinct placement ids, got %d", len(img.Refs))
	}
}

func TestRescaleRecomputesEveryRef(t *testing.T) {
	m := NewManager(nil, nil)
	m.SetCellSize(CellSize{Width: 8, Height: 16})
	img := &Image{InternalID: 1, Width: 32, Height: 32}
	m.put(&Command{Width: 32, Height: 32}, img)
	m.store.images = append(m.store.images, img)

	before := img.Refs[0].EffectiveNumCols
	m.Rescale(CellSize{Width: 16, Height: 16})
	after := img.Refs[0].EffectiveNumCols
	if before == after {
		t.Fatalf("expected EffectiveNumCols to change after doubling cell width (was %d)", before)
	}
	if after != 2 {
		t.Fatalf("EffectiveNumCols after rescale = %d, want ceil(32/16)=2", after)
	}
}
