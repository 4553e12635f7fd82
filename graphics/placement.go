// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package graphics

// ceilDiv computes ceil(a/b) for positive b.
func ceilDiv(a, b uint32) uint32 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// clampU32 returns v clamped to [lo, hi].
func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// resolveSrcRect clamps a requested source sub-rectangle against the
// image's pixel dimensions, per section 4.5: src_x/y are clamped to the
// image dimension first, then src_width/height are clipped to
// image_dim - src_{x,y}. A zero width/height requests "the rest of the
// image" in that dimension.
func resolveSrcRect(r *ImageRef, imgWidth, imgHeight int) {
	iw, ih := uint32(imgWidth), uint32(imgHeight)
	r.SrcX = clampU32(r.SrcX, 0, iw)
	r.SrcY = clampU32(r.SrcY, 0, ih)
	maxW := iw - r.SrcX
	maxH := ih - r.SrcY
	if r.SrcWidth == 0 || r.SrcWidth > maxW {
		r.SrcWidth = maxW
	}
	if r.SrcHeight == 0 || r.SrcHeight > maxH {
		r.SrcHeight = maxH
	}
}

// recomputeEffectiveSpan resolves cell offsets and the effective cell span
// of a ref, per section 4.5: cell offsets are clamped to cell size - 1, and
// an unspecified (zero) num_cols/num_rows is derived from the source size
// rounded up to whole cells.
func recomputeEffectiveSpan(r *ImageRef, cell CellSize) {
	if cell.Width > 0 {
		r.CellXOffset = clampU32(r.CellXOffset, 0, uint32(cell.Width-1))
	}
	if cell.Height > 0 {
		r.CellYOffset = clampU32(r.CellYOffset, 0, uint32(cell.Height-1))
	}
	if r.NumCols != 0 {
		r.EffectiveNumCols = r.NumCols
	} else {
		r.EffectiveNumCols = ceilDiv(r.SrcWidth+r.CellXOffset, uint32(cell.Width))
	}
	if r.NumRows != 0 {
		r.EffectiveNumRows = r.NumRows
	} else {
		r.EffectiveNumRows = ceilDiv(r.SrcHeight+r.CellYOffset, uint32(cell.Height))
	}
	if r.EffectiveNumRows < 1 {
		r.EffectiveNumRows = 1
	}
}

// put implements the Placement Engine's put operation (section 4.5): it
// attaches or updates an ImageRef on img at the manager's current cursor
// position, then advances the cursor.
func (m *Manager) put(cmd *Command, img *Image) *CommandError {
	ref := &ImageRef{
		SrcX: cmd.XOffset, SrcY: cmd.YOffset, SrcWidth: cmd.Width, SrcHeight: cmd.Height,
		CellXOffset: cmd.CellXOffset, CellYOffset: cmd.CellYOffset,
		NumCols: cmd.NumCells, NumRows: cmd.NumLines,
		ZIndex: cmd.ZIndex,
		StartRow: int32(m.cursor.Y), StartColumn: int32(m.cursor.X),
	}
	if cmd.PlacementID != 0 {
		ref.ClientID = cmd.PlacementID
	}

	resolveSrcRect(ref, img.Width, img.Height)
	recomputeEffectiveSpan(ref, m.cell)

	if cmd.PlacementID != 0 && img.ClientID != 0 {
		replaced := false
		for i, existing := range img.Refs {
			if existing.ClientID == cmd.PlacementID {
				img.Refs[i] = ref
				replaced = true
				break
			}
		}
		if !replaced {
			img.Refs = append(img.Refs, ref)
		}
	} else {
		img.Refs = append(img.Refs, ref)
	}

	m.cursor.X += int(ref.EffectiveNumCols)
	m.cursor.Y += int(ref.EffectiveNumRows) - 1
	m.markDirty()
	img.Atime = m.Now()
	return nil
}

// updateSrcRect recomputes a ref's clamped source sub-rect and effective
// span after the owning image's dimensions or the cell size change (e.g.
// section 9's rescale-on-DPI-change path), per section 4.5.
func (m *Manager) updateSrcRect(r *ImageRef, img *Image) {
	resolveSrcRect(r, img.Width, img.Height)
	recomputeEffectiveSpan(r, m.cell)
}

// Rescale recomputes every placement's effective span for the new cell
// size; callers must invoke this before the next layer build whenever the
// host's DPI/cell pixel size changes (section 9, Open Questions).
func (m *Manager) Rescale(cell CellSize) {
	m.SetCellSize(cell)
	for _, img := range m.store.all() {
		for _, r := range img.Refs {
			m.updateSrcRect(r, img)
		}
	}
}
