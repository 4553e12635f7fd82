// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package graphics

import "slices"

// LayerParams is the per-frame input to the Layer Builder (section 4.6):
// the renderer's current scroll offset, the NDC position of the grid's
// top-left corner, the per-cell NDC step in each axis, the grid size in
// cells, and the pixel size of one cell (used for free-floating images
// that were placed with no explicit cell span).
type LayerParams struct {
	ScrollOffset     int32
	OriginX, OriginY float64
	DX, DY           float64
	Cols, Rows       int
	Cell             CellSize
}

// LayerStats tallies the z-order distribution of the refs visited during
// the last BuildLayer call (section 4.6 step 4).
type LayerStats struct {
	Below, Negative, Positive int
}

func minmax(a, b float64) (lo, hi float64) {
	if a < b {
		return a, b
	}
	return b, a
}

// BuildLayer computes the sorted, grouped render list (section 4.6). It is
// a no-op returning the previous result when the placement set has not
// changed (m.dirty is false) and the scroll offset matches the last call,
// matching the spec's short-circuit.
func (m *Manager) BuildLayer(p LayerParams) ([]RenderData, LayerStats) {
	if !m.dirty && p.ScrollOffset == m.lastScroll {
		return m.lastLayer, m.lastStats
	}
	m.dirty = false
	m.lastScroll = p.ScrollOffset

	screenTop, screenBottom := p.OriginY, p.OriginY+float64(p.Rows)*p.DY
	scrMin, scrMax := minmax(screenTop, screenBottom)
	screenWidthPx := float64(p.Cols * p.Cell.Width)
	screenHeightPx := float64(p.Rows * p.Cell.Height)

	var out []RenderData
	var stats LayerStats

	for _, img := range m.store.all() {
		for _, ref := range img.Refs {
			top := p.OriginY + float64(ref.StartRow)*p.DY
			if p.Cell.Height > 0 {
				top += (float64(ref.CellYOffset) / float64(p.Cell.Height)) * p.DY
			}
			var bottom float64
			if ref.NumRows != 0 {
				bottom = top + float64(ref.EffectiveNumRows)*p.DY
			} else if screenHeightPx > 0 {
				bottom = top + (float64(ref.SrcHeight)/screenHeightPx)*(p.DY*float64(p.Rows))
			} else {
				bottom = top
			}

			left := p.OriginX + float64(ref.StartColumn)*p.DX
			if p.Cell.Width > 0 {
				left += (float64(ref.CellXOffset) / float64(p.Cell.Width)) * p.DX
			}
			var right float64
			if ref.NumCols != 0 {
				right = left + float64(ref.EffectiveNumCols)*p.DX
			} else if screenWidthPx > 0 {
				right = left + (float64(ref.SrcWidth)/screenWidthPx)*(p.DX*float64(p.Cols))
			} else {
				right = left
			}

			qMin, qMax := minmax(top, bottom)
			if qMax < scrMin || qMin > scrMax {
				continue
			}

			switch {
			case ref.BelowText():
				stats.Below++
			case ref.ZIndex < 0:
				stats.Negative++
			default:
				stats.Positive++
			}

			uv := ref.SrcRect(img.Width, img.Height)
			out = append(out, RenderData{
				Quad: [4]Vertex{
					{U: uv.Right, V: uv.Top, X: right, Y: top},       // top-right
					{U: uv.Right, V: uv.Bottom, X: right, Y: bottom}, // bottom-right
					{U: uv.Left, V: uv.Bottom, X: left, Y: bottom},   // bottom-left
					{U: uv.Left, V: uv.Top, X: left, Y: top},         // top-left
				},
				ZIndex:    ref.ZIndex,
				ImageID:   img.InternalID,
				TextureID: img.TextureID,
			})
		}
	}

	// Sort by (z_index, image_id); this is a total order over the working
	// set so, unlike the quota's atime pass, stability is not required
	// (section 9).
	slices.SortFunc(out, func(a, b RenderData) int {
		if a.ZIndex != b.ZIndex {
			if a.ZIndex < b.ZIndex {
				return -1
			}
			return 1
		}
		switch {
		case a.ImageID < b.ImageID:
			return -1
		case a.ImageID > b.ImageID:
			return 1
		default:
			return 0
		}
	})

	// Walk the sorted list computing run-lengths of equal image_id,
	// storing each run's length at its first element only.
	for i := 0; i < len(out); {
		j := i + 1
		for j < len(out) && out[j].ImageID == out[i].ImageID {
			j++
		}
		out[i].GroupCount = j - i
		i = j
	}

	m.lastLayer = out
	m.lastStats = stats
	return out, stats
}
