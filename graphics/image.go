// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package graphics

import "time"

// LoadData is the transient payload staging area that exists between an
// image's first chunk and its GPU upload (section 3). Exactly one of Buf or
// MappedFile holds bytes at any moment the Data() view is taken, mirroring
// the C union this is generalized from ("Dynamic payload staging" in
// section 9). The two sources are separate fields; Data() reads MappedFile
// when it is set and Buf otherwise.
type LoadData struct {
	Buf     []byte // owned inline/decoded payload buffer
	BufUsed int    // bytes of Buf actually written so far

	MappedFile MappedRegion // alternate payload source: file/tempfile/shm mapping

	DataSize int // declared data_sz from the command; a compressed payload must inflate to exactly this many bytes

	Transmission TransmissionType
	Format       Format
	Compressed   CompressionMode

	Is4ByteAligned bool
	IsOpaque       bool
}

// MappedRegion is the minimal surface this package needs from a memory
// mapping; internal/shm.MMap satisfies it.
type MappedRegion interface {
	Slice() []byte
	Close() error
	Unlink() error
}

// Data returns the current view over whichever payload source is active.
func (ld *LoadData) Data() []byte {
	if ld == nil {
		return nil
	}
	if ld.MappedFile != nil {
		return ld.MappedFile.Slice()
	}
	return ld.Buf[:ld.BufUsed]
}

// Release frees any buffers/mappings held by ld; called on upload and on
// abort of a failed add.
func (ld *LoadData) Release() {
	if ld == nil {
		return
	}
	if ld.MappedFile != nil {
		_ = ld.MappedFile.Close()
		ld.MappedFile = nil
	}
	ld.Buf = nil
	ld.BufUsed = 0
}

// Rect is a normalized [0,1] UV rectangle, or an NDC destination rectangle,
// depending on context.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// ImageRef is one on-screen placement of an Image (section 3).
type ImageRef struct {
	ClientID uint32 // the placement id, scoped within the owning image; 0 means anonymous

	StartRow, StartColumn int32 // grid-cell anchor; StartRow may go negative after scroll

	SrcX, SrcY, SrcWidth, SrcHeight uint32 // sub-rectangle of the image to sample, in pixels

	CellXOffset, CellYOffset uint32 // sub-cell pixel offset, clamped to cell size - 1

	NumCols, NumRows                   uint32 // requested cell span; 0 means derive from source size
	EffectiveNumCols, EffectiveNumRows uint32 // resolved span used for hit-tests and layer math

	ZIndex int32 // z < math.MinInt32/2 means "below the text layer"
}

// SrcRect returns the normalized [0,1] UV rectangle for this ref's source
// sub-rectangle, given the owning image's pixel dimensions.
func (r *ImageRef) SrcRect(imgWidth, imgHeight int) Rect {
	if imgWidth <= 0 || imgHeight <= 0 {
		return Rect{}
	}
	fw, fh := float64(imgWidth), float64(imgHeight)
	return Rect{
		Left:   float64(r.SrcX) / fw,
		Top:    float64(r.SrcY) / fh,
		Right:  float64(r.SrcX+r.SrcWidth) / fw,
		Bottom: float64(r.SrcY+r.SrcHeight) / fh,
	}
}

// BelowText reports whether this ref's z-index places it behind the
// terminal's text layer (section 3: z < INT32_MIN/2).
func (r *ImageRef) BelowText() bool {
	return int64(r.ZIndex) < int64(minInt32)/2
}

const minInt32 = -1 << 31

// Image is a decoded bitmap held by the manager, optionally resident on the
// GPU as a texture (section 3).
type Image struct {
	InternalID   uint64 // monotonic, process-unique, assigned on creation
	ClientID     uint32 // protocol-level id chosen by the sender; may be 0
	ClientNumber uint32 // protocol-level number; looked up by newest match

	Width, Height int
	TextureID     uint32 // opaque GPU handle; 0 if not yet uploaded

	Atime time.Time // monotonic timestamp of last access

	UsedStorage int64 // bytes counted against the quota

	DataLoaded bool // true once payload has been fully assembled and validated
	Load       *LoadData

	Refs []*ImageRef
}

// Vertex is one corner of a textured quad: u,v select the source pixel,
// x,y are destination NDC coordinates.
type Vertex struct{ U, V, X, Y float64 }

// RenderData is one visible quad, emitted by the layer builder (section 3).
// Quad holds the four corners in (top-right, bottom-right, bottom-left,
// top-left) order, matching section 4.6 step 5.
type RenderData struct {
	Quad       [4]Vertex
	ZIndex     int32
	ImageID    uint64
	TextureID  uint32
	GroupCount int // length of the run of equal ImageID starting here; 0 on followers
}
