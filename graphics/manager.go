// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package graphics

import (
	"time"

	"github.com/kitty-term/grman/internal/clock"
)

// StorageLimit is the default total resident byte budget (section 6): 320 MiB.
const StorageLimit int64 = 320 * 1024 * 1024

// Limits bounds the sizes this manager will accept, per section 6.
type Limits struct {
	StorageLimit      int64  // total resident bytes across all images
	MaxDimension      int    // max width/height per side, in pixels
	MaxTransmittedSize int64 // max bytes for one image's payload, across all chunks
	MaxFilenameLength int    // max bytes for an 'f'/'t' transmission's filename payload
}

// DefaultLimits returns the limits from section 6: 320 MiB storage, 10,000px
// max dimension, 400,000,000 byte max transmission, 2048 byte max filename.
func DefaultLimits() Limits {
	return Limits{
		StorageLimit:       StorageLimit,
		MaxDimension:       10000,
		MaxTransmittedSize: 400_000_000,
		MaxFilenameLength:  2048,
	}
}

// GPU is the out-of-scope collaborator that uploads decoded pixels to a
// texture and frees one, per section 6.
type GPU interface {
	UploadTexture(pixels []byte, width, height int, isOpaque, is4ByteAligned bool) (textureID uint32, err error)
	FreeTexture(textureID uint32)
}

// nopGPU is used when a Manager is constructed without an explicit GPU,
// e.g. in tests that only exercise store/placement/layer logic.
type nopGPU struct{ next uint32 }

func (g *nopGPU) UploadTexture(pixels []byte, width, height int, isOpaque, is4ByteAligned bool) (uint32, error) {
	g.next++
	return g.next, nil
}
func (g *nopGPU) FreeTexture(uint32) {}

// PNGDecoder is the out-of-scope "PNG-decoder inner routine", called
// through this fixed interface (section 6: inflate_png_inner).
type PNGDecoder interface {
	// Decode returns the decoded pixel buffer (RGB if isOpaque, else RGBA),
	// tightly packed with no row padding, plus the image's real dimensions.
	Decode(buf []byte) (pixels []byte, width, height int, isOpaque bool, err error)
}

// Cursor is the subset of the host screen/cursor object this manager reads
// and writes: only the grid position (section 1: out of scope otherwise).
type Cursor struct {
	X, Y int
}

// CellSize is the pixel dimensions of one terminal grid cell.
type CellSize struct {
	Width, Height int
}

// Manager is the image manager: it owns the image store, placements, and
// the in-progress multi-chunk transmission state, and dispatches commands
// per section 4.8. It has no internal locking (section 5): callers must
// serialize command dispatch and layer building themselves if they invoke
// the latter from a different thread than the former.
type Manager struct {
	Limits Limits
	GPU    GPU
	PNG    PNGDecoder

	// Now returns the current monotonic timestamp; overridable for tests.
	Now func() time.Time

	// DeleteAfterClose, if set, is the host's "safe delete" hook: it is
	// preferred over an immediate unlink for temp-file transmissions when
	// a host scripting/eventing layer is present to coordinate the delete
	// (section 4.1).
	DeleteAfterClose func(filename string) error

	// Logger receives diagnostic messages; defaults to a no-op, since the
	// teacher's tools/tui/graphics and tools/disk_cache packages likewise
	// leave logging to the embedder rather than importing a logging
	// package themselves.
	Logger func(format string, args ...any)

	store *store

	loadingImage   uint64 // internal id of the image currently receiving chunks, 0 if none
	loadingCommand *Command

	cursor Cursor
	cell   CellSize

	dirty      bool
	lastScroll int32
	lastLayer  []RenderData
	lastStats  LayerStats
}

// NewManager constructs a Manager ready to dispatch commands. gpu and png
// may be nil to use a no-op GPU uploader (tests) and a standard-library PNG
// decoder (production default), respectively.
func NewManager(gpu GPU, png PNGDecoder) *Manager {
	if gpu == nil {
		gpu = &nopGPU{}
	}
	if png == nil {
		png = StdlibPNGDecoder{}
	}
	return &Manager{
		Limits: DefaultLimits(),
		GPU:    gpu,
		PNG:    png,
		Now: func() time.Time {
			t, err := clock.MonotonicRaw()
			if err != nil {
				return time.Now()
			}
			return t
		},
		Logger: func(string, ...any) {},
		store:  newStore(),
		cell:   CellSize{Width: 8, Height: 16},
	}
}

// SetCellSize updates the pixel dimensions of one grid cell (NewManager
// starts from 8x16) and marks the layer dirty. It does not recompute the
// spans of existing placements; Rescale does both.
func (m *Manager) SetCellSize(c CellSize) {
	if c.Width <= 0 {
		c.Width = 1
	}
	if c.Height <= 0 {
		c.Height = 1
	}
	m.cell = c
	m.dirty = true
}

// Cursor returns the manager's view of the screen cursor's grid position.
func (m *Manager) Cursor() Cursor { return m.cursor }

// SetCursor writes the screen cursor's grid position (the only part of the
// host's cursor object this manager touches).
func (m *Manager) SetCursor(c Cursor) { m.cursor = c }

// Images returns the live image list, for inspection/testing. Callers must
// not retain pointers across a command dispatch that might evict them.
func (m *Manager) Images() []*Image { return m.store.all() }

func (m *Manager) markDirty() { m.dirty = true }
