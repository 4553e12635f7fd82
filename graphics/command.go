// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

// Package graphics implements the image manager of a terminal emulator's
// inline-graphics subsystem: decoding and storing transmitted images,
// tracking on-screen placements, and building a sorted render list of
// textured quads.
//
// Adapted from github.com/kovidgoyal/kitty's tools/tui/graphics, which
// implements the client (encoding) side of the same wire protocol; this
// package implements the server (manager) side, so the enums below mirror
// that package's GRT_* types but are interpreted as received commands
// rather than commands to emit.
package graphics

import "fmt"

// Action selects what a Command does. Only the actions this manager
// implements are recognized; animation/frame/compose actions are a
// client-transport concern this manager does not carry (see SPEC_FULL.md).
type Action byte

const (
	ActionTransmit           Action = 0 // the default when the 'a' key is absent, same as 't'
	ActionTransmitAndDisplay Action = 'T'
	ActionQuery              Action = 'q'
	ActionDisplay            Action = 'p'
	ActionDelete             Action = 'd'
)

func (a Action) String() string {
	switch a {
	case ActionTransmitAndDisplay:
		return "T"
	case ActionQuery:
		return "q"
	case ActionDisplay:
		return "p"
	case ActionDelete:
		return "d"
	default:
		return "t"
	}
}

// ParseAction parses the single-character 'a' key of the wire protocol.
func ParseAction(s string) (Action, error) {
	switch s {
	case "", "0", "t":
		return ActionTransmit, nil
	case "T":
		return ActionTransmitAndDisplay, nil
	case "q":
		return ActionQuery, nil
	case "p":
		return ActionDisplay, nil
	case "d":
		return ActionDelete, nil
	default:
		return 0, fmt.Errorf("%w: not a supported action: %q", ErrInvalid, s)
	}
}

// TransmissionType selects where the payload bytes come from.
type TransmissionType byte

const (
	TransmissionDirect       TransmissionType = 'd' // the default
	TransmissionFile         TransmissionType = 'f'
	TransmissionTempFile     TransmissionType = 't'
	TransmissionSharedMemory TransmissionType = 's'
)

func ParseTransmissionType(s string) (TransmissionType, error) {
	switch s {
	case "", "d":
		return TransmissionDirect, nil
	case "f":
		return TransmissionFile, nil
	case "t":
		return TransmissionTempFile, nil
	case "s":
		return TransmissionSharedMemory, nil
	default:
		return 0, fmt.Errorf("%w: not a supported transmission type: %q", ErrInvalid, s)
	}
}

// Format is the pixel format of a transmitted payload.
type Format uint32

const (
	FormatRGBA Format = 32 // the default
	FormatRGB  Format = 24
	FormatPNG  Format = 100
)

func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "32":
		return FormatRGBA, nil
	case "24":
		return FormatRGB, nil
	case "100":
		return FormatPNG, nil
	default:
		return 0, fmt.Errorf("%w: not a supported format: %q", ErrInvalid, s)
	}
}

// CompressionMode is the compression applied to the payload before transmission.
type CompressionMode byte

const (
	CompressionNone CompressionMode = 0 // the default
	CompressionZlib CompressionMode = 'z'
)

func ParseCompression(s string) (CompressionMode, error) {
	switch s {
	case "":
		return CompressionNone, nil
	case "z":
		return CompressionZlib, nil
	default:
		return 0, fmt.Errorf("%w: not a supported compression mode: %q", ErrInvalid, s)
	}
}

// QuietLevel controls response suppression, per section 4.9.
type QuietLevel byte

const (
	QuietNoisy      QuietLevel = 0 // respond always
	QuietOnlyErrors QuietLevel = 1 // respond only on failure
	QuietSilent     QuietLevel = 2 // never respond
)

// DeleteSelector selects which placements (and, for the upper-case form,
// which now-empty images) a delete command removes. Every lower-case
// selector has an upper-case sibling that also removes the image once its
// ref list becomes empty; see section 4.7.
type DeleteSelector byte

const (
	DeleteVisible     DeleteSelector = 'a' // the default
	FreeVisible       DeleteSelector = 'A'
	DeleteByID        DeleteSelector = 'i'
	FreeByID          DeleteSelector = 'I'
	DeleteByNumber    DeleteSelector = 'n'
	FreeByNumber      DeleteSelector = 'N'
	DeleteByCursor    DeleteSelector = 'c'
	FreeByCursor      DeleteSelector = 'C'
	DeleteByCell      DeleteSelector = 'p'
	FreeByCell        DeleteSelector = 'P'
	DeleteByCellZ     DeleteSelector = 'q'
	FreeByCellZ       DeleteSelector = 'Q'
	DeleteByColumn    DeleteSelector = 'x'
	FreeByColumn      DeleteSelector = 'X'
	DeleteByRow       DeleteSelector = 'y'
	FreeByRow         DeleteSelector = 'Y'
	DeleteByZIndex    DeleteSelector = 'z'
	FreeByZIndex      DeleteSelector = 'Z'
)

func ParseDeleteSelector(s string) (DeleteSelector, error) {
	if s == "" {
		return DeleteVisible, nil
	}
	if len(s) != 1 {
		return 0, fmt.Errorf("%w: not a supported delete selector: %q", ErrInvalid, s)
	}
	switch DeleteSelector(s[0]) {
	case DeleteVisible, FreeVisible, DeleteByID, FreeByID, DeleteByNumber, FreeByNumber,
		DeleteByCursor, FreeByCursor, DeleteByCell, FreeByCell, DeleteByCellZ, FreeByCellZ,
		DeleteByColumn, FreeByColumn, DeleteByRow, FreeByRow, DeleteByZIndex, FreeByZIndex:
		return DeleteSelector(s[0]), nil
	default:
		return 0, fmt.Errorf("%w: not a supported delete selector: %q", ErrInvalid, s)
	}
}

// IsFree reports whether d is the upper-case ("free") form of a selector,
// i.e. it also removes the image once its ref list becomes empty.
func (d DeleteSelector) IsFree() bool {
	return d >= 'A' && d <= 'Z'
}

// Command is a single already-parsed protocol command record, as received
// by the manager; see spec section 6 for the field list. Escape-sequence
// parsing into this struct is out of scope (the host does it).
type Command struct {
	Action       Action
	DeleteAction DeleteSelector
	Transmission TransmissionType
	Format       Format
	Compressed   CompressionMode
	More         bool
	Quiet        QuietLevel

	ID          uint32
	ImageNumber uint32
	PlacementID uint32

	DataSize   uint64 // S: expected/declared decoded byte count
	DataOffset uint64 // O: offset into file/shm payload

	DataWidth  uint32 // s: pixel width of the transmitted data
	DataHeight uint32 // v: pixel height of the transmitted data

	XOffset uint32 // x: source sub-rect left
	YOffset uint32 // y: source sub-rect top
	Width   uint32 // w: source sub-rect width
	Height  uint32 // h: source sub-rect height

	NumCells uint32 // c: requested column span
	NumLines uint32 // r: requested row span

	CellXOffset uint32 // X: sub-cell pixel x offset
	CellYOffset uint32 // Y: sub-cell pixel y offset

	ZIndex int32

	PayloadSize uint32 // payload_sz: length of Payload for this chunk
	Payload     []byte // the chunk's payload bytes, already base64-decoded by the host

	// Continuation is true when the host parsed a command carrying only
	// payload/more keys (no header keys at all), i.e. a follow-on chunk of
	// an in-progress direct transmission rather than a new init command.
	// The host's escape-sequence parser is the one place that can observe
	// which keys were actually present on the wire (section 1: this package
	// receives only already-parsed records), so it sets this flag for us.
	Continuation bool
}
