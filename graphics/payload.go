// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package graphics

import (
	"github.com/kitty-term/grman/internal/shm"
)

// acquirePayload implements the Payload Acquirer (section 4.1): it either
// appends a direct chunk to ld.Buf, or resolves a file/tempfile/shm
// transmission to a memory mapping. On success for the direct case ld.Buf
// holds the accumulated bytes; for the other three cases ld.MappedFile
// holds the mapping and ld.Buf is left nil, maintaining the tagged-variant
// invariant from section 3 (buf xor mapped_file).
func acquirePayload(m *Manager, cmd *Command, ld *LoadData) *CommandError {
	switch cmd.Transmission {
	case TransmissionDirect, 0:
		return acquireDirect(m, cmd, ld)
	case TransmissionFile:
		return acquireFile(m, cmd, ld, false)
	case TransmissionTempFile:
		return acquireFile(m, cmd, ld, true)
	case TransmissionSharedMemory:
		return acquireSHM(cmd, ld)
	default:
		return newErr(EINVAL, "unsupported transmission type: %q", cmd.Transmission)
	}
}

func acquireDirect(m *Manager, cmd *Command, ld *LoadData) *CommandError {
	needed := ld.BufUsed + len(cmd.Payload)
	if int64(needed) > m.Limits.MaxTransmittedSize {
		return newErr(EFBIG, "direct payload of %d bytes exceeds the %d byte transmission limit", needed, m.Limits.MaxTransmittedSize)
	}
	if cap(ld.Buf) < needed {
		grown := make([]byte, needed, needed*2+64)
		copy(grown, ld.Buf[:ld.BufUsed])
		ld.Buf = grown
	} else if len(ld.Buf) < needed {
		ld.Buf = ld.Buf[:needed]
	}
	copy(ld.Buf[ld.BufUsed:needed], cmd.Payload)
	ld.BufUsed = needed
	return nil
}

func acquireFile(m *Manager, cmd *Command, ld *LoadData, isTemp bool) *CommandError {
	filename := string(cmd.Payload)
	if len(filename) == 0 {
		return newErr(EINVAL, "empty filename for file transmission")
	}
	if len(filename) > m.Limits.MaxFilenameLength {
		return newErr(EINVAL, "filename of %d bytes exceeds the %d byte limit", len(filename), m.Limits.MaxFilenameLength)
	}
	mm, err := shm.MapFile(filename, int64(cmd.DataOffset), int64(cmd.DataSize))
	if err != nil {
		return wrapErr(EBADF, err, "failed to open/map payload file %q", filename)
	}
	if isTemp {
		if m.DeleteAfterClose != nil {
			if derr := m.DeleteAfterClose(filename); derr != nil {
				m.Logger("grman: scheduled delete of %q failed, unlinking immediately: %v", filename, derr)
				_ = mm.Unlink()
			}
		} else {
			_ = mm.Unlink()
		}
	}
	ld.MappedFile = mm
	return nil
}

func acquireSHM(cmd *Command, ld *LoadData) *CommandError {
	name := string(cmd.Payload)
	if len(name) == 0 {
		return newErr(EINVAL, "empty shared memory name")
	}
	mm, err := shm.Open(name)
	if err != nil {
		return wrapErr(EBADF, err, "failed to open/map shared memory segment %q", name)
	}
	_ = mm.Unlink()
	ld.MappedFile = mm
	return nil
}
