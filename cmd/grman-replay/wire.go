// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package main

import (
	"encoding/base64"
	"fmt"

	"github.com/kitty-term/grman/graphics"
)

// parseRecord turns one line of the replay script into a *graphics.Command.
// A line holds the same key=value,key=value;payload body a real terminal's
// escape-sequence parser hands to the manager, minus the APC wrapper
// (ESC _G ... ESC \\) and the leading 'G'; the payload half (after the
// semicolon) is base64, exactly as it travels over the wire.
//
// The state machine below mirrors
// tools/tui/graphics/command.go:GraphicsCommandFromAPCPayload, which walks
// the same grammar in the same (decoding) direction.
func parseRecord(line string) (*graphics.Command, error) {
	const (
		expectingKey int = iota
		expectingEquals
		expectingValue
	)
	state := expectingKey
	var currentKey byte
	valueStart := 0
	payloadStart := -1
	seen := map[byte]string{}

	addKey := func(pos int) {
		seen[currentKey] = line[valueStart:pos]
	}

	pos := 0
	for ; pos < len(line); pos++ {
		ch := line[pos]
		if ch == ';' {
			if state == expectingValue {
				addKey(pos)
			}
			payloadStart = pos + 1
			break
		}
		switch state {
		case expectingKey:
			currentKey = ch
			state = expectingEquals
		case expectingEquals:
			if ch == '=' {
				state = expectingValue
				valueStart = pos + 1
			} else {
				state = expectingKey
			}
		case expectingValue:
			if ch == ',' {
				addKey(pos)
				state = expectingKey
			}
		}
	}
	if state == expectingValue && payloadStart < 0 {
		addKey(len(line))
	}

	cmd := &graphics.Command{}
	if err := applyKeys(cmd, seen); err != nil {
		return nil, err
	}

	// A follow-on chunk of a direct transmission carries only 'm' (and the
	// payload); no other header key is present on the wire.
	cmd.Continuation = len(seen) == 0 || (len(seen) == 1 && has(seen, 'm'))

	if payloadStart >= 0 && payloadStart < len(line) {
		decoded, err := base64.StdEncoding.DecodeString(line[payloadStart:])
		if err != nil {
			return nil, fmt.Errorf("malformed base64 payload: %w", err)
		}
		cmd.Payload = decoded
		cmd.PayloadSize = uint32(len(decoded))
	}
	return cmd, nil
}

func has(seen map[byte]string, key byte) bool {
	_, ok := seen[key]
	return ok
}

func applyKeys(cmd *graphics.Command, seen map[byte]string) error {
	var err error
	for key, val := range seen {
		switch key {
		case 'a':
			cmd.Action, err = graphics.ParseAction(val)
		case 't':
			cmd.Transmission, err = graphics.ParseTransmissionType(val)
		case 'f':
			cmd.Format, err = graphics.ParseFormat(val)
		case 'o':
			cmd.Compressed, err = graphics.ParseCompression(val)
		case 'd':
			cmd.DeleteAction, err = graphics.ParseDeleteSelector(val)
		case 'm':
			cmd.More = val == "1"
		case 'q':
			err = setQuiet(cmd, val)
		case 'i':
			err = setU32(&cmd.ID, val)
		case 'I':
			err = setU32(&cmd.ImageNumber, val)
		case 'p':
			err = setU32(&cmd.PlacementID, val)
		case 's':
			err = setU32(&cmd.DataWidth, val)
		case 'v':
			err = setU32(&cmd.DataHeight, val)
		case 'S':
			err = setU64(&cmd.DataSize, val)
		case 'O':
			err = setU64(&cmd.DataOffset, val)
		case 'x':
			err = setU32(&cmd.XOffset, val)
		case 'y':
			err = setU32(&cmd.YOffset, val)
		case 'w':
			err = setU32(&cmd.Width, val)
		case 'h':
			err = setU32(&cmd.Height, val)
		case 'c':
			err = setU32(&cmd.NumCells, val)
		case 'r':
			err = setU32(&cmd.NumLines, val)
		case 'X':
			err = setU32(&cmd.CellXOffset, val)
		case 'Y':
			err = setU32(&cmd.CellYOffset, val)
		case 'z':
			err = setI32(&cmd.ZIndex, val)
		default:
			err = fmt.Errorf("unknown key: %c", key)
		}
		if err != nil {
			return fmt.Errorf("key %q=%q: %w", string(key), val, err)
		}
	}
	return nil
}
