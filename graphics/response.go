// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package graphics

import (
	"fmt"
	"strings"
)

// Respond implements the Response Formatting design (section 4.9): a
// response is built only if quiet < 2, and, when the command succeeded,
// only if quiet < 1; it is always suppressed when the command carries
// neither an id nor an image_number, regardless of quiet level.
func (m *Manager) Respond(cmd *Command, cerr *CommandError) string {
	if cmd.Quiet == QuietSilent {
		return ""
	}
	if cerr == nil && cmd.Quiet == QuietOnlyErrors {
		return ""
	}
	if cmd.ID == 0 && cmd.ImageNumber == 0 {
		return ""
	}

	var parts []string
	if cmd.ID != 0 {
		parts = append(parts, fmt.Sprintf("i=%d", cmd.ID))
	}
	if cmd.ImageNumber != 0 {
		parts = append(parts, fmt.Sprintf("I=%d", cmd.ImageNumber))
	}
	if cmd.PlacementID != 0 {
		parts = append(parts, fmt.Sprintf("p=%d", cmd.PlacementID))
	}

	status := "OK"
	if cerr != nil {
		status = fmt.Sprintf("%s:%s", cerr.Code, cerr.Message)
	}
	return "G" + strings.Join(parts, ",") + ";" + status
}
