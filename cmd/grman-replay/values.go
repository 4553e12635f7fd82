// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package main

import (
	"strconv"

	"github.com/kitty-term/grman/graphics"
)

func setU32(dst *uint32, val string) error {
	if val == "" {
		return nil
	}
	v, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return err
	}
	*dst = uint32(v)
	return nil
}

func setU64(dst *uint64, val string) error {
	if val == "" {
		return nil
	}
	v, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func setI32(dst *int32, val string) error {
	if val == "" {
		return nil
	}
	v, err := strconv.ParseInt(val, 10, 32)
	if err != nil {
		return err
	}
	*dst = int32(v)
	return nil
}

func setQuiet(cmd *graphics.Command, val string) error {
	if val == "" {
		cmd.Quiet = graphics.QuietNoisy
		return nil
	}
	v, err := strconv.ParseUint(val, 10, 8)
	if err != nil {
		return err
	}
	cmd.Quiet = graphics.QuietLevel(v)
	return nil
}
