// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

// Package xid generates short random names for test fixtures that stand in
// for the filenames and shm segment names a real client would choose for
// file/tempfile/shared-memory payload transmission.
//
// Adapted from github.com/kovidgoyal/kitty's tools/utils/short-uuid.go,
// trimmed to the single alphabet this repo's tests need.
package xid

import "github.com/google/uuid"

const alphabet = "23456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Short returns a short, filesystem-safe random token derived from a uuid4,
// suitable for building unique fixture filenames in tests.
func Short() string {
	id := uuid.New()
	n := uint64(0)
	for _, b := range id[:8] {
		n = n<<8 | uint64(b)
	}
	buf := make([]byte, 0, 16)
	base := uint64(len(alphabet))
	if n == 0 {
		return string(alphabet[0])
	}
	for n > 0 {
		buf = append(buf, alphabet[n%base])
		n /= base
	}
	return string(buf)
}
