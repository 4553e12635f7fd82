// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

// Package shm implements the read-side of the payload acquirer's file,
// temp-file and POSIX shared-memory transmission sources: opening a name
// handed to us by the client and mapping it read-only, plus unlinking it
// once the mapping is taken (temp files and shm segments are reclaimed
// eagerly so that kernel-level cleanup tracks the process mapping, not a
// later explicit close).
//
// Adapted from github.com/kovidgoyal/kitty's tools/utils/shm, trimmed to
// the read-only mapping path this manager needs (it never originates shm
// segments itself outside of tests).
package shm

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

var ErrPatternHasSeparator = errors.New("the specified pattern has file path separators in it")

// MMap is a read-only mapped region backing an image payload.
type MMap interface {
	Close() error
	Unlink() error
	Slice() []byte
	Name() string
}

type fileMMap struct {
	f        *os.File
	region   []byte
	mapping  []byte // the page-aligned mapping that region is a view into
	name     string
	unlinked bool
}

func (m *fileMMap) Slice() []byte { return m.region }
func (m *fileMMap) Name() string  { return m.name }

func (m *fileMMap) Close() error {
	if m.mapping != nil {
		_ = unix.Munmap(m.mapping)
		m.mapping = nil
		m.region = nil
	}
	if m.f != nil {
		err := m.f.Close()
		m.f = nil
		return err
	}
	return nil
}

func (m *fileMMap) Unlink() error {
	if m.unlinked {
		return nil
	}
	m.unlinked = true
	return os.Remove(m.name)
}

// MapFile opens path read-only and maps [offset, offset+size) of it, or
// everything from offset to the end of the file when size is 0. Used for the
// 'f' (file) and 't' (tempfile) transmission types.
func MapFile(path string, offset, size int64) (MMap, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open payload file %#v: %w", path, err)
	}
	if size == 0 {
		st, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to stat payload file %#v: %w", path, err)
		}
		size = st.Size() - offset
	}
	if size <= 0 {
		f.Close()
		return nil, fmt.Errorf("payload file %#v has no data at offset %d", path, offset)
	}
	// mmap offsets must be page-aligned: map from the page holding offset and
	// expose only the requested range.
	aligned := offset &^ int64(os.Getpagesize()-1)
	delta := offset - aligned
	mapping, err := unix.Mmap(int(f.Fd()), aligned, int(size+delta), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap of %#v failed: %w", path, err)
	}
	return &fileMMap{f: f, region: mapping[delta:], mapping: mapping, name: path}, nil
}

// Open maps a POSIX shared memory object by name, read-only, for the full
// extent of the segment.
func Open(name string) (MMap, error) {
	path := shmPath(name)
	return MapFile(path, 0, 0)
}

func prefixAndSuffix(pattern string) (prefix, suffix string, err error) {
	for i := 0; i < len(pattern); i++ {
		if os.IsPathSeparator(pattern[i]) {
			return "", "", ErrPatternHasSeparator
		}
	}
	if pos := strings.LastIndexByte(pattern, '*'); pos != -1 {
		return pattern[:pos], pattern[pos+1:], nil
	}
	return pattern, "", nil
}

// CreateTemp creates a new, zero-filled POSIX shm segment of the given size,
// for use by tests and by fixture generation (the manager itself only ever
// opens segments created by its client, it never originates them).
func CreateTemp(pattern string, size int) (MMap, error) {
	prefix, suffix, err := prefixAndSuffix(pattern)
	if err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(shmDir(), prefix+"*"+suffix)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	region, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	return &fileMMap{f: f, region: region, mapping: region, name: filepath.Base(f.Name())}, nil
}

var ErrNotExist = fs.ErrNotExist
