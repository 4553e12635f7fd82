// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package graphics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kitty-term/grman/internal/shm"
	"github.com/kitty-term/grman/internal/xid"
)

func TestAcquireDirectAccumulatesChunks(t *testing.T) {
	m := NewManager(nil, nil)
	ld := &LoadData{}
	cmd := &Command{Transmission: TransmissionDirect, Payload: []byte("hello ")}
	if cerr := acquirePayload(m, cmd, ld); cerr != nil {
		t.Fatal(cerr)
	}
	cmd.Payload = []byte("world")
	if cerr := acquirePayload(m, cmd, ld); cerr != nil {
		t.Fatal(cerr)
	}
	if diff := cmp.Diff([]byte("hello world"), ld.Data()); diff != "" {
		t.Fatalf("accumulated payload mismatch:\n%s", diff)
	}
}

func TestAcquireDirectRejectsOversizedPayload(t *testing.T) {
	m := NewManager(nil, nil)
	m.Limits.MaxTransmittedSize = 4
	ld := &LoadData{}
	cmd := &Command{Transmission: TransmissionDirect, Payload: []byte("toolong")}
	cerr := acquirePayload(m, cmd, ld)
	if cerr == nil || cerr.Code != EFBIG {
		t.Fatalf("expected EFBIG, got %v", cerr)
	}
}

func TestAcquireFileMapsContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, xid.Short()+".bin")
	content := []byte("pixel-data-goes-here")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	m := NewManager(nil, nil)
	ld := &LoadData{}
	cmd := &Command{Transmission: TransmissionFile, Payload: []byte(path)}
	if cerr := acquirePayload(m, cmd, ld); cerr != nil {
		t.Fatal(cerr)
	}
	defer ld.Release()
	if diff := cmp.Diff(content, ld.Data()); diff != "" {
		t.Fatalf("mapped file contents mismatch:\n%s", diff)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("regular 'f' transmission must not delete the file: %v", err)
	}
}

func TestAcquireFileRejectsOverlongFilename(t *testing.T) {
	m := NewManager(nil, nil)
	m.Limits.MaxFilenameLength = 8
	ld := &LoadData{}
	cmd := &Command{Transmission: TransmissionFile, Payload: []byte("a-path-longer-than-eight-bytes")}
	cerr := acquirePayload(m, cmd, ld)
	if cerr == nil || cerr.Code != EINVAL {
		t.Fatalf("expected EINVAL, got %v", cerr)
	}
}

func TestAcquireTempFileDeletesAfterMapping(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, xid.Short()+".bin")
	if err := os.WriteFile(path, []byte("scratch"), 0o600); err != nil {
		t.Fatal(err)
	}

	m := NewManager(nil, nil)
	ld := &LoadData{}
	cmd := &Command{Transmission: TransmissionTempFile, Payload: []byte(path)}
	if cerr := acquirePayload(m, cmd, ld); cerr != nil {
		t.Fatal(cerr)
	}
	defer ld.Release()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected temp file %q to be unlinked after mapping", path)
	}
	if diff := cmp.Diff([]byte("scratch"), ld.Data()); diff != "" {
		t.Fatalf("mapping survives unlink, contents mismatch:\n%s", diff)
	}
}

func TestAcquireTempFilePrefersDeleteAfterCloseHook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, xid.Short()+".bin")
	if err := os.WriteFile(path, []byte("scratch"), 0o600); err != nil {
		t.Fatal(err)
	}

	var hookCalled string
	m := NewManager(nil, nil)
	m.DeleteAfterClose = func(filename string) error {
		hookCalled = filename
		return nil
	}
	ld := &LoadData{}
	cmd := &Command{Transmission: TransmissionTempFile, Payload: []byte(path)}
	if cerr := acquirePayload(m, cmd, ld); cerr != nil {
		t.Fatal(cerr)
	}
	defer ld.Release()
	if hookCalled != path {
		t.Fatalf("DeleteAfterClose hook not invoked with %q, got %q", path, hookCalled)
	}
	// The hook, not an immediate unlink, owns deletion; the file is left
	// in place for this test double.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to survive when DeleteAfterClose succeeds: %v", err)
	}
}

func TestAcquireSHMUnlinksAfterMapping(t *testing.T) {
	mm, err := shm.CreateTemp("grman-payload-test-"+xid.Short()+"-*", 16)
	if err != nil {
		t.Fatal(err)
	}
	name := mm.Name()
	mm.Close()

	m := NewManager(nil, nil)
	ld := &LoadData{}
	cmd := &Command{Transmission: TransmissionSharedMemory, Payload: []byte(name)}
	if cerr := acquirePayload(m, cmd, ld); cerr != nil {
		t.Fatal(cerr)
	}
	defer ld.Release()
	if len(ld.Data()) != 16 {
		t.Fatalf("expected a 16-byte shm mapping, got %d bytes", len(ld.Data()))
	}
	if _, err := shm.Open(name); err == nil {
		t.Fatal("expected the shm segment to be unlinked after acquireSHM mapped it")
	}
}
