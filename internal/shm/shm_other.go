//go:build !linux

package shm

import "os"

// Platforms without a /dev/shm tmpfs (or that this package has not been
// specifically ported to, e.g. BSD's shm_open namespace) fall back to the
// regular temp directory; the shm segment is still a real file-backed mmap,
// it is just not POSIX-shm-namespaced.
func shmDir() string { return os.TempDir() }

func shmPath(name string) string {
	if len(name) > 0 && name[0] == '/' {
		return name
	}
	return shmDir() + "/" + name
}
