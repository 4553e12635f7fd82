//go:build linux

package shm

// On Linux, POSIX shared memory objects are just files under /dev/shm, the
// same trick github.com/kovidgoyal/kitty's tools/utils/shm uses rather than
// going through the shm_open(3) syscall wrapper.
const shmRoot = "/dev/shm"

func shmDir() string { return shmRoot }

func shmPath(name string) string {
	if len(name) > 0 && name[0] == '/' {
		name = name[1:]
	}
	return shmRoot + "/" + name
}
