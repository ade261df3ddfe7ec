//go:build linux || darwin || freebsd || netbsd || openbsd

package arena

import "golang.org/x/sys/unix"

// reserve maps an anonymous private region. If mmap is unavailable it falls
// back to a heap slice, which the arena keeps alive until Close.
func reserve(n int) ([]byte, func([]byte) error, error) {
	data, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err == nil {
		return data, unix.Munmap, nil
	}
	return make([]byte, n), nil, nil
}
