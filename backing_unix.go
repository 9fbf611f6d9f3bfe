//go:build unix

package arena

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// mapBacking reserves size bytes of anonymous memory outside the Go heap.
func mapBacking(size int) ([]byte, func() error, error) {
	if size == 0 {
		return nil, func() error { return nil }, nil
	}
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "arena: mmap %d bytes", size)
	}
	release := func() error {
		if err := unix.Munmap(buf); err != nil && !errors.Is(err, unix.EINVAL) {
			return errors.Wrap(err, "arena: munmap")
		}
		return nil
	}
	return buf, release, nil
}
