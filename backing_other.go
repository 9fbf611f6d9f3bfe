//go:build !unix

package arena

// mapBacking falls back to a single heap slice where mmap is unavailable.
func mapBacking(size int) ([]byte, func() error, error) {
	if size == 0 {
		return nil, func() error { return nil }, nil
	}
	return make([]byte, size), func() error { return nil }, nil
}
