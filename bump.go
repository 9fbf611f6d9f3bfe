package arena

import "unsafe"

// bumpUp returns the start of n bytes placed at or after marker with the
// address base+start a multiple of align. The block must end at or before limit.
func bumpUp(base uintptr, marker, limit, n, align uint64) (uint64, bool) {
	start := marker + padUp(base+uintptr(marker), align)
	if start > limit || n > limit-start {
		return 0, false
	}
	return start, true
}

// bumpDown returns the start of n bytes placed below marker with the address
// base+start a multiple of align. The block must start at or after limit.
func bumpDown(base uintptr, marker, limit, n, align uint64) (uint64, bool) {
	if n > marker-limit {
		return 0, false
	}
	start := marker - n
	mis := uint64((base + uintptr(start)) % uintptr(align))
	if mis > start-limit {
		return 0, false
	}
	return start - mis, true
}

func padUp(addr uintptr, align uint64) uint64 {
	al := uintptr(align)
	return uint64((al - addr%al) % al)
}

func baseOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}
