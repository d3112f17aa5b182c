//go:build !windows

package device

import "golang.org/x/sys/unix"

// arena is a fixed-capacity, page-aligned scratch buffer obtained
// directly from the OS, used by a CommandPool to back the per-list
// state bytes it hands out to CommandLists allocated from it. A plain
// Go slice would work just as well functionally; this instead mirrors
// the page-aligned scratch buffer a lower-level command pool's own
// sub-allocator would carve block state out of, and gives Reset/
// Destroy a concrete resource to reclaim instead of leaving it to the
// garbage collector.
type arena struct {
	buf []byte
}

// newArena reserves a page-aligned region at least n bytes long.
func newArena(n int) (*arena, error) {
	if n <= 0 {
		n = 1
	}
	page := unix.Getpagesize()
	size := (n + page - 1) &^ (page - 1)
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}
	return &arena{buf: buf}, nil
}

// bytes returns the arena's backing storage.
func (a *arena) bytes() []byte { return a.buf }

// free releases the arena's backing storage. It is safe to call more
// than once.
func (a *arena) free() error {
	if a.buf == nil {
		return nil
	}
	err := unix.Munmap(a.buf)
	a.buf = nil
	return err
}
