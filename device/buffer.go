package device

import "github.com/x2w-soda/Ludens-sub000/driver"

// Buffer is a handle to a GPU buffer allocated through a Device.
type Buffer struct {
	object
	buf driver.Buffer
}

// NewBuffer creates a new buffer of the given size and usage. If
// visible is set, the buffer's contents can be read and written from
// the host through Bytes.
func (d *Device) NewBuffer(size int64, visible bool, usg driver.Usage) (*Buffer, error) {
	b, err := d.gpu.NewBuffer(size, visible, usg)
	if err != nil {
		return nil, err
	}
	return &Buffer{object: d.newObject(kindBuffer), buf: b}, nil
}

// Visible reports whether the buffer's memory is host visible.
func (b *Buffer) Visible() bool { return b.buf.Visible() }

// Bytes returns the buffer's host-visible backing slice, or nil if
// the buffer is not visible. The slice has length Cap and is valid
// for the buffer's lifetime; writes to it are not synchronized with
// the GPU and must be paired with an appropriate Barrier.
func (b *Buffer) Bytes() []byte { return b.buf.Bytes() }

// Cap returns the buffer's capacity in bytes.
func (b *Buffer) Cap() int64 { return b.buf.Cap() }

// Driver returns the underlying driver.Buffer, for use in command
// recording calls that still take driver types directly.
func (b *Buffer) Driver() driver.Buffer { return b.buf }

// DestroyBuffer releases the buffer.
func (d *Device) DestroyBuffer(b *Buffer) {
	d.forget(b.object)
	b.buf.Destroy()
}
