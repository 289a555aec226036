// Package handoff moves an encoded image out of Go ownership and back.
//
// Transfer copies bytes into C heap memory and returns the address of a
// C-allocated rdp_image descriptor. Nothing in Go keeps a reference to
// either allocation afterwards, so the garbage collector never sees them.
// The holder must pass the exact address back to Release once. There is no
// registry and no magic header: a second Release, or a Release of any other
// address, is undefined behavior and cannot be detected here.
package handoff

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#include <stddef.h>
#include <stdlib.h>
#include "rdp_image.h"

static size_t rdp_image_data_offset(void) { return offsetof(rdp_image, data); }
static size_t rdp_image_len_offset(void)  { return offsetof(rdp_image, len); }
*/
import "C"

import (
	"errors"
	"unsafe"
)

// ErrEmpty is returned by Transfer for a zero-length buffer.
var ErrEmpty = errors.New("handoff: empty buffer")

// Descriptor is the Go view of rdp_image. Its layout matches the C struct;
// see Layout.
type Descriptor struct {
	Data unsafe.Pointer
	Len  uintptr
}

// Transfer copies b into C memory and returns a pointer to a new rdp_image
// describing it. Ownership of both allocations passes to the caller.
// C.malloc aborts the process on exhaustion, so a nil result only comes
// with an error.
func Transfer(b []byte) (unsafe.Pointer, error) {
	if len(b) == 0 {
		return nil, ErrEmpty
	}
	data := C.CBytes(b)
	d := (*C.rdp_image)(C.malloc(C.size_t(C.sizeof_rdp_image)))
	d.data = (*C.uint8_t)(data)
	d.len = C.size_t(len(b))
	return unsafe.Pointer(d), nil
}

// Release frees a descriptor returned by Transfer together with the buffer
// it points to. A nil pointer is ignored.
func Release(p unsafe.Pointer) {
	if p == nil {
		return
	}
	d := (*C.rdp_image)(p)
	if d.data != nil && d.len > 0 {
		buf := unsafe.Pointer(d.data)
		poison(buf, uintptr(d.len))
		C.free(buf)
	}
	poison(p, uintptr(C.sizeof_rdp_image))
	C.free(p)
}

// View returns the bytes described by p without copying. The slice is only
// valid until Release(p).
func View(p unsafe.Pointer) []byte {
	if p == nil {
		return nil
	}
	d := (*C.rdp_image)(p)
	if d.data == nil || d.len == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(d.data)), int(d.len))
}

// Load reads the descriptor at p.
func Load(p unsafe.Pointer) Descriptor {
	d := (*C.rdp_image)(p)
	return Descriptor{Data: unsafe.Pointer(d.data), Len: uintptr(d.len)}
}

// Layout reports the C size of rdp_image and the offsets of its fields.
func Layout() (size, dataOffset, lenOffset uintptr) {
	return uintptr(C.sizeof_rdp_image), uintptr(C.rdp_image_data_offset()), uintptr(C.rdp_image_len_offset())
}
