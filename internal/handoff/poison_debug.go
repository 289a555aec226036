//go:build rdpdebug

package handoff

import "unsafe"

// Poisoning is true in builds tagged rdpdebug.
const Poisoning = true

// PoisonByte overwrites memory right before it is freed, so a stale read
// after Release shows an obvious pattern.
const PoisonByte = 0xDD

func poison(p unsafe.Pointer, n uintptr) {
	b := unsafe.Slice((*byte)(p), n)
	for i := range b {
		b[i] = PoisonByte
	}
}
