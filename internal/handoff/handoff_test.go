package handoff

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutMatchesC(t *testing.T) {
	size, dataOff, lenOff := Layout()
	assert.Equal(t, unsafe.Sizeof(Descriptor{}), size)
	assert.Equal(t, unsafe.Offsetof(Descriptor{}.Data), dataOff)
	assert.Equal(t, unsafe.Offsetof(Descriptor{}.Len), lenOff)
	assert.Equal(t, 2*unsafe.Sizeof(uintptr(0)), size)
}

func TestTransferRelease(t *testing.T) {
	src := []byte{0xFF, 0xD8, 0xFF, 0xE0, 1, 2, 3, 0xFF, 0xD9}
	p, err := Transfer(src)
	require.NoError(t, err)
	require.NotNil(t, p)

	d := Load(p)
	assert.NotNil(t, d.Data)
	assert.EqualValues(t, len(src), d.Len)
	assert.True(t, bytes.Equal(src, View(p)))

	// The descriptor owns a copy, not the Go slice.
	src[0] = 0
	assert.Equal(t, byte(0xFF), View(p)[0])
	assert.NotEqual(t, unsafe.Pointer(&src[0]), d.Data)

	Release(p)
}

func TestTransferLarge(t *testing.T) {
	src := bytes.Repeat([]byte{0x5A}, 4<<20)
	p, err := Transfer(src)
	require.NoError(t, err)
	defer Release(p)

	assert.Len(t, View(p), len(src))
	assert.EqualValues(t, len(src), Load(p).Len)
}

func TestTransferEmpty(t *testing.T) {
	p, err := Transfer(nil)
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Nil(t, p)

	p, err = Transfer([]byte{})
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Nil(t, p)
}

func TestReleaseNil(t *testing.T) {
	assert.NotPanics(t, func() { Release(nil) })
	assert.Nil(t, View(nil))
}

func TestTransferReleaseMany(t *testing.T) {
	for i := 0; i < 1000; i++ {
		p, err := Transfer([]byte{byte(i), byte(i >> 8)})
		require.NoError(t, err)
		Release(p)
	}
}
