package hashcode_test

import (
	"testing"

	"github.com/ashgrove/deepply/pkg/hashcode"
	"github.com/stretchr/testify/assert"
)

func TestCRC32SaltSensitivity(t *testing.T) {
	data := []byte{1, 2, 3, 4}

	a := hashcode.CRC32(data, 0)
	b := hashcode.CRC32(data, 8)
	assert.NotEqual(t, a, b, "identical bytes at different offsets must hash differently")

	assert.Equal(t, a, hashcode.CRC32(data, 0), "hash must be deterministic")
}

func TestCRC32XORIdentity(t *testing.T) {
	// The engine relies on: new = old ^ hash(oldbytes,off) ^ hash(newbytes,off).
	const salt = 42
	old := []byte{0xAA}
	next := []byte{0x55}

	var h hashcode.HashCode = 0xFFFFFFFF
	h ^= hashcode.CRC32(old, salt) ^ hashcode.CRC32(next, salt)
	h ^= hashcode.CRC32(next, salt) ^ hashcode.CRC32(old, salt) // undo
	assert.Equal(t, hashcode.HashCode(0xFFFFFFFF), h)
}

func TestMurmur2SaltSensitivity(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}

	a := hashcode.Murmur2(data, 0)
	b := hashcode.Murmur2(data, 1)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, hashcode.Murmur2(data, 0))
}

func TestMurmur2ShortInputs(t *testing.T) {
	for n := 0; n <= 4; n++ {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i + 1)
		}
		assert.NotPanics(t, func() {
			hashcode.Murmur2(data, 7)
		})
	}
}
