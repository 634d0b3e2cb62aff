package helpers

import (
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum(t *testing.T) {
	// Standard IEEE check value.
	assert.Equal(t, uint32(0xCBF43926), Checksum([]byte("123456789")))
}

func TestChecksumZeroed(t *testing.T) {
	t.Run("checksum field is treated as zero", func(t *testing.T) {
		data := make([]byte, 32)
		for i := range data {
			data[i] = byte(i)
		}

		zeroed := make([]byte, 32)
		copy(zeroed, data)
		zeroed[16] = 0
		zeroed[17] = 0
		zeroed[18] = 0
		zeroed[19] = 0
		want := crc32.ChecksumIEEE(zeroed)

		assert.Equal(t, want, ChecksumZeroed(data, 16))
	})

	t.Run("input is not modified", func(t *testing.T) {
		data := make([]byte, 32)
		binary.LittleEndian.PutUint32(data[16:], 0xDEADBEEF)

		ChecksumZeroed(data, 16)
		assert.Equal(t, uint32(0xDEADBEEF), binary.LittleEndian.Uint32(data[16:]))
	})

	t.Run("self-referential convention validates", func(t *testing.T) {
		// Store the checksum-of-zeroed-data inside the data, the way a
		// GPT header does, then confirm recomputation matches.
		data := make([]byte, 92)
		for i := range data {
			data[i] = byte(i * 3)
		}
		binary.LittleEndian.PutUint32(data[16:], 0)
		stored := crc32.ChecksumIEEE(data)
		binary.LittleEndian.PutUint32(data[16:], stored)

		assert.Equal(t, stored, ChecksumZeroed(data, 16))
	})

	t.Run("out of range field offset falls back to plain checksum", func(t *testing.T) {
		data := []byte{1, 2, 3, 4}
		assert.Equal(t, crc32.ChecksumIEEE(data), ChecksumZeroed(data, 2))
		assert.Equal(t, crc32.ChecksumIEEE(data), ChecksumZeroed(data, -1))
	})
}
