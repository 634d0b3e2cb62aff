package helpers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// efiSystemOnDisk is the EFI System partition type GUID
// (C12A7328-F81F-11D2-BA4B-00A0C93EC93B) in its on-disk byte order.
var efiSystemOnDisk = []byte{
	0x28, 0x73, 0x2A, 0xC1,
	0x1F, 0xF8,
	0xD2, 0x11,
	0xBA, 0x4B,
	0x00, 0xA0, 0xC9, 0x3E, 0xC9, 0x3B,
}

func TestDecodeGUID(t *testing.T) {
	t.Run("mixed endian layout decodes to canonical form", func(t *testing.T) {
		guid, err := DecodeGUID(efiSystemOnDisk)
		require.NoError(t, err)
		assert.Equal(t, "c12a7328-f81f-11d2-ba4b-00a0c93ec93b", guid.String())
	})

	t.Run("all zero bytes decode to the nil UUID", func(t *testing.T) {
		guid, err := DecodeGUID(make([]byte, 16))
		require.NoError(t, err)
		assert.Equal(t, uuid.Nil, guid)
	})

	t.Run("wrong length is rejected", func(t *testing.T) {
		_, err := DecodeGUID(make([]byte, 15))
		assert.Error(t, err)
	})
}

func TestEncodeGUID(t *testing.T) {
	t.Run("encoding reverses decoding", func(t *testing.T) {
		guid, err := DecodeGUID(efiSystemOnDisk)
		require.NoError(t, err)

		encoded := EncodeGUID(guid)
		assert.Equal(t, efiSystemOnDisk, encoded[:])
	})

	t.Run("random round trip", func(t *testing.T) {
		original := uuid.New()
		encoded := EncodeGUID(original)
		decoded, err := DecodeGUID(encoded[:])
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	})
}
