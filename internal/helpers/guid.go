// File: internal/helpers/guid.go
package helpers

import (
	"fmt"

	"github.com/google/uuid"
)

// DecodeGUID converts the 16-byte on-disk GPT GUID layout into a uuid.UUID.
// GPT stores the first three fields little-endian and the final two as
// big-endian byte groups, so the first eight bytes are shuffled before
// handing off to the uuid package.
func DecodeGUID(g []byte) (uuid.UUID, error) {
	if len(g) != 16 {
		return uuid.Nil, fmt.Errorf("GUID must be 16 bytes, got %d", len(g))
	}
	return uuid.FromBytes([]byte{
		g[3], g[2], g[1], g[0],
		g[5], g[4],
		g[7], g[6],
		g[8], g[9],
		g[10], g[11], g[12], g[13], g[14], g[15],
	})
}

// EncodeGUID converts a uuid.UUID back into the 16-byte on-disk GPT layout.
// The engine never writes images; this exists so tests can synthesize them.
func EncodeGUID(u uuid.UUID) [16]byte {
	return [16]byte{
		u[3], u[2], u[1], u[0],
		u[5], u[4],
		u[7], u[6],
		u[8], u[9],
		u[10], u[11], u[12], u[13], u[14], u[15],
	}
}
