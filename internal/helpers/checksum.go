// File: internal/helpers/checksum.go
package helpers

import "hash/crc32"

// Checksum computes the IEEE 802.3 CRC32 over data.
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// ChecksumZeroed computes the IEEE CRC32 over data with the 4-byte field at
// fieldOffset treated as zero. GPT headers store their own checksum inside
// the checksummed range, so validation zeroes the field first.
func ChecksumZeroed(data []byte, fieldOffset int) uint32 {
	if fieldOffset < 0 || fieldOffset+4 > len(data) {
		return crc32.ChecksumIEEE(data)
	}
	scratch := make([]byte, len(data))
	copy(scratch, data)
	scratch[fieldOffset] = 0
	scratch[fieldOffset+1] = 0
	scratch[fieldOffset+2] = 0
	scratch[fieldOffset+3] = 0
	return crc32.ChecksumIEEE(scratch)
}
