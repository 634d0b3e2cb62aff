// File: internal/types/errors.go
package types

import "fmt"

// FormatError indicates that a fixed-layout structure violated its
// structural expectations (bad signature, out-of-range sizes).
type FormatError struct {
	Structure string
	Detail    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error in %s: %s", e.Structure, e.Detail)
}

// ChecksumError indicates a CRC32 comparison failure.
type ChecksumError struct {
	Structure string
	Expected  uint32
	Actual    uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch in %s: stored %08x, computed %08x", e.Structure, e.Expected, e.Actual)
}

// BoundsError indicates a decoded offset or size exceeding the disk's
// addressable range.
type BoundsError struct {
	Subject string
	Offset  uint64
	Size    uint64
	Limit   uint64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s exceeds disk bounds: offset %d + size %d > %d", e.Subject, e.Offset, e.Size, e.Limit)
}

// IoError indicates that the sector source failed or returned a short read.
// This is the only error class that aborts an entire parse: once the bytes
// themselves are unavailable, no further structural analysis can be trusted.
type IoError struct {
	Offset uint64
	Length int
	Err    error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("sector source read failed at offset %d (%d bytes): %v", e.Offset, e.Length, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}

// RecoveryError indicates that neither the primary nor the backup GPT
// header validated. It degrades the output rather than failing the parse.
type RecoveryError struct {
	PrimaryErr error
	BackupErr  error
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("GPT recovery exhausted: primary: %v; backup: %v", e.PrimaryErr, e.BackupErr)
}
