// File: internal/interfaces/sector_source.go
package interfaces

// SectorSource provides random access to the bytes of a disk image. The
// engine never owns a source; one is injected per parse call, which keeps
// invocations independent and safe to run concurrently.
type SectorSource interface {
	// ReadAt returns exactly length bytes starting at the byte offset.
	// Short or failed reads surface as an error, never a short slice.
	ReadAt(offset uint64, length int) ([]byte, error)

	// Size returns the total size of the image in bytes.
	Size() uint64
}
