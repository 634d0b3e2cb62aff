// File: internal/services/image_reader.go
package services

import (
	"fmt"
	"os"

	"github.com/deploymenttheory/go-partition/internal/interfaces"
)

// ImageReader is a file-backed sector source over a raw disk image.
type ImageReader struct {
	file *os.File
	size uint64
}

// Compile-time check to ensure ImageReader implements SectorSource
var _ interfaces.SectorSource = (*ImageReader)(nil)

// NewImageReader opens a raw image file for random access.
func NewImageReader(path string) (*ImageReader, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}

	return &ImageReader{
		file: file,
		size: uint64(info.Size()),
	}, nil
}

// ReadAt returns exactly length bytes starting at offset.
func (r *ImageReader) ReadAt(offset uint64, length int) ([]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("negative read length %d", length)
	}
	if offset > r.size || uint64(length) > r.size-offset {
		return nil, fmt.Errorf("read of %d bytes at offset %d exceeds image size %d", length, offset, r.size)
	}

	data := make([]byte, length)
	n, err := r.file.ReadAt(data, int64(offset))
	if err != nil {
		return nil, fmt.Errorf("failed to read %d bytes at offset %d: %w", length, offset, err)
	}
	if n < length {
		return nil, fmt.Errorf("short read: got %d of %d bytes at offset %d", n, length, offset)
	}
	return data, nil
}

// Size returns the image size in bytes.
func (r *ImageReader) Size() uint64 {
	return r.size
}

// Close releases the underlying file.
func (r *ImageReader) Close() error {
	return r.file.Close()
}

// MemoryReader is an in-memory sector source, useful for parsing images
// already loaded into a buffer and for synthesizing images in tests.
type MemoryReader struct {
	data []byte
}

var _ interfaces.SectorSource = (*MemoryReader)(nil)

// NewMemoryReader wraps data as a sector source. The buffer is not copied.
func NewMemoryReader(data []byte) *MemoryReader {
	return &MemoryReader{data: data}
}

// ReadAt returns exactly length bytes starting at offset.
func (r *MemoryReader) ReadAt(offset uint64, length int) ([]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("negative read length %d", length)
	}
	if offset > uint64(len(r.data)) || uint64(length) > uint64(len(r.data))-offset {
		return nil, fmt.Errorf("read of %d bytes at offset %d exceeds image size %d", length, offset, len(r.data))
	}
	out := make([]byte, length)
	copy(out, r.data[offset:offset+uint64(length)])
	return out, nil
}

// Size returns the buffer size in bytes.
func (r *MemoryReader) Size() uint64 {
	return uint64(len(r.data))
}
