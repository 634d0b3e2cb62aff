package services

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReader(t *testing.T) {
	reader := NewMemoryReader([]byte{1, 2, 3, 4, 5, 6, 7, 8})

	t.Run("reads exactly the requested range", func(t *testing.T) {
		data, err := reader.ReadAt(2, 3)
		require.NoError(t, err)
		assert.Equal(t, []byte{3, 4, 5}, data)
		assert.Equal(t, uint64(8), reader.Size())
	})

	t.Run("rejects reads past the end", func(t *testing.T) {
		_, err := reader.ReadAt(6, 4)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds image size")
	})

	t.Run("rejects offsets that would wrap the range check", func(t *testing.T) {
		_, err := reader.ReadAt(math.MaxUint64-255, 512)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds image size")
	})

	t.Run("rejects negative lengths", func(t *testing.T) {
		_, err := reader.ReadAt(0, -1)
		require.Error(t, err)
	})
}

func TestImageReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, make([]byte, 1024), 0o644))

	reader, err := NewImageReader(path)
	require.NoError(t, err)
	defer reader.Close()

	t.Run("size matches the file", func(t *testing.T) {
		assert.Equal(t, uint64(1024), reader.Size())
	})

	t.Run("rejects offsets that would wrap the range check", func(t *testing.T) {
		_, err := reader.ReadAt(math.MaxUint64-255, 512)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds image size")
	})

	t.Run("empty path is rejected", func(t *testing.T) {
		_, err := NewImageReader("")
		require.Error(t, err)
	})
}
