package mbr

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-partition/internal/types"
)

// imageSource is an in-memory sector source for synthesized images.
type imageSource struct {
	data []byte
}

func (s *imageSource) ReadAt(offset uint64, length int) ([]byte, error) {
	if offset+uint64(length) > uint64(len(s.data)) {
		return nil, fmt.Errorf("read beyond end of image")
	}
	out := make([]byte, length)
	copy(out, s.data[offset:offset+uint64(length)])
	return out, nil
}

func (s *imageSource) Size() uint64 {
	return uint64(len(s.data))
}

// writeEBR places an EBR at absolute LBA with a logical entry (start
// relative to the EBR itself) and a link entry (start relative to the
// extended partition base, zero for terminal).
func writeEBR(image []byte, lba uint64, logicalStart, logicalSectors, linkStart uint32) {
	sector := image[lba*512 : lba*512+512]
	signBootSector(sector)
	if logicalSectors != 0 {
		putEntry(sector, 0, 0, 0x83, logicalStart, logicalSectors)
	}
	if linkStart != 0 {
		putEntry(sector, 1, 0, types.MbrTypeExtendedCHS, linkStart, 0)
	}
}

func TestChainWalker(t *testing.T) {
	const base = 10

	t.Run("two node chain terminates normally", func(t *testing.T) {
		image := make([]byte, 64*512)
		writeEBR(image, base, 1, 4, 20)
		writeEBR(image, base+20, 1, 4, 0)

		walker, err := NewChainWalker(&imageSource{image}, 512, 128)
		require.NoError(t, err)

		logicals, diags, err := walker.Walk(base)
		require.NoError(t, err)
		assert.Empty(t, diags)
		require.Len(t, logicals, 2)
		assert.Equal(t, uint64(base+1), logicals[0].StartLBA)
		assert.Equal(t, uint64(base+20+1), logicals[1].StartLBA)
		assert.Equal(t, uint32(4), logicals[0].Entry.Sectors)
	})

	t.Run("cycle stops with one warning and partial result", func(t *testing.T) {
		image := make([]byte, 64*512)
		writeEBR(image, base, 1, 4, 20)
		writeEBR(image, base+20, 1, 4, 20) // links back to itself

		walker, err := NewChainWalker(&imageSource{image}, 512, 128)
		require.NoError(t, err)

		logicals, diags, err := walker.Walk(base)
		require.NoError(t, err)
		assert.Len(t, logicals, 2)
		require.Len(t, diags, 1)
		assert.Equal(t, types.SeverityWarning, diags[0].Severity)
		assert.Contains(t, diags[0].Message, "cyclic")
	})

	t.Run("longer cycle warns exactly once", func(t *testing.T) {
		image := make([]byte, 64*512)
		writeEBR(image, base, 1, 4, 20)     // A -> B at base+20
		writeEBR(image, base+20, 1, 4, 40)  // B -> C at base+40
		writeEBR(image, base+40, 1, 4, 20)  // C -> B again

		walker, err := NewChainWalker(&imageSource{image}, 512, 128)
		require.NoError(t, err)

		logicals, diags, err := walker.Walk(base)
		require.NoError(t, err)
		assert.Len(t, logicals, 3)

		warnings := 0
		for _, d := range diags {
			if strings.Contains(d.Message, "cyclic") {
				warnings++
			}
		}
		assert.Equal(t, 1, warnings)
	})

	t.Run("chain cap truncates the walk", func(t *testing.T) {
		image := make([]byte, 64*512)
		writeEBR(image, base, 1, 4, 20)
		writeEBR(image, base+20, 1, 4, 0)

		walker, err := NewChainWalker(&imageSource{image}, 512, 1)
		require.NoError(t, err)

		logicals, diags, err := walker.Walk(base)
		require.NoError(t, err)
		assert.Len(t, logicals, 1)
		require.Len(t, diags, 1)
		assert.Contains(t, diags[0].Message, "truncated after 1 record")
		assert.NotContains(t, diags[0].Message, "1 records")
	})

	t.Run("link beyond image stops with warning", func(t *testing.T) {
		image := make([]byte, 64*512)
		writeEBR(image, base, 1, 4, 4000)

		walker, err := NewChainWalker(&imageSource{image}, 512, 128)
		require.NoError(t, err)

		logicals, diags, err := walker.Walk(base)
		require.NoError(t, err)
		assert.Len(t, logicals, 1)
		require.Len(t, diags, 1)
		assert.Contains(t, diags[0].Message, "beyond the end")
	})

	t.Run("unsigned EBR stops with warning", func(t *testing.T) {
		image := make([]byte, 64*512)
		writeEBR(image, base, 1, 4, 20)
		// The linked sector at base+20 has no signature.

		walker, err := NewChainWalker(&imageSource{image}, 512, 128)
		require.NoError(t, err)

		logicals, diags, err := walker.Walk(base)
		require.NoError(t, err)
		assert.Len(t, logicals, 1)
		require.Len(t, diags, 1)
		assert.Contains(t, diags[0].Message, "missing boot signature")
	})

	t.Run("constructor rejects bad arguments", func(t *testing.T) {
		_, err := NewChainWalker(nil, 512, 0)
		assert.Error(t, err)

		_, err = NewChainWalker(&imageSource{make([]byte, 512)}, 256, 0)
		assert.Error(t, err)
	})
}
