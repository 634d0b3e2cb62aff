// File: internal/parsers/mbr/chain_walker.go
package mbr

import (
	"fmt"

	"github.com/deploymenttheory/go-partition/internal/interfaces"
	"github.com/deploymenttheory/go-partition/internal/types"
)

// LogicalPartition is one logical partition recovered from an EBR chain,
// with its start already converted to an absolute LBA.
type LogicalPartition struct {
	Entry    types.RawMbrEntry
	StartLBA uint64
}

// ChainWalker follows the linked chain of Extended Boot Records rooted at
// an extended partition. The chain lives in untrusted bytes, so the walk is
// iterative over a visited set, never recursive: a crafted chain can loop
// or run long, and the walker must terminate with whatever it has.
type ChainWalker struct {
	source     interfaces.SectorSource
	sectorSize uint32
	maxChain   int
}

// NewChainWalker creates a walker over source. maxChain caps the number of
// EBR sectors followed; zero or negative disables the cap and leaves cycle
// detection as the only guard.
func NewChainWalker(source interfaces.SectorSource, sectorSize uint32, maxChain int) (*ChainWalker, error) {
	if source == nil {
		return nil, fmt.Errorf("sector source cannot be nil")
	}
	if sectorSize < types.MinSectorSize {
		return nil, fmt.Errorf("sector size %d below minimum %d", sectorSize, types.MinSectorSize)
	}
	return &ChainWalker{
		source:     source,
		sectorSize: sectorSize,
		maxChain:   maxChain,
	}, nil
}

// Walk traverses the chain rooted at the extended partition's absolute base
// LBA. It returns the logical partitions found plus any diagnostics from a
// truncated walk. The only error returned is an IoError from the source;
// structural problems end the walk with a partial result instead.
func (w *ChainWalker) Walk(baseLBA uint64) ([]LogicalPartition, []types.Diagnostic, error) {
	var found []LogicalPartition
	var diags []types.Diagnostic

	visited := make(map[uint64]struct{})
	current := baseLBA

	for {
		if _, seen := visited[current]; seen {
			diags = append(diags, types.Diagnostic{
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("cyclic EBR chain: LBA %d already visited, walk stopped", current),
			})
			return found, diags, nil
		}
		if w.maxChain > 0 && len(visited) >= w.maxChain {
			noun := "records"
			if w.maxChain == 1 {
				noun = "record"
			}
			diags = append(diags, types.Diagnostic{
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("EBR chain truncated after %d %s", w.maxChain, noun),
			})
			return found, diags, nil
		}
		visited[current] = struct{}{}

		if current*uint64(w.sectorSize)+uint64(w.sectorSize) > w.source.Size() {
			diags = append(diags, types.Diagnostic{
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("EBR at LBA %d lies beyond the end of the image, walk stopped", current),
			})
			return found, diags, nil
		}

		sector, err := w.source.ReadAt(current*uint64(w.sectorSize), int(w.sectorSize))
		if err != nil {
			return found, diags, &types.IoError{
				Offset: current * uint64(w.sectorSize),
				Length: int(w.sectorSize),
				Err:    err,
			}
		}

		ebr, err := ParseBootSector(sector, true)
		if err != nil {
			return found, diags, err
		}
		if !ebr.SignatureValid {
			diags = append(diags, types.Diagnostic{
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("EBR at LBA %d missing boot signature, walk stopped", current),
			})
			return found, diags, nil
		}

		// Slot 0 describes the logical partition, relative to this EBR's
		// own sector. Slot 1 links to the next EBR, relative to the
		// extended partition's base.
		logical := ebr.Entries[0]
		if !logical.IsEmpty() {
			found = append(found, LogicalPartition{
				Entry:    logical,
				StartLBA: current + uint64(logical.StartLBA),
			})
		}

		link := ebr.Entries[1]
		if link.IsEmpty() || link.StartLBA == 0 {
			return found, diags, nil
		}
		current = baseLBA + uint64(link.StartLBA)
	}
}
