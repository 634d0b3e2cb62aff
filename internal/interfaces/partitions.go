// File: internal/interfaces/partitions.go
package interfaces

import "github.com/deploymenttheory/go-partition/internal/types"

// LayoutResolver reconstructs the partition layout of a disk image.
type LayoutResolver interface {
	// Resolve parses the image behind source and returns the recovered
	// layout. Only a sector-source I/O failure yields a non-nil error;
	// every structural problem degrades into layout diagnostics instead.
	Resolve(source SectorSource) (*types.PartitionLayout, error)
}
