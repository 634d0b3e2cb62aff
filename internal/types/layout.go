// File: internal/types/layout.go
package types

import (
	"math"

	"github.com/google/uuid"
)

// Scheme identifies which partitioning structures produced the layout.
type Scheme string

const (
	SchemeMBR           Scheme = "mbr"
	SchemeGPT           Scheme = "gpt"
	SchemeGPTUnreadable Scheme = "gpt-unreadable"
	SchemeNone          Scheme = "none"
)

// RecordKind tags a partition record with the structure it came from.
type RecordKind string

const (
	RecordMbrPrimary RecordKind = "mbr-primary"
	RecordMbrLogical RecordKind = "mbr-logical"
	RecordGpt        RecordKind = "gpt"
)

// Severity grades a diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is one engine observation, ordered by emission.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// PartitionRecord is one recovered partition in byte addressing.
type PartitionRecord struct {
	Kind        RecordKind `json:"kind"`
	Type        string     `json:"type"`
	Description string     `json:"description,omitempty"`
	Offset      uint64     `json:"offset"`
	Size        uint64     `json:"size"`
	Name        string     `json:"name,omitempty"`
	UniqueGUID  *uuid.UUID `json:"unique_guid,omitempty"`
	Bootable    bool       `json:"bootable,omitempty"`
	Attributes  uint64     `json:"attributes,omitempty"`
}

// End returns the first byte past the record, saturating rather than
// wrapping so oversized records still trip the bounds scan.
func (r PartitionRecord) End() uint64 {
	if r.Size > math.MaxUint64-r.Offset {
		return math.MaxUint64
	}
	return r.Offset + r.Size
}

// PartitionLayout is the engine's output: the effective scheme, the disk
// size, the records sorted by ascending offset, and every diagnostic
// gathered along the way.
type PartitionLayout struct {
	Scheme      Scheme            `json:"scheme"`
	DiskSize    uint64            `json:"disk_size"`
	SectorSize  uint32            `json:"sector_size"`
	DiskGUID    *uuid.UUID        `json:"disk_guid,omitempty"`
	Records     []PartitionRecord `json:"records"`
	Diagnostics []Diagnostic      `json:"diagnostics"`
}
