// File: internal/services/layout_service.go
package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/deploymenttheory/go-partition/internal/interfaces"
	"github.com/deploymenttheory/go-partition/internal/parsers/gpt"
	"github.com/deploymenttheory/go-partition/internal/parsers/mbr"
	"github.com/deploymenttheory/go-partition/internal/types"
)

// assemblyState enumerates the scheme-selection state machine. Selection
// happens exactly once per parse; each state's transitions are fixed.
type assemblyState int

const (
	stateReadMBR assemblyState = iota
	statePureMBR
	stateGptCandidate
)

// LayoutService reconstructs the partition layout of one disk image. It
// drives the boot sector parser first, then either the EBR chain walker or
// GPT recovery depending on what the boot sector announced.
type LayoutService struct {
	options Options
}

// Compile-time check to ensure LayoutService implements LayoutResolver
var _ interfaces.LayoutResolver = (*LayoutService)(nil)

// NewLayoutService creates a layout service with the given options.
func NewLayoutService(options Options) (*LayoutService, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	return &LayoutService{options: options}, nil
}

// Resolve parses the image behind source. A sector-source failure on the
// boot sector or any structural read aborts with an error; every other
// problem degrades into diagnostics on the returned layout.
func (s *LayoutService) Resolve(source interfaces.SectorSource) (*types.PartitionLayout, error) {
	if source == nil {
		return nil, fmt.Errorf("sector source cannot be nil")
	}

	sectorSize := s.options.SectorSize
	layout := &types.PartitionLayout{
		Scheme:      types.SchemeNone,
		DiskSize:    source.Size(),
		SectorSize:  sectorSize,
		Records:     []types.PartitionRecord{},
		Diagnostics: []types.Diagnostic{},
	}

	var table types.MbrTable
	state := stateReadMBR

	for {
		switch state {
		case stateReadMBR:
			if source.Size() < uint64(sectorSize) {
				return nil, &types.FormatError{
					Structure: "disk image",
					Detail:    fmt.Sprintf("image size %d smaller than one %d-byte sector", source.Size(), sectorSize),
				}
			}
			sector, err := source.ReadAt(0, int(sectorSize))
			if err != nil {
				return nil, &types.IoError{Offset: 0, Length: int(sectorSize), Err: err}
			}
			table, err = mbr.ParseBootSector(sector, s.options.LenientMbrSignature)
			if err != nil {
				return nil, err
			}
			if !table.SignatureValid {
				layout.Diagnostics = append(layout.Diagnostics, types.Diagnostic{
					Severity: types.SeverityWarning,
					Message:  fmt.Sprintf("boot sector signature is %04x, not %04x; proceeding leniently", table.Signature, types.MbrSignature),
				})
			}
			if table.HasGptProtective() {
				state = stateGptCandidate
			} else {
				state = statePureMBR
			}

		case statePureMBR:
			if err := s.assembleMbr(source, table, layout); err != nil {
				return nil, err
			}
			s.finalize(layout)
			return layout, nil

		case stateGptCandidate:
			if err := s.assembleGpt(source, table, layout); err != nil {
				return nil, err
			}
			s.finalize(layout)
			return layout, nil
		}
	}
}

// assembleMbr emits the primary records and walks the EBR chain of every
// extended entry.
func (s *LayoutService) assembleMbr(source interfaces.SectorSource, table types.MbrTable, layout *types.PartitionLayout) error {
	layout.Scheme = types.SchemeMBR

	populated := 0
	for i, entry := range table.Entries {
		if entry.IsEmpty() {
			continue
		}
		populated++

		if entry.IsGptProtective() {
			layout.Diagnostics = append(layout.Diagnostics, types.Diagnostic{
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("slot %d carries a GPT protective entry alongside other active entries; treating it as an ordinary primary", i),
			})
		}

		layout.Records = append(layout.Records, mbrRecord(entry, uint64(entry.StartLBA), types.RecordMbrPrimary, s.options.SectorSize))

		if entry.IsExtended() {
			walker, err := mbr.NewChainWalker(source, s.options.SectorSize, s.options.MaxEbrChainLength)
			if err != nil {
				return err
			}
			logicals, diags, err := walker.Walk(uint64(entry.StartLBA))
			if err != nil {
				return err
			}
			layout.Diagnostics = append(layout.Diagnostics, diags...)
			for _, logical := range logicals {
				layout.Records = append(layout.Records, mbrRecord(logical.Entry, logical.StartLBA, types.RecordMbrLogical, s.options.SectorSize))
			}
		}
	}

	if populated == 0 && !table.SignatureValid {
		// Nothing decoded and no signature: the image carries no
		// recognizable partitioning scheme.
		layout.Scheme = types.SchemeNone
	}
	return nil
}

// assembleGpt runs GPT recovery and converts the accepted entries. When
// recovery is exhausted the protective MBR entry is still emitted, since it
// is the only partition-level information left standing.
func (s *LayoutService) assembleGpt(source interfaces.SectorSource, table types.MbrTable, layout *types.PartitionLayout) error {
	parser, err := gpt.NewHeaderParser(source, s.options.SectorSize)
	if err != nil {
		return err
	}
	recovery, err := gpt.NewRecovery(parser, s.options.SectorSize, s.options.RequireGptBackupMatch)
	if err != nil {
		return err
	}

	result, err := recovery.Resolve()
	if err != nil {
		return err
	}
	layout.Diagnostics = append(layout.Diagnostics, result.Diagnostics...)

	if result.State == gpt.RecoveryUnreadable {
		layout.Scheme = types.SchemeGPTUnreadable
		for _, entry := range table.Entries {
			if entry.IsGptProtective() {
				layout.Records = append(layout.Records, mbrRecord(entry, uint64(entry.StartLBA), types.RecordMbrPrimary, s.options.SectorSize))
			}
		}
		return nil
	}

	layout.Scheme = types.SchemeGPT
	diskGUID := result.Header.DiskGUID
	layout.DiskGUID = &diskGUID
	for _, entry := range result.Entries {
		layout.Records = append(layout.Records, gptRecord(entry, s.options.SectorSize))
	}
	return nil
}

// finalize sorts the records and runs the bounds and overlap scans.
func (s *LayoutService) finalize(layout *types.PartitionLayout) {
	sort.SliceStable(layout.Records, func(i, j int) bool {
		return layout.Records[i].Offset < layout.Records[j].Offset
	})

	boundsSeverity := types.SeverityWarning
	if s.options.StrictBounds {
		boundsSeverity = types.SeverityError
	}
	for _, record := range layout.Records {
		if record.End() > layout.DiskSize {
			layout.Diagnostics = append(layout.Diagnostics, types.Diagnostic{
				Severity: boundsSeverity,
				Message:  fmt.Sprintf("partition at offset %d extends %d bytes past the end of the %d-byte image", record.Offset, record.End()-layout.DiskSize, layout.DiskSize),
			})
		}
	}

	for i := 1; i < len(layout.Records); i++ {
		prev := layout.Records[i-1]
		next := layout.Records[i]
		if prev.Size > 0 && next.Size > 0 && prev.End() > next.Offset {
			layout.Diagnostics = append(layout.Diagnostics, types.Diagnostic{
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("partitions at offsets %d and %d overlap by %d bytes", prev.Offset, next.Offset, prev.End()-next.Offset),
			})
		}
	}
}

// lbaBytes converts a sector count to bytes, saturating instead of
// wrapping so a crafted 64-bit LBA cannot slip past the bounds scan.
func lbaBytes(sectors uint64, sectorSize uint32) uint64 {
	if sectors > math.MaxUint64/uint64(sectorSize) {
		return math.MaxUint64
	}
	return sectors * uint64(sectorSize)
}

// mbrRecord converts an MBR entry at an absolute start LBA into a record.
func mbrRecord(entry types.RawMbrEntry, startLBA uint64, kind types.RecordKind, sectorSize uint32) types.PartitionRecord {
	return types.PartitionRecord{
		Kind:        kind,
		Type:        fmt.Sprintf("0x%02X", entry.Type),
		Description: types.MbrTypeName(entry.Type),
		Offset:      lbaBytes(startLBA, sectorSize),
		Size:        lbaBytes(uint64(entry.Sectors), sectorSize),
		Bootable:    entry.IsBootable(),
	}
}

// gptRecord converts a GPT partition entry into a record.
func gptRecord(entry types.GptPartitionEntry, sectorSize uint32) types.PartitionRecord {
	unique := entry.UniqueGUID
	return types.PartitionRecord{
		Kind:        types.RecordGpt,
		Type:        entry.TypeGUID.String(),
		Description: types.GptTypeName(entry.TypeGUID),
		Offset:      lbaBytes(entry.FirstLBA, sectorSize),
		Size:        lbaBytes(entry.Sectors(), sectorSize),
		Name:        entry.Name,
		UniqueGUID:  &unique,
		Attributes:  entry.Attributes,
	}
}
