// File: internal/parsers/gpt/header_parser.go
package gpt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/text/encoding/unicode"

	"github.com/deploymenttheory/go-partition/internal/helpers"
	"github.com/deploymenttheory/go-partition/internal/interfaces"
	"github.com/deploymenttheory/go-partition/internal/types"
)

// headerCRCOffset is the byte offset of the header's own CRC32 field,
// zeroed during recomputation.
const headerCRCOffset = 16

// rawHeader mirrors the on-disk header layout for binary.Read; the GUID is
// converted separately because of its mixed-endian encoding.
type rawHeader struct {
	Signature      [8]byte
	Revision       uint32
	HeaderSize     uint32
	HeaderCRC32    uint32
	Reserved       uint32
	CurrentLBA     uint64
	BackupLBA      uint64
	FirstUsableLBA uint64
	LastUsableLBA  uint64
	DiskGUID       [16]byte
	EntryArrayLBA  uint64
	EntryCount     uint32
	EntrySize      uint32
	EntryArrayCRC  uint32
}

// HeaderResult is the outcome of decoding one GPT header and its entry
// array. Untrusted structures still carry their decoded fields so callers
// can report what the header claimed.
type HeaderResult struct {
	Header         types.GptHeader
	HeaderTrusted  bool
	HeaderErr      error
	Entries        []types.GptPartitionEntry
	EntriesTrusted bool
	EntriesErr     error
}

// HeaderParser decodes and validates one GPT header plus its partition
// entry array.
type HeaderParser struct {
	source     interfaces.SectorSource
	sectorSize uint32
}

// NewHeaderParser creates a parser over source.
func NewHeaderParser(source interfaces.SectorSource, sectorSize uint32) (*HeaderParser, error) {
	if source == nil {
		return nil, fmt.Errorf("sector source cannot be nil")
	}
	if sectorSize < types.MinSectorSize {
		return nil, fmt.Errorf("sector size %d below minimum %d", sectorSize, types.MinSectorSize)
	}
	return &HeaderParser{source: source, sectorSize: sectorSize}, nil
}

// Parse decodes the header at headerLBA and, when the header validates,
// the entry array at the header's own recorded entry-array LBA. Structural
// and checksum failures are captured in the result; only sector-source
// failures return a non-nil error.
func (p *HeaderParser) Parse(headerLBA uint64) (*HeaderResult, error) {
	result := &HeaderResult{}

	offset, err := p.locate("GPT header", headerLBA, int(p.sectorSize))
	if err != nil {
		result.HeaderErr = err
		return result, nil
	}
	sector, err := p.source.ReadAt(offset, int(p.sectorSize))
	if err != nil {
		return nil, &types.IoError{Offset: offset, Length: int(p.sectorSize), Err: err}
	}

	var raw rawHeader
	if err := binary.Read(bytes.NewReader(sector), binary.LittleEndian, &raw); err != nil {
		result.HeaderErr = &types.FormatError{Structure: "GPT header", Detail: err.Error()}
		return result, nil
	}

	result.Header = types.GptHeader{
		Signature:      raw.Signature,
		Revision:       raw.Revision,
		HeaderSize:     raw.HeaderSize,
		HeaderCRC32:    raw.HeaderCRC32,
		Reserved:       raw.Reserved,
		CurrentLBA:     raw.CurrentLBA,
		BackupLBA:      raw.BackupLBA,
		FirstUsableLBA: raw.FirstUsableLBA,
		LastUsableLBA:  raw.LastUsableLBA,
		EntryArrayLBA:  raw.EntryArrayLBA,
		EntryCount:     raw.EntryCount,
		EntrySize:      raw.EntrySize,
		EntryArrayCRC:  raw.EntryArrayCRC,
	}
	if guid, err := helpers.DecodeGUID(raw.DiskGUID[:]); err == nil {
		result.Header.DiskGUID = guid
	}

	result.HeaderErr = p.validateHeader(result.Header, sector)
	result.HeaderTrusted = result.HeaderErr == nil
	if !result.HeaderTrusted {
		return result, nil
	}

	entries, entriesErr, ioErr := p.parseEntryArray(result.Header)
	if ioErr != nil {
		return nil, ioErr
	}
	result.Entries = entries
	result.EntriesErr = entriesErr
	result.EntriesTrusted = entriesErr == nil
	return result, nil
}

// validateHeader applies the trust gate: signature, size bounds, and the
// self-referential header CRC32.
func (p *HeaderParser) validateHeader(h types.GptHeader, sector []byte) error {
	if !h.HasSignature() {
		return &types.FormatError{
			Structure: "GPT header",
			Detail:    fmt.Sprintf("signature %q is not \"EFI PART\"", h.Signature[:]),
		}
	}
	if h.HeaderSize < types.GptHeaderMinSize || h.HeaderSize > p.sectorSize {
		return &types.FormatError{
			Structure: "GPT header",
			Detail:    fmt.Sprintf("header size %d outside [%d, %d]", h.HeaderSize, types.GptHeaderMinSize, p.sectorSize),
		}
	}
	computed := helpers.ChecksumZeroed(sector[:h.HeaderSize], headerCRCOffset)
	if computed != h.HeaderCRC32 {
		return &types.ChecksumError{
			Structure: "GPT header",
			Expected:  h.HeaderCRC32,
			Actual:    computed,
		}
	}
	return nil
}

// parseEntryArray reads and decodes the partition entry array described by
// a trusted header. The geometry the header claims is bounded before any
// allocation so an adversarial image cannot request absurd buffers.
func (p *HeaderParser) parseEntryArray(h types.GptHeader) ([]types.GptPartitionEntry, error, error) {
	if h.EntryCount > types.GptMaxEntryCount {
		return nil, &types.FormatError{
			Structure: "GPT entry array",
			Detail:    fmt.Sprintf("entry count %d exceeds cap %d", h.EntryCount, types.GptMaxEntryCount),
		}, nil
	}
	if h.EntrySize < types.GptEntryMinSize || h.EntrySize > types.GptEntryMaxSize || h.EntrySize%8 != 0 {
		return nil, &types.FormatError{
			Structure: "GPT entry array",
			Detail:    fmt.Sprintf("entry size %d outside [%d, %d] or not a multiple of 8", h.EntrySize, types.GptEntryMinSize, types.GptEntryMaxSize),
		}, nil
	}
	if h.EntryCount == 0 {
		// The CRC still covers the (empty) array, which checksums to 0.
		if h.EntryArrayCRC != 0 {
			return nil, &types.ChecksumError{
				Structure: "GPT entry array",
				Expected:  h.EntryArrayCRC,
				Actual:    0,
			}, nil
		}
		return nil, nil, nil
	}

	length := int(h.EntryCount) * int(h.EntrySize)
	offset, err := p.locate("GPT entry array", h.EntryArrayLBA, length)
	if err != nil {
		return nil, err, nil
	}
	data, err := p.source.ReadAt(offset, length)
	if err != nil {
		return nil, nil, &types.IoError{Offset: offset, Length: length, Err: err}
	}

	var entriesErr error
	computed := helpers.Checksum(data)
	if computed != h.EntryArrayCRC {
		entriesErr = &types.ChecksumError{
			Structure: "GPT entry array",
			Expected:  h.EntryArrayCRC,
			Actual:    computed,
		}
	}

	var entries []types.GptPartitionEntry
	for i := 0; i < int(h.EntryCount); i++ {
		entry, err := decodeEntry(data[i*int(h.EntrySize) : (i+1)*int(h.EntrySize)])
		if err != nil {
			entriesErr = err
			break
		}
		if entry.IsUnused() {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, entriesErr, nil
}

// decodeEntry decodes one partition entry. Only the standard first 128
// bytes are interpreted; a larger entry size leaves the tail reserved.
func decodeEntry(raw []byte) (types.GptPartitionEntry, error) {
	var entry types.GptPartitionEntry

	typeGUID, err := helpers.DecodeGUID(raw[0:16])
	if err != nil {
		return entry, &types.FormatError{Structure: "GPT partition entry", Detail: err.Error()}
	}
	uniqueGUID, err := helpers.DecodeGUID(raw[16:32])
	if err != nil {
		return entry, &types.FormatError{Structure: "GPT partition entry", Detail: err.Error()}
	}

	entry.TypeGUID = typeGUID
	entry.UniqueGUID = uniqueGUID
	entry.FirstLBA = binary.LittleEndian.Uint64(raw[32:40])
	entry.LastLBA = binary.LittleEndian.Uint64(raw[40:48])
	entry.Attributes = binary.LittleEndian.Uint64(raw[48:56])

	name, err := decodeName(raw[56 : 56+types.GptNameLength*2])
	if err != nil {
		return entry, &types.FormatError{Structure: "GPT partition entry", Detail: err.Error()}
	}
	entry.Name = name
	return entry, nil
}

// decodeName converts the fixed UTF-16LE name field, stopping at the first
// NUL code unit.
func decodeName(raw []byte) (string, error) {
	end := len(raw)
	for i := 0; i+1 < len(raw); i += 2 {
		if raw[i] == 0 && raw[i+1] == 0 {
			end = i
			break
		}
	}
	if end == 0 {
		return "", nil
	}
	decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw[:end])
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// locate converts an LBA to a byte offset and classifies an out-of-image
// structure location as a BoundsError so truncated images degrade instead
// of aborting. The arithmetic must not wrap: a CRC-valid header can carry
// any 64-bit LBA, and a wrapped offset would slip past the size check and
// panic the source.
func (p *HeaderParser) locate(subject string, lba uint64, length int) (uint64, error) {
	size := p.source.Size()
	if lba > math.MaxUint64/uint64(p.sectorSize) {
		return 0, &types.BoundsError{
			Subject: subject,
			Offset:  math.MaxUint64,
			Size:    uint64(length),
			Limit:   size,
		}
	}
	offset := lba * uint64(p.sectorSize)
	if offset > size || uint64(length) > size-offset {
		return 0, &types.BoundsError{
			Subject: subject,
			Offset:  offset,
			Size:    uint64(length),
			Limit:   size,
		}
	}
	return offset, nil
}
