// File: internal/parsers/mbr/boot_sector_parser.go
package mbr

import (
	"bytes"
	"encoding/binary"

	"github.com/deploymenttheory/go-partition/internal/types"
)

// ParseBootSector decodes a 512-byte (or larger) boot sector into its four
// partition table entries. The returned table's SignatureValid flag records
// whether the 0x55AA trailer was present.
//
// When the signature is missing and lenient is false, a FormatError is
// returned. With lenient set, decoding proceeds and the caller is expected
// to surface a warning from the cleared SignatureValid flag.
func ParseBootSector(data []byte, lenient bool) (types.MbrTable, error) {
	var table types.MbrTable

	if len(data) < types.MinSectorSize {
		return table, &types.FormatError{
			Structure: "boot sector",
			Detail:    "fewer than 512 bytes",
		}
	}

	table.Signature = binary.LittleEndian.Uint16(data[types.MbrSignatureOffset:])
	table.SignatureValid = table.Signature == types.MbrSignature
	if !table.SignatureValid && !lenient {
		return table, &types.FormatError{
			Structure: "boot sector",
			Detail:    "missing 0x55AA boot signature",
		}
	}

	for i := 0; i < types.MbrEntryCount; i++ {
		start := types.MbrEntryOffset + i*types.MbrEntrySize
		entry, err := decodeEntry(data[start : start+types.MbrEntrySize])
		if err != nil {
			return table, err
		}
		table.Entries[i] = entry
	}

	return table, nil
}

func decodeEntry(raw []byte) (types.RawMbrEntry, error) {
	var entry types.RawMbrEntry
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &entry); err != nil {
		return entry, &types.FormatError{
			Structure: "MBR partition entry",
			Detail:    err.Error(),
		}
	}
	return entry, nil
}
