// File: internal/types/gpt.go
package types

import (
	"math"

	"github.com/google/uuid"
)

// GptSignature is the 8-byte magic at the start of every GPT header.
var GptSignature = [8]byte{'E', 'F', 'I', ' ', 'P', 'A', 'R', 'T'}

const (
	// GptHeaderLBA is the LBA of the primary GPT header.
	GptHeaderLBA = 1

	// GptHeaderMinSize is the structure size through the entry-array CRC
	// field; a header claiming less cannot be decoded.
	GptHeaderMinSize = 92

	// GptEntryMinSize and GptEntryMaxSize bound the per-entry size a
	// header may claim. The UEFI spec requires 128 * 2^n.
	GptEntryMinSize = 128
	GptEntryMaxSize = 4096

	// GptMaxEntryCount caps the entry count honored from a header so an
	// adversarial image cannot drive unbounded allocations.
	GptMaxEntryCount = 4096

	// GptNameLength is the UTF-16 code unit capacity of the name field.
	GptNameLength = 36
)

// GptHeader is a decoded GPT header. All fields are little-endian on disk
// except the GUID, which uses the mixed-endian layout handled by the codec.
type GptHeader struct {
	Signature      [8]byte
	Revision       uint32
	HeaderSize     uint32
	HeaderCRC32    uint32
	Reserved       uint32
	CurrentLBA     uint64
	BackupLBA      uint64
	FirstUsableLBA uint64
	LastUsableLBA  uint64
	DiskGUID       uuid.UUID
	EntryArrayLBA  uint64
	EntryCount     uint32
	EntrySize      uint32
	EntryArrayCRC  uint32
}

// HasSignature reports whether the decoded signature matches "EFI PART".
func (h GptHeader) HasSignature() bool {
	return h.Signature == GptSignature
}

// GptPartitionEntry is one decoded partition-entry-array element.
type GptPartitionEntry struct {
	TypeGUID   uuid.UUID
	UniqueGUID uuid.UUID
	FirstLBA   uint64
	LastLBA    uint64
	Attributes uint64
	Name       string
}

// IsUnused reports whether the slot's type GUID is all zero.
func (e GptPartitionEntry) IsUnused() bool {
	return e.TypeGUID == uuid.Nil
}

// Sectors returns the entry's length in sectors. GPT LBA ranges are
// inclusive on both ends; the full 64-bit range saturates instead of
// wrapping to zero.
func (e GptPartitionEntry) Sectors() uint64 {
	if e.LastLBA < e.FirstLBA {
		return 0
	}
	if n := e.LastLBA - e.FirstLBA; n == math.MaxUint64 {
		return n
	}
	return e.LastLBA - e.FirstLBA + 1
}

// gptTypeNames maps well-known partition type GUIDs (canonical lowercase
// form) to human-readable names.
var gptTypeNames = map[string]string{
	"024dee41-33e7-11d3-9d69-0008c781f39f": "MBR partition scheme",
	"c12a7328-f81f-11d2-ba4b-00a0c93ec93b": "EFI System partition",
	"21686148-6449-6e6f-744e-656564454649": "BIOS boot partition",
	"e3c9e316-0b5c-4db8-817d-f92df00215ae": "Microsoft Reserved Partition",
	"ebd0a0a2-b9e5-4433-87c0-68b6b72699c7": "Basic data partition",
	"de94bba4-06d1-4d40-a16a-bfd50179d6ac": "Windows Recovery Environment",
	"0fc63daf-8483-4772-8e79-3d69d8477de4": "Linux filesystem data",
	"0657fd6d-a4ab-43c4-84e5-0933c84b4f4f": "Linux swap",
	"e6d1d9b7-95b3-4a3d-b114-85ff3d230a6e": "Linux LVM",
	"a19d880f-05fc-4d3b-a006-743f0f84911e": "Linux RAID",
	"933ac7e1-2eb4-4f13-b844-0e14e2aef915": "Linux /home",
	"3b8f8425-20e0-4f3b-907f-1a25a76f98e8": "Linux /srv",
	"bc13c2ff-59e6-4262-a352-b275fd6f7172": "Linux extended boot",
	"44479540-f297-41b2-9af7-d131d5f0458a": "Linux root (x86)",
	"4f68bce3-e8cd-4db1-96e7-fbcaf984b709": "Linux root (x86-64)",
	"b921b045-1df0-41c3-af44-4c6f280d3fae": "Linux root (AArch64)",
	"7ffec5c9-2d00-49b1-988a-c22c947ffee7": "Plain dm-crypt partition",
	"ca7d7ccb-63ed-4c53-bb4a-2e387187f96d": "LUKS partition",
	"48465300-0000-11aa-aa11-00306543ecac": "Apple HFS+",
	"7c3457ef-0000-11aa-aa11-00306543ecac": "Apple APFS",
	"52414944-0000-11aa-aa11-00306543ecac": "Apple RAID",
	"516e7cb4-6ecf-11d6-8ff8-00022d09712b": "FreeBSD data",
	"6a82cb45-1dd2-11b2-99a6-080020736631": "Solaris boot",
	"4fbd7e29-9d25-41b8-afd0-062c0ceff05d": "Ceph OSD",
}

// GptTypeName returns a human-readable description for a partition type
// GUID.
func GptTypeName(typeGUID uuid.UUID) string {
	if name, ok := gptTypeNames[typeGUID.String()]; ok {
		return name
	}
	return "Unknown partition type"
}
