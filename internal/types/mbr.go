// File: internal/types/mbr.go
package types

const (
	// MbrSignature is the 2-byte boot signature stored little-endian at
	// offset 510 of the boot sector (0x55 0xAA on disk).
	MbrSignature uint16 = 0xAA55

	// MbrSignatureOffset is the byte offset of the boot signature within
	// the boot sector.
	MbrSignatureOffset = 510

	// MbrEntryOffset is the byte offset of the first partition table entry.
	MbrEntryOffset = 446

	// MbrEntrySize is the size of one partition table entry in bytes.
	MbrEntrySize = 16

	// MbrEntryCount is the number of primary partition table slots.
	MbrEntryCount = 4

	// MinSectorSize is the smallest sector size the engine accepts; a boot
	// sector is always at least this large.
	MinSectorSize = 512
)

// MBR partition type codes the engine treats specially.
const (
	MbrTypeEmpty         uint8 = 0x00
	MbrTypeExtendedCHS   uint8 = 0x05
	MbrTypeExtendedLBA   uint8 = 0x0F
	MbrTypeLinuxExtended uint8 = 0x85
	MbrTypeGptProtective uint8 = 0xEE
)

// MbrBootableFlag marks an entry active in the status byte.
const MbrBootableFlag uint8 = 0x80

// RawMbrEntry is one decoded 16-byte partition table entry. The CHS fields
// are retained for display but never trusted for sizing.
type RawMbrEntry struct {
	Status   uint8
	StartCHS [3]byte
	Type     uint8
	EndCHS   [3]byte
	StartLBA uint32
	Sectors  uint32
}

// IsEmpty reports whether the slot is unused.
func (e RawMbrEntry) IsEmpty() bool {
	return e.Type == MbrTypeEmpty
}

// IsExtended reports whether the type byte is one of the recognized
// extended-container codes.
func (e RawMbrEntry) IsExtended() bool {
	switch e.Type {
	case MbrTypeExtendedCHS, MbrTypeExtendedLBA, MbrTypeLinuxExtended:
		return true
	}
	return false
}

// IsGptProtective reports whether the entry is the GPT protective marker.
func (e RawMbrEntry) IsGptProtective() bool {
	return e.Type == MbrTypeGptProtective
}

// IsBootable reports whether the status byte carries the active flag.
func (e RawMbrEntry) IsBootable() bool {
	return e.Status == MbrBootableFlag
}

// CHSAddress is a decoded cylinder-head-sector tuple.
type CHSAddress struct {
	Cylinder uint16
	Head     uint8
	Sector   uint8
}

// DecodeCHS unpacks the 3-byte on-disk CHS encoding: head, then sector in
// the low 6 bits of the second byte, then the 10-bit cylinder split across
// the high 2 bits of the second byte and the third byte.
func DecodeCHS(raw [3]byte) CHSAddress {
	return CHSAddress{
		Head:     raw[0],
		Sector:   raw[1] & 0x3F,
		Cylinder: (uint16(raw[1]&0xC0) << 2) | uint16(raw[2]),
	}
}

// MbrTable is a decoded boot sector: four fixed-offset entry slots gated by
// the boot signature. The same layout is reused by every EBR in an extended
// partition's chain.
type MbrTable struct {
	Entries        [MbrEntryCount]RawMbrEntry
	Signature      uint16
	SignatureValid bool
}

// HasGptProtective reports whether exactly one slot carries the protective
// marker while every other slot is empty, which signals the caller to
// prefer the GPT structures.
func (t MbrTable) HasGptProtective() bool {
	protective := 0
	other := 0
	for _, e := range t.Entries {
		switch {
		case e.IsGptProtective():
			protective++
		case !e.IsEmpty():
			other++
		}
	}
	return protective == 1 && other == 0
}

// mbrTypeNames maps commonly encountered MBR partition type bytes to
// human-readable names. Unknown codes render as "Unknown".
var mbrTypeNames = map[uint8]string{
	0x00: "Unused",
	0x01: "FAT12",
	0x04: "FAT16 <32M",
	0x05: "Extended",
	0x06: "FAT16B",
	0x07: "HPFS/NTFS/exFAT",
	0x0B: "W95 FAT32",
	0x0C: "W95 FAT32 (LBA)",
	0x0E: "W95 FAT16 (LBA)",
	0x0F: "W95 Extended (LBA)",
	0x11: "Hidden FAT12",
	0x16: "Hidden FAT16B",
	0x17: "Hidden HPFS/NTFS",
	0x1B: "Hidden FAT32",
	0x27: "Windows Recovery Environment",
	0x82: "Linux swap",
	0x83: "Linux",
	0x85: "Linux extended",
	0x8E: "Linux LVM",
	0xA5: "FreeBSD",
	0xA6: "OpenBSD",
	0xA8: "Apple Darwin UFS",
	0xAB: "Apple Darwin boot",
	0xAF: "Mac OS X HFS",
	0xBF: "Solaris x86",
	0xEE: "GPT protective",
	0xEF: "EFI system (FAT)",
	0xFB: "VMware VMFS",
	0xFD: "Linux RAID autodetect",
}

// MbrTypeName returns a human-readable description for an MBR partition
// type byte.
func MbrTypeName(t uint8) string {
	if name, ok := mbrTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}
