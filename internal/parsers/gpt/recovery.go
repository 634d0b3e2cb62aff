// File: internal/parsers/gpt/recovery.go
package gpt

import (
	"fmt"

	"github.com/deploymenttheory/go-partition/internal/types"
)

// RecoveryState is the terminal state of a primary-then-backup resolution.
type RecoveryState string

const (
	// RecoveryDone means the primary header and entry array validated.
	RecoveryDone RecoveryState = "done"

	// RecoveryDoneWithBackup means the primary failed but the backup
	// validated and was accepted.
	RecoveryDoneWithBackup RecoveryState = "done-with-backup"

	// RecoveryUnreadable means neither header validated; the GPT portion
	// of the layout is degraded, not the whole parse.
	RecoveryUnreadable RecoveryState = "unreadable"
)

// RecoveryResult carries the accepted header and entries (when any header
// validated) plus the diagnostics describing how resolution went.
type RecoveryResult struct {
	State       RecoveryState
	Header      types.GptHeader
	Entries     []types.GptPartitionEntry
	UsedBackup  bool
	Diagnostics []types.Diagnostic
}

// Recovery orchestrates GPT header resolution: the primary header at LBA 1
// first, then the backup header when the primary fails either checksum.
type Recovery struct {
	parser             *HeaderParser
	sectorSize         uint32
	requireBackupMatch bool
}

// NewRecovery creates a recovery orchestrator around parser. When
// requireBackupMatch is set, falling back to the backup is reported as an
// error instead of silently preferring it.
func NewRecovery(parser *HeaderParser, sectorSize uint32, requireBackupMatch bool) (*Recovery, error) {
	if parser == nil {
		return nil, fmt.Errorf("header parser cannot be nil")
	}
	return &Recovery{
		parser:             parser,
		sectorSize:         sectorSize,
		requireBackupMatch: requireBackupMatch,
	}, nil
}

// Resolve runs the two-attempt protocol. Only a sector-source failure
// returns a non-nil error; exhausting both headers yields the unreadable
// state with an error diagnostic.
func (r *Recovery) Resolve() (*RecoveryResult, error) {
	result := &RecoveryResult{}

	primary, err := r.parser.Parse(types.GptHeaderLBA)
	if err != nil {
		return nil, err
	}
	if primary.HeaderTrusted && primary.EntriesTrusted {
		result.State = RecoveryDone
		result.Header = primary.Header
		result.Entries = primary.Entries
		return result, nil
	}

	primaryErr := primary.HeaderErr
	if primaryErr == nil {
		primaryErr = primary.EntriesErr
	}
	result.Diagnostics = append(result.Diagnostics, types.Diagnostic{
		Severity: types.SeverityWarning,
		Message:  fmt.Sprintf("primary GPT invalid: %v", primaryErr),
	})

	backupLBA := r.locateBackup(primary)
	backup, err := r.parser.Parse(backupLBA)
	if err != nil {
		return nil, err
	}
	if backup.HeaderTrusted && backup.EntriesTrusted {
		if r.requireBackupMatch {
			result.State = RecoveryUnreadable
			result.Diagnostics = append(result.Diagnostics, types.Diagnostic{
				Severity: types.SeverityError,
				Message:  "primary and backup GPT disagree and backup fallback is disabled",
			})
			return result, nil
		}
		result.State = RecoveryDoneWithBackup
		result.Header = backup.Header
		result.Entries = backup.Entries
		result.UsedBackup = true
		result.Diagnostics = append(result.Diagnostics, types.Diagnostic{
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("used backup GPT header at LBA %d", backupLBA),
		})
		return result, nil
	}

	backupErr := backup.HeaderErr
	if backupErr == nil {
		backupErr = backup.EntriesErr
	}
	result.State = RecoveryUnreadable
	result.Diagnostics = append(result.Diagnostics, types.Diagnostic{
		Severity: types.SeverityError,
		Message: (&types.RecoveryError{
			PrimaryErr: primaryErr,
			BackupErr:  backupErr,
		}).Error(),
	})
	return result, nil
}

// locateBackup picks the backup header location: the primary's backup-LBA
// field when that field looks sane, otherwise the last LBA of the disk.
func (r *Recovery) locateBackup(primary *HeaderResult) uint64 {
	var lastLBA uint64
	if size := r.parser.source.Size(); size >= uint64(r.sectorSize) {
		lastLBA = size/uint64(r.sectorSize) - 1
	}

	candidate := primary.Header.BackupLBA
	if candidate > types.GptHeaderLBA && candidate <= lastLBA {
		return candidate
	}
	return lastLBA
}
