// File: internal/services/options.go
package services

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-partition/internal/types"
)

// Options configures one parse invocation. The value is threaded through
// every stage unchanged; nothing ambient or global, so independent images
// can be parsed concurrently.
type Options struct {
	// LenientMbrSignature accepts a boot sector without the 0x55AA
	// trailer, downgrading the failure to a warning.
	LenientMbrSignature bool `mapstructure:"lenient_mbr_signature"`

	// SectorSize is the logical sector size in bytes. 512 for legacy
	// images, 4096 for native-4K.
	SectorSize uint32 `mapstructure:"sector_size"`

	// MaxEbrChainLength caps the number of EBR sectors followed in one
	// extended partition. Zero disables the cap.
	MaxEbrChainLength int `mapstructure:"max_ebr_chain_length"`

	// RequireGptBackupMatch turns a backup-GPT fallback into an error
	// instead of silently preferring the backup.
	RequireGptBackupMatch bool `mapstructure:"require_gpt_backup_match"`

	// StrictBounds promotes out-of-disk record warnings to errors.
	StrictBounds bool `mapstructure:"strict_bounds"`
}

// DefaultOptions returns the options used when no configuration overrides
// them.
func DefaultOptions() Options {
	return Options{
		LenientMbrSignature:   false,
		SectorSize:            512,
		MaxEbrChainLength:     128,
		RequireGptBackupMatch: false,
		StrictBounds:          false,
	}
}

// Validate checks that the options describe a workable configuration.
func (o Options) Validate() error {
	if o.SectorSize < types.MinSectorSize {
		return fmt.Errorf("sector size %d below minimum %d", o.SectorSize, types.MinSectorSize)
	}
	if o.SectorSize&(o.SectorSize-1) != 0 {
		return fmt.Errorf("sector size %d is not a power of two", o.SectorSize)
	}
	if o.MaxEbrChainLength < 0 {
		return fmt.Errorf("max EBR chain length cannot be negative")
	}
	return nil
}

// LoadOptions loads options using Viper: defaults, then an optional
// partition-config file, then PARTITION_* environment variables.
func LoadOptions() (*Options, error) {
	v := viper.New()
	v.SetConfigName("partition-config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.partition")
	v.AddConfigPath("/etc/partition")

	defaults := DefaultOptions()
	v.SetDefault("lenient_mbr_signature", defaults.LenientMbrSignature)
	v.SetDefault("sector_size", defaults.SectorSize)
	v.SetDefault("max_ebr_chain_length", defaults.MaxEbrChainLength)
	v.SetDefault("require_gpt_backup_match", defaults.RequireGptBackupMatch)
	v.SetDefault("strict_bounds", defaults.StrictBounds)

	v.SetEnvPrefix("PARTITION")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	var options Options
	if err := v.Unmarshal(&options); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := options.Validate(); err != nil {
		return nil, err
	}
	return &options, nil
}
