package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global output flags only
	verbose      bool
	quiet        bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "go-partition",
	Short: "Forensic partition layout recovery for raw disk images",
	Long: `go-partition is a read-only command-line tool that reconstructs the
partition layout of a raw disk image for forensic examination.

It decodes legacy MBR partition tables and their chained Extended Boot
Records, and GPT headers with CRC32 validation and automatic fallback to
the backup GPT header when the primary is corrupted. Malformed or
adversarial images degrade into diagnostics instead of failures.

Commands:
  inspect    Recover and display the partition layout of an image`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Only global output control flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json)")
}
