package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-partition/internal/services"
	"github.com/deploymenttheory/go-partition/internal/types"
)

var (
	// Parse options (inspect command only)
	inspectSectorSize  uint32
	inspectLenient     bool
	inspectMaxEbr      int
	inspectBackupMatch bool
	inspectStrict      bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [image-path]",
	Short: "Recover and display the partition layout of an image",
	Long: `Inspect a raw disk image and reconstruct its partition layout.

Examples:
  # Inspect a raw image
  go-partition inspect disk.img

  # Native-4K image
  go-partition inspect disk.img --sector-size 4096

  # Machine-readable output
  go-partition inspect disk.img --output json

  # Accept a boot sector without the 0x55AA signature
  go-partition inspect disk.img --lenient-mbr`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().Uint32Var(&inspectSectorSize, "sector-size", 512, "logical sector size in bytes (512 or 4096)")
	inspectCmd.Flags().BoolVar(&inspectLenient, "lenient-mbr", false, "accept a boot sector without the 0x55AA signature")
	inspectCmd.Flags().IntVar(&inspectMaxEbr, "max-ebr-chain", 128, "cap on EBR chain length (0 disables)")
	inspectCmd.Flags().BoolVar(&inspectBackupMatch, "require-gpt-backup-match", false, "treat backup-GPT fallback as an error")
	inspectCmd.Flags().BoolVar(&inspectStrict, "strict-bounds", false, "report out-of-disk partitions as errors")
}

func runInspect(cmd *cobra.Command, imagePath string) error {
	options, err := services.LoadOptions()
	if err != nil {
		return err
	}

	// Flags given explicitly win over config file and environment.
	if cmd.Flags().Changed("sector-size") {
		options.SectorSize = inspectSectorSize
	}
	if cmd.Flags().Changed("lenient-mbr") {
		options.LenientMbrSignature = inspectLenient
	}
	if cmd.Flags().Changed("max-ebr-chain") {
		options.MaxEbrChainLength = inspectMaxEbr
	}
	if cmd.Flags().Changed("require-gpt-backup-match") {
		options.RequireGptBackupMatch = inspectBackupMatch
	}
	if cmd.Flags().Changed("strict-bounds") {
		options.StrictBounds = inspectStrict
	}
	if err := options.Validate(); err != nil {
		return err
	}

	reader, err := services.NewImageReader(imagePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	service, err := services.NewLayoutService(*options)
	if err != nil {
		return err
	}

	layout, err := service.Resolve(reader)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", imagePath, err)
	}

	switch outputFormat {
	case "json":
		return renderJSON(layout)
	default:
		return renderTable(imagePath, layout)
	}
}

func renderJSON(layout *types.PartitionLayout) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(layout)
}

func renderTable(imagePath string, layout *types.PartitionLayout) error {
	if !quiet {
		fmt.Printf("Image:       %s\n", imagePath)
		fmt.Printf("Disk size:   %s (%d bytes)\n", humanize.IBytes(layout.DiskSize), layout.DiskSize)
		fmt.Printf("Sector size: %d bytes\n", layout.SectorSize)
		fmt.Printf("Scheme:      %s\n", layout.Scheme)
		if layout.DiskGUID != nil {
			fmt.Printf("Disk GUID:   %s\n", layout.DiskGUID)
		}
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tTYPE\tOFFSET\tSIZE\tNAME")
	for _, record := range layout.Records {
		name := record.Name
		if name == "" {
			name = record.Description
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			record.Kind, record.Type, record.Offset, humanize.IBytes(record.Size), name)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, diag := range layout.Diagnostics {
		if diag.Severity == types.SeverityInfo && !verbose {
			continue
		}
		fmt.Fprintf(os.Stderr, "[%s] %s\n", diag.Severity, diag.Message)
	}
	return nil
}
