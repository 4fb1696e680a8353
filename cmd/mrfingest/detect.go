package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/mrfingest/internal/detect"
	"github.com/gyeh/mrfingest/internal/exitcode"
	"github.com/gyeh/mrfingest/internal/logging"
	"github.com/gyeh/mrfingest/internal/normalize"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Classify an MRF file without writing anything",
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&cfg.FilePath, "file", "", "Path to MRF file (required)")
	_ = detectCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)

	det, err := detect.Sniff(cfg.FilePath)
	if err != nil {
		log.Error().Err(err).Msg("detection failed")
		os.Exit(exitcode.ValidationError)
	}
	sha, err := normalize.FileHash(cfg.FilePath)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash file")
		os.Exit(exitcode.ValidationError)
	}

	fmt.Println("=== mrfingest detect ===")
	fmt.Printf("File:         %s\n", cfg.FilePath)
	fmt.Printf("Format:       %s\n", det.Format)
	fmt.Printf("Version hint: %s\n", det.VersionHint)
	fmt.Printf("Size:         %d bytes\n", det.SizeBytes)
	fmt.Printf("Est. records: ~%d\n", det.EstimatedRecords)
	fmt.Printf("SHA-256:      %s\n", sha)
	return nil
}
