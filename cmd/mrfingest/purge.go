package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/mrfingest/internal/db"
	"github.com/gyeh/mrfingest/internal/exitcode"
	"github.com/gyeh/mrfingest/internal/logging"
	"github.com/gyeh/mrfingest/internal/store"
)

var purgeHospital string

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every stored document for one hospital",
	RunE:  runPurge,
}

func init() {
	purgeCmd.Flags().StringVar(&purgeHospital, "hospital", "", "Hospital name (required)")
	_ = purgeCmd.MarkFlagRequired("hospital")
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	if cfg.DSN == "" {
		log.Error().Msg("--dsn or DATABASE_URL is required")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	st := store.New(pool, log)
	id, err := st.ResolveHospital(ctx, purgeHospital)
	if err != nil {
		if errors.Is(err, store.ErrHospitalNotFound) {
			log.Error().Str("hospital", purgeHospital).Msg("hospital not found")
			os.Exit(exitcode.ValidationError)
		}
		log.Error().Err(err).Msg("hospital lookup failed")
		os.Exit(exitcode.WriteError)
	}

	charges, modifiers, err := st.DeleteHospitalDocuments(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("purge failed")
		os.Exit(exitcode.WriteError)
	}

	fmt.Printf("Purged %q: %d charge documents, %d modifier documents\n",
		purgeHospital, charges, modifiers)
	return nil
}
