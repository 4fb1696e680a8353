package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/mrfingest/internal/db"
	"github.com/gyeh/mrfingest/internal/exitcode"
	"github.com/gyeh/mrfingest/internal/export"
	"github.com/gyeh/mrfingest/internal/logging"
	"github.com/gyeh/mrfingest/internal/model"
	"github.com/gyeh/mrfingest/internal/store"
)

var (
	exportOut      string
	exportHospital string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored charge documents to Parquet",
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportOut, "out", "charges.parquet", "Output Parquet path")
	f.StringVar(&exportHospital, "hospital", "", "Limit to one hospital (default all)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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

	var hospitalID int64
	if exportHospital != "" {
		id, err := st.ResolveHospital(ctx, exportHospital)
		if err != nil {
			if errors.Is(err, store.ErrHospitalNotFound) {
				log.Error().Str("hospital", exportHospital).Msg("hospital not found")
				os.Exit(exitcode.ValidationError)
			}
			log.Error().Err(err).Msg("hospital lookup failed")
			os.Exit(exitcode.WriteError)
		}
		hospitalID = id
	}

	hospitals, err := st.ListHospitals(ctx)
	if err != nil {
		log.Error().Err(err).Msg("hospital listing failed")
		os.Exit(exitcode.WriteError)
	}
	names := make(map[int64]string, len(hospitals))
	for _, h := range hospitals {
		names[h.ID] = h.Name
	}

	w, err := export.Create(exportOut)
	if err != nil {
		log.Error().Err(err).Msg("export file creation failed")
		os.Exit(exitcode.WriteError)
	}

	docs, err := st.ExportCharges(ctx, hospitalID, func(doc model.StoredChargeDocument) error {
		return w.WriteDocument(doc, names[doc.HospitalID])
	})
	if err != nil {
		w.Close()
		log.Error().Err(err).Msg("export failed")
		os.Exit(exitcode.WriteError)
	}
	if err := w.Close(); err != nil {
		log.Error().Err(err).Msg("export failed")
		os.Exit(exitcode.WriteError)
	}

	fmt.Printf("Exported %d documents (%d rows) to %s\n", docs, w.Count(), exportOut)
	return nil
}
