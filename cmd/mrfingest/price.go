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
	"github.com/gyeh/mrfingest/internal/pricing"
	"github.com/gyeh/mrfingest/internal/store"
)

var (
	priceProcedure string
	priceMetro     string
	priceType      string
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Look up procedure prices through the cache",
	RunE:  runPrice,
}

func init() {
	f := priceCmd.Flags()
	f.StringVar(&priceProcedure, "procedure", "", "Procedure ID (required)")
	f.StringVar(&priceMetro, "metro", "", "Metro area slug (required)")
	f.StringVar(&priceType, "price-type", "cash", "Price type to look up")
	f.StringVar(&cfg.PricingBaseURL, "pricing-url", os.Getenv("PRICING_API_URL"), "Upstream pricing API base URL (or set PRICING_API_URL)")
	f.DurationVar(&cfg.PricingTTL, "pricing-ttl", 0, "Cache TTL (default 24h)")
	_ = priceCmd.MarkFlagRequired("procedure")
	_ = priceCmd.MarkFlagRequired("metro")
	rootCmd.AddCommand(priceCmd)
}

func runPrice(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	if cfg.DSN == "" {
		log.Error().Msg("--dsn or DATABASE_URL is required")
		os.Exit(exitcode.UsageError)
	}
	if cfg.PricingBaseURL == "" {
		log.Error().Msg("--pricing-url or PRICING_API_URL is required")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	svc := pricing.NewService(
		store.New(pool, log),
		pricing.NewClient(cfg.PricingBaseURL, log),
		cfg.PricingTTL, log)

	payload, cached, err := svc.Lookup(ctx, priceProcedure, priceMetro, priceType)
	if err != nil {
		var apiErr *pricing.APIError
		if errors.As(err, &apiErr) {
			log.Error().Int("status", apiErr.StatusCode).Msg("pricing api rejected the lookup")
			os.Exit(exitcode.FetchError)
		}
		log.Error().Err(err).Msg("price lookup failed")
		os.Exit(exitcode.FetchError)
	}
	svc.Wait()

	source := "api"
	if cached {
		source = "cache"
	}
	log.Info().Str("source", source).Int("bytes", len(payload)).Msg("price lookup complete")
	fmt.Println(string(payload))
	return nil
}
