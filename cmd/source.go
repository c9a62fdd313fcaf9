package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"kpi-dashboard/pkg/config"
	"kpi-dashboard/pkg/database"
	"kpi-dashboard/pkg/ingest"
	"kpi-dashboard/pkg/models"
	"kpi-dashboard/pkg/observability"
	"kpi-dashboard/pkg/store"
)

// loadStore charge les ventes depuis la source configurée et construit le magasin immuable.
func loadStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*store.Store, error) {
	var (
		records []models.Record
		stats   models.LoadStats
		err     error
	)

	switch cfg.Source.Kind() {
	case config.SourceCSV:
		records, stats, err = loadCSV(cfg.Source.CSV, log)
	case config.SourceMySQL:
		records, stats, err = loadMySQL(ctx, cfg.Source, log)
	default:
		records = ingest.Sample(cfg.Source.SampleSize, cfg.Source.SampleSeed)
		stats = models.LoadStats{Read: len(records), Accepted: len(records)}
	}
	if err != nil {
		return nil, err
	}

	observability.RecordsLoaded.Set(float64(len(records)))
	observability.RecordsRejected.Set(float64(stats.Rejected))
	log.WithFields(logrus.Fields{
		"source":   cfg.Source.Kind(),
		"read":     stats.Read,
		"accepted": stats.Accepted,
		"rejected": stats.Rejected,
	}).Info("Records loaded")

	return store.New(records), nil
}

func loadCSV(path string, log logrus.FieldLogger) ([]models.Record, models.LoadStats, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided data file path
	if err != nil {
		return nil, models.LoadStats{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ingest.ReadCSV(f, log)
}

func loadMySQL(ctx context.Context, src config.SourceConfig, log logrus.FieldLogger) ([]models.Record, models.LoadStats, error) {
	db, _, err := database.Open(src.DSN)
	if err != nil {
		return nil, models.LoadStats{}, fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, models.LoadStats{}, fmt.Errorf("ping db: %w", err)
	}
	log.WithField("table", src.Table).Info("Connected to database")

	return database.LoadRecords(ctx, db, src.Table, log, src.Progress)
}
