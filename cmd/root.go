// Package cmd regroupe les commandes CLI du tableau de bord KPI.
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"kpi-dashboard/pkg/config"
)

//nolint:gochecknoglobals // Global vars needed for cobra CLI
var (
	cfgFile string
	logger  *logrus.Logger
)

//nolint:gochecknoglobals // Cobra commands are typically global
var rootCmd = &cobra.Command{
	Use:   "kpi-dashboard",
	Short: "E-commerce KPI engine: snapshots, breakdowns, trends and targets",
	Long: `kpi-dashboard loads order lines from a CSV file, a MySQL/MariaDB table or
a generated sample, and computes filtered KPI snapshots, breakdowns, delivery
buckets, monthly trends and evaluations against the KPI reference sheets.`,
	SilenceErrors: true,
}

// Execute ajoute les sous-commandes à la racine et lance la CLI.
// Une erreur de commande est journalisée une seule fois, ici.
func Execute() {
	os.Exit(exitCode(rootCmd.Execute(), logger))
}

func exitCode(err error, log logrus.FieldLogger) int {
	if err == nil {
		return 0
	}
	log.WithError(err).Error("Command failed")
	return 1
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file (a missing file falls back to defaults)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	logger = logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// loadConfig lit la configuration et règle le niveau de log; --log-level prime sur le fichier.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging = lvl
	}
	level, err := logrus.ParseLevel(cfg.Logging)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)
	logger.WithFields(logrus.Fields{
		"config":  cfgFile,
		"source":  cfg.Source.Kind(),
		"dataset": cfg.Dataset,
	}).Debug("Configuration loaded")

	return cfg, nil
}
