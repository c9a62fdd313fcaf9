package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"kpi-dashboard/pkg/cache"
	"kpi-dashboard/pkg/calculator"
	"kpi-dashboard/pkg/config"
	"kpi-dashboard/pkg/dashboard"
	"kpi-dashboard/pkg/models"
	"kpi-dashboard/pkg/reference"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	reportYear       int
	reportRegion     string
	reportCategory   string
	reportStartMonth string
	reportEndMonth   string
	reportBy         string
	reportTop        int
	reportAgainst    string
	reportPersona    string
	reportBuckets    bool
)

//nolint:gochecknoglobals // Cobra commands are typically global
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a KPI snapshot for the selected filters",
	Long: `Print the KPI snapshot of the filtered order lines, one "name ; value" line
per metric. Optional sections add a breakdown, delivery buckets, an evaluation
against targets or the previous year, a persona view and monthly snapshots.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	f := reportCmd.Flags()
	f.IntVar(&reportYear, "year", 0, "purchase year (0 = all)")
	f.StringVar(&reportRegion, "region", models.All, "region / state")
	f.StringVar(&reportCategory, "category", models.All, "product category")
	f.StringVar(&reportStartMonth, "start_month", "", "first month of the monthly section (MMYYYY)")
	f.StringVar(&reportEndMonth, "end_month", "", "last month of the monthly section (MMYYYY)")
	f.StringVar(&reportBy, "by", "", "breakdown dimension (region, category, weekday, payment_method, year_month, year, rating)")
	f.IntVar(&reportTop, "top", 10, "rows kept in the breakdown (0 = all)")
	f.StringVar(&reportAgainst, "against", "", "evaluate against: targets | previous_year")
	f.StringVar(&reportPersona, "persona", "", "stakeholder view: CEO | CMO | COO")
	f.BoolVar(&reportBuckets, "buckets", false, "print delivery time buckets")
}

// buildService charge le magasin et branche le cache Redis s'il est configuré.
// Un cache injoignable est journalisé et ignoré.
func buildService(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*dashboard.Service, func(), error) {
	st, err := loadStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	var snapshotCache dashboard.SnapshotCache
	if cfg.CacheEnabled() {
		sc, err := cache.Dial(ctx, cfg.Redis)
		if err != nil {
			log.WithError(err).Warn("Snapshot cache disabled")
		} else {
			if n, err := sc.Invalidate(ctx, cfg.Dataset); err != nil {
				log.WithError(err).Warn("Failed to invalidate stale snapshots")
			} else if n > 0 {
				log.WithField("removed", n).Debug("Stale snapshots invalidated")
			}
			snapshotCache = sc
			cleanup = func() { _ = sc.Close() }
		}
	}

	return dashboard.NewService(st, cfg.Dataset, reference.Default(), snapshotCache, log), cleanup, nil
}

func runReport(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, cleanup, err := buildService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	crit := models.Criteria{Year: reportYear, Region: reportRegion, Category: reportCategory}.Normalize()
	return writeReport(ctx, cmd.OutOrStdout(), svc, crit)
}

func writeReport(ctx context.Context, w io.Writer, svc *dashboard.Service, crit models.Criteria) error {
	snap, err := svc.Snapshot(ctx, crit)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "# %s\n", crit.Key())
	for _, m := range snap.Metrics() {
		fmt.Fprintf(w, "%s ; %s\n", m.Name, round(m.Value))
	}

	if reportBy != "" {
		dim, err := calculator.ParseDimension(reportBy)
		if err != nil {
			return err
		}
		rows, err := svc.Breakdown(crit, dim, reportTop,
			calculator.Sum(calculator.MeasurePrice),
			calculator.Distinct(calculator.IDOrder),
			calculator.Mean(calculator.MeasureRating))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n# by %s: gmv ; orders ; avg_rating\n", dim)
		for _, r := range rows {
			fmt.Fprintf(w, "%s ; %s ; %s ; %s\n", r.Key, round(r.Values[0]), round(r.Values[1]), round(r.Values[2]))
		}
	}

	if reportBuckets {
		fmt.Fprintln(w, "\n# delivery buckets: records ; orders ; avg_rating")
		for _, b := range svc.DeliveryBuckets(crit) {
			fmt.Fprintf(w, "%s ; %d ; %d ; %s\n", b.Label, b.Records, b.Orders, round(b.AvgRating))
		}
	}

	if reportAgainst != "" {
		var evals []models.Evaluation
		switch strings.ToLower(reportAgainst) {
		case "targets":
			evals, err = svc.Targets(ctx, crit)
		case "previous_year":
			evals, err = svc.CompareToPreviousYear(ctx, crit)
		default:
			err = fmt.Errorf("--against: expected targets or previous_year, got %q", reportAgainst)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n# against %s: current ; reference ; delta_pct ; outcome\n", reportAgainst)
		for _, e := range evals {
			fmt.Fprintf(w, "%s ; %s ; %s ; %s%% ; %s\n", e.Metric, round(e.Current), round(e.Reference), round(e.DeltaPct), e.Outcome)
		}
	}

	if reportPersona != "" {
		view, err := svc.Persona(ctx, crit, reportPersona)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n# %s (%s)\n", view.Persona.Role, view.Persona.Title)
		for _, m := range view.Metrics {
			fmt.Fprintf(w, "%s ; %s\n", m.Name, round(m.Value))
		}
	}

	if reportStartMonth != "" || reportEndMonth != "" {
		res, err := svc.Monthly(crit, reportStartMonth, reportEndMonth)
		if err != nil {
			return err
		}
		// Sortie mensuelle : MM/YYYY ; gmv ; orders=.. ; aov=.. ; customers=..
		fmt.Fprintln(w)
		for _, r := range res {
			fmt.Fprintf(w, "%s ; %s ; orders=%d ; aov=%s ; customers=%d\n",
				r.MonthYear, round(r.Snapshot.GMV), r.Snapshot.TotalOrders, round(r.Snapshot.AOV), r.Snapshot.TotalCustomers)
		}
	}
	return nil
}

func round(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}
