// Package dashboard réunit le magasin, le moteur KPI, le référentiel et le cache
// d'instantanés derrière un service unique utilisé par la CLI et l'API.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"kpi-dashboard/pkg/calculator"
	"kpi-dashboard/pkg/models"
	"kpi-dashboard/pkg/observability"
	"kpi-dashboard/pkg/reference"
	"kpi-dashboard/pkg/store"
)

var ErrYearRequired = errors.New("a year filter is required to compare with the previous year")

// SnapshotCache est le cache optionnel; Get renvoie nil si l'entrée est absente.
type SnapshotCache interface {
	Get(ctx context.Context, dataset string, crit models.Criteria) (*models.Snapshot, error)
	Set(ctx context.Context, dataset string, crit models.Criteria, snap models.Snapshot) error
}

// Service répond aux requêtes KPI sur un magasin immuable. Utilisable en concurrence.
type Service struct {
	store   *store.Store
	dataset string
	catalog *reference.Catalog
	cache   SnapshotCache
	log     logrus.FieldLogger
}

// NewService construit un service. cache peut être nil.
func NewService(st *store.Store, dataset string, catalog *reference.Catalog, cache SnapshotCache, logger logrus.FieldLogger) *Service {
	return &Service{
		store:   st,
		dataset: dataset,
		catalog: catalog,
		cache:   cache,
		log:     logger.WithField("component", "dashboard"),
	}
}

// FilterOptions liste les valeurs disponibles pour chaque filtre.
type FilterOptions struct {
	Years      []int    `json:"years"`
	Regions    []string `json:"regions"`
	Categories []string `json:"categories"`
}

// TrendResult est une série mensuelle et sa tendance linéaire ajustée.
type TrendResult struct {
	Series []models.SeriesPoint `json:"series"`
	Trend  []models.SeriesPoint `json:"trend"`
}

// PersonaView est la projection d'un instantané pour un destinataire.
type PersonaView struct {
	Persona reference.Persona   `json:"persona"`
	Metrics []models.NamedValue `json:"metrics"`
}

func (s *Service) Catalog() *reference.Catalog { return s.catalog }

func (s *Service) Dataset() string { return s.dataset }

func (s *Service) Filters() FilterOptions {
	all := s.store.All()
	return FilterOptions{Years: all.Years(), Regions: all.Regions(), Categories: all.Categories()}
}

func (s *Service) view(crit models.Criteria) store.View {
	return s.store.All().Filter(crit)
}

func observe(kind string, start time.Time) {
	observability.ComputationsTotal.WithLabelValues(kind).Inc()
	observability.ComputationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// Snapshot renvoie l'instantané des critères, via le cache s'il est configuré.
// Une panne du cache est journalisée et l'instantané recalculé.
func (s *Service) Snapshot(ctx context.Context, crit models.Criteria) (models.Snapshot, error) {
	crit = crit.Normalize()
	log := s.log.WithField("criteria", crit.Key())

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, s.dataset, crit)
		switch {
		case err != nil:
			observability.CacheRequestsTotal.WithLabelValues("error").Inc()
			log.WithError(err).Warn("Snapshot cache read failed")
		case cached != nil:
			observability.CacheRequestsTotal.WithLabelValues("hit").Inc()
			return *cached, nil
		default:
			observability.CacheRequestsTotal.WithLabelValues("miss").Inc()
		}
	}

	if err := ctx.Err(); err != nil {
		return models.Snapshot{}, err
	}

	start := time.Now()
	snap := calculator.ComputeSnapshot(s.view(crit))
	observe("snapshot", start)
	log.WithField("orders", snap.TotalOrders).Debug("Snapshot computed")

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.dataset, crit, snap); err != nil {
			log.WithError(err).Warn("Snapshot cache write failed")
		}
	}
	return snap, nil
}

// Breakdown regroupe la vue filtrée; top > 0 trie par premier agrégat et tronque.
func (s *Service) Breakdown(crit models.Criteria, dim calculator.Dimension, top int, aggs ...calculator.Aggregate) ([]models.GroupRow, error) {
	start := time.Now()
	rows, err := calculator.GroupBy(s.view(crit), dim, aggs...)
	if err != nil {
		return nil, err
	}
	observe("breakdown", start)
	if top > 0 {
		rows = calculator.TopN(rows, top)
	}
	return rows, nil
}

// Share renvoie le pourcentage de lignes filtrées dont la dimension vaut key.
func (s *Service) Share(crit models.Criteria, dim calculator.Dimension, key string) (float64, error) {
	return calculator.Share(s.view(crit), dim, key)
}

func (s *Service) DeliveryBuckets(crit models.Criteria) []models.DeliveryBucket {
	start := time.Now()
	defer observe("buckets", start)
	return calculator.DeliveryBuckets(s.view(crit))
}

// Trend renvoie la série mensuelle de agg et sa tendance linéaire.
func (s *Service) Trend(crit models.Criteria, agg calculator.Aggregate) (TrendResult, error) {
	start := time.Now()
	series, err := calculator.MonthlySeries(s.view(crit), agg)
	if err != nil {
		return TrendResult{}, err
	}
	observe("trend", start)
	return TrendResult{Series: series, Trend: calculator.LinearTrend(series)}, nil
}

// Monthly renvoie un instantané par mois entre deux bornes "MMYYYY".
func (s *Service) Monthly(crit models.Criteria, startMonth, endMonth string) ([]models.PeriodResult, error) {
	start := time.Now()
	res, err := calculator.MonthlySnapshots(s.view(crit), startMonth, endMonth)
	if err != nil {
		return nil, err
	}
	observe("monthly", start)
	return res, nil
}

// Compare évalue l'instantané de crit contre celui de ref.
func (s *Service) Compare(ctx context.Context, crit, ref models.Criteria) ([]models.Evaluation, error) {
	cur, err := s.Snapshot(ctx, crit)
	if err != nil {
		return nil, err
	}
	prev, err := s.Snapshot(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer observe("evaluation", time.Now())
	return calculator.CompareSnapshots(s.catalog, cur, prev), nil
}

// CompareToPreviousYear évalue crit contre les mêmes critères un an plus tôt.
func (s *Service) CompareToPreviousYear(ctx context.Context, crit models.Criteria) ([]models.Evaluation, error) {
	switch {
	case crit.Year == 0:
		return nil, ErrYearRequired
	case crit.Year <= 1:
		// l'année 0 signifie "toutes les années" dans Criteria
		return nil, fmt.Errorf("%w: no year before %d", ErrYearRequired, crit.Year)
	}
	ref := crit
	ref.Year--
	return s.Compare(ctx, crit, ref)
}

// Targets évalue chaque métrique calculée qui a une cible numérique.
func (s *Service) Targets(ctx context.Context, crit models.Criteria) ([]models.Evaluation, error) {
	snap, err := s.Snapshot(ctx, crit)
	if err != nil {
		return nil, err
	}
	defer observe("evaluation", time.Now())
	return calculator.TargetReport(s.catalog, snap), nil
}

// Persona projette l'instantané de crit sur les KPI d'un rôle.
func (s *Service) Persona(ctx context.Context, crit models.Criteria, role string) (PersonaView, error) {
	p, err := s.catalog.Persona(role)
	if err != nil {
		return PersonaView{}, err
	}
	snap, err := s.Snapshot(ctx, crit)
	if err != nil {
		return PersonaView{}, err
	}
	metrics, err := s.catalog.Project(snap, p.Role)
	if err != nil {
		return PersonaView{}, err
	}
	return PersonaView{Persona: p, Metrics: metrics}, nil
}
