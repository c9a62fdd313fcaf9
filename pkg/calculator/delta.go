package calculator

import (
	"errors"
	"fmt"

	"kpi-dashboard/pkg/models"
	"kpi-dashboard/pkg/reference"
)

var (
	ErrNoTarget    = errors.New("metric has no numeric target")
	ErrNotComputed = errors.New("metric is not computed from sales data")
)

// Reference est la consultation des fiches KPI dont dépend l'évaluation.
type Reference interface {
	Lookup(name string) (reference.Entry, error)
}

// PercentDelta renvoie (current - reference) / reference × 100, et 0 si reference == 0.
func PercentDelta(current, ref float64) float64 {
	if ref == 0 {
		return 0
	}
	return (current - ref) / ref * 100
}

// Evaluate classe current par rapport à ref selon le sens de la métrique.
// Une direction vide vaut HigherIsBetter.
func Evaluate(metric string, current, ref float64, dir models.Direction) models.Evaluation {
	if dir == "" {
		dir = models.HigherIsBetter
	}
	e := models.Evaluation{
		Metric:    metric,
		Current:   current,
		Reference: ref,
		DeltaPct:  PercentDelta(current, ref),
		Direction: dir,
		Outcome:   models.Unchanged,
	}
	switch diff := current - ref; {
	case diff > 0 && dir == models.HigherIsBetter, diff < 0 && dir == models.LowerIsBetter:
		e.Outcome = models.Improvement
	case diff != 0:
		e.Outcome = models.Regression
	}
	return e
}

// EvaluateTarget compare la métrique de l'instantané à sa cible du référentiel.
func EvaluateTarget(ref Reference, s models.Snapshot, metric string) (models.Evaluation, error) {
	entry, err := ref.Lookup(metric)
	if err != nil {
		return models.Evaluation{}, err
	}
	if !entry.Computed {
		return models.Evaluation{}, fmt.Errorf("%s: %w", metric, ErrNotComputed)
	}
	if entry.Target == nil {
		return models.Evaluation{}, fmt.Errorf("%s: %w", metric, ErrNoTarget)
	}
	current, err := s.Value(metric)
	if err != nil {
		return models.Evaluation{}, err
	}
	return Evaluate(metric, current, *entry.Target, entry.Direction), nil
}

// MeetsTarget indique si l'évaluation atteint sa référence (égalité incluse).
func MeetsTarget(e models.Evaluation) bool {
	if e.Direction == models.LowerIsBetter {
		return e.Current <= e.Reference
	}
	return e.Current >= e.Reference
}

// CompareSnapshots évalue chaque métrique connue du référentiel entre deux
// instantanés (période courante contre période précédente).
func CompareSnapshots(ref Reference, current, previous models.Snapshot) []models.Evaluation {
	out := make([]models.Evaluation, 0, len(models.MetricNames))
	for _, name := range models.MetricNames {
		entry, err := ref.Lookup(name)
		if err != nil {
			continue
		}
		cur, _ := current.Value(name)
		prev, _ := previous.Value(name)
		out = append(out, Evaluate(name, cur, prev, entry.Direction))
	}
	return out
}

// TargetReport évalue toutes les métriques calculées qui ont une cible.
func TargetReport(ref Reference, s models.Snapshot) []models.Evaluation {
	out := make([]models.Evaluation, 0, len(models.MetricNames))
	for _, name := range models.MetricNames {
		e, err := EvaluateTarget(ref, s, name)
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	return out
}
