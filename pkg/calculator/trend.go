package calculator

import (
	"gonum.org/v1/gonum/stat"

	"kpi-dashboard/pkg/models"
	"kpi-dashboard/pkg/store"
)

// FitLine ajuste y = slope*x + intercept par moindres carrés, avec x = 0..n-1.
// Un seul point donne une droite horizontale; aucun point donne (0, 0).
func FitLine(ys []float64) (slope, intercept float64) {
	switch len(ys) {
	case 0:
		return 0, 0
	case 1:
		return 0, ys[0]
	}

	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i)
	}
	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	return slope, intercept
}

// LinearTrend renvoie la valeur ajustée à chaque période, pour une surcouche visuelle.
func LinearTrend(points []models.SeriesPoint) []models.SeriesPoint {
	ys := make([]float64, len(points))
	for i, p := range points {
		ys[i] = p.Value
	}
	slope, intercept := FitLine(ys)

	out := make([]models.SeriesPoint, len(points))
	for i, p := range points {
		out[i] = models.SeriesPoint{Period: p.Period, Value: slope*float64(i) + intercept}
	}
	return out
}

// MonthlySeries agrège la vue par mois ("YYYY-MM"), triée chronologiquement.
func MonthlySeries(v store.View, agg Aggregate) ([]models.SeriesPoint, error) {
	rows, err := GroupBy(v, DimYearMonth, agg)
	if err != nil {
		return nil, err
	}
	rows = SortByKey(rows)
	out := make([]models.SeriesPoint, len(rows))
	for i, r := range rows {
		out[i] = models.SeriesPoint{Period: r.Key, Value: r.Value()}
	}
	return out, nil
}
