package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"kpi-dashboard/pkg/calculator"
	"kpi-dashboard/pkg/models"
)

// criteriaFromQuery lit year, region et category; absent ou "all" = pas de filtre.
func criteriaFromQuery(r *http.Request) (models.Criteria, error) {
	q := r.URL.Query()
	crit := models.Criteria{Region: q.Get("region"), Category: q.Get("category")}

	if y := strings.TrimSpace(q.Get("year")); y != "" && !strings.EqualFold(y, models.All) {
		year, err := strconv.Atoi(y)
		if err != nil || year <= 0 {
			return models.Criteria{}, fmt.Errorf("%w: year %q", ErrInvalidParam, y)
		}
		crit.Year = year
	}
	return crit.Normalize(), nil
}

// parseAggregates lit les paramètres agg répétés, au format "op:field" ou "count".
func parseAggregates(r *http.Request, fallback ...calculator.Aggregate) ([]calculator.Aggregate, error) {
	raw := r.URL.Query()["agg"]
	if len(raw) == 0 {
		return fallback, nil
	}
	out := make([]calculator.Aggregate, 0, len(raw))
	for _, s := range raw {
		op, field, _ := strings.Cut(s, ":")
		a, err := calculator.ParseAggregate(op, field)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidParam, name, s)
	}
	return n, nil
}
