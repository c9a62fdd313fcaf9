package models

import (
	"errors"
	"fmt"
)

// ErrUnknownMetric est renvoyée pour un nom de KPI absent du référentiel ou de l'instantané.
var ErrUnknownMetric = errors.New("unknown metric")

// Noms des métriques de l'instantané.
const (
	MetricTotalRecords          = "total_records"
	MetricTotalOrders           = "total_orders"
	MetricGMV                   = "gmv"
	MetricAOV                   = "aov"
	MetricAvgRating             = "avg_rating"
	MetricAvgDeliveryDays       = "avg_delivery_days"
	MetricFastDeliveryPct       = "fast_delivery_pct"
	MetricSatisfiedCustomersPct = "satisfied_customers_pct"
	MetricTotalCustomers        = "total_customers"
	MetricRecurrentCustomersPct = "recurrent_customers_pct"
)

// MetricNames liste les métriques dans l'ordre d'affichage.
var MetricNames = []string{
	MetricTotalOrders,
	MetricGMV,
	MetricAOV,
	MetricAvgRating,
	MetricAvgDeliveryDays,
	MetricFastDeliveryPct,
	MetricSatisfiedCustomersPct,
	MetricTotalCustomers,
	MetricRecurrentCustomersPct,
	MetricTotalRecords,
}

// Snapshot contient les KPI calculés pour une vue. C'est une valeur, recréée à chaque calcul.
type Snapshot struct {
	TotalRecords          int     `json:"total_records"`
	TotalOrders           int     `json:"total_orders"`
	GMV                   float64 `json:"gmv"`
	AOV                   float64 `json:"aov"`
	AvgRating             float64 `json:"avg_rating"`
	AvgDeliveryDays       float64 `json:"avg_delivery_days"`
	FastDeliveryPct       float64 `json:"fast_delivery_pct"`
	SatisfiedCustomersPct float64 `json:"satisfied_customers_pct"`
	TotalCustomers        int     `json:"total_customers"`
	RecurrentCustomersPct float64 `json:"recurrent_customers_pct"`
}

// NamedValue associe un nom de métrique à sa valeur.
type NamedValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Value renvoie la métrique nommée.
func (s Snapshot) Value(name string) (float64, error) {
	switch name {
	case MetricTotalRecords:
		return float64(s.TotalRecords), nil
	case MetricTotalOrders:
		return float64(s.TotalOrders), nil
	case MetricGMV:
		return s.GMV, nil
	case MetricAOV:
		return s.AOV, nil
	case MetricAvgRating:
		return s.AvgRating, nil
	case MetricAvgDeliveryDays:
		return s.AvgDeliveryDays, nil
	case MetricFastDeliveryPct:
		return s.FastDeliveryPct, nil
	case MetricSatisfiedCustomersPct:
		return s.SatisfiedCustomersPct, nil
	case MetricTotalCustomers:
		return float64(s.TotalCustomers), nil
	case MetricRecurrentCustomersPct:
		return s.RecurrentCustomersPct, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
}

// Metrics renvoie toutes les métriques dans l'ordre de MetricNames.
func (s Snapshot) Metrics() []NamedValue {
	out := make([]NamedValue, 0, len(MetricNames))
	for _, name := range MetricNames {
		v, _ := s.Value(name)
		out = append(out, NamedValue{Name: name, Value: v})
	}
	return out
}
