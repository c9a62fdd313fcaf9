package calculator

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"kpi-dashboard/pkg/models"
	"kpi-dashboard/pkg/store"
)

var (
	ErrUnknownDimension = errors.New("unknown dimension")
	ErrInvalidAggregate = errors.New("invalid aggregate")
)

// Dimension est un attribut catégoriel de regroupement.
type Dimension string

const (
	DimRegion        Dimension = "region"
	DimCategory      Dimension = "category"
	DimWeekday       Dimension = "weekday"
	DimPaymentMethod Dimension = "payment_method"
	DimYearMonth     Dimension = "year_month"
	DimYear          Dimension = "year"
	DimRating        Dimension = "rating"
)

// ParseDimension valide un nom de dimension reçu de l'extérieur.
func ParseDimension(s string) (Dimension, error) {
	switch d := Dimension(s); d {
	case DimRegion, DimCategory, DimWeekday, DimPaymentMethod, DimYearMonth, DimYear, DimRating:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDimension, s)
}

// key renvoie la clé de groupe; false exclut la ligne (note absente pour DimRating).
func (d Dimension) key(r models.Record) (string, bool) {
	switch d {
	case DimRegion:
		return r.Region, true
	case DimCategory:
		return r.Category, true
	case DimWeekday:
		return r.Weekday(), true
	case DimPaymentMethod:
		return string(r.PaymentMethod), true
	case DimYearMonth:
		return r.YearMonth(), true
	case DimYear:
		return strconv.Itoa(r.Year()), true
	case DimRating:
		if r.Rating == nil {
			return "", false
		}
		return strconv.Itoa(*r.Rating), true
	}
	return "", false
}

// Measure est un champ numérique agrégeable.
type Measure string

const (
	MeasurePrice        Measure = "price"
	MeasureShippingCost Measure = "shipping_cost"
	MeasureAmountPaid   Measure = "amount_paid"
	MeasureInstallments Measure = "installments"
	MeasureDeliveryDays Measure = "delivery_days"
	MeasureRating       Measure = "rating"
)

func (m Measure) value(r models.Record) (float64, bool) {
	switch m {
	case MeasurePrice:
		return r.Price, true
	case MeasureShippingCost:
		return r.ShippingCost, true
	case MeasureAmountPaid:
		return r.AmountPaid, true
	case MeasureInstallments:
		return float64(r.Installments), true
	case MeasureDeliveryDays:
		if r.DeliveryDays == nil {
			return 0, false
		}
		return *r.DeliveryDays, true
	case MeasureRating:
		if r.Rating == nil {
			return 0, false
		}
		return float64(*r.Rating), true
	}
	return 0, false
}

func (m Measure) valid() bool {
	switch m {
	case MeasurePrice, MeasureShippingCost, MeasureAmountPaid, MeasureInstallments, MeasureDeliveryDays, MeasureRating:
		return true
	}
	return false
}

// IDField est un identifiant pour les comptes distincts.
type IDField string

const (
	IDOrder    IDField = "order_id"
	IDCustomer IDField = "customer_id"
)

func (f IDField) value(r models.Record) string {
	if f == IDCustomer {
		return r.CustomerID
	}
	return r.OrderID
}

// AggOp est l'opération d'agrégation.
type AggOp string

const (
	OpSum      AggOp = "sum"
	OpMean     AggOp = "mean"
	OpCount    AggOp = "count"
	OpDistinct AggOp = "distinct"
)

// Aggregate décrit un agrégat. Count sans Measure compte les lignes; avec Measure,
// seulement celles où la mesure est définie. Distinct utilise ID.
type Aggregate struct {
	Op      AggOp   `json:"op"`
	Measure Measure `json:"measure,omitempty"`
	ID      IDField `json:"id,omitempty"`
}

func Sum(m Measure) Aggregate { return Aggregate{Op: OpSum, Measure: m} }
func Mean(m Measure) Aggregate { return Aggregate{Op: OpMean, Measure: m} }
func Count(m Measure) Aggregate { return Aggregate{Op: OpCount, Measure: m} }
func CountRecords() Aggregate { return Aggregate{Op: OpCount} }
func Distinct(id IDField) Aggregate { return Aggregate{Op: OpDistinct, ID: id} }

// ParseAggregate construit un agrégat à partir d'une opération et d'un champ
// (mesure, ou identifiant pour distinct).
func ParseAggregate(op, field string) (Aggregate, error) {
	var a Aggregate
	switch AggOp(op) {
	case OpDistinct:
		a = Distinct(IDField(field))
	case OpSum, OpMean, OpCount:
		a = Aggregate{Op: AggOp(op), Measure: Measure(field)}
	default:
		return Aggregate{}, fmt.Errorf("%w: op %q", ErrInvalidAggregate, op)
	}
	if err := a.validate(); err != nil {
		return Aggregate{}, err
	}
	return a, nil
}

func (a Aggregate) validate() error {
	switch a.Op {
	case OpSum, OpMean:
		if !a.Measure.valid() {
			return fmt.Errorf("%w: measure %q", ErrInvalidAggregate, a.Measure)
		}
	case OpCount:
		if a.Measure != "" && !a.Measure.valid() {
			return fmt.Errorf("%w: measure %q", ErrInvalidAggregate, a.Measure)
		}
	case OpDistinct:
		if a.ID != IDOrder && a.ID != IDCustomer {
			return fmt.Errorf("%w: id %q", ErrInvalidAggregate, a.ID)
		}
	default:
		return fmt.Errorf("%w: op %q", ErrInvalidAggregate, a.Op)
	}
	return nil
}

type accumulator struct {
	sum      float64
	n        int
	distinct map[string]struct{}
}

func (acc *accumulator) add(a Aggregate, r models.Record) {
	switch a.Op {
	case OpDistinct:
		if acc.distinct == nil {
			acc.distinct = map[string]struct{}{}
		}
		acc.distinct[a.ID.value(r)] = struct{}{}
	case OpCount:
		if a.Measure == "" {
			acc.n++
			return
		}
		if _, ok := a.Measure.value(r); ok {
			acc.n++
		}
	default:
		if v, ok := a.Measure.value(r); ok {
			acc.sum += v
			acc.n++
		}
	}
}

func (acc *accumulator) result(a Aggregate) float64 {
	switch a.Op {
	case OpSum:
		return acc.sum
	case OpMean:
		return ratio(acc.sum, acc.n)
	case OpCount:
		return float64(acc.n)
	case OpDistinct:
		return float64(len(acc.distinct))
	}
	return 0
}

// GroupBy regroupe la vue par dimension et calcule chaque agrégat par groupe.
// Les groupes sont renvoyés dans l'ordre de première apparition; le tri et la
// troncature restent à l'appelant (SortByKey, SortByValue, TopN).
func GroupBy(v store.View, dim Dimension, aggs ...Aggregate) ([]models.GroupRow, error) {
	if _, err := ParseDimension(string(dim)); err != nil {
		return nil, err
	}
	if len(aggs) == 0 {
		return nil, fmt.Errorf("%w: no aggregate", ErrInvalidAggregate)
	}
	for _, a := range aggs {
		if err := a.validate(); err != nil {
			return nil, err
		}
	}

	type group struct {
		key     string
		records int
		accs    []accumulator
	}
	var order []*group
	byKey := map[string]*group{}

	v.Each(func(r models.Record) {
		k, ok := dim.key(r)
		if !ok {
			return
		}
		g, found := byKey[k]
		if !found {
			g = &group{key: k, accs: make([]accumulator, len(aggs))}
			byKey[k] = g
			order = append(order, g)
		}
		g.records++
		for i, a := range aggs {
			g.accs[i].add(a, r)
		}
	})

	rows := make([]models.GroupRow, 0, len(order))
	for _, g := range order {
		values := make([]float64, len(aggs))
		for i, a := range aggs {
			values[i] = g.accs[i].result(a)
		}
		rows = append(rows, models.GroupRow{Key: g.key, Values: values, Records: g.records})
	}
	return rows, nil
}

// SortByKey trie une copie des lignes par clé croissante.
func SortByKey(rows []models.GroupRow) []models.GroupRow {
	out := append([]models.GroupRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// SortByValue trie une copie par premier agrégat décroissant, puis par clé.
func SortByValue(rows []models.GroupRow) []models.GroupRow {
	out := append([]models.GroupRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value() != out[j].Value() {
			return out[i].Value() > out[j].Value()
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// TopN renvoie les n premières lignes par valeur; n <= 0 renvoie tout, trié.
func TopN(rows []models.GroupRow, n int) []models.GroupRow {
	out := SortByValue(rows)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Share renvoie le pourcentage de lignes de la vue dont la dimension vaut key.
func Share(v store.View, dim Dimension, key string) (float64, error) {
	if _, err := ParseDimension(string(dim)); err != nil {
		return 0, err
	}
	match := 0
	v.Each(func(r models.Record) {
		if k, ok := dim.key(r); ok && k == key {
			match++
		}
	})
	return pct(match, v.Len()), nil
}
