package calculator

import (
	"math"

	"kpi-dashboard/pkg/models"
	"kpi-dashboard/pkg/store"
)

// Tranches de délai: [0,7], (7,14], (14,21], (21,∞).
var deliveryBounds = []struct {
	label        string
	lower, upper float64
}{
	{"<=7", 0, 7},
	{"8-14", 7, 14},
	{"15-21", 14, 21},
	{">21", 21, math.Inf(1)},
}

func bucketIndex(days float64) int {
	for i, b := range deliveryBounds {
		if days <= b.upper {
			return i
		}
	}
	return len(deliveryBounds) - 1
}

// DeliveryBuckets répartit les lignes livrées dans les quatre tranches fixes et
// rapporte, par tranche, le nombre de lignes, la note moyenne et les commandes
// distinctes. Les lignes sans délai sont exclues. Les quatre tranches sont
// toujours présentes, dans l'ordre.
func DeliveryBuckets(v store.View) []models.DeliveryBucket {
	type acc struct {
		records, rated int
		ratingSum      float64
		orders         map[string]struct{}
	}
	accs := make([]acc, len(deliveryBounds))
	for i := range accs {
		accs[i].orders = map[string]struct{}{}
	}

	v.Each(func(r models.Record) {
		if r.DeliveryDays == nil {
			return
		}
		a := &accs[bucketIndex(*r.DeliveryDays)]
		a.records++
		a.orders[r.OrderID] = struct{}{}
		if r.Rating != nil {
			a.rated++
			a.ratingSum += float64(*r.Rating)
		}
	})

	out := make([]models.DeliveryBucket, len(deliveryBounds))
	for i, b := range deliveryBounds {
		out[i] = models.DeliveryBucket{
			Label:        b.label,
			Lower:        b.lower,
			Upper:        b.upper,
			Records:      accs[i].records,
			RatedRecords: accs[i].rated,
			AvgRating:    ratio(accs[i].ratingSum, accs[i].rated),
			Orders:       len(accs[i].orders),
		}
	}
	return out
}
