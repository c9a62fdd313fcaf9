package calculator

import (
	"kpi-dashboard/pkg/models"
	"kpi-dashboard/pkg/store"
)

const (
	// FastDeliveryDays est le seuil inclusif d'une livraison rapide.
	FastDeliveryDays = 7.0
	// SatisfiedRating est la note minimale (incluse) d'un client satisfait.
	SatisfiedRating = 4
)

// ComputeSnapshot calcule les KPI d'une vue en un seul passage.
//
// Commandes et clients sont des comptes distincts. AOV est la moyenne des prix
// par ligne. Les pourcentages livraison/avis sont calculés par ligne, sur les
// seules lignes où le champ est défini; la récurrence est calculée par client.
// Tout dénominateur vide donne 0.
func ComputeSnapshot(v store.View) models.Snapshot {
	var (
		gmv                      float64
		ratingSum                float64
		rated, satisfied         int
		deliverySum              float64
		delivered, fastDelivered int
	)
	orders := map[string]struct{}{}
	ordersByCustomer := map[string]map[string]struct{}{}

	v.Each(func(r models.Record) {
		gmv += r.Price
		orders[r.OrderID] = struct{}{}

		co, ok := ordersByCustomer[r.CustomerID]
		if !ok {
			co = map[string]struct{}{}
			ordersByCustomer[r.CustomerID] = co
		}
		co[r.OrderID] = struct{}{}

		if r.Rating != nil {
			rated++
			ratingSum += float64(*r.Rating)
			if *r.Rating >= SatisfiedRating {
				satisfied++
			}
		}
		if r.DeliveryDays != nil {
			delivered++
			deliverySum += *r.DeliveryDays
			if *r.DeliveryDays <= FastDeliveryDays {
				fastDelivered++
			}
		}
	})

	recurrent := 0
	for _, co := range ordersByCustomer {
		if len(co) > 1 {
			recurrent++
		}
	}

	n := v.Len()
	return models.Snapshot{
		TotalRecords:          n,
		TotalOrders:           len(orders),
		GMV:                   gmv,
		AOV:                   ratio(gmv, n),
		AvgRating:             ratio(ratingSum, rated),
		AvgDeliveryDays:       ratio(deliverySum, delivered),
		FastDeliveryPct:       pct(fastDelivered, delivered),
		SatisfiedCustomersPct: pct(satisfied, rated),
		TotalCustomers:        len(ordersByCustomer),
		RecurrentCustomersPct: pct(recurrent, len(ordersByCustomer)),
	}
}

func ratio(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
