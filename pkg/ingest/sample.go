package ingest

import (
	"fmt"
	"math/rand"
	"time"

	"kpi-dashboard/pkg/models"
)

var (
	sampleCategories = []string{
		"Bed Bath Table", "Health Beauty", "Sports Leisure", "Computers Accessories",
		"Furniture Decor", "Toys", "Watches Gifts", "Telephony", "Auto", "Baby",
	}
	sampleRegions       = []string{"SP", "RJ", "MG", "RS", "PR", "SC", "BA", "GO", "DF", "PE"}
	sampleRegionWeights = []float64{0.35, 0.15, 0.12, 0.08, 0.08, 0.06, 0.06, 0.04, 0.03, 0.03}
	samplePayments      = []models.PaymentMethod{models.PaymentCard, models.PaymentBankSlip, models.PaymentVoucher, models.PaymentDebit}
	samplePayWeights    = []float64{0.76, 0.19, 0.03, 0.02}
	sampleRatingWeights = []float64{0.05, 0.05, 0.1, 0.23, 0.57}
)

// Sample génère un jeu de démonstration déterministe (même seed, mêmes lignes),
// réparti entre janvier 2017 et août 2018. Environ 3% des lignes n'ont pas de
// livraison et 8% pas d'avis.
func Sample(n int, seed int64) []models.Record {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	span := time.Date(2018, 8, 31, 0, 0, 0, 0, time.UTC).Sub(start)

	customers := n / 2
	if customers < 1 {
		customers = 1
	}

	out := make([]models.Record, 0, n)
	for i := 0; i < n; i++ {
		var offset time.Duration
		if n > 1 {
			offset = time.Duration(float64(span) * float64(i) / float64(n-1))
		}
		price := rng.ExpFloat64()*100 + 10
		shipping := rng.ExpFloat64()*15 + 5
		rec := models.Record{
			OrderID:       fmt.Sprintf("order_%d", i),
			CustomerID:    fmt.Sprintf("customer_%d", rng.Intn(customers)),
			PurchaseDate:  start.Add(offset),
			Region:        sampleRegions[weighted(rng, sampleRegionWeights)],
			Category:      sampleCategories[rng.Intn(len(sampleCategories))],
			Price:         price,
			ShippingCost:  shipping,
			AmountPaid:    price + shipping,
			PaymentMethod: samplePayments[weighted(rng, samplePayWeights)],
			Installments:  1 + rng.Intn(10),
		}
		if rng.Float64() >= 0.03 {
			rec.DeliveryDays = models.Float64(rng.ExpFloat64()*10 + 2)
		}
		if rng.Float64() >= 0.08 {
			rec.Rating = models.Int(1 + weighted(rng, sampleRatingWeights))
		}
		out = append(out, rec)
	}
	return out
}

func weighted(rng *rand.Rand, weights []float64) int {
	x := rng.Float64()
	for i, w := range weights {
		if x < w {
			return i
		}
		x -= w
	}
	return len(weights) - 1
}
