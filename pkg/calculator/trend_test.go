package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpi-dashboard/pkg/models"
	"kpi-dashboard/pkg/store"
)

func TestFitLine(t *testing.T) {
	slope, intercept := FitLine([]float64{1, 3, 5, 7})
	assert.InDelta(t, 2, slope, eps)
	assert.InDelta(t, 1, intercept, eps)

	slope, intercept = FitLine([]float64{5, 5, 5})
	assert.InDelta(t, 0, slope, eps)
	assert.InDelta(t, 5, intercept, eps)

	slope, intercept = FitLine([]float64{1, 1.5, 4, 5, 6.5})
	assert.InDelta(t, 1.45, slope, eps)
	assert.InDelta(t, 0.7, intercept, eps)

	slope, intercept = FitLine([]float64{4})
	assert.Equal(t, 0.0, slope)
	assert.Equal(t, 4.0, intercept)

	slope, intercept = FitLine(nil)
	assert.Equal(t, 0.0, slope)
	assert.Equal(t, 0.0, intercept)
}

func TestLinearTrend(t *testing.T) {
	points := []models.SeriesPoint{
		{Period: "2017-01", Value: 10},
		{Period: "2017-02", Value: 14},
		{Period: "2017-03", Value: 12},
	}
	got := LinearTrend(points)
	require.Len(t, got, 3)
	assert.Equal(t, "2017-02", got[1].Period)
	// slope = 1, intercept = 11
	assert.InDelta(t, 11, got[0].Value, eps)
	assert.InDelta(t, 12, got[1].Value, eps)
	assert.InDelta(t, 13, got[2].Value, eps)

	assert.Empty(t, LinearTrend(nil))
}

func TestMonthlySeries(t *testing.T) {
	mk := func(y int, m time.Month, price float64) models.Record {
		return models.Record{
			OrderID: "o", CustomerID: "c", Region: "SP", Category: "Toys",
			PurchaseDate:  time.Date(y, m, 10, 0, 0, 0, 0, time.UTC),
			Price:         price,
			PaymentMethod: models.PaymentCard,
			Installments:  1,
		}
	}
	v := store.New([]models.Record{
		mk(2017, time.March, 5),
		mk(2017, time.January, 10),
		mk(2017, time.March, 7),
	}).All()

	got, err := MonthlySeries(v, Sum(MeasurePrice))
	require.NoError(t, err)
	assert.Equal(t, []models.SeriesPoint{
		{Period: "2017-01", Value: 10},
		{Period: "2017-03", Value: 12},
	}, got)
}
