package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpi-dashboard/pkg/models"
)

func TestDeliveryBuckets_Boundaries(t *testing.T) {
	v := build(
		line{"A", "1", 10, models.Int(5), models.Float64(0)},
		line{"B", "1", 10, models.Int(4), models.Float64(7.0)},
		line{"C", "2", 10, models.Int(3), models.Float64(7.0001)},
		line{"D", "2", 10, nil, models.Float64(14)},
		line{"E", "3", 10, models.Int(2), models.Float64(21)},
		line{"F", "3", 10, models.Int(1), models.Float64(21.5)},
		line{"G", "4", 10, models.Int(5), nil},
	)

	b := DeliveryBuckets(v)
	require.Len(t, b, 4)

	assert.Equal(t, "<=7", b[0].Label)
	assert.Equal(t, 2, b[0].Records)
	assert.Equal(t, 2, b[0].Orders)
	assert.InDelta(t, 4.5, b[0].AvgRating, eps)

	assert.Equal(t, 2, b[1].Records)
	assert.Equal(t, 1, b[1].RatedRecords)
	assert.InDelta(t, 3, b[1].AvgRating, eps)

	assert.Equal(t, 1, b[2].Records)
	assert.InDelta(t, 2, b[2].AvgRating, eps)

	assert.Equal(t, 1, b[3].Records)
	assert.True(t, math.IsInf(b[3].Upper, 1))

	total := 0
	for _, x := range b {
		total += x.Records
	}
	assert.Equal(t, 6, total, "undelivered line is excluded")
}

func TestDeliveryBuckets_Empty(t *testing.T) {
	b := DeliveryBuckets(build())
	require.Len(t, b, 4)
	for _, x := range b {
		assert.Zero(t, x.Records)
		assert.Zero(t, x.AvgRating)
	}
}

func TestDeliveryBuckets_DistinctOrders(t *testing.T) {
	v := build(
		line{"A", "1", 10, models.Int(5), models.Float64(3)},
		line{"A", "1", 20, models.Int(3), models.Float64(3)},
	)
	b := DeliveryBuckets(v)
	assert.Equal(t, 2, b[0].Records)
	assert.Equal(t, 1, b[0].Orders)
	assert.InDelta(t, 4, b[0].AvgRating, eps)
}
