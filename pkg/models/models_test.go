package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() Record {
	return Record{
		OrderID:       "o1",
		CustomerID:    "c1",
		PurchaseDate:  time.Date(2017, 3, 14, 10, 0, 0, 0, time.UTC),
		Region:        "SP",
		Category:      "Toys",
		Price:         100,
		ShippingCost:  12.5,
		AmountPaid:    112.5,
		PaymentMethod: PaymentCard,
		Installments:  1,
		DeliveryDays:  Float64(5),
		Rating:        Int(5),
	}
}

func TestRecordValidate_OK(t *testing.T) {
	require.NoError(t, validRecord().Validate())

	r := validRecord()
	r.DeliveryDays = nil
	r.Rating = nil
	require.NoError(t, r.Validate(), "undefined delivery and rating are allowed")
}

func TestRecordValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Record)
		field  string
	}{
		{"negative price", func(r *Record) { r.Price = -1 }, "price"},
		{"negative amount", func(r *Record) { r.AmountPaid = -0.01 }, "amount_paid"},
		{"zero installments", func(r *Record) { r.Installments = 0 }, "installments"},
		{"rating too high", func(r *Record) { r.Rating = Int(6) }, "rating"},
		{"rating zero", func(r *Record) { r.Rating = Int(0) }, "rating"},
		{"negative delivery", func(r *Record) { r.DeliveryDays = Float64(-2) }, "delivery_days"},
		{"infinite price", func(r *Record) { r.Price = math.Inf(1) }, "price(finite)"},
		{"nan shipping", func(r *Record) { r.ShippingCost = math.NaN() }, "shipping_cost(finite)"},
		{"infinite amount", func(r *Record) { r.AmountPaid = math.Inf(1) }, "amount_paid(finite)"},
		{"infinite delivery", func(r *Record) { r.DeliveryDays = Float64(math.Inf(1)) }, "delivery_days(finite)"},
		{"unknown payment", func(r *Record) { r.PaymentMethod = "cash" }, "payment_method"},
		{"missing order", func(r *Record) { r.OrderID = "" }, "order_id"},
		{"missing date", func(r *Record) { r.PurchaseDate = time.Time{} }, "purchase_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)
			err := r.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRecord))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestParsePaymentMethod(t *testing.T) {
	cases := map[string]PaymentMethod{
		"Credit Card": PaymentCard,
		"card":        PaymentCard,
		"Boleto":      PaymentBankSlip,
		"bank-slip":   PaymentBankSlip,
		"Voucher":     PaymentVoucher,
		"Debit Card":  PaymentDebit,
	}
	for in, want := range cases {
		got, err := ParsePaymentMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePaymentMethod("bitcoin")
	assert.Error(t, err)
}

func TestRecordDerivedDateParts(t *testing.T) {
	r := validRecord()
	assert.Equal(t, 2017, r.Year())
	assert.Equal(t, 3, r.Month())
	assert.Equal(t, "2017-03", r.YearMonth())
	assert.Equal(t, "Tuesday", r.Weekday())
}

func TestCriteriaMatches(t *testing.T) {
	r := validRecord()

	assert.True(t, Criteria{}.Matches(r))
	assert.True(t, Criteria{Region: "all", Category: "ALL"}.Matches(r))
	assert.True(t, Criteria{Year: 2017, Region: "SP", Category: "Toys"}.Matches(r))
	assert.False(t, Criteria{Year: 2018}.Matches(r))
	assert.False(t, Criteria{Region: "RJ"}.Matches(r))
	assert.False(t, Criteria{Category: "Auto"}.Matches(r))
}

func TestCriteriaKey(t *testing.T) {
	assert.Equal(t, "year=all;region=all;category=all", Criteria{}.Key())
	assert.Equal(t, Criteria{}.Key(), Criteria{Region: "All", Category: " all "}.Key())
	assert.Equal(t, "year=2018;region=SP;category=all", Criteria{Year: 2018, Region: "SP"}.Key())
	assert.NotEqual(t, Criteria{Region: "SP"}.Key(), Criteria{Category: "SP"}.Key())
	assert.True(t, Criteria{Region: "all"}.IsZero())
}

func TestSnapshotValue(t *testing.T) {
	s := Snapshot{TotalOrders: 2, GMV: 350, RecurrentCustomersPct: 50}

	v, err := s.Value(MetricGMV)
	require.NoError(t, err)
	assert.Equal(t, 350.0, v)

	v, err = s.Value(MetricTotalOrders)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	_, err = s.Value("nps")
	assert.ErrorIs(t, err, ErrUnknownMetric)

	metrics := s.Metrics()
	require.Len(t, metrics, len(MetricNames))
	assert.Equal(t, MetricTotalOrders, metrics[0].Name)
}

func TestDeliveryBucket_MarshalJSON(t *testing.T) {
	data, err := json.Marshal([]DeliveryBucket{
		{Label: "15-21", Lower: 14, Upper: 21, Records: 2},
		{Label: ">21", Lower: 21, Upper: math.Inf(1), Records: 1},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"label":"15-21","lower":14,"upper":21,"records":2,"rated_records":0,"avg_rating":0,"orders":0},
		{"label":">21","lower":21,"upper":null,"records":1,"rated_records":0,"avg_rating":0,"orders":0}
	]`, string(data))
}
