package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpi-dashboard/pkg/models"
)

func rec(order, customer string, year int, region, category string) models.Record {
	return models.Record{
		OrderID:       order,
		CustomerID:    customer,
		PurchaseDate:  time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC),
		Region:        region,
		Category:      category,
		Price:         10,
		AmountPaid:    10,
		PaymentMethod: models.PaymentCard,
		Installments:  1,
	}
}

func fixture() *Store {
	return New([]models.Record{
		rec("o1", "c1", 2017, "SP", "Toys"),
		rec("o2", "c1", 2017, "RJ", "Auto"),
		rec("o3", "c2", 2018, "SP", "Auto"),
		rec("o4", "c3", 2018, "MG", "Toys"),
		rec("o5", "c3", 2018, "SP", "Toys"),
	})
}

func orderIDs(v View) []string {
	var ids []string
	v.Each(func(r models.Record) { ids = append(ids, r.OrderID) })
	return ids
}

func TestFilter_SingleOptions(t *testing.T) {
	s := fixture()

	assert.Equal(t, []string{"o3", "o4", "o5"}, orderIDs(s.All().Filter(models.Criteria{Year: 2018})))
	assert.Equal(t, []string{"o1", "o3", "o5"}, orderIDs(s.All().Filter(models.Criteria{Region: "SP"})))
	assert.Equal(t, []string{"o2", "o3"}, orderIDs(s.All().Filter(models.Criteria{Category: "Auto"})))
	assert.Equal(t, 5, s.All().Filter(models.Criteria{Region: "all", Category: "All"}).Len())
}

func TestFilter_Composable(t *testing.T) {
	s := fixture()
	year := models.Criteria{Year: 2018}
	region := models.Criteria{Region: "SP"}
	category := models.Criteria{Category: "Toys"}

	a := s.All().Filter(year).Filter(region).Filter(category)
	b := s.All().Filter(category).Filter(year).Filter(region)
	c := s.All().Filter(models.Criteria{Year: 2018, Region: "SP", Category: "Toys"})

	assert.Equal(t, []string{"o5"}, orderIDs(a))
	assert.Equal(t, a.Records(), b.Records())
	assert.Equal(t, a.Records(), c.Records())
}

func TestFilter_Idempotent(t *testing.T) {
	s := fixture()
	c := models.Criteria{Region: "SP"}

	once := s.All().Filter(c)
	twice := once.Filter(c)
	assert.Equal(t, once.Records(), twice.Records())
}

func TestFilter_NoMatchIsEmpty(t *testing.T) {
	s := fixture()

	v := s.All().Filter(models.Criteria{Year: 1999})
	assert.Equal(t, 0, v.Len())
	assert.Empty(t, v.Records())

	v = s.All().Filter(models.Criteria{Region: "XX"})
	assert.Equal(t, 0, v.Len())
}

func TestStore_Immutable(t *testing.T) {
	input := []models.Record{rec("o1", "c1", 2017, "SP", "Toys")}
	s := New(input)
	input[0].OrderID = "mutated"

	require.Equal(t, 1, s.Len())
	assert.Equal(t, "o1", s.All().Records()[0].OrderID)

	out := s.All().Records()
	out[0].Region = "RJ"
	assert.Equal(t, "SP", s.All().Records()[0].Region)

	_ = s.All().Filter(models.Criteria{Region: "RJ"})
	assert.Equal(t, 1, s.All().Len())
}

func TestView_DistinctValues(t *testing.T) {
	v := fixture().All()

	assert.Equal(t, []int{2017, 2018}, v.Years())
	assert.Equal(t, []string{"MG", "RJ", "SP"}, v.Regions())
	assert.Equal(t, []string{"Auto", "Toys"}, v.Categories())
}

func TestView_Partition(t *testing.T) {
	st := New([]models.Record{
		rec("o1", "c1", 2017, "SP", "Toys"),
		rec("o2", "c2", 2018, "RJ", "Toys"),
		rec("o3", "c3", 2017, "MG", "Auto"),
	})

	parts := st.All().Partition(func(r models.Record) string { return r.Category })
	require.Len(t, parts, 2)
	assert.Equal(t, 2, parts["Toys"].Len())
	assert.Equal(t, []string{"RJ", "SP"}, parts["Toys"].Regions())

	var orders []string
	parts["Toys"].Each(func(r models.Record) { orders = append(orders, r.OrderID) })
	assert.Equal(t, []string{"o1", "o2"}, orders, "store order is kept")

	assert.Equal(t, 0, parts["Garden"].Len())
	assert.Empty(t, st.All().Filter(models.Criteria{Region: "Atlantis"}).Partition(func(r models.Record) string { return r.Region }))
}
