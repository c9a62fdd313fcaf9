package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpi-dashboard/pkg/models"
)

func TestDefault_CoversComputedMetrics(t *testing.T) {
	c := Default()
	require.NotNil(t, c)
	assert.Same(t, c, Default(), "catalog is loaded once")

	for _, name := range models.MetricNames {
		if name == models.MetricTotalRecords {
			continue
		}
		e, err := c.Lookup(name)
		require.NoError(t, err, name)
		assert.True(t, e.Computed, name)
		assert.NotEmpty(t, e.Label, name)
	}
}

func TestLookup(t *testing.T) {
	c := Default()

	e, err := c.Lookup(models.MetricAvgDeliveryDays)
	require.NoError(t, err)
	assert.Equal(t, models.LowerIsBetter, e.Direction)
	require.NotNil(t, e.Target)
	assert.Equal(t, 7.0, *e.Target)

	e, err = c.Lookup(models.MetricGMV)
	require.NoError(t, err)
	assert.Equal(t, models.HigherIsBetter, e.Direction)
	assert.Nil(t, e.Target)

	e, err = c.Lookup("cac")
	require.NoError(t, err)
	assert.False(t, e.Computed)

	_, err = c.Lookup("churn")
	assert.ErrorIs(t, err, models.ErrUnknownMetric)
}

func TestEntries_Order(t *testing.T) {
	entries := Default().Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, models.MetricGMV, entries[0].Key)
}

func TestPersonaAndProject(t *testing.T) {
	c := Default()

	p, err := c.Persona("coo")
	require.NoError(t, err)
	assert.Equal(t, "COO", p.Role)
	assert.Len(t, c.Personas(), 3)

	s := models.Snapshot{AOV: 120, RecurrentCustomersPct: 3.1, AvgRating: 4.1}
	got, err := c.Project(s, "CMO")
	require.NoError(t, err)
	// conversion_rate et cac ne sont pas calculables: ignorés.
	assert.Equal(t, []models.NamedValue{
		{Name: models.MetricAOV, Value: 120},
		{Name: models.MetricRecurrentCustomersPct, Value: 3.1},
		{Name: models.MetricAvgRating, Value: 4.1},
	}, got)

	_, err = c.Project(s, "CFO")
	assert.ErrorIs(t, err, ErrUnknownPersona)
}

func TestParse_Rejects(t *testing.T) {
	_, err := Parse([]byte("kpis:\n  - key: x\n    direction: sideways\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("kpis:\n  - key: x\n    direction: higher\n  - key: x\n    direction: lower\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("kpis:\n  - key: x\n    direction: higher\npersonas:\n  - role: ceo\n    kpis: [y]\n"))
	assert.ErrorIs(t, err, models.ErrUnknownMetric)

	_, err = Parse([]byte("kpis: [oops"))
	assert.Error(t, err)
}
