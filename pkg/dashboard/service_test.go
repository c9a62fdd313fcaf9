package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpi-dashboard/pkg/cache"
	"kpi-dashboard/pkg/calculator"
	"kpi-dashboard/pkg/ingest"
	"kpi-dashboard/pkg/models"
	"kpi-dashboard/pkg/reference"
	"kpi-dashboard/pkg/store"
)

type stubCache struct {
	data   map[string]models.Snapshot
	gets   int
	sets   int
	getErr error
}

func newStubCache() *stubCache {
	return &stubCache{data: map[string]models.Snapshot{}}
}

func (c *stubCache) Get(_ context.Context, dataset string, crit models.Criteria) (*models.Snapshot, error) {
	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	s, ok := c.data[dataset+"|"+crit.Key()]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (c *stubCache) Set(_ context.Context, dataset string, crit models.Criteria, snap models.Snapshot) error {
	c.sets++
	c.data[dataset+"|"+crit.Key()] = snap
	return nil
}

func newService(t *testing.T, c SnapshotCache) *Service {
	t.Helper()
	logger, _ := test.NewNullLogger()
	st := store.New(ingest.Sample(2000, 42))
	return NewService(st, "sample", reference.Default(), c, logger)
}

func TestSnapshot_MatchesEngine(t *testing.T) {
	svc := newService(t, nil)
	crit := models.Criteria{Year: 2017, Region: "SP"}

	got, err := svc.Snapshot(context.Background(), crit)
	require.NoError(t, err)

	want := calculator.ComputeSnapshot(svc.store.All().Filter(crit))
	assert.Equal(t, want, got)
	assert.Positive(t, got.TotalOrders)
}

func TestSnapshot_UsesCache(t *testing.T) {
	c := newStubCache()
	svc := newService(t, c)
	ctx := context.Background()

	first, err := svc.Snapshot(ctx, models.Criteria{Year: 2018})
	require.NoError(t, err)
	assert.Equal(t, 1, c.sets)

	// "all" explicite et valeur zéro partagent la même entrée.
	second, err := svc.Snapshot(ctx, models.Criteria{Year: 2018, Region: models.All})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.sets, "second call must be served from cache")
	assert.Equal(t, 2, c.gets)
}

func TestSnapshot_CacheErrorFallsBack(t *testing.T) {
	c := newStubCache()
	c.getErr = errors.New("connection refused")

	logger, hook := test.NewNullLogger()
	svc := NewService(store.New(ingest.Sample(200, 1)), "sample", reference.Default(), c, logger)

	snap, err := svc.Snapshot(context.Background(), models.Criteria{})
	require.NoError(t, err)
	assert.Positive(t, snap.TotalRecords)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestSnapshot_CanceledContext(t *testing.T) {
	svc := newService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Snapshot(ctx, models.Criteria{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshot_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sc := cache.New(client, "kpi", time.Minute)
	svc := newService(t, sc)
	ctx := context.Background()
	crit := models.Criteria{Category: "Toys"}

	want, err := svc.Snapshot(ctx, crit)
	require.NoError(t, err)
	assert.True(t, mr.Exists(sc.Key("sample", crit)))

	got, err := svc.Snapshot(ctx, crit)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFilters(t *testing.T) {
	svc := newService(t, nil)
	opts := svc.Filters()

	assert.Equal(t, []int{2017, 2018}, opts.Years)
	assert.Contains(t, opts.Regions, "SP")
	assert.Len(t, opts.Categories, 10)
}

func TestBreakdown_Top(t *testing.T) {
	svc := newService(t, nil)

	rows, err := svc.Breakdown(models.Criteria{}, calculator.DimRegion, 3, calculator.Sum(calculator.MeasurePrice))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.GreaterOrEqual(t, rows[0].Value(), rows[1].Value())
	assert.GreaterOrEqual(t, rows[1].Value(), rows[2].Value())

	_, err = svc.Breakdown(models.Criteria{}, calculator.Dimension("planet"), 0, calculator.CountRecords())
	assert.ErrorIs(t, err, calculator.ErrUnknownDimension)
}

func TestDeliveryBuckets_CoverDefinedDeliveries(t *testing.T) {
	svc := newService(t, nil)
	crit := models.Criteria{Year: 2018}

	buckets := svc.DeliveryBuckets(crit)
	require.Len(t, buckets, 4)

	total := 0
	for _, b := range buckets {
		total += b.Records
	}
	defined := 0
	svc.store.All().Filter(crit).Each(func(r models.Record) {
		if r.DeliveryDays != nil {
			defined++
		}
	})
	assert.Equal(t, defined, total)
}

func TestTrend(t *testing.T) {
	svc := newService(t, nil)

	res, err := svc.Trend(models.Criteria{}, calculator.Sum(calculator.MeasurePrice))
	require.NoError(t, err)
	assert.Len(t, res.Series, 20) // 2017-01 .. 2018-08
	assert.Len(t, res.Trend, len(res.Series))
	assert.Equal(t, "2017-01", res.Series[0].Period)
}

func TestMonthly(t *testing.T) {
	svc := newService(t, nil)

	res, err := svc.Monthly(models.Criteria{}, "012018", "032018")
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "01/2018", res[0].MonthYear)

	_, err = svc.Monthly(models.Criteria{}, "132018", "032018")
	assert.Error(t, err)
}

func TestCompareToPreviousYear(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	_, err := svc.CompareToPreviousYear(ctx, models.Criteria{})
	assert.ErrorIs(t, err, ErrYearRequired)

	_, err = svc.CompareToPreviousYear(ctx, models.Criteria{Year: 1})
	assert.ErrorIs(t, err, ErrYearRequired)
	_, err = svc.CompareToPreviousYear(ctx, models.Criteria{Year: -3})
	assert.ErrorIs(t, err, ErrYearRequired)

	evals, err := svc.CompareToPreviousYear(ctx, models.Criteria{Year: 2018})
	require.NoError(t, err)
	require.NotEmpty(t, evals)

	cur, _ := svc.Snapshot(ctx, models.Criteria{Year: 2018})
	prev, _ := svc.Snapshot(ctx, models.Criteria{Year: 2017})
	for _, e := range evals {
		if e.Metric == models.MetricGMV {
			assert.Equal(t, cur.GMV, e.Current)
			assert.Equal(t, prev.GMV, e.Reference)
		}
	}
}

func TestTargets(t *testing.T) {
	svc := newService(t, nil)

	evals, err := svc.Targets(context.Background(), models.Criteria{})
	require.NoError(t, err)
	require.NotEmpty(t, evals)
	for _, e := range evals {
		entry, err := svc.Catalog().Lookup(e.Metric)
		require.NoError(t, err)
		require.NotNil(t, entry.Target)
		assert.Equal(t, *entry.Target, e.Reference)
	}
}

func TestPersona(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	view, err := svc.Persona(ctx, models.Criteria{}, "coo")
	require.NoError(t, err)
	assert.Equal(t, "COO", view.Persona.Role)
	require.NotEmpty(t, view.Metrics)
	assert.Equal(t, models.MetricAvgDeliveryDays, view.Metrics[0].Name)

	_, err = svc.Persona(ctx, models.Criteria{}, "intern")
	assert.ErrorIs(t, err, reference.ErrUnknownPersona)
}
