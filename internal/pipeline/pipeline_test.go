package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/oil-spill-dashboard/internal/domain"
	"github.com/couchcryptid/oil-spill-dashboard/internal/observability"
	"github.com/couchcryptid/oil-spill-dashboard/internal/pipeline"
)

// --- mocks ---

type mockExtractor struct {
	raw domain.RawTable
	err error
}

func (m *mockExtractor) Extract(_ context.Context) (domain.RawTable, error) {
	return m.raw, m.err
}

type mockLoader struct {
	mu       sync.Mutex
	failures int // number of calls to fail before succeeding
	calls    int
	loaded   [][]domain.Incident
}

func (m *mockLoader) LoadBatch(_ context.Context, incidents []domain.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failures {
		return errors.New("broker unavailable")
	}
	m.loaded = append(m.loaded, incidents)
	return nil
}

// blockingLoader holds every batch until release is closed.
type blockingLoader struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (m *blockingLoader) LoadBatch(_ context.Context, _ []domain.Incident) error {
	m.once.Do(func() { close(m.started) })
	<-m.release
	return nil
}

type mockGeocoder struct{}

func (mockGeocoder) ForwardGeocode(_ context.Context, query string) (domain.GeocodingResult, error) {
	return domain.GeocodingResult{Lat: 35.22, Lon: -75.53, FormattedAddress: query}, nil
}

func (mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.GeocodingResult, error) {
	return domain.GeocodingResult{FormattedAddress: "Cincinnati, Ohio, United States"}, nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

var header = []string{
	"id", "open_date", "name", "location", "lat", "lon", "threat", "tags", "commodity",
	"measure_skim", "measure_shore", "measure_bio", "measure_disperse", "measure_burn",
	"max_ptl_release_gallons", "description",
}

func record(line int, cells map[string]string) domain.RawRecord {
	return domain.RawRecord{Line: line, Cells: cells}
}

// scenarioRaw is three incidents from 2008, 2008 and 2017; the last has no threat.
func scenarioRaw() domain.RawTable {
	return domain.RawTable{
		Source: "memory",
		Header: header,
		Records: []domain.RawRecord{
			record(2, map[string]string{"id": "1", "open_date": "2008-07-23", "threat": "Oil", "lat": "29.9", "lon": "-90.1", "max_ptl_release_gallons": "100"}),
			record(3, map[string]string{"id": "2", "open_date": "2008-09-13", "threat": "Oil", "lat": "29.7", "lon": "-95.1", "max_ptl_release_gallons": ""}),
			record(4, map[string]string{"id": "3", "open_date": "2017-08-29", "threat": "", "lat": "29.8", "lon": "-93.9", "max_ptl_release_gallons": "300"}),
		},
	}
}

func newPipeline(ext pipeline.Extractor, ldr pipeline.BatchLoader, metrics *observability.Metrics, batchSize int) *pipeline.Pipeline {
	return pipeline.New(ext, pipeline.NewPreparer(nil, slog.Default()), ldr, slog.Default(), metrics, batchSize)
}

// --- tests ---

func TestPipeline_Load_HappyPath(t *testing.T) {
	metrics := newTestMetrics()
	p := newPipeline(&mockExtractor{raw: scenarioRaw()}, nil, metrics, 50)

	require.Error(t, p.CheckReadiness(context.Background()))

	tbl, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())

	assert.Equal(t, "Unknown", tbl.Rows[2].Threat)
	assert.Equal(t, 200.0, tbl.Rows[1].MaxPtlReleaseGallons)
	assert.Equal(t, []int{2008, 2008, 2017}, []int{tbl.Rows[0].Year, tbl.Rows[1].Year, tbl.Rows[2].Year})

	require.NoError(t, p.CheckReadiness(context.Background()))
	got, ok := p.Table()
	require.True(t, ok)
	assert.Equal(t, tbl.Len(), got.Len())

	assert.InDelta(t, 3, testutil.ToFloat64(metrics.DatasetRows), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DatasetLoaded), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CellsFilled.WithLabelValues(domain.ColThreat)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CellsFilled.WithLabelValues(domain.ColMaxPtlReleaseGallons)), 0)
}

func TestPipeline_Load_ExtractError(t *testing.T) {
	p := newPipeline(&mockExtractor{err: errors.New("no such file")}, nil, newTestMetrics(), 50)

	_, err := p.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract")
	assert.Error(t, p.CheckReadiness(context.Background()))
	_, ok := p.Table()
	assert.False(t, ok)
}

func TestPipeline_Load_BadDateIsFatal(t *testing.T) {
	raw := scenarioRaw()
	raw.Records[1].Cells["open_date"] = "sometime in 2008"

	p := newPipeline(&mockExtractor{raw: raw}, nil, newTestMetrics(), 50)
	_, err := p.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Load_MissingColumn(t *testing.T) {
	raw := scenarioRaw()
	raw.Header = raw.Header[:5]

	p := newPipeline(&mockExtractor{raw: raw}, nil, newTestMetrics(), 50)
	_, err := p.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrMissingColumn)
}

func TestPipeline_Run_PublishesInBatches(t *testing.T) {
	metrics := newTestMetrics()
	ldr := &mockLoader{}
	p := newPipeline(&mockExtractor{raw: scenarioRaw()}, ldr, metrics, 2)

	require.NoError(t, p.Run(context.Background()))

	require.Len(t, ldr.loaded, 2)
	assert.Len(t, ldr.loaded[0], 2)
	assert.Len(t, ldr.loaded[1], 1)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.IncidentsPublished), 0)
}

func TestPipeline_Publish_RetriesFailedBatch(t *testing.T) {
	metrics := newTestMetrics()
	ldr := &mockLoader{failures: 1}
	p := newPipeline(&mockExtractor{raw: scenarioRaw()}, ldr, metrics, 50)

	tbl, err := p.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, p.Publish(context.Background(), tbl))
	assert.Equal(t, 2, ldr.calls)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PublishErrors), 0)
}

func TestPipeline_Publish_StopsOnCancel(t *testing.T) {
	ldr := &mockLoader{failures: 100}
	p := newPipeline(&mockExtractor{raw: scenarioRaw()}, ldr, newTestMetrics(), 1)

	tbl, err := p.Load(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	assert.Equal(t, 0, p.Publish(ctx, tbl))
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Publish_NoLoader(t *testing.T) {
	p := newPipeline(&mockExtractor{raw: scenarioRaw()}, nil, newTestMetrics(), 50)
	assert.Equal(t, 0, p.Publish(context.Background(), domain.Table{}))
}

func TestPipeline_PublishAsync_DoneAfterInFlightBatch(t *testing.T) {
	ldr := &blockingLoader{started: make(chan struct{}), release: make(chan struct{})}
	p := newPipeline(&mockExtractor{raw: scenarioRaw()}, ldr, newTestMetrics(), 50)

	tbl, err := p.Load(context.Background())
	require.NoError(t, err)

	done := p.PublishAsync(context.Background(), tbl)
	<-ldr.started

	select {
	case <-done:
		t.Fatal("publish reported done while a batch was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(ldr.release)
	select {
	case n, ok := <-done:
		require.True(t, ok)
		assert.Equal(t, 3, n)
	case <-time.After(time.Second):
		t.Fatal("publish did not finish after the batch was released")
	}
	_, ok := <-done
	assert.False(t, ok, "done channel should be closed")
}

func TestPipeline_PublishAsync_NoLoader(t *testing.T) {
	p := newPipeline(&mockExtractor{raw: scenarioRaw()}, nil, newTestMetrics(), 50)
	assert.Equal(t, 0, <-p.PublishAsync(context.Background(), domain.Table{}))
}

func TestPreparer_StageOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"fill_defaults", "impute_release_gallons", "derive_year"},
		pipeline.NewPreparer(nil, slog.Default()).Stages())

	assert.Equal(t,
		[]string{"geocode", "fill_defaults", "impute_release_gallons", "derive_year"},
		pipeline.NewPreparer(mockGeocoder{}, slog.Default()).Stages())
}

func TestPreparer_GeocodesBeforeDefaults(t *testing.T) {
	raw := scenarioRaw()
	raw.Records = append(raw.Records,
		record(5, map[string]string{"open_date": "2019-05-10", "location": "Cape Hatteras, NC", "threat": "Chemical"}),
		record(6, map[string]string{"open_date": "2016-01-05", "lat": "39.1", "lon": "-84.5", "threat": "Chemical"}),
	)

	tbl, err := pipeline.NewPreparer(mockGeocoder{}, slog.Default()).Prepare(context.Background(), raw)
	require.NoError(t, err)

	forward := tbl.Rows[3]
	assert.True(t, forward.Located)
	assert.Equal(t, domain.GeoSourceForward, forward.GeoSource)
	assert.InDelta(t, 35.22, forward.Geo.Lat, 1e-9)

	reverse := tbl.Rows[4]
	assert.Equal(t, domain.GeoSourceReverse, reverse.GeoSource)
	assert.Equal(t, "Cincinnati, Ohio, United States", reverse.Location)
}
