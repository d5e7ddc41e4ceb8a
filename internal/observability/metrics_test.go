package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.RecordPartition(StatusOK, 2*time.Second)
	m.RecordPartition(StatusOK, time.Second)
	m.RecordPartition(StatusFailed, time.Second)
	m.RecordFinding("sequence_violation", true)
	m.RecordFinding("valuation_anomaly", false)
	m.RecordRows("balances", 7)
	m.RecordWalletExclusions(map[string]int{"sentinel": 2, "denylist": 1})
	m.RecordCacheLookup(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PartitionsTotal.WithLabelValues(StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PartitionsTotal.WithLabelValues(StatusFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PartitionErrors.WithLabelValues("sequence_violation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Warnings.WithLabelValues("valuation_anomaly")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.RowsWritten.WithLabelValues("balances")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.WalletsExcluded.WithLabelValues("sentinel")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
}

func TestMetrics_RecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	finished := time.Unix(1700000000, 0)
	m.RecordRun(false, time.Minute, finished)
	m.RecordRun(true, time.Minute, finished.Add(time.Hour))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(StatusFailed)))
	assert.Equal(t, float64(finished.Unix()), testutil.ToFloat64(m.LastSuccessfulRun))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordPartition(StatusOK, time.Second)
	m.RecordRows("profits", 1)
	m.RecordRun(false, time.Second, time.Now())
}

func TestHandlerFor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)
	m.RecordRows("profits", 3)

	rec := httptest.NewRecorder()
	HandlerFor(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `test_storage_rows_written_total{table="profits"} 3`))
}
