package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordEntry(t *testing.T) {
	before := testutil.ToFloat64(EntriesTotal)
	RecordEntry()
	RecordEntry()
	assert.Equal(t, before+2, testutil.ToFloat64(EntriesTotal))
}

func TestRecordCacheResult(t *testing.T) {
	before := testutil.ToFloat64(CacheRequestsTotal.WithLabelValues("hit"))
	RecordCacheResult("hit")
	assert.Equal(t, before+1, testutil.ToFloat64(CacheRequestsTotal.WithLabelValues("hit")))
}

func TestHealthStatus(t *testing.T) {
	SetHealthy()
	assert.Equal(t, 1.0, testutil.ToFloat64(HealthStatus))
	SetUnhealthy()
	assert.Equal(t, 0.0, testutil.ToFloat64(HealthStatus))
}

func TestRecordStageLatency(t *testing.T) {
	RecordStageLatency("normalize", 0.002)
	assert.Equal(t, 1, testutil.CollectAndCount(StageLatencySeconds, "enhance_stage_latency_seconds"))
}
