package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordCacheLookup("collection", true)
	m.RecordCacheLookup("collection", false)
	m.RecordCacheLookup("collection", true)
	m.RecordEviction("stats", 1)
	m.RecordEviction("stats", 0)
	m.RecordRequest("/api/tasks", "GET", 200, 15*time.Millisecond)
	m.RecordError("/api/tasks/:id", "GET", "NOT_FOUND")

	snap := m.Snapshot()
	assert.EqualValues(t, 2, snap.CacheHits["collection"])
	assert.EqualValues(t, 1, snap.CacheMisses["collection"])
	assert.EqualValues(t, 1, snap.Evictions["stats"])
	assert.EqualValues(t, 1, snap.Requests["/api/tasks|GET|200"])
	assert.EqualValues(t, 15, snap.RequestMS["/api/tasks|GET|200"])
	assert.EqualValues(t, 1, snap.Errors["/api/tasks/:id|GET|NOT_FOUND"])

	// snapshot is detached from live counters
	snap.CacheHits["collection"] = 100
	assert.EqualValues(t, 2, m.Snapshot().CacheHits["collection"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordCacheLookup("entity", true)
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		_ = m.Snapshot()
	})
}
