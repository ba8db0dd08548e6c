package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	requestMillis map[string]int64
	errorCount    map[string]int64
	cacheHits     map[string]int64
	cacheMisses   map[string]int64
	evictions     map[string]int64
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Requests    map[string]int64 `json:"requests"`
	RequestMS   map[string]int64 `json:"request_ms"`
	Errors      map[string]int64 `json:"errors"`
	CacheHits   map[string]int64 `json:"cache_hits"`
	CacheMisses map[string]int64 `json:"cache_misses"`
	Evictions   map[string]int64 `json:"cache_evictions"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		requestMillis: make(map[string]int64),
		errorCount:    make(map[string]int64),
		cacheHits:     make(map[string]int64),
		cacheMisses:   make(map[string]int64),
		evictions:     make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.requestMillis[key] += duration.Milliseconds()
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordCacheLookup counts a hit or miss in the named region.
func (m *Metrics) RecordCacheLookup(region string, hit bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.cacheHits[region]++
	} else {
		m.cacheMisses[region]++
	}
}

// RecordEviction counts explicit evictions per region.
func (m *Metrics) RecordEviction(region string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictions[region] += int64(n)
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Requests:    copyCounts(m.requestCount),
		RequestMS:   copyCounts(m.requestMillis),
		Errors:      copyCounts(m.errorCount),
		CacheHits:   copyCounts(m.cacheHits),
		CacheMisses: copyCounts(m.cacheMisses),
		Evictions:   copyCounts(m.evictions),
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
