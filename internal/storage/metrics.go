package storage

import (
	"context"
	"sync/atomic"
	"time"
)

type StoreMetrics struct {
	Loads     int64 `json:"loads"`
	Misses    int64 `json:"misses"`
	Saves     int64 `json:"saves"`
	Errors    int64 `json:"errors"`
	BytesIn   int64 `json:"bytes_loaded"`
	BytesOut  int64 `json:"bytes_saved"`
	StartTime int64 `json:"start_time"`
}

func NewStoreMetrics() *StoreMetrics {
	return &StoreMetrics{
		StartTime: time.Now().Unix(),
	}
}

func (m *StoreMetrics) recordLoad(n int, found bool) {
	atomic.AddInt64(&m.Loads, 1)
	atomic.AddInt64(&m.BytesIn, int64(n))
	if !found {
		atomic.AddInt64(&m.Misses, 1)
	}
}

func (m *StoreMetrics) recordSave(n int) {
	atomic.AddInt64(&m.Saves, 1)
	atomic.AddInt64(&m.BytesOut, int64(n))
}

func (m *StoreMetrics) recordError() {
	atomic.AddInt64(&m.Errors, 1)
}

func (m *StoreMetrics) Snapshot() StoreMetrics {
	return StoreMetrics{
		Loads:     atomic.LoadInt64(&m.Loads),
		Misses:    atomic.LoadInt64(&m.Misses),
		Saves:     atomic.LoadInt64(&m.Saves),
		Errors:    atomic.LoadInt64(&m.Errors),
		BytesIn:   atomic.LoadInt64(&m.BytesIn),
		BytesOut:  atomic.LoadInt64(&m.BytesOut),
		StartTime: atomic.LoadInt64(&m.StartTime),
	}
}

// ErrorRate is the share of failed calls, in percent.
func (m *StoreMetrics) ErrorRate() float64 {
	calls := atomic.LoadInt64(&m.Loads) + atomic.LoadInt64(&m.Saves) + atomic.LoadInt64(&m.Errors)
	if calls == 0 {
		return 0.0
	}
	return float64(atomic.LoadInt64(&m.Errors)) / float64(calls) * 100.0
}

// InstrumentedStore counts calls, misses, failures and bytes moved through
// the wrapped store.
type InstrumentedStore struct {
	inner   Store
	metrics *StoreMetrics
}

func NewInstrumentedStore(inner Store) *InstrumentedStore {
	return &InstrumentedStore{inner: inner, metrics: NewStoreMetrics()}
}

func (s *InstrumentedStore) Load(ctx context.Context) ([]byte, bool, error) {
	data, found, err := s.inner.Load(ctx)
	if err != nil {
		s.metrics.recordError()
		return nil, false, err
	}
	s.metrics.recordLoad(len(data), found)
	return data, found, nil
}

func (s *InstrumentedStore) Save(ctx context.Context, data []byte) error {
	if err := s.inner.Save(ctx, data); err != nil {
		s.metrics.recordError()
		return err
	}
	s.metrics.recordSave(len(data))
	return nil
}

func (s *InstrumentedStore) Health(ctx context.Context) error {
	if hc, ok := s.inner.(HealthChecker); ok {
		return hc.Health(ctx)
	}
	return nil
}

func (s *InstrumentedStore) Metrics() *StoreMetrics {
	return s.metrics
}

// Stats merges the counters with the wrapped store's own stats, if any.
func (s *InstrumentedStore) Stats() map[string]interface{} {
	snap := s.metrics.Snapshot()
	stats := map[string]interface{}{
		"loads":        snap.Loads,
		"misses":       snap.Misses,
		"saves":        snap.Saves,
		"errors":       snap.Errors,
		"bytes_loaded": snap.BytesIn,
		"bytes_saved":  snap.BytesOut,
		"error_rate":   s.metrics.ErrorRate(),
	}

	switch inner := s.inner.(type) {
	case *GuardedStore:
		stats["breaker"] = inner.Breaker().Stats()
		if sp, ok := inner.inner.(StatsProvider); ok {
			stats["backend"] = sp.Stats()
		}
	case StatsProvider:
		stats["backend"] = inner.Stats()
	}
	return stats
}

func (s *InstrumentedStore) Close() error {
	return s.inner.Close()
}

type StatsProvider interface {
	Stats() map[string]interface{}
}
