package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshotAggregates(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest("GET", "/api/v1/students", 200, 20*time.Millisecond)
	m.ObserveHTTPRequest("POST", "/api/v1/attendance/mark", 200, 40*time.Millisecond)
	m.ObserveDBQuery("attendance_class_report", 10*time.Millisecond)
	m.ObserveDBQuery("finance_monthly_summary", 30*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordAttendanceMark(true)
	m.RecordAttendanceMark(false)
	m.RecordRewardGrant(5)

	snapshot := m.Snapshot()
	assert.Equal(t, uint64(2), snapshot.RequestsTotal)
	assert.InDelta(t, 30.0, snapshot.AverageRequestDurationMs, 0.01)
	assert.Equal(t, uint64(2), snapshot.DBQueryCount)
	assert.InDelta(t, 20.0, snapshot.AverageDBQueryDurationMs, 0.01)
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.InDelta(t, 0.5, snapshot.CacheHitRatio, 0.001)
	assert.Equal(t, uint64(2), snapshot.AttendanceMarks)
	assert.Equal(t, uint64(1), snapshot.RewardsGranted)
	require.False(t, snapshot.GeneratedAt.IsZero())
}

func TestMetricsNilReceiverIsInert(t *testing.T) {
	var m *MetricsService

	m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	m.ObserveDBQuery("noop", time.Millisecond)
	m.RecordAttendanceMark(true)
	m.RecordRewardGrant(3)

	assert.Equal(t, uint64(0), m.Snapshot().RequestsTotal)
	require.NotNil(t, m.Handler())
}
