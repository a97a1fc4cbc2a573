package authcore

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricLoginLocked
	MetricRegistrationSuccess
	MetricRegistrationDuplicate
	MetricRegistrationInvalid
	MetricVerificationOTPIssued
	MetricVerificationOTPSuccess
	MetricVerificationOTPFailure
	MetricResetRequested
	MetricResetOTPSuccess
	MetricResetOTPFailure
	MetricResetCompleted
	MetricOTPAttemptsExceeded
	MetricLogout

	metricIDCount
)

var metricNames = [metricIDCount]string{
	MetricLoginSuccess:           "login_success",
	MetricLoginFailure:           "login_failure",
	MetricLoginLocked:            "login_locked",
	MetricRegistrationSuccess:    "registration_success",
	MetricRegistrationDuplicate:  "registration_duplicate",
	MetricRegistrationInvalid:    "registration_invalid",
	MetricVerificationOTPIssued:  "verification_otp_issued",
	MetricVerificationOTPSuccess: "verification_otp_success",
	MetricVerificationOTPFailure: "verification_otp_failure",
	MetricResetRequested:         "reset_requested",
	MetricResetOTPSuccess:        "reset_otp_success",
	MetricResetOTPFailure:        "reset_otp_failure",
	MetricResetCompleted:         "reset_completed",
	MetricOTPAttemptsExceeded:    "otp_attempts_exceeded",
	MetricLogout:                 "logout",
}

// String returns the snapshot key for the metric.
func (id MetricID) String() string {
	if id < metricIDCount {
		return metricNames[id]
	}
	return "unknown"
}

// MetricsConfig toggles counter collection.
type MetricsConfig struct {
	Enabled bool
}

// paddedCounter occupies a full cache line so hot counters do not false
// share under concurrent load.
type paddedCounter struct {
	value uint64
	_     [56]byte
}

// Metrics is a fixed set of lock-free counters. A disabled instance makes
// every call a cheap no-op so call sites never branch.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// NewMetrics returns a collector honoring cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc adds one to the counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Enabled  bool
	Counters map[string]uint64
}

// Snapshot returns current counter values keyed by metric name.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[string]uint64, metricIDCount)}
	if m == nil || !m.enabled {
		return snap
	}

	snap.Enabled = true
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id.String()] = atomic.LoadUint64(&m.counters[id].value)
	}
	return snap
}
