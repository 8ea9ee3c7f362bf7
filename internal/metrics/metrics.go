package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
)

var (
    // Registry is the dedicated Prometheus registry for the service.
    Registry = prometheus.NewRegistry()

    // PositionsIngested counts accepted GPS samples by derived status.
    PositionsIngested = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "positions_ingested_total", Help: "Accepted GPS samples by derived status."},
        []string{"status"},
    )
    // PositionsRejected counts samples rejected before persistence.
    PositionsRejected = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "positions_rejected_total", Help: "Rejected GPS samples by reason."},
        []string{"reason"},
    )
    // AttendanceTransitions counts ledger transitions by kind and outcome.
    AttendanceTransitions = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "attendance_transitions_total", Help: "Board/exit calls by kind and outcome."},
        []string{"kind", "outcome"},
    )
    // PushSends counts multicast push outcomes.
    PushSends = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "push_sends_total", Help: "Push multicast calls by outcome."},
        []string{"outcome"},
    )
    // PushTokensCleaned counts tokens removed by failure-driven cleanup.
    PushTokensCleaned = prometheus.NewCounter(
        prometheus.CounterOpts{Name: "push_tokens_cleaned_total", Help: "Invalid push tokens deleted after delivery failures."},
    )
    // SweepDuration records reconciliation sweep durations in seconds.
    SweepDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "sweep_duration_seconds", Help: "Reconciliation sweep duration in seconds.", Buckets: prometheus.DefBuckets},
        []string{"sweep"},
    )
)

// RegisterDefault registers collectors to the service registry.
func RegisterDefault() {
    regOnce.Do(func() {
        Registry.MustRegister(PositionsIngested)
        Registry.MustRegister(PositionsRejected)
        Registry.MustRegister(AttendanceTransitions)
        Registry.MustRegister(PushSends)
        Registry.MustRegister(PushTokensCleaned)
        Registry.MustRegister(SweepDuration)
        // Go/process collectors on our registry
        Registry.MustRegister(collectors.NewGoCollector())
        Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
    })
}

var regOnce sync.Once
