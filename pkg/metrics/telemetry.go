package metrics

import "github.com/prometheus/client_golang/prometheus"

// Namespace prefixes every metric this service exports.
const Namespace = "sort"

// TelemetryMetrics exposes business-level gauges refreshed by the telemetry
// cron job. Values are point-in-time snapshots, not counters.
type TelemetryMetrics struct {
	users              prometheus.Gauge
	points             prometheus.Gauge
	pendingWithdrawals prometheus.Gauge
	bottles            *prometheus.GaugeVec
	cpuTemp            *prometheus.GaugeVec
	storageUsed        *prometheus.GaugeVec
}

// NewTelemetryMetrics registers the telemetry gauges on the provided registerer.
func NewTelemetryMetrics(reg prometheus.Registerer) *TelemetryMetrics {
	m := &TelemetryMetrics{
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "users_total",
			Help:      "Registered members.",
		}),
		points: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "points_outstanding",
			Help:      "Sum of all member balances.",
		}),
		pendingWithdrawals: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "withdrawals_pending",
			Help:      "Withdrawal requests waiting for review.",
		}),
		bottles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "machine_bottles",
			Help:      "Items counted by the machine since the last counter reset.",
		}, []string{"machine_id", "material"}),
		cpuTemp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "machine_cpu_celsius",
			Help:      "Last CPU temperature reported by the machine.",
		}, []string{"machine_id"}),
		storageUsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "machine_storage_ratio",
			Help:      "Bin fill level in [0,1].",
		}, []string{"machine_id"}),
	}
	if reg != nil {
		reg.MustRegister(m.users, m.points, m.pendingWithdrawals, m.bottles, m.cpuTemp, m.storageUsed)
	}
	return m
}

func (m *TelemetryMetrics) SetUsers(n int64) {
	if m == nil {
		return
	}
	m.users.Set(float64(n))
}

func (m *TelemetryMetrics) SetPoints(n int64) {
	if m == nil {
		return
	}
	m.points.Set(float64(n))
}

func (m *TelemetryMetrics) SetPendingWithdrawals(n int64) {
	if m == nil {
		return
	}
	m.pendingWithdrawals.Set(float64(n))
}

func (m *TelemetryMetrics) SetBottles(machineID, material string, n int) {
	if m == nil {
		return
	}
	m.bottles.WithLabelValues(machineID, material).Set(float64(n))
}

func (m *TelemetryMetrics) SetCPUTemp(machineID string, celsius float64) {
	if m == nil {
		return
	}
	m.cpuTemp.WithLabelValues(machineID).Set(celsius)
}

func (m *TelemetryMetrics) SetStorageUsed(machineID string, ratio float64) {
	if m == nil {
		return
	}
	m.storageUsed.WithLabelValues(machineID).Set(ratio)
}
