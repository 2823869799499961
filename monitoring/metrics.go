package monitoring

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ticket-marketplace/models"
)

var (
	marketplaceOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_operations_total",
			Help: "Total marketplace operations by outcome",
		},
		[]string{"operation", "status"},
	)

	eventAvailableTickets = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "event_available_tickets",
			Help: "Remaining tickets per event",
		},
		[]string{"event_id"},
	)

	eventTotalTickets = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "event_total_tickets",
			Help: "Total tickets per event",
		},
		[]string{"event_id"},
	)

	activeEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_events_total",
			Help: "Current number of active events",
		},
	)

	tokenSupply = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "token_supply_total",
			Help: "Number of tickets ever minted",
		},
	)
)

// StatsSource is the read-only slice of the marketplace the monitor polls.
type StatsSource interface {
	GetAllEvents() []*models.Event
	TotalSupply() uint64
}

// Monitor scrapes marketplace gauges on an interval and counts operation
// outcomes. It implements the marketplace's Recorder.
type Monitor struct {
	source   StatsSource
	interval time.Duration
	stop     chan struct{}
}

func NewMonitor(source StatsSource, interval time.Duration) *Monitor {
	monitor := &Monitor{
		source:   source,
		interval: interval,
		stop:     make(chan struct{}),
	}

	go monitor.collectMetrics()

	return monitor
}

func (m *Monitor) Stop() {
	close(m.stop)
}

func (m *Monitor) collectMetrics() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.collectMarketplaceMetrics()
		case <-m.stop:
			return
		}
	}
}

func (m *Monitor) collectMarketplaceMetrics() {
	active := 0
	for _, event := range m.source.GetAllEvents() {
		id := strconv.FormatUint(event.EventID, 10)
		eventAvailableTickets.WithLabelValues(id).Set(float64(event.AvailableTickets))
		eventTotalTickets.WithLabelValues(id).Set(float64(event.TotalTickets))
		if event.IsActive() {
			active++
		}
	}
	activeEvents.Set(float64(active))
	tokenSupply.Set(float64(m.source.TotalSupply()))
}

// TrackOperation counts one operation outcome. The error taxonomy is closed,
// so error kinds are safe as label values.
func (m *Monitor) TrackOperation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = err.Error()
	}
	marketplaceOperations.WithLabelValues(operation, outcome).Inc()
}

// StartMetricsServer exposes /metrics and returns the server so the caller
// can shut it down.
func StartMetricsServer(port string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server", "error", err)
		}
	}()

	return srv
}
