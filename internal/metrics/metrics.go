package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	model "auction-manager/internal/models"
)

// Metrics holds the prometheus collectors of the auction server.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	bidsPlaced        prometheus.Counter
	bidsRejected      *prometheus.CounterVec
	itemsSold         *prometheus.CounterVec
	notificationsSent *prometheus.CounterVec
	liveSubscribers   prometheus.Gauge
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		bidsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auction_bids_placed_total",
			Help: "Number of accepted bids.",
		}),
		bidsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auction_bids_rejected_total",
				Help: "Number of rejected bids by reason.",
			},
			[]string{"reason"},
		),
		itemsSold: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auction_items_sold_total",
				Help: "Number of items sold by auction type.",
			},
			[]string{"auction_type"},
		),
		notificationsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auction_notifications_sent_total",
				Help: "Number of notifications delivered by kind.",
			},
			[]string{"kind"},
		),
		liveSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "auction_live_subscribers",
			Help: "Number of open notification streams.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.requestCount, m.requestDuration, m.bidsPlaced, m.bidsRejected,
		m.itemsSold, m.notificationsSent, m.liveSubscribers,
	} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Join(errors.New("metrics: register collector"), err)
		}
	}
	return m, nil
}

// Handler returns the gin middleware counting requests by route pattern
func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requestCount.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// BidPlaced counts an accepted bid
func (m *Metrics) BidPlaced() {
	if m == nil {
		return
	}
	m.bidsPlaced.Inc()
}

// BidRejected counts a refused bid
func (m *Metrics) BidRejected(reason string) {
	if m == nil {
		return
	}
	m.bidsRejected.WithLabelValues(reason).Inc()
}

// ItemSold counts a sold item
func (m *Metrics) ItemSold(t model.AuctionType) {
	if m == nil {
		return
	}
	m.itemsSold.WithLabelValues(string(t)).Inc()
}

// NotificationSent counts a stored notification
func (m *Metrics) NotificationSent(kind model.NotificationKind) {
	if m == nil {
		return
	}
	m.notificationsSent.WithLabelValues(string(kind)).Inc()
}

// SubscriberAdded tracks an opened notification stream
func (m *Metrics) SubscriberAdded() {
	if m == nil {
		return
	}
	m.liveSubscribers.Inc()
}

// SubscriberRemoved tracks a closed notification stream
func (m *Metrics) SubscriberRemoved() {
	if m == nil {
		return
	}
	m.liveSubscribers.Dec()
}
