// Package metrics exposes the Prometheus instruments of the order desk.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"rentaldesk-backend/internal/domain"
)

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics holds every collector. It satisfies service.OrderObserver.
type Metrics struct {
	ordersCreated     *prometheus.CounterVec
	statusChanges     *prometheus.CounterVec
	rpcRequests       *prometheus.CounterVec
	rpcDuration       *prometheus.HistogramVec
	jobRuns           *prometheus.CounterVec
	lateOrders        *prometheus.GaugeVec
	notificationsSent *prometheus.CounterVec
}

// New creates the collectors and registers them with registerer, which
// defaults to prometheus.DefaultRegisterer.
func New(registerer prometheus.Registerer, namespace string) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "rentaldesk"
	}

	m := &Metrics{
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders created, by branch and initial status.",
		}, []string{"branch", "status"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_changes_total",
			Help:      "Order status transitions.",
		}, []string{"from", "to"}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "Unary RPCs handled, by method and status code.",
		}, []string{"method", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grpc_request_duration_seconds",
			Help:      "Unary RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Scheduled job runs, by job and result.",
		}, []string{"job", "result"}),
		lateOrders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "late_orders",
			Help:      "Late orders per branch at the last reminder run.",
		}, []string{"branch"}),
		notificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Late-order notifications, by channel and result.",
		}, []string{"channel", "result"}),
	}

	registerer.MustRegister(
		m.ordersCreated,
		m.statusChanges,
		m.rpcRequests,
		m.rpcDuration,
		m.jobRuns,
		m.lateOrders,
		m.notificationsSent,
	)
	return m
}

func (m *Metrics) OrderCreated(order *domain.Order) {
	m.ordersCreated.WithLabelValues(order.BranchID, string(order.Status)).Inc()
}

func (m *Metrics) OrderStatusChanged(order *domain.Order, from domain.OrderStatus) {
	m.statusChanges.WithLabelValues(string(from), string(order.Status)).Inc()
}

// JobFinished records one run of a scheduled job.
func (m *Metrics) JobFinished(job string, err error) {
	m.jobRuns.WithLabelValues(job, result(err)).Inc()
}

// SetLateOrders replaces the late order gauge with counts per branch.
func (m *Metrics) SetLateOrders(perBranch map[string]int) {
	m.lateOrders.Reset()
	for branch, n := range perBranch {
		m.lateOrders.WithLabelValues(branch).Set(float64(n))
	}
}

func (m *Metrics) NotificationSent(channel string, err error) {
	m.notificationsSent.WithLabelValues(channel, result(err)).Inc()
}

// UnaryServerInterceptor counts and times every unary RPC.
func (m *Metrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		m.rpcDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
		m.rpcRequests.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		return resp, err
	}
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
