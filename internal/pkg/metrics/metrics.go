package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lawn-quote-service/internal/domain"
)

const namespace = "lawn_quote"

// Collector - метрики сервиса. Все методы безопасны для nil-получателя.
type Collector struct {
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	Estimates         *prometheus.CounterVec
	EstimateCache     *prometheus.CounterVec
	EstimatedAreaSqFt prometheus.Histogram
	QuotesCreated     *prometheus.CounterVec
	StreamMessages    *prometheus.CounterVec
}

// NewCollector регистрирует метрики в reg (по умолчанию - глобальный реестр)
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Handled HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"}))
	if err != nil {
		return nil, err
	}

	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"}))
	if err != nil {
		return nil, err
	}

	estimates, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "estimates_total",
		Help:      "Lawn area estimates by place extent source and confidence.",
	}, []string{"source", "confidence"}))
	if err != nil {
		return nil, err
	}

	cache, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "estimate_cache_lookups_total",
		Help:      "Estimate cache lookups by result (hit, miss, error).",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}

	area, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "estimated_area_sqft",
		Help:      "Distribution of estimated lawn areas in square feet.",
		Buckets:   prometheus.ExponentialBuckets(1_000, 2, 7),
	}))
	if err != nil {
		return nil, err
	}

	quotes, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_created_total",
		Help:      "Saved quotes by pricing mode.",
	}, []string{"pricing_mode"}))
	if err != nil {
		return nil, err
	}

	stream, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stream_messages_total",
		Help:      "Stream messages processed by the worker, by stream and outcome.",
	}, []string{"stream", "outcome"}))
	if err != nil {
		return nil, err
	}

	return &Collector{
		registerer:        reg,
		gatherer:          gatherer,
		HTTPRequests:      requests,
		HTTPDurations:     durations,
		Estimates:         estimates,
		EstimateCache:     cache,
		EstimatedAreaSqFt: area,
		QuotesCreated:     quotes,
		StreamMessages:    stream,
	}, nil
}

// Register добавляет в реестр сторонние коллекторы (например, пул БД)
func (c *Collector) Register(cs ...prometheus.Collector) error {
	if c == nil {
		return nil
	}
	for _, col := range cs {
		if _, err := register(c.registerer, col); err != nil {
			return err
		}
	}
	return nil
}

// Handler отдаёт метрики в формате Prometheus
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDurations.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (c *Collector) ObserveEstimate(e domain.Estimate) {
	if c == nil {
		return
	}
	c.Estimates.WithLabelValues(string(e.Source), string(e.Confidence)).Inc()
	c.EstimatedAreaSqFt.Observe(e.EstimatedAreaSqFt)
}

// Результаты поиска в кеше оценок
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

func (c *Collector) ObserveCacheLookup(result string) {
	if c == nil {
		return
	}
	c.EstimateCache.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveQuoteCreated(mode domain.PricingMode) {
	if c == nil {
		return
	}
	c.QuotesCreated.WithLabelValues(string(mode)).Inc()
}

// Исходы обработки сообщения стрима
const (
	OutcomeProcessed = "processed"
	OutcomeFailed    = "failed"
	OutcomeMalformed = "malformed"
)

func (c *Collector) ObserveStreamMessage(stream, outcome string) {
	if c == nil {
		return
	}
	c.StreamMessages.WithLabelValues(stream, outcome).Inc()
}

// register регистрирует коллектор или возвращает уже зарегистрированный того же типа
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
