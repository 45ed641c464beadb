package observability

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Metrics provides basic in-memory counters for the bot and ops server.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
	}
}

// RecordInteraction increments the counter for a routed interaction.
func (m *Metrics) RecordInteraction(route string) {
	m.inc("interaction|" + route)
}

// RecordWizardTimeout increments the timeout counter for a wizard step.
func (m *Metrics) RecordWizardTimeout(step string) {
	m.inc("wizard_timeout|" + step)
}

// RecordTicket increments a ticket lifecycle counter (opened, channel_created, closed).
func (m *Metrics) RecordTicket(event string) {
	m.inc("ticket|" + event)
}

// RecordGatewayError increments the counter for a failed platform call.
func (m *Metrics) RecordGatewayError(op, code string) {
	m.inc("gateway_error|" + op + "|" + code)
}

// RecordRequest increments the counter for an ops HTTP request.
func (m *Metrics) RecordRequest(path, method string, status int) {
	m.inc("request|" + path + "|" + method)
	_ = status
}

// RecordError increments error counters for the ops HTTP surface.
func (m *Metrics) RecordError(path, method, code string) {
	m.inc("error|" + path + "|" + method + "|" + code)
}

// Snapshot returns a copy of all counters.
func (m *Metrics) Snapshot() map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out
}

func (m *Metrics) inc(key string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
}

// RequestLogger logs ops HTTP requests and feeds the request counters.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		metrics.RecordRequest(c.Path(), c.Method(), status)
		logger.Debug("http request",
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)))
		return err
	}
}
