// Package metrics holds the Prometheus collectors shared by the services.
package metrics

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/utils/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "formtrigger"

// Skip reasons reported by SubmissionSkipped.
const (
	ReasonAnonymous = "anonymous"
)

// Trigger decisions reported by TriggerDecision.
const (
	DecisionDeserved = "deserved"
	DecisionRejected = "rejected"
)

// Metrics is nil-safe: every recording method is a no-op on a nil receiver.
type Metrics struct {
	submissionsReceived prometheus.Counter
	submissionsSkipped  *prometheus.CounterVec
	eventsDispatched    *prometheus.CounterVec
	triggerDecisions    *prometheus.CounterVec
	triggersCompleted   *prometheus.CounterVec
	requestCount        *prometheus.CounterVec
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		submissionsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "form_submissions_received_total",
			Help:      "Total number of form submissions received.",
		}),
		submissionsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "form_submissions_skipped_total",
			Help:      "Form submissions that did not produce a trigger event.",
		}, []string{"reason"}),
		eventsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trigger_events_dispatched_total",
			Help:      "Trigger events handed to the event bus.",
		}, []string{"trigger", "result"}),
		triggerDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trigger_decisions_total",
			Help:      "Eligibility decisions taken for stored triggers.",
		}, []string{"trigger", "decision"}),
		triggersCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triggers_completed_total",
			Help:      "Triggers completed by a user.",
		}, []string{"trigger"}),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed.",
		}, []string{"method", "path", "status"}),
	}

	for _, c := range []prometheus.Collector{
		m.submissionsReceived,
		m.submissionsSkipped,
		m.eventsDispatched,
		m.triggerDecisions,
		m.triggersCompleted,
		m.requestCount,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) SubmissionReceived() {
	if m == nil {
		return
	}

	m.submissionsReceived.Inc()
}

func (m *Metrics) SubmissionSkipped(reason string) {
	if m == nil {
		return
	}

	m.submissionsSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) EventDispatched(triggerType string, err error) {
	if m == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = "error"
	}

	m.eventsDispatched.WithLabelValues(triggerType, result).Inc()
}

func (m *Metrics) TriggerDecision(triggerType string, deserved bool) {
	if m == nil {
		return
	}

	decision := DecisionRejected
	if deserved {
		decision = DecisionDeserved
	}

	m.triggerDecisions.WithLabelValues(triggerType, decision).Inc()
}

func (m *Metrics) TriggerCompleted(triggerType string) {
	if m == nil {
		return
	}

	m.triggersCompleted.WithLabelValues(triggerType).Inc()
}

// Middleware counts HTTP requests by method, route pattern and status. Label
// values are copied since fiber reuses the request buffers.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if m == nil || c.Path() == "/metrics" {
			return c.Next()
		}

		err := c.Next()

		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}

		path = utils.CopyString(path)

		status := c.Response().StatusCode()
		if err != nil {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.requestCount.WithLabelValues(utils.CopyString(c.Method()), path, strconv.Itoa(status)).Inc()

		return err
	}
}

// Handler serves the collectors of gatherer in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
