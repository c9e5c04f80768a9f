package observability

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alijeyrad/oilcall_backend/pkg/reqctx"
)

const tracerName = "github.com/Alijeyrad/oilcall_backend/pkg/observability"

// MiddlewareConfig controls FiberMiddleware. Requests whose path starts with
// one of SkipPrefixes are neither traced nor counted.
type MiddlewareConfig struct {
	SkipPrefixes []string
}

// DefaultSkipPrefixes covers the health probes and the scrape endpoint.
var DefaultSkipPrefixes = []string{"/livez", "/readyz", "/startupz", "/metrics"}

// FiberMiddleware traces each API request and records request count and
// latency by route. Once the handlers have run, the span is tagged with the
// request id and, for staff requests, the caller's role.
func FiberMiddleware(cfgs ...MiddlewareConfig) fiber.Handler {
	cfg := MiddlewareConfig{SkipPrefixes: DefaultSkipPrefixes}
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}

	tracer := otel.Tracer(tracerName)
	meter := otel.Meter(tracerName)

	requests, _ := meter.Int64Counter("oilcall_http_requests_total",
		metric.WithDescription("HTTP requests by route and status"),
		metric.WithUnit("{request}"))
	latency, _ := meter.Float64Histogram("oilcall_http_request_duration_ms",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("ms"))
	rejected, _ := meter.Int64Counter("oilcall_http_client_errors_total",
		metric.WithDescription("Requests refused with a 4xx status"),
		metric.WithUnit("{request}"))

	return func(c fiber.Ctx) error {
		if skipped(c.Path(), cfg.SkipPrefixes) {
			return c.Next()
		}

		ctx := otel.GetTextMapPropagator().Extract(c.Context(), propagation.HeaderCarrier(c.GetReqHeaders()))
		route := c.Route().Path
		ctx, span := tracer.Start(ctx, c.Method()+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Method()),
				attribute.String("http.route", route),
				attribute.String("client.address", c.IP()),
			),
		)
		defer span.End()

		c.SetContext(ctx)
		if sc := span.SpanContext(); sc.HasTraceID() {
			c.Set("X-Trace-Id", sc.TraceID().String())
		}

		start := time.Now()
		err := c.Next()
		elapsed := float64(time.Since(start).Microseconds()) / 1000

		// Route is resolved after routing, and identity after the auth middleware.
		route = c.Route().Path
		status := c.Response().StatusCode()
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
		)
		if rid := reqctx.RequestIDFromContext(c.Context()); rid != "" {
			span.SetAttributes(attribute.String("request.id", rid))
		}
		if id, ok := reqctx.IdentityFromContext(c.Context()); ok {
			span.SetAttributes(attribute.String("staff.role", id.Role))
		}

		attrs := metric.WithAttributes(
			attribute.String("http.request.method", c.Method()),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
		)
		requests.Add(ctx, 1, attrs)
		latency.Record(ctx, elapsed, attrs)

		switch {
		case status >= 500:
			span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(status))
			if err != nil {
				span.RecordError(err)
			}
		case status >= 400:
			rejected.Add(ctx, 1, attrs)
		}
		return err
	}
}

func skipped(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
