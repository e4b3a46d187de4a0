package cart

import (
	"context"
	"time"

	domain "github.com/boutiqa/storefront/internal/domain/cart"
	"github.com/boutiqa/storefront/internal/observability"
	"github.com/boutiqa/storefront/internal/observability/logctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const spanPrefix = "Cart."

// AddToCart merges the requested quantity into the session's cart, clamped
// against the looked-up stock, and persists the result. The returned
// AddResult tells the caller whether the request was fully accepted,
// partially accepted, or rejected for stock; a rejection leaves the cart
// untouched. Partial fulfilment is not an error.
func (s *Service) AddToCart(ctx context.Context, deviceID string, item domain.Item, requested int) (_ domain.AddResult, err error) {
	ctx, done := s.instrument(ctx, opAdd,
		attribute.String("cart.product_id", item.ProductID),
		attribute.Int("cart.requested", requested),
	)
	defer done(&err)

	sess, err := s.session(ctx, deviceID)
	if err != nil {
		return domain.AddResult{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	stock := s.lookupStock(ctx, item.ProductID)

	result, err := sess.cart.Add(item, requested, stock)
	if err != nil {
		return domain.AddResult{}, err
	}

	if result.Status != domain.AddRejectedNoStock {
		s.persist(ctx, sess, opAdd)
	}

	logctx.FromOr(ctx, s.log).Info("cart_add",
		observability.F("product_id", item.ProductID),
		observability.F("requested", result.Requested),
		observability.F("accepted", result.Accepted),
		observability.F("status", string(result.Status)),
	)
	return result, nil
}

// instrument opens a span for the operation and returns a completion hook
// recording the span status, RED metrics, and a single summary log line.
func (s *Service) instrument(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(errp *error)) {
	attrs = append(attrs, attribute.String("cart.operation", op))
	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+op, attrs...)
	start := time.Now()
	logger := logctx.FromOr(ctx, s.log).With(observability.F("operation", op))

	return ctx, func(errp *error) {
		err := *errp
		latency := time.Since(start).Seconds()
		outcome := "success"

		if span != nil {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, op)
			} else {
				span.SetStatus(codes.Ok, "OK")
			}
			span.End()
		}
		if err != nil {
			outcome = "error"
		}

		s.opCounter.Add(1,
			observability.L("operation", op),
			observability.L("outcome", outcome),
		)
		s.opHistogram.Observe(latency,
			observability.L("operation", op),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("latency_seconds", latency),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}

		logger.Info("cart_operation_done", fields...)
	}
}
