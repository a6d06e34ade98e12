package otel

import (
	"context"
	"fmt"

	"github.com/purposeinplay/go-observer/observer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const scopeName = "github.com/purposeinplay/go-observer/otel"

// ErrorReporter logs errors and records them on the active span, or on a
// span of its own when the context carries none.
type ErrorReporter struct {
	Logger *zap.Logger

	// TraceProvider starts a span when the context has no valid one.
	// A nil TraceProvider only logs in that case.
	TraceProvider trace.TracerProvider
}

// ReportError reports a non-nil err.
func (r ErrorReporter) ReportError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	r.logger().Error("internal error", zap.Error(err))

	r.recordErrorInSpan(ctx, err)
}

// PanicHandler returns an observer.PanicHandler reporting the recovered
// value as an error on the publish span.
func (r ErrorReporter) PanicHandler() observer.PanicHandler {
	return func(ev observer.Event, recovered any) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("listener panic: %v", recovered)
		}

		ctx := ev.Context
		if ctx == nil {
			ctx = context.Background()
		}

		r.ReportError(ctx, fmt.Errorf("topic %q: %w", ev.Topic, err))
	}
}

func (r ErrorReporter) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}

	return r.Logger
}

func (r ErrorReporter) recordErrorInSpan(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)

	if !span.SpanContext().IsValid() {
		if r.TraceProvider == nil {
			return
		}

		_, span = r.TraceProvider.Tracer(scopeName).Start(ctx, "error_reporting")
		defer span.End()
	}

	span.RecordError(err, trace.WithStackTrace(true))
	span.SetStatus(codes.Error, "internal error")

	span.SetAttributes(
		attribute.String("error.type", fmt.Sprintf("%T", err)),
		attribute.String("error.message", err.Error()),
	)
}
