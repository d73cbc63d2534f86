package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/school_ledger/internal/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/SscSPs/school_ledger/internal/core/services"

const (
	defaultLedgerPageSize = 50
	maxLedgerPageSize     = 500
)

// options collects the knobs shared by all ledger services.
type options struct {
	now                 func() time.Time
	requireFiscalPeriod bool
	defaultPageSize     int
	maxPageSize         int
}

// ServiceOption is a functional option for configuring the ledger services
type ServiceOption func(*options)

// WithClock overrides the time source. Tests use it to pin "today".
func WithClock(now func() time.Time) ServiceOption {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRequireFiscalPeriod makes a date with no configured fiscal period an error
// instead of unrestricted.
func WithRequireFiscalPeriod(required bool) ServiceOption {
	return func(o *options) {
		o.requireFiscalPeriod = required
	}
}

// WithLedgerPageSizes sets the default and maximum page size of account ledgers.
func WithLedgerPageSizes(defaultSize, maxSize int) ServiceOption {
	return func(o *options) {
		if defaultSize > 0 {
			o.defaultPageSize = defaultSize
		}
		if maxSize > 0 {
			o.maxPageSize = maxSize
		}
	}
}

func buildOptions(opts []ServiceOption) options {
	o := options{
		now:             time.Now,
		defaultPageSize: defaultLedgerPageSize,
		maxPageSize:     maxLedgerPageSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.defaultPageSize > o.maxPageSize {
		o.defaultPageSize = o.maxPageSize
	}
	return o
}

// BaseService provides common functionality for all services
type BaseService struct {
	opts   options
	tracer trace.Tracer
}

func newBaseService(opts []ServiceOption) BaseService {
	return BaseService{
		opts:   buildOptions(opts),
		tracer: otel.Tracer(tracerName),
	}
}

// Now returns the current time in UTC from the configured clock.
func (s *BaseService) Now() time.Time {
	return s.opts.now().UTC()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs an expected business-rule rejection.
func (s *BaseService) LogWarn(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Warn(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// startSpan opens a tracing span for a ledger operation. The returned function
// ends it, recording err when it is non-nil.
func (s *BaseService) startSpan(ctx context.Context, name string) (context.Context, func(err error)) {
	ctx, span := s.tracer.Start(ctx, name)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
