package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	dailySubmissions    metric.Int64Counter
	monthlySubmissions  metric.Int64Counter
	approvalDecisions   metric.Int64Counter
	completionFailures  metric.Int64Counter
	rateLimitDenied     metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "waterworks"
	}
	meter := provider.Meter(name)

	dailySubmissions, err := meter.Int64Counter("waterworks_daily_submissions_total")
	if err != nil {
		return nil, err
	}
	monthlySubmissions, err := meter.Int64Counter("waterworks_monthly_submissions_total")
	if err != nil {
		return nil, err
	}
	approvalDecisions, err := meter.Int64Counter("waterworks_approval_decisions_total")
	if err != nil {
		return nil, err
	}
	completionFailures, err := meter.Int64Counter("waterworks_completion_failures_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("waterworks_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		dailySubmissions:   dailySubmissions,
		monthlySubmissions: monthlySubmissions,
		approvalDecisions:  approvalDecisions,
		completionFailures: completionFailures,
		rateLimitDenied:    rateLimitDenied,
	}, nil
}

// RecordDailySubmission increments daily sheet submission counts.
func (m *Metrics) RecordDailySubmission(ctx context.Context, branchID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("branch_id", strings.TrimSpace(branchID)))
	m.dailySubmissions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordMonthlySubmission increments monthly sheet submission counts.
func (m *Metrics) RecordMonthlySubmission(ctx context.Context, branchID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("branch_id", strings.TrimSpace(branchID)))
	m.monthlySubmissions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordApprovalDecision increments approval decision counts.
func (m *Metrics) RecordApprovalDecision(ctx context.Context, recordType, decision string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("record_type", strings.TrimSpace(recordType)),
		attribute.String("decision", strings.TrimSpace(decision)),
	)
	m.approvalDecisions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCompletionFailure increments rejected monthly submissions due to
// incomplete daily coverage.
func (m *Metrics) RecordCompletionFailure(ctx context.Context, branchID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("branch_id", strings.TrimSpace(branchID)))
	m.completionFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"branch_id":   {},
	"endpoint":    {},
	"record_type": {},
	"decision":    {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
