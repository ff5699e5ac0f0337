package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/airfair/hook"
)

// meterName is the instrumentation scope name for airfair metrics.
const meterName = "github.com/xraph/airfair"

// Compile-time interface checks.
var (
	_ hook.Extension         = (*MetricsExtension)(nil)
	_ hook.EntityScheduled   = (*MetricsExtension)(nil)
	_ hook.EntityUnscheduled = (*MetricsExtension)(nil)
	_ hook.QueueSelected     = (*MetricsExtension)(nil)
	_ hook.CatchUp           = (*MetricsExtension)(nil)
	_ hook.WeightUpdated     = (*MetricsExtension)(nil)
	_ hook.AirtimeReported   = (*MetricsExtension)(nil)
)

// MetricsExtension records scheduler lifecycle metrics. Register it as an
// airfair hook extension to track schedule churn, selection rates, virtual
// clock catch-ups, weight changes, and accounted airtime.
//
// Instruments:
//   - airfair.entity.scheduled (Int64Counter): schedule insertions,
//     with attributes: station, traffic_class
//   - airfair.entity.unscheduled (Int64Counter): schedule removals,
//     with attributes: station, traffic_class
//   - airfair.queue.selections (Int64Counter): leases handed out,
//     with attributes: station, traffic_class, slot
//   - airfair.clock.catchups (Int64Counter): global clock advances
//   - airfair.clock.jump (Int64Histogram): virtual-time units skipped
//     per catch-up
//   - airfair.weight.updates (Int64Counter): weight reconfigurations,
//     with attributes: station, traffic_class
//   - airfair.airtime.tx (Float64Histogram): confirmed transmit airtime
//     per report, in seconds, with attributes: station, traffic_class
//   - airfair.airtime.rx (Float64Histogram): confirmed receive airtime
//     per report, in seconds, with attributes: station, traffic_class
type MetricsExtension struct {
	scheduled   metric.Int64Counter
	unscheduled metric.Int64Counter
	selections  metric.Int64Counter
	catchUps    metric.Int64Counter
	clockJump   metric.Int64Histogram
	weightUpd   metric.Int64Counter
	txAirtime   metric.Float64Histogram
	rxAirtime   metric.Float64Histogram
}

// NewMetricsExtension creates a MetricsExtension using the global OTel
// MeterProvider. Without a configured provider the instruments are noops.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the
// provided meter. This variant allows injecting a specific MeterProvider
// for testing.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	// Create instruments once at construction time. OTel instruments are
	// safe for concurrent use; on error the API returns noop instruments,
	// so the extension degrades gracefully.
	m := &MetricsExtension{}
	m.scheduled, _ = meter.Int64Counter(
		"airfair.entity.scheduled",
		metric.WithDescription("Entities inserted into the active schedule"),
		metric.WithUnit("{entity}"),
	)
	m.unscheduled, _ = meter.Int64Counter(
		"airfair.entity.unscheduled",
		metric.WithDescription("Entities removed from the active schedule"),
		metric.WithUnit("{entity}"),
	)
	m.selections, _ = meter.Int64Counter(
		"airfair.queue.selections",
		metric.WithDescription("Transmit leases handed out by the selection engine"),
		metric.WithUnit("{lease}"),
	)
	m.catchUps, _ = meter.Int64Counter(
		"airfair.clock.catchups",
		metric.WithDescription("Global virtual clock catch-up events"),
		metric.WithUnit("{event}"),
	)
	m.clockJump, _ = meter.Int64Histogram(
		"airfair.clock.jump",
		metric.WithDescription("Virtual-time units skipped per catch-up"),
	)
	m.weightUpd, _ = meter.Int64Counter(
		"airfair.weight.updates",
		metric.WithDescription("Entity fairness weight reconfigurations"),
		metric.WithUnit("{update}"),
	)
	m.txAirtime, _ = meter.Float64Histogram(
		"airfair.airtime.tx",
		metric.WithDescription("Confirmed transmit airtime per report"),
		metric.WithUnit("s"),
	)
	m.rxAirtime, _ = meter.Float64Histogram(
		"airfair.airtime.rx",
		metric.WithDescription("Confirmed receive airtime per report"),
		metric.WithUnit("s"),
	)
	return m
}

// Name implements hook.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

func entityAttrs(ref hook.EntityRef) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("station", ref.Station.String()),
		attribute.Int("traffic_class", int(ref.TrafficClass)),
	)
}

// OnEntityScheduled implements hook.EntityScheduled.
func (m *MetricsExtension) OnEntityScheduled(ref hook.EntityRef) error {
	m.scheduled.Add(context.Background(), 1, entityAttrs(ref))
	return nil
}

// OnEntityUnscheduled implements hook.EntityUnscheduled.
func (m *MetricsExtension) OnEntityUnscheduled(ref hook.EntityRef) error {
	m.unscheduled.Add(context.Background(), 1, entityAttrs(ref))
	return nil
}

// OnQueueSelected implements hook.QueueSelected.
func (m *MetricsExtension) OnQueueSelected(ref hook.EntityRef, slot int) error {
	m.selections.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("station", ref.Station.String()),
		attribute.Int("traffic_class", int(ref.TrafficClass)),
		attribute.Int("slot", slot),
	))
	return nil
}

// OnCatchUp implements hook.CatchUp.
func (m *MetricsExtension) OnCatchUp(from, to uint64) error {
	ctx := context.Background()
	m.catchUps.Add(ctx, 1)
	m.clockJump.Record(ctx, int64(to-from))
	return nil
}

// OnWeightUpdated implements hook.WeightUpdated.
func (m *MetricsExtension) OnWeightUpdated(ref hook.EntityRef, _, _ uint32) error {
	m.weightUpd.Add(context.Background(), 1, entityAttrs(ref))
	return nil
}

// OnAirtimeReported implements hook.AirtimeReported.
func (m *MetricsExtension) OnAirtimeReported(ref hook.EntityRef, tx, rx time.Duration) error {
	ctx := context.Background()
	attrs := entityAttrs(ref)
	if tx > 0 {
		m.txAirtime.Record(ctx, tx.Seconds(), attrs)
	}
	if rx > 0 {
		m.rxAirtime.Record(ctx, rx.Seconds(), attrs)
	}
	return nil
}
