package app

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/freshplate/storefront/internal/domain/order"
)

// observedOrders decorates the order service with tracing and metrics. It
// satisfies handler.OrderService, so the HTTP layer stays oblivious to
// telemetry.
type observedOrders struct {
	svc     *order.Service
	tracer  trace.Tracer
	created metric.Int64Counter
	failed  metric.Int64Counter
}

func newObservedOrders(svc *order.Service, tp trace.TracerProvider, mp metric.MeterProvider) (*observedOrders, error) {
	meter := mp.Meter("storefront.orders")

	created, err := meter.Int64Counter("orders.created",
		metric.WithDescription("Orders successfully placed"))
	if err != nil {
		return nil, errors.Wrap(err, "create orders.created counter")
	}
	failed, err := meter.Int64Counter("orders.failed",
		metric.WithDescription("Order attempts that did not commit"))
	if err != nil {
		return nil, errors.Wrap(err, "create orders.failed counter")
	}

	return &observedOrders{
		svc:     svc,
		tracer:  tp.Tracer("storefront.orders"),
		created: created,
		failed:  failed,
	}, nil
}

func (o *observedOrders) CreateOrder(ctx context.Context, req order.CreateOrderRequest) (*order.Order, error) {
	ctx, span := o.tracer.Start(ctx, "orders.Create")
	defer span.End()

	res, err := o.svc.CreateOrder(ctx, req)
	o.record(ctx, span, "online", err)
	return res, err
}

func (o *observedOrders) CreatePOSSale(ctx context.Context, req order.POSSaleRequest) (*order.POSSaleResult, error) {
	ctx, span := o.tracer.Start(ctx, "orders.POSSale")
	defer span.End()

	res, err := o.svc.CreatePOSSale(ctx, req)
	o.record(ctx, span, "pos", err)
	return res, err
}

func (o *observedOrders) record(ctx context.Context, span trace.Span, channel string, err error) {
	attrs := metric.WithAttributes(attribute.String("channel", channel))
	if err != nil {
		span.RecordError(err)
		o.failed.Add(ctx, 1, attrs)
		return
	}
	o.created.Add(ctx, 1, attrs)
}
