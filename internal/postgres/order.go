package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshplate/storefront/internal/domain/delivery"
	"github.com/freshplate/storefront/internal/domain/order"
)

// ErrOrderNotFound is returned when a requested order does not exist.
var ErrOrderNotFound = errors.New("order not found")

const (
	orderColumns = `id, number, user_id, COALESCE(address_id, ''),
		subtotal, tax_rate, tax, convenience_charge, delivery_charge, discount, total,
		status, delivery_type, payment_method, delivery_date, COALESCE(promo_code_id, ''),
		deleted, created_at, updated_at`

	getOrderByNumberSQL = `SELECT ` + orderColumns + `
		FROM orders WHERE number = $1 AND deleted = FALSE`

	getOrderItemsSQL = `SELECT product_id, quantity, unit_price
		FROM order_items WHERE order_id = $1 ORDER BY id`
)

// OrderRepository provides read access to persisted orders. Creation goes
// through the transactional Store, never through this type.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetByNumber returns a non-deleted order with its line items for receipt
// display.
func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByNumberSQL, number)
	if err != nil {
		return nil, errors.Wrapf(err, "getting order %q", number)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, errors.Wrapf(err, "getting order %q", number)
	}

	itemRows, err := r.pool.Query(ctx, getOrderItemsSQL, o.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "getting items for order %q", number)
	}
	o.Items, err = pgx.CollectRows(itemRows, func(row pgx.CollectableRow) (order.Item, error) {
		var item order.Item
		err := row.Scan(&item.ProductID, &item.Quantity, &item.UnitPrice)
		return item, err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "getting items for order %q", number)
	}

	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o            order.Order
		status       string
		deliveryType string
		payment      string
	)
	err := row.Scan(
		&o.ID, &o.Number, &o.UserID, &o.AddressID,
		&o.Subtotal, &o.TaxRate, &o.Tax, &o.ConvenienceCharge, &o.DeliveryCharge, &o.Discount, &o.Total,
		&status, &deliveryType, &payment, &o.DeliveryDate, &o.PromoCodeID,
		&o.Deleted, &o.CreatedAt, &o.UpdatedAt,
	)
	o.Status = order.Status(status)
	o.DeliveryType = delivery.Type(deliveryType)
	o.PaymentMethod = order.PaymentMethod(payment)
	return o, err
}
