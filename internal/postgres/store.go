package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshplate/storefront/internal/domain/order"
	"github.com/freshplate/storefront/internal/domain/product"
	"github.com/freshplate/storefront/internal/domain/promo"
)

var _ order.Store = (*Store)(nil)

// Store implements order.Store: each WithinTx call runs against a single
// database transaction that commits on nil and rolls back on error.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store that uses the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// WithinTx opens a transaction, runs fn against a transaction-scoped handle,
// and commits on return. Any error from fn rolls back every effect.
func (s *Store) WithinTx(ctx context.Context, fn func(tx order.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&orderTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

var _ order.Tx = (*orderTx)(nil)

// orderTx is the transaction-scoped handle handed to the orchestrator.
type orderTx struct {
	tx pgx.Tx
}

const productForUpdateSQL = `SELECT id, name, price, category, stock, active, deleted
	FROM products WHERE id = $1 FOR UPDATE`

// ProductForUpdate reads a product under a row lock so the stock and price
// checks stay valid until commit.
func (t *orderTx) ProductForUpdate(ctx context.Context, id string) (*product.Product, error) {
	rows, err := t.tx.Query(ctx, productForUpdateSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "locking product %q", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "locking product %q", id)
	}
	return &p, nil
}

const decrementStockSQL = `UPDATE products SET stock = stock - $2
	WHERE id = $1 AND stock >= $2`

// DecrementStock applies the decrement as one guarded statement; the WHERE
// clause is the storage-level backstop against lost updates.
func (t *orderTx) DecrementStock(ctx context.Context, id string, qty int) error {
	ct, err := t.tx.Exec(ctx, decrementStockSQL, id, qty)
	if err != nil {
		return errors.Wrapf(err, "decrementing stock for %q", id)
	}
	if ct.RowsAffected() == 0 {
		return order.ErrStockConflict
	}
	return nil
}

// NumberExists checks candidate numbers against every order row, including
// soft-deleted ones: an order number is never reused.
func (t *orderTx) NumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE number = $1)`, number,
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "checking order number")
	}
	return exists, nil
}

const insertOrderSQL = `INSERT INTO orders (
		id, number, user_id, address_id,
		subtotal, tax_rate, tax, convenience_charge, delivery_charge, discount, total,
		status, delivery_type, payment_method, delivery_date, promo_code_id,
		created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

const insertOrderItemSQL = `INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
	VALUES ($1, $2, $3, $4, $5)`

// Insert persists the order header and its line items in one batch.
func (t *orderTx) Insert(ctx context.Context, o *order.Order) error {
	var promoID *string
	if o.PromoCodeID != "" {
		promoID = &o.PromoCodeID
	}
	var addressID *string
	if o.AddressID != "" {
		addressID = &o.AddressID
	}

	batch := &pgx.Batch{}
	batch.Queue(insertOrderSQL,
		o.ID, o.Number, o.UserID, addressID,
		o.Subtotal, o.TaxRate, o.Tax, o.ConvenienceCharge, o.DeliveryCharge, o.Discount, o.Total,
		o.Status, o.DeliveryType, o.PaymentMethod, o.DeliveryDate, promoID,
		o.CreatedAt, o.UpdatedAt,
	)
	for _, item := range o.Items {
		batch.Queue(insertOrderItemSQL,
			uuid.New().String(), o.ID, item.ProductID, item.Quantity, item.UnitPrice,
		)
	}

	if err := t.tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrapf(err, "inserting order %q", o.ID)
	}
	return nil
}

const incrementPromoUsesSQL = `UPDATE promo_codes SET uses = uses + 1
	WHERE id = $1 AND (max_uses = 0 OR uses < max_uses)`

// IncrementPromoUses records one use of a promo code. The guard re-checks
// the usage limit inside the transaction, closing the race where two
// concurrent orders both passed the pre-flight check.
func (t *orderTx) IncrementPromoUses(ctx context.Context, promoID string) error {
	ct, err := t.tx.Exec(ctx, incrementPromoUsesSQL, promoID)
	if err != nil {
		return errors.Wrapf(err, "incrementing uses for promo %q", promoID)
	}
	if ct.RowsAffected() == 0 {
		return promo.ErrUsageExhausted
	}
	return nil
}
