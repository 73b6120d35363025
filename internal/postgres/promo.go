package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshplate/storefront/internal/domain/promo"
)

const (
	promoColumns = `id, code, discount_type, value, max_discount, min_subtotal,
		active, deleted, expires_at, uses, max_uses`

	getPromoByIDSQL   = `SELECT ` + promoColumns + ` FROM promo_codes WHERE id = $1`
	getPromoByCodeSQL = `SELECT ` + promoColumns + ` FROM promo_codes WHERE UPPER(code) = UPPER($1)`
)

var _ promo.Repository = (*PromoRepository)(nil)

// PromoRepository implements promo.Repository backed by PostgreSQL.
type PromoRepository struct {
	pool *pgxpool.Pool
}

// NewPromoRepository returns a PromoRepository that uses the given pool.
func NewPromoRepository(pool *pgxpool.Pool) *PromoRepository {
	return &PromoRepository{pool: pool}
}

// GetByID looks up a promo code by its identifier.
// Returns promo.ErrNotFound when no row matches.
func (r *PromoRepository) GetByID(ctx context.Context, id string) (*promo.PromoCode, error) {
	return r.get(ctx, getPromoByIDSQL, id)
}

// GetByCode looks up a promo code by its code string (case-insensitive).
func (r *PromoRepository) GetByCode(ctx context.Context, code string) (*promo.PromoCode, error) {
	return r.get(ctx, getPromoByCodeSQL, code)
}

func (r *PromoRepository) get(ctx context.Context, query, arg string) (*promo.PromoCode, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, errors.Wrapf(err, "finding promo code %q", arg)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPromo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promo.ErrNotFound
		}
		return nil, errors.Wrapf(err, "finding promo code %q", arg)
	}
	return &p, nil
}

func scanPromo(row pgx.CollectableRow) (promo.PromoCode, error) {
	var (
		p            promo.PromoCode
		discountType string
		uses         int32
		maxUses      int32
	)
	err := row.Scan(
		&p.ID, &p.Code, &discountType, &p.Value, &p.MaxDiscount, &p.MinSubtotal,
		&p.Active, &p.Deleted, &p.ExpiresAt, &uses, &maxUses,
	)
	p.DiscountType = promo.DiscountType(discountType)
	p.Uses = int(uses)
	p.MaxUses = int(maxUses)
	return p, err
}
