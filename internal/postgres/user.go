package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshplate/storefront/internal/domain/user"
)

const userColumns = `id, name, phone, walk_in`

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID returns a user by its identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByPhones returns the first user whose stored phone matches any of the
// given variations.
func (r *UserRepository) FindByPhones(ctx context.Context, phones []string) (*user.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE phone = ANY($1) LIMIT 1`, phones)
}

// WalkIn returns the shared walk-in sentinel user.
func (r *UserRepository) WalkIn(ctx context.Context) (*user.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE walk_in = TRUE LIMIT 1`)
}

// Create persists a new customer record.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, phone, walk_in) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Name, u.Phone, u.WalkIn,
	)
	if err != nil {
		return errors.Wrapf(err, "creating user %q", u.ID)
	}
	return nil
}

// CreateWalkIn persists the walk-in sentinel user.
func (r *UserRepository) CreateWalkIn(ctx context.Context, u *user.User) error {
	u.WalkIn = true
	return r.Create(ctx, u)
}

// UpdatePhone rewrites a user's stored phone to the canonical format.
func (r *UserRepository) UpdatePhone(ctx context.Context, id, phone string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET phone = $2 WHERE id = $1`, id, phone)
	if err != nil {
		return errors.Wrapf(err, "updating phone for user %q", id)
	}
	return nil
}

func (r *UserRepository) get(ctx context.Context, query string, args ...any) (*user.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}

	u, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (user.User, error) {
		var u user.User
		err := row.Scan(&u.ID, &u.Name, &u.Phone, &u.WalkIn)
		return u, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, errors.Wrap(err, "querying users")
	}
	return &u, nil
}

var _ user.AddressRepository = (*AddressRepository)(nil)

// AddressRepository implements user.AddressRepository backed by PostgreSQL.
type AddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository returns an AddressRepository that uses the given pool.
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// GetByID returns an address by its identifier.
func (r *AddressRepository) GetByID(ctx context.Context, id string) (*user.Address, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, line1, city, province, postal_code FROM addresses WHERE id = $1`, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting address %q", id)
	}

	a, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (user.Address, error) {
		var a user.Address
		err := row.Scan(&a.ID, &a.UserID, &a.Line1, &a.City, &a.Province, &a.PostalCode)
		return a, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrAddressNotFound
		}
		return nil, errors.Wrapf(err, "getting address %q", id)
	}
	return &a, nil
}
