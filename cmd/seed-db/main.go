// Command seed-db loads the catalog, store settings, promo codes, and the
// walk-in customer into the database. Safe to re-run: everything upserts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/freshplate/storefront/internal/postgres"
)

type productJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Stock    int             `json:"stock"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedWalkInUser(ctx, pool); err != nil {
		return errors.Wrap(err, "seed walk-in user")
	}
	if err := seedDemoCustomer(ctx, pool); err != nil {
		return errors.Wrap(err, "seed demo customer")
	}
	if err := seedSettings(ctx, pool); err != nil {
		return errors.Wrap(err, "seed settings")
	}
	if err := seedPromoCodes(ctx, pool); err != nil {
		return errors.Wrap(err, "seed promo codes")
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	const upsert = `INSERT INTO products (id, name, price, category, stock, active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, price = EXCLUDED.price,
			category = EXCLUDED.category, stock = EXCLUDED.stock`

	for _, p := range products {
		if _, err := pool.Exec(ctx, upsert, p.ID, p.Name, p.Price, p.Category, p.Stock); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

// seedWalkInUser creates the shared walk-in customer and the store's pickup
// address, then points the pickup_address_id setting at it.
func seedWalkInUser(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding walk-in customer and pickup address")

	var userID string
	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE walk_in = TRUE LIMIT 1`).Scan(&userID)
	if err != nil {
		userID = uuid.New().String()
		if _, err := pool.Exec(ctx,
			`INSERT INTO users (id, name, walk_in) VALUES ($1, 'Walk-in Customer', TRUE)`,
			userID,
		); err != nil {
			return errors.Wrap(err, "create walk-in user")
		}
	}

	var addressID string
	err = pool.QueryRow(ctx, `SELECT id FROM addresses WHERE user_id = $1 LIMIT 1`, userID).Scan(&addressID)
	if err != nil {
		addressID = uuid.New().String()
		if _, err := pool.Exec(ctx,
			`INSERT INTO addresses (id, user_id, line1, city) VALUES ($1, $2, '123 Main St', 'Springfield')`,
			addressID, userID,
		); err != nil {
			return errors.Wrap(err, "create pickup address")
		}
	}

	if _, err := pool.Exec(ctx,
		`INSERT INTO settings (key, value) VALUES ('pickup_address_id', to_jsonb($1::text))
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		addressID,
	); err != nil {
		return errors.Wrap(err, "set pickup_address_id")
	}

	return nil
}

// seedDemoCustomer creates a customer with stable identifiers so smoke and
// integration tests can place delivery orders without a signup flow.
func seedDemoCustomer(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding demo customer")

	if _, err := pool.Exec(ctx,
		`INSERT INTO users (id, name, phone) VALUES ('demo-user', 'Demo Customer', '+15551234567')
			ON CONFLICT (id) DO NOTHING`,
	); err != nil {
		return errors.Wrap(err, "create demo user")
	}
	if _, err := pool.Exec(ctx,
		`INSERT INTO addresses (id, user_id, line1, city) VALUES ('demo-addr', 'demo-user', '42 Elm St', 'Springfield')
			ON CONFLICT (id) DO NOTHING`,
	); err != nil {
		return errors.Wrap(err, "create demo address")
	}
	return nil
}

func seedSettings(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding store settings")

	settings := map[string]string{
		"tax_percent":        `"13"`,
		"tax_waived":         `false`,
		"convenience_charge": `"1.50"`,
		"delivery_charge":    `"5.00"`,
		"free_delivery":      `{"friday": ["springfield"], "saturday": ["springfield", "shelbyville"]}`,
	}

	// Keys already present are left alone so operator overrides survive
	// re-seeding.
	const insert = `INSERT INTO settings (key, value) VALUES ($1, $2::jsonb)
		ON CONFLICT (key) DO NOTHING`

	for key, value := range settings {
		if _, err := pool.Exec(ctx, insert, key, value); err != nil {
			return errors.Wrapf(err, "insert setting %s", key)
		}
		slog.Info("seeded setting", slog.String("key", key))
	}

	return nil
}

func seedPromoCodes(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding promo codes")

	type promoSeed struct {
		code         string
		discountType string
		value        string
		maxDiscount  string
		minSubtotal  string
		maxUses      int
	}

	promos := []promoSeed{
		{code: "WELCOME10", discountType: "PERCENTAGE", value: "10", maxDiscount: "0", minSubtotal: "0", maxUses: 0},
		{code: "SAVE5", discountType: "VALUE", value: "5", maxDiscount: "0", minSubtotal: "25", maxUses: 0},
		{code: "HALFOFF", discountType: "PERCENTAGE", value: "50", maxDiscount: "20", minSubtotal: "0", maxUses: 100},
	}

	const upsert = `INSERT INTO promo_codes (id, code, discount_type, value, max_discount, min_subtotal, active, max_uses)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7)
		ON CONFLICT (code) DO UPDATE SET
			discount_type = EXCLUDED.discount_type, value = EXCLUDED.value,
			max_discount = EXCLUDED.max_discount, min_subtotal = EXCLUDED.min_subtotal,
			max_uses = EXCLUDED.max_uses`

	for _, p := range promos {
		if _, err := pool.Exec(ctx, upsert,
			uuid.New().String(), p.code, p.discountType, p.value, p.maxDiscount, p.minSubtotal, p.maxUses,
		); err != nil {
			return errors.Wrapf(err, "upsert promo code %s", p.code)
		}
		slog.Info("upserted promo code", slog.String("code", p.code))
	}

	return nil
}
