package snapshot

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rcastro/listing-snapshot/internal/models"
)

const createFactTableSQL = `
CREATE TABLE IF NOT EXISTS fact_product_snapshot (
	snapshot_date DATE NOT NULL,
	sku           TEXT NOT NULL,
	name          TEXT NOT NULL,
	price_list    DOUBLE PRECISION,
	price_sale    DOUBLE PRECISION,
	rating        DOUBLE PRECISION,
	reviews_count INTEGER,
	product_url   TEXT,
	PRIMARY KEY (snapshot_date, sku)
)`

const upsertFactRowSQL = `
INSERT INTO fact_product_snapshot
	(snapshot_date, sku, name, price_list, price_sale, rating, reviews_count, product_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (snapshot_date, sku) DO UPDATE SET
	name          = EXCLUDED.name,
	price_list    = EXCLUDED.price_list,
	price_sale    = EXCLUDED.price_sale,
	rating        = EXCLUDED.rating,
	reviews_count = EXCLUDED.reviews_count,
	product_url   = EXCLUDED.product_url`

// Store persists fact snapshots into Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and verifies the connection.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the fact table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createFactTableSQL); err != nil {
		return fmt.Errorf("failed to create fact table: %w", err)
	}
	return nil
}

// UpsertSnapshot writes one dated batch of validated records inside a single
// transaction. Re-running a day replaces that day's rows per SKU.
func (s *Store) UpsertSnapshot(ctx context.Context, snapshotDate string, records []models.ProductRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, record := range records {
		_, err := tx.Exec(ctx, upsertFactRowSQL,
			snapshotDate,
			record.SKU,
			record.Name,
			record.PriceList,
			record.PriceSale,
			record.Rating,
			record.ReviewsCount,
			record.ProductURL,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert snapshot row for sku %s: %w", record.SKU, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
