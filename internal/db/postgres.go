package db

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
)

// New opens a database/sql handle, used by the schema bootstrap path.
func New(url string) (*sql.DB, error) {
	return sql.Open("postgres", url)
}

// NewPool opens a pgx pool for the runtime repositories and verifies the
// connection. A failure here is fatal to the run.
func NewPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS channel_products (
	id BIGSERIAL PRIMARY KEY,
	channel_idx INT NOT NULL,
	channel_product_idx TEXT NOT NULL,
	category_title TEXT NOT NULL DEFAULT '',
	seller_title TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	price BIGINT NOT NULL DEFAULT 0,
	free_shipping CHAR(1) NOT NULL DEFAULT 'N',
	thumbnail TEXT NOT NULL DEFAULT '',
	product_link TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT channel_products_channel_product_key UNIQUE (channel_idx, channel_product_idx)
)`

// EnsureSchema creates the products table and its unique guard. The unique
// constraint is the authoritative dedupe check; the pipeline's existence
// query is only an optimization in front of it.
func EnsureSchema(ctx context.Context, sqlDB *sql.DB) error {
	_, err := sqlDB.ExecContext(ctx, schema)
	return err
}
