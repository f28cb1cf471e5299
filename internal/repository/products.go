package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"hotdeal/internal/model"
)

// ErrDuplicate is returned by Insert when a record for the same
// (channel, external id) pair already exists. Concurrent workers can race
// past the existence check; the unique constraint catches them here.
var ErrDuplicate = errors.New("product already exists")

const uniqueViolation = "23505"

type ProductRepository struct {
	Pool *pgxpool.Pool
}

// Exists reports whether a record for the pair has been persisted.
func (r *ProductRepository) Exists(ctx context.Context, channelID int, externalID string) (bool, error) {
	var count int
	err := r.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM channel_products WHERE channel_idx = $1 AND channel_product_idx = $2`,
		channelID, externalID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Insert persists one record. Records are insert-once; there is no update path.
func (r *ProductRepository) Insert(ctx context.Context, rec model.ProductRecord) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO channel_products
		(channel_idx, channel_product_idx, category_title, seller_title, title, price, free_shipping, thumbnail, product_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ChannelID,
		rec.ExternalID,
		rec.CategoryTitle,
		rec.Seller,
		rec.Title,
		rec.Price,
		shippingFlag(rec.FreeShipping),
		rec.Thumbnail,
		rec.ProductLink,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func shippingFlag(free bool) string {
	if free {
		return "Y"
	}
	return "N"
}
