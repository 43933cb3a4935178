package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tenzind12/housing/internal/model"
)

type ListingRepository struct {
	DB *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{DB: db}
}

// listingColumns aliases lat/lng into the nested geolocation struct.
const listingColumns = `id, owner_id, type, name, bedrooms, bathrooms, parking, furnished, offer,
	regular_price, discounted_price, image_urls,
	lat AS "geolocation.lat", lng AS "geolocation.lng",
	location, created_at`

// Create persists one listing and returns its assigned id. The creation
// timestamp is assigned by the database.
func (r *ListingRepository) Create(ctx context.Context, l *model.Listing) (string, error) {
	l.ID = uuid.NewString()

	rows, err := r.DB.NamedQueryContext(ctx, `
		INSERT INTO listings
			(id, owner_id, type, name, bedrooms, bathrooms, parking, furnished, offer,
			 regular_price, discounted_price, image_urls, lat, lng, location)
		VALUES
			(:id, :owner_id, :type, :name, :bedrooms, :bathrooms, :parking, :furnished, :offer,
			 :regular_price, :discounted_price, :image_urls, :geolocation.lat, :geolocation.lng, :location)
		RETURNING created_at
	`, l)
	if err != nil {
		return "", fmt.Errorf("ListingRepository.Create: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&l.Timestamp); err != nil {
			return "", fmt.Errorf("ListingRepository.Create: scan created_at: %w", err)
		}
	}
	return l.ID, nil
}

// GetByID returns a single listing.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	var l model.Listing
	err := r.DB.GetContext(ctx, &l, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByOwner returns all listings of one landlord, newest first.
func (r *ListingRepository) GetByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	var list []model.Listing
	err := r.DB.SelectContext(ctx, &list, `
		SELECT `+listingColumns+` FROM listings
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	return list, err
}

// GetRecent returns the latest listings for the front-page slider.
func (r *ListingRepository) GetRecent(ctx context.Context, limit int) ([]model.Listing, error) {
	var list []model.Listing
	err := r.DB.SelectContext(ctx, &list, `
		SELECT `+listingColumns+` FROM listings
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	return list, err
}

// GetFiltered returns listings matching the browse filters (type, offer),
// newest first, with pagination.
func (r *ListingRepository) GetFiltered(ctx context.Context, filters map[string]interface{}, limit, offset int) ([]model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if v, ok := filters["type"]; ok {
		query += fmt.Sprintf(" AND type = $%d", idx)
		args = append(args, v)
		idx++
	}
	if v, ok := filters["offer"]; ok {
		query += fmt.Sprintf(" AND offer = $%d", idx)
		args = append(args, v)
		idx++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	var listings []model.Listing
	err := r.DB.SelectContext(ctx, &listings, query, args...)
	return listings, err
}

// DeleteOwned removes a listing if it belongs to the given owner. Returns
// false when nothing matched.
func (r *ListingRepository) DeleteOwned(ctx context.Context, id, ownerID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM listings WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("ListingRepository.DeleteOwned: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ListingRepository.DeleteOwned: %w", err)
	}
	return n > 0, nil
}
