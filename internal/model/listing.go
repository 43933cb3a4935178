package model

import (
	"time"

	"github.com/lib/pq"
)

type ListingType string

const (
	TypeSale ListingType = "sale"
	TypeRent ListingType = "rent"
)

// ImageFile is one raw photo as submitted with the form.
type ImageFile struct {
	Name string
	Data []byte
}

// Geolocation is the coordinate pair persisted with a listing.
type Geolocation struct {
	Lat float64 `db:"lat" json:"lat"`
	Lng float64 `db:"lng" json:"lng"`
}

// ListingDraft holds the raw form values for one submission attempt.
// It is owned by the submission service for the duration of the attempt.
type ListingDraft struct {
	Type            ListingType
	Name            string
	Bedrooms        int
	Bathrooms       int
	Parking         bool
	Furnished       bool
	Offer           bool
	Address         string
	RegularPrice    int64
	DiscountedPrice int64
	Images          []ImageFile

	// GeolocationEnabled selects automatic address resolution. When false
	// the user-entered Latitude/Longitude are used as-is.
	GeolocationEnabled bool
	Latitude           float64
	Longitude          float64

	OwnerID string
}

// Listing is the persisted record. DiscountedPrice is nil unless the
// listing is an offer. ImageURLs keeps the submitted photo order; the
// first entry is the cover image.
type Listing struct {
	ID              string         `db:"id" json:"id"`
	OwnerID         string         `db:"owner_id" json:"ownerId"`
	Type            ListingType    `db:"type" json:"type"`
	Name            string         `db:"name" json:"name"`
	Bedrooms        int            `db:"bedrooms" json:"bedrooms"`
	Bathrooms       int            `db:"bathrooms" json:"bathrooms"`
	Parking         bool           `db:"parking" json:"parking"`
	Furnished       bool           `db:"furnished" json:"furnished"`
	Offer           bool           `db:"offer" json:"offer"`
	RegularPrice    int64          `db:"regular_price" json:"regularPrice"`
	DiscountedPrice *int64         `db:"discounted_price" json:"discountedPrice,omitempty"`
	ImageURLs       pq.StringArray `db:"image_urls" json:"imageUrls"`
	Geolocation     Geolocation    `db:"geolocation" json:"geolocation"`
	Location        string         `db:"location" json:"location"`
	Timestamp       time.Time      `db:"created_at" json:"timestamp"`
}
