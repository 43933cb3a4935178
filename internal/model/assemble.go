package model

// AssembleListing merges a validated draft, resolved coordinates and the
// ordered photo URLs into the record shape the store persists. The raw
// images and address are dropped; the discounted price is kept only for
// offers. ID and Timestamp are assigned by the store on create.
func AssembleListing(d *ListingDraft, lat, lng float64, location string, urls []string) *Listing {
	l := &Listing{
		OwnerID:      d.OwnerID,
		Type:         d.Type,
		Name:         d.Name,
		Bedrooms:     d.Bedrooms,
		Bathrooms:    d.Bathrooms,
		Parking:      d.Parking,
		Furnished:    d.Furnished,
		Offer:        d.Offer,
		RegularPrice: d.RegularPrice,
		ImageURLs:    urls,
		Geolocation:  Geolocation{Lat: lat, Lng: lng},
		Location:     location,
	}
	if d.Offer {
		discounted := d.DiscountedPrice
		l.DiscountedPrice = &discounted
	}
	return l
}
