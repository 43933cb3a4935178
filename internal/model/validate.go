package model

import "fmt"

const (
	MinImages = 1
	MaxImages = 6

	MinNameLen = 10
	MaxNameLen = 32

	MinRooms = 1
	MaxRooms = 50

	MinPrice = 50
	MaxPrice = 750_000_000
)

// ValidationError names the first rule a draft violated.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Rule, e.Message)
}

// ValidateDraft checks the cross-field rules of a submission draft. Rules
// are evaluated in a fixed order and the first violation is returned. Pure,
// no I/O.
func ValidateDraft(d *ListingDraft) error {
	if n := len(d.Images); n < MinImages || n > MaxImages {
		return &ValidationError{
			Rule:    "images",
			Message: fmt.Sprintf("between %d and %d images required, got %d", MinImages, MaxImages, n),
		}
	}
	if d.Offer && d.DiscountedPrice >= d.RegularPrice {
		return &ValidationError{
			Rule:    "discountedPrice",
			Message: "discounted price must be lower than regular price",
		}
	}
	if d.Type != TypeSale && d.Type != TypeRent {
		return &ValidationError{
			Rule:    "type",
			Message: fmt.Sprintf("type must be %q or %q", TypeSale, TypeRent),
		}
	}
	if n := len(d.Name); n < MinNameLen || n > MaxNameLen {
		return &ValidationError{
			Rule:    "name",
			Message: fmt.Sprintf("name must be %d-%d characters", MinNameLen, MaxNameLen),
		}
	}
	if d.Bedrooms < MinRooms || d.Bedrooms > MaxRooms {
		return &ValidationError{
			Rule:    "bedrooms",
			Message: fmt.Sprintf("bedrooms must be %d-%d", MinRooms, MaxRooms),
		}
	}
	if d.Bathrooms < MinRooms || d.Bathrooms > MaxRooms {
		return &ValidationError{
			Rule:    "bathrooms",
			Message: fmt.Sprintf("bathrooms must be %d-%d", MinRooms, MaxRooms),
		}
	}
	if d.RegularPrice < MinPrice || d.RegularPrice > MaxPrice {
		return &ValidationError{
			Rule:    "regularPrice",
			Message: fmt.Sprintf("regular price must be %d-%d", MinPrice, MaxPrice),
		}
	}
	if d.Offer && (d.DiscountedPrice < MinPrice || d.DiscountedPrice > MaxPrice) {
		return &ValidationError{
			Rule:    "discountedPrice",
			Message: fmt.Sprintf("discounted price must be %d-%d", MinPrice, MaxPrice),
		}
	}
	if d.Address == "" {
		return &ValidationError{Rule: "address", Message: "address is required"}
	}
	return nil
}
