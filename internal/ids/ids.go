package ids

import "github.com/google/uuid"

// New returns an opaque random identifier used as primary key for
// every entity.
func New() string {
	return uuid.NewString()
}

// NewSaleCode returns the correlation code shared by all sale rows
// created in one checkout.
func NewSaleCode() string {
	return uuid.NewString()
}
