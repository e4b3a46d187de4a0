package cart

import (
	"context"
	"errors"

	domain "github.com/boutiqa/storefront/internal/domain/cart"
)

var ErrMissingDevice = errors.New("cart: device id is required")

// StorageProvider hands out the device-scoped persistence slot; each device
// plays the role of one browser profile.
type StorageProvider interface {
	ForDevice(deviceID string) domain.Storage
}

// WholesaleLookup reports whether the wholesale ordering rules apply to an
// identity. Failures degrade to the default (retail) floor.
type WholesaleLookup interface {
	IsWholesale(ctx context.Context, identityID string) (bool, error)
}
