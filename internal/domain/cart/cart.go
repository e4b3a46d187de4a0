package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrLineNotFound     = errors.New("cart: line not found")
	ErrMissingProductID = errors.New("cart: product id is required")
)

// Item describes a product being added to the cart. All fields are
// denormalized copies taken at add time and are not re-validated against the
// catalog afterwards.
type Item struct {
	ProductID string
	Name      string
	Reference string
	UnitPrice decimal.Decimal
	ImageRef  string
}

// Line is one row of the cart, unique per product id.
type Line struct {
	ProductID string
	Name      string
	Reference string
	UnitPrice decimal.Decimal
	Quantity  int
	ImageRef  string
}

// Stock is the result of a stock lookup. A failed or absent lookup is
// represented as unknown, which the cart treats permissively.
type Stock struct {
	Known bool
	Units int
}

func KnownStock(units int) Stock { return Stock{Known: true, Units: units} }
func UnknownStock() Stock        { return Stock{} }

type AddStatus string

const (
	AddAccepted          AddStatus = "accepted"
	AddPartiallyAccepted AddStatus = "partially_accepted"
	AddRejectedNoStock   AddStatus = "rejected_out_of_stock"
)

// AddResult reports how much of an add request the cart actually took,
// so callers can tell a full accept from a clamp or a rejection.
type AddResult struct {
	Status    AddStatus
	Requested int
	Accepted  int
}

// OwnerKey is the storage namespace identifier for a cart: the guest sentinel
// or an authenticated identity id.
type OwnerKey string

const GuestOwner OwnerKey = "guest"

func (k OwnerKey) IsGuest() bool { return k == "" || k == GuestOwner }

func (k OwnerKey) String() string {
	if k.IsGuest() {
		return string(GuestOwner)
	}
	return string(k)
}

// OwnerForIdentity maps an identity id to its owner key; empty means guest.
func OwnerForIdentity(identityID string) OwnerKey {
	if identityID == "" {
		return GuestOwner
	}
	return OwnerKey(identityID)
}

// Cart holds the in-memory line items for one session. It is a pure state
// machine: persistence and stock lookups are collaborators of the application
// layer, not of this type.
type Cart struct {
	Owner OwnerKey
	Lines []Line
}

func NewGuest() *Cart {
	return &Cart{Owner: GuestOwner}
}

func (c *Cart) index(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Quantity returns the quantity currently in cart for the product, 0 if absent.
func (c *Cart) Quantity(productID string) int {
	if i := c.index(productID); i >= 0 {
		return c.Lines[i].Quantity
	}
	return 0
}

// Total is always recomputed from the lines, never stored.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Add merges the requested quantity into the cart, clamped against the
// supplied stock. Requested quantities below 1 are coerced up to 1. When stock
// is known, only max(0, stock-alreadyInCart) units may enter; zero allowance
// rejects the add without mutating the cart. Unknown stock accepts in full.
func (c *Cart) Add(item Item, requested int, stock Stock) (AddResult, error) {
	if item.ProductID == "" {
		return AddResult{}, ErrMissingProductID
	}
	if requested < 1 {
		requested = 1
	}

	accepted := requested
	if stock.Known {
		allowed := stock.Units - c.Quantity(item.ProductID)
		if allowed <= 0 {
			return AddResult{Status: AddRejectedNoStock, Requested: requested}, nil
		}
		if accepted > allowed {
			accepted = allowed
		}
	}

	if i := c.index(item.ProductID); i >= 0 {
		c.Lines[i].Quantity += accepted
	} else {
		c.Lines = append(c.Lines, Line{
			ProductID: item.ProductID,
			Name:      item.Name,
			Reference: item.Reference,
			UnitPrice: item.UnitPrice,
			Quantity:  accepted,
			ImageRef:  item.ImageRef,
		})
	}

	status := AddAccepted
	if accepted < requested {
		status = AddPartiallyAccepted
	}
	return AddResult{Status: status, Requested: requested, Accepted: accepted}, nil
}

// SetQuantity clamps the requested quantity to the business floor, then to the
// known stock ceiling, and applies it to the existing line. It never removes
// the line: Remove is a distinct operation.
func (c *Cart) SetQuantity(productID string, requested, floor int, stock Stock) (int, error) {
	i := c.index(productID)
	if i < 0 {
		return 0, ErrLineNotFound
	}

	if floor < 1 {
		floor = 1
	}
	quantity := requested
	if quantity < floor {
		quantity = floor
	}
	if stock.Known && quantity > stock.Units {
		quantity = stock.Units
	}
	if quantity < 1 {
		// Stock ceilings below one would violate the line invariant.
		quantity = 1
	}

	c.Lines[i].Quantity = quantity
	return quantity, nil
}

// Remove deletes the line unconditionally. Idempotent: removing an absent
// product reports false and changes nothing.
func (c *Cart) Remove(productID string) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return true
}

func (c *Cart) Clear() {
	c.Lines = nil
}

// CloneLines returns a copy safe to hand across goroutine or API boundaries.
func CloneLines(lines []Line) []Line {
	if lines == nil {
		return nil
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}

// MergeOnLogin combines the three cart sources seen when an identity attaches:
// the current in-memory cart, the guest-stored slot, and the identity-stored
// slot. The in-memory cart and the guest slot describe the same cart (every
// mutation persists), so they are united per product with the in-memory value
// winning; the identity slot is then summed in additively. Quantities are
// never overwritten during the additive step, so no source loses units.
// Stock is deliberately not re-validated here.
func MergeOnLogin(current, guestStored, identityStored []Line) []Line {
	merged := CloneLines(current)

	indexOf := func(productID string) int {
		for i := range merged {
			if merged[i].ProductID == productID {
				return i
			}
		}
		return -1
	}

	for _, l := range guestStored {
		if indexOf(l.ProductID) < 0 {
			merged = append(merged, l)
		}
	}

	for _, l := range identityStored {
		if i := indexOf(l.ProductID); i >= 0 {
			merged[i].Quantity += l.Quantity
		} else {
			merged = append(merged, l)
		}
	}

	return merged
}
