package cart

import "context"

// StockLookup reads the available stock for a product. Implementations are
// backed by an external store; the cart treats any error or missing record as
// unknown stock.
type StockLookup interface {
	Stock(ctx context.Context, productID string) (Stock, error)
}

// Storage is the local persistence adapter: one addressable slot per owner
// key. Load must degrade to an empty slice on absent or malformed data rather
// than surface corruption; Save replaces the whole slot.
type Storage interface {
	Load(ctx context.Context, owner OwnerKey) ([]Line, error)
	Save(ctx context.Context, owner OwnerKey, lines []Line) error
}
