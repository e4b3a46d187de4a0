package cart

import (
	"context"
	"sync"

	domain "github.com/boutiqa/storefront/internal/domain/cart"
	"github.com/boutiqa/storefront/internal/observability"
	"github.com/boutiqa/storefront/internal/observability/logctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	cartService = "cart-service"

	opAdd      = "cart.add"
	opUpdate   = "cart.update_quantity"
	opRemove   = "cart.remove"
	opClear    = "cart.clear"
	opSetOwner = "cart.set_owner"
	opGet      = "cart.get"
)

// Service holds the authoritative in-memory cart per device session, persists
// it on every mutation, and reconciles ownership transitions. It is the
// single writer for each session's cart.
type Service struct {
	stock          domain.StockLookup
	storage        StorageProvider
	wholesale      WholesaleLookup
	wholesaleFloor int

	tel observability.Telemetry
	log observability.Logger

	opCounter    observability.Counter
	opHistogram  observability.Histogram
	stockCounter observability.Counter

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu      sync.Mutex
	cart    *domain.Cart
	storage domain.Storage
}

func NewService(
	stock domain.StockLookup,
	storage StorageProvider,
	wholesale WholesaleLookup,
	wholesaleFloor int,
	tel observability.Telemetry,
) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	if wholesaleFloor < 1 {
		wholesaleFloor = 1
	}

	metrics := tel.Metrics()
	return &Service{
		stock:          stock,
		storage:        storage,
		wholesale:      wholesale,
		wholesaleFloor: wholesaleFloor,
		tel:            tel,
		log:            tel.Logger().With(observability.F("service", cartService)),
		opCounter:      metrics.Counter(observability.MCartOperations),
		opHistogram:    metrics.Histogram(observability.MCartOperationDuration),
		stockCounter:   metrics.Counter(observability.MStockLookups),
		sessions:       make(map[string]*session),
	}
}

// Snapshot is a read-only view of one session's cart. Total is recomputed
// from the lines on every call, never stored.
type Snapshot struct {
	Owner domain.OwnerKey
	Lines []domain.Line
	Total decimal.Decimal
}

// Get returns the current cart for the device, creating an empty guest cart
// on first access.
func (s *Service) Get(ctx context.Context, deviceID string) (_ Snapshot, err error) {
	ctx, done := s.instrument(ctx, opGet)
	defer done(&err)

	sess, err := s.session(ctx, deviceID)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return snapshotOf(sess.cart), nil
}

// UpdateQuantity clamps the requested quantity to the owner's business floor
// and the known stock ceiling, then persists. It never removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, deviceID, productID string, requested int) (_ int, err error) {
	ctx, done := s.instrument(ctx, opUpdate,
		attribute.String("cart.product_id", productID),
		attribute.Int("cart.requested", requested),
	)
	defer done(&err)

	sess, err := s.session(ctx, deviceID)
	if err != nil {
		return 0, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	floor := s.floorFor(ctx, sess.cart.Owner)
	stock := s.lookupStock(ctx, productID)

	quantity, err := sess.cart.SetQuantity(productID, requested, floor, stock)
	if err != nil {
		return 0, err
	}

	s.persist(ctx, sess, opUpdate)
	return quantity, nil
}

// Remove deletes the line unconditionally and persists. Removing an absent
// product is a no-op on the lines but still persists the slot.
func (s *Service) Remove(ctx context.Context, deviceID, productID string) (err error) {
	ctx, done := s.instrument(ctx, opRemove,
		attribute.String("cart.product_id", productID),
	)
	defer done(&err)

	sess, err := s.session(ctx, deviceID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.cart.Remove(productID)
	s.persist(ctx, sess, opRemove)
	return nil
}

// Clear empties the cart and persists the empty slot under the current owner.
func (s *Service) Clear(ctx context.Context, deviceID string) (err error) {
	ctx, done := s.instrument(ctx, opClear)
	defer done(&err)

	sess, err := s.session(ctx, deviceID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.cart.Clear()
	s.persist(ctx, sess, opClear)
	return nil
}

// SetOwner attaches an identity to the session's cart or, with an empty
// identity, reverts to a fresh guest cart (logout).
//
// Login merges three sources additively per product (current in-memory,
// guest-stored, identity-stored), persists the result under the identity slot
// and resets the guest slot to empty. Merged quantities are deliberately not
// re-clamped against stock: the merge is lossless.
func (s *Service) SetOwner(ctx context.Context, deviceID, identityID string) (_ Snapshot, err error) {
	ctx, done := s.instrument(ctx, opSetOwner,
		attribute.Bool("cart.logout", identityID == ""),
	)
	defer done(&err)

	sess, err := s.session(ctx, deviceID)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if identityID == "" {
		// Logout discards the in-memory cart; the previous identity's slot
		// stays addressable for its next login.
		sess.cart = domain.NewGuest()
		s.persist(ctx, sess, opSetOwner)
		return snapshotOf(sess.cart), nil
	}

	guestStored := s.loadOrEmpty(ctx, sess.storage, domain.GuestOwner)
	owner := domain.OwnerForIdentity(identityID)
	identityStored := s.loadOrEmpty(ctx, sess.storage, owner)

	merged := domain.MergeOnLogin(sess.cart.Lines, guestStored, identityStored)
	sess.cart = &domain.Cart{Owner: owner, Lines: merged}

	s.persist(ctx, sess, opSetOwner)
	if saveErr := sess.storage.Save(ctx, domain.GuestOwner, []domain.Line{}); saveErr != nil {
		logctx.FromOr(ctx, s.log).Warn("guest_slot_reset_failed",
			observability.F("error", saveErr.Error()),
		)
	}

	return snapshotOf(sess.cart), nil
}

func (s *Service) session(ctx context.Context, deviceID string) (*session, error) {
	if deviceID == "" {
		return nil, ErrMissingDevice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[deviceID]; ok {
		return sess, nil
	}

	storage := s.storage.ForDevice(deviceID)
	lines := s.loadOrEmpty(ctx, storage, domain.GuestOwner)
	sess := &session{
		cart:    &domain.Cart{Owner: domain.GuestOwner, Lines: lines},
		storage: storage,
	}
	s.sessions[deviceID] = sess
	return sess, nil
}

// loadOrEmpty reads a slot, degrading read failures to an empty cart; the
// adapter already degrades malformed content the same way.
func (s *Service) loadOrEmpty(ctx context.Context, storage domain.Storage, owner domain.OwnerKey) []domain.Line {
	lines, err := storage.Load(ctx, owner)
	if err != nil {
		logctx.FromOr(ctx, s.log).Warn("cart_slot_load_failed",
			observability.F("owner", owner.String()),
			observability.F("error", err.Error()),
		)
		return nil
	}
	return lines
}

// persist writes the whole cart under its current owner. A write failure is
// logged and swallowed: the in-memory cart stays authoritative for the rest
// of the session.
func (s *Service) persist(ctx context.Context, sess *session, op string) {
	if err := sess.storage.Save(ctx, sess.cart.Owner, sess.cart.Lines); err != nil {
		logctx.FromOr(ctx, s.log).Warn("cart_persist_failed",
			observability.F("operation", op),
			observability.F("owner", sess.cart.Owner.String()),
			observability.F("error", err.Error()),
		)
	}
}

// floorFor resolves the business quantity floor for the cart owner: 1 for
// guests and retail identities, the wholesale minimum for validated
// professional identities. Lookup failures degrade to the retail floor.
func (s *Service) floorFor(ctx context.Context, owner domain.OwnerKey) int {
	if owner.IsGuest() || s.wholesale == nil {
		return 1
	}
	wholesale, err := s.wholesale.IsWholesale(ctx, string(owner))
	if err != nil {
		logctx.FromOr(ctx, s.log).Warn("wholesale_lookup_failed",
			observability.F("owner", owner.String()),
			observability.F("error", err.Error()),
		)
		return 1
	}
	if !wholesale {
		return 1
	}
	return s.wholesaleFloor
}

// lookupStock queries the stock collaborator, mapping any failure to unknown
// stock so mutations stay permissive.
func (s *Service) lookupStock(ctx context.Context, productID string) domain.Stock {
	stock, err := s.stock.Stock(ctx, productID)
	outcome := "known"
	switch {
	case err != nil:
		stock = domain.UnknownStock()
		outcome = "error"
		logctx.FromOr(ctx, s.log).Warn("stock_lookup_failed",
			observability.F("product_id", productID),
			observability.F("error", err.Error()),
		)
	case !stock.Known:
		outcome = "unknown"
	}
	s.stockCounter.Add(1, observability.L("outcome", outcome))
	return stock
}

func snapshotOf(c *domain.Cart) Snapshot {
	return Snapshot{
		Owner: c.Owner,
		Lines: domain.CloneLines(c.Lines),
		Total: c.Total(),
	}
}
