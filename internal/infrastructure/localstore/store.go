// Package localstore persists carts the way the storefront's browser runtime
// does: one JSON-encoded slot per owner key, addressed by a fixed prefix plus
// the guest sentinel or the identity id. Slots are additionally namespaced by
// a device id, which plays the role of the browser profile; carts are
// device-local and never synchronized across devices.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/boutiqa/storefront/internal/domain/cart"
	"github.com/boutiqa/storefront/internal/observability"
	"github.com/shopspring/decimal"
)

type Store struct {
	mu     sync.RWMutex
	prefix string
	dir    string // empty means memory-only (tests)
	mem    map[string][]byte
	log    observability.Logger
}

// NewMemory returns a store keeping slots in process memory only.
func NewMemory(prefix string, logger observability.Logger) *Store {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Store{
		prefix: prefix,
		mem:    make(map[string][]byte),
		log:    logger.With(observability.F("component", "localstore")),
	}
}

// NewDisk returns a store that mirrors every slot to a file under dir, so
// carts survive process restarts like localStorage survives page loads.
func NewDisk(prefix, dir string, logger observability.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("localstore: create dir %s: %w", dir, err)
	}
	s := NewMemory(prefix, logger)
	s.dir = dir
	return s, nil
}

// ForDevice scopes the store to one device, yielding the cart.Storage the
// application layer consumes.
func (s *Store) ForDevice(deviceID string) cart.Storage {
	return &deviceStorage{store: s, deviceID: deviceID}
}

type deviceStorage struct {
	store    *Store
	deviceID string
}

func (d *deviceStorage) Load(ctx context.Context, owner cart.OwnerKey) ([]cart.Line, error) {
	return d.store.load(ctx, d.store.slotKey(d.deviceID, owner))
}

func (d *deviceStorage) Save(ctx context.Context, owner cart.OwnerKey, lines []cart.Line) error {
	return d.store.save(ctx, d.store.slotKey(d.deviceID, owner), lines)
}

func (s *Store) slotKey(deviceID string, owner cart.OwnerKey) string {
	return s.prefix + ":" + deviceID + ":" + owner.String()
}

// storedLine is the wire shape of one persisted cart line. Decoding is
// defensive: records that cannot carry a valid cart line are dropped, and a
// malformed slot degrades to an empty cart instead of an error.
type storedLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Reference string `json:"reference"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	ImageRef  string `json:"image_ref"`
}

func (s *Store) load(ctx context.Context, key string) ([]cart.Line, error) {
	_ = ctx

	s.mu.RLock()
	raw, ok := s.mem[key]
	s.mu.RUnlock()

	if !ok && s.dir != "" {
		fileRaw, err := os.ReadFile(s.slotPath(key))
		if err != nil {
			// Absent slot reads as an empty cart.
			return nil, nil
		}
		raw, ok = fileRaw, true
		s.mu.Lock()
		s.mem[key] = fileRaw
		s.mu.Unlock()
	}
	if !ok {
		return nil, nil
	}

	var records []storedLine
	if err := json.Unmarshal(raw, &records); err != nil {
		s.log.Warn("cart_slot_malformed",
			observability.F("slot", key),
			observability.F("error", err.Error()),
		)
		return nil, nil
	}

	lines := make([]cart.Line, 0, len(records))
	for _, rec := range records {
		if rec.ProductID == "" || rec.Quantity < 1 {
			continue
		}
		price, err := decimal.NewFromString(rec.UnitPrice)
		if err != nil || price.IsNegative() {
			price = decimal.Zero
		}
		lines = append(lines, cart.Line{
			ProductID: rec.ProductID,
			Name:      rec.Name,
			Reference: rec.Reference,
			UnitPrice: price,
			Quantity:  rec.Quantity,
			ImageRef:  rec.ImageRef,
		})
	}
	return lines, nil
}

func (s *Store) save(ctx context.Context, key string, lines []cart.Line) error {
	_ = ctx

	records := make([]storedLine, 0, len(lines))
	for _, l := range lines {
		records = append(records, storedLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Reference: l.Reference,
			UnitPrice: l.UnitPrice.String(),
			Quantity:  l.Quantity,
			ImageRef:  l.ImageRef,
		})
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("localstore: encode slot %s: %w", key, err)
	}

	s.mu.Lock()
	s.mem[key] = raw
	s.mu.Unlock()

	if s.dir != "" {
		if err := os.WriteFile(s.slotPath(key), raw, 0o644); err != nil {
			return fmt.Errorf("localstore: write slot %s: %w", key, err)
		}
	}
	return nil
}

var pathSanitizer = strings.NewReplacer(":", "_", "/", "_", "\\", "_")

func (s *Store) slotPath(key string) string {
	return filepath.Join(s.dir, pathSanitizer.Replace(key)+".json")
}
