package reassort

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("reassort: config not found")
	ErrInvalidQuantity = errors.New("reassort: quantity must be greater than zero")
	ErrInvalidInterval = errors.New("reassort: interval must be positive")
	ErrMissingAccount  = errors.New("reassort: account id is required")
	ErrMissingProduct  = errors.New("reassort: product id is required")
)

// Config is one recurring-reorder rule for a professional account.
type Config struct {
	ID        string
	AccountID string
	ProductID string
	Quantity  int
	Interval  time.Duration
	NextRunAt time.Time
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewConfig(id, accountID, productID string, quantity int, interval time.Duration) (*Config, error) {
	if accountID == "" {
		return nil, ErrMissingAccount
	}
	if productID == "" {
		return nil, ErrMissingProduct
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	now := time.Now().UTC()
	return &Config{
		ID:        id,
		AccountID: accountID,
		ProductID: productID,
		Quantity:  quantity,
		Interval:  interval,
		NextRunAt: now.Add(interval),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Due reports whether the config should run at the given instant.
func (c *Config) Due(now time.Time) bool {
	return c.Active && !now.Before(c.NextRunAt)
}

// MarkRun advances the schedule after an execution. The next run is anchored
// on the current run instant, not on the previous target, so a late scan does
// not cause a burst of catch-up runs.
func (c *Config) MarkRun(now time.Time) {
	c.NextRunAt = now.Add(c.Interval)
	c.touch()
}

func (c *Config) touch() {
	c.UpdatedAt = time.Now().UTC()
}

// HistoryEntry records one execution of a config.
type HistoryEntry struct {
	ID       string
	ConfigID string
	RanAt    time.Time
	Quantity int
	Outcome  string
}

type Repository interface {
	Insert(ctx context.Context, cfg *Config) error
	FindByID(ctx context.Context, id string) (*Config, error)
	Update(ctx context.Context, cfg *Config) error
	Delete(ctx context.Context, id string) error
	ListByAccount(ctx context.Context, accountID string) ([]*Config, error)
	ListDue(ctx context.Context, now time.Time) ([]*Config, error)
}

type HistoryRepository interface {
	Append(ctx context.Context, entry HistoryEntry) error
	ListByConfig(ctx context.Context, configID string) ([]HistoryEntry, error)
}
