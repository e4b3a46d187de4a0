package reassort

import "time"

// DueEvent is emitted by the scheduler when a config reaches its next run.
type DueEvent struct {
	ConfigID   string
	AccountID  string
	ProductID  string
	Quantity   int
	OccurredAt time.Time
}

func (DueEvent) EventName() string { return "reassort.due" }

func NewDueEvent(c *Config, now time.Time) DueEvent {
	return DueEvent{
		ConfigID:   c.ID,
		AccountID:  c.AccountID,
		ProductID:  c.ProductID,
		Quantity:   c.Quantity,
		OccurredAt: now,
	}
}
