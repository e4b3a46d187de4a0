package quote

import "time"

// SubmittedEvent is emitted when a quote request passes validation and is
// persisted. The notification context subscribes to it.
type SubmittedEvent struct {
	QuoteID     string
	CompanyName string
	Email       string
	ItemCount   int
	OccurredAt  time.Time
}

func (SubmittedEvent) EventName() string { return "quote.submitted" }

func NewSubmittedEvent(r *Request) SubmittedEvent {
	return SubmittedEvent{
		QuoteID:     r.ID,
		CompanyName: r.CompanyName,
		Email:       r.Email,
		ItemCount:   len(r.Items),
		OccurredAt:  time.Now().UTC(),
	}
}
