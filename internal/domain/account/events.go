package account

import "time"

// ValidatedEvent is emitted when a pending professional account is reviewed.
type ValidatedEvent struct {
	AccountID  string
	Email      string
	Approved   bool
	OccurredAt time.Time
}

func (ValidatedEvent) EventName() string { return "account.validated" }

func NewValidatedEvent(a *Account, approved bool) ValidatedEvent {
	return ValidatedEvent{
		AccountID:  a.ID,
		Email:      a.Email,
		Approved:   approved,
		OccurredAt: time.Now().UTC(),
	}
}
