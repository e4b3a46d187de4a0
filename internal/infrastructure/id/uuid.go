package id

import "github.com/google/uuid"

type Generator interface {
	NewID() string
}

type uuidGenerator struct{}

// NewUUIDGenerator returns a Generator producing random UUID strings.
func NewUUIDGenerator() Generator { return uuidGenerator{} }

func (uuidGenerator) NewID() string { return uuid.NewString() }
