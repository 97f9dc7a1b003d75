package utils

import "github.com/google/uuid"

// UUIDGenerator produces time-ordered ids for database rows and the device
// identifier. UUIDv7 keeps list queries naturally creation-ordered.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
