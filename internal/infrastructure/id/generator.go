package id

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// UUIDGenerator mints document identifiers.
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// NumberGenerator mints human-readable order numbers: a configured prefix,
// the last 8 digits of the unix-millisecond clock, and 3 random digits.
// Collisions are improbable but possible; the store's unique index and the
// caller's retry close the gap.
type NumberGenerator struct {
	prefix string
	now    func() time.Time
}

func NewNumberGenerator(prefix string) *NumberGenerator {
	return &NumberGenerator{prefix: prefix, now: time.Now}
}

func (g *NumberGenerator) Next() string {
	millis := g.now().UnixMilli()
	return fmt.Sprintf("%s%08d%03d", g.prefix, millis%100000000, rand.Intn(1000))
}
