package service

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// KeyGenerator mints the idempotency key for a checkout session.
type KeyGenerator interface {
	NewKey() string
}

// LegacyKeyGenerator produces "idem_<unix-millis>_<0..999>" keys.
//
// Two sessions opened in the same millisecond collide with probability 1/1000.
// Kept as the default to match what deployed clients display; use
// UUIDKeyGenerator where collisions matter.
type LegacyKeyGenerator struct {
	now  func() time.Time
	intN func(n int) int
}

// NewLegacyKeyGenerator creates a LegacyKeyGenerator on the wall clock.
func NewLegacyKeyGenerator() *LegacyKeyGenerator {
	return &LegacyKeyGenerator{now: time.Now, intN: rand.Intn}
}

// NewKey returns a fresh key.
func (g *LegacyKeyGenerator) NewKey() string {
	return fmt.Sprintf("idem_%d_%d", g.now().UnixMilli(), g.intN(1000))
}

// UUIDKeyGenerator produces collision-resistant "idem_<uuid>" keys.
type UUIDKeyGenerator struct{}

// NewUUIDKeyGenerator creates a UUIDKeyGenerator.
func NewUUIDKeyGenerator() *UUIDKeyGenerator {
	return &UUIDKeyGenerator{}
}

// NewKey returns a fresh key.
func (g *UUIDKeyGenerator) NewKey() string {
	return "idem_" + uuid.NewString()
}
