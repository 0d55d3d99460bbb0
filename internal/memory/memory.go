// Package memory implements the Configuration memory: a single
// bit-addressable, arbitrary-width integer shared by every core in a
// coordinator run. A Configuration's raw value IS the exploration key —
// two configurations are the same state iff their big.Int values are equal.
package memory

import (
	"math/big"

	"github.com/oisee/gcmc/internal/decode"
)

// Configuration is a fixed-width, bit-addressable store backed by a
// big.Int. Width is declared at construction and never changes; all
// addressing is relative to bit 0 at the least-significant bit.
type Configuration struct {
	width int
	value *big.Int
}

// New builds a zero-valued Configuration of the given bit width.
func New(width int) *Configuration {
	return &Configuration{width: width, value: new(big.Int)}
}

// FromBigInt builds a Configuration from an existing value, truncated (by
// masking, not by panicking) to width bits.
func FromBigInt(width int, v *big.Int) *Configuration {
	c := New(width)
	c.value.And(v, mask(width))
	return c
}

func mask(width int) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), uint(width))
	return m.Sub(m, big.NewInt(1))
}

// Width reports the declared bit width.
func (c *Configuration) Width() int {
	return c.width
}

// Clone returns a deep, independent copy — the unit of work a Coordinator
// hands each core, so no core's writes are visible to another's.
func (c *Configuration) Clone() *Configuration {
	return &Configuration{width: c.width, value: new(big.Int).Set(c.value)}
}

// Key returns the raw integer value as a string, suitable as a map key for
// the Checker's known-configurations set. Two configurations with equal
// Key() are, by definition, the same state.
func (c *Configuration) Key() string {
	return c.value.Text(16)
}

// Value exposes the backing integer directly, for callers (the CLI's
// config-file loader, the CSV reporter) that need the raw number.
func (c *Configuration) Value() *big.Int {
	return c.value
}

// Get reads a field of the given type at the given bit offset.
func (c *Configuration) Get(offset int, t decode.FieldType) uint64 {
	w := t.Width()
	shifted := new(big.Int).Rsh(c.value, uint(offset))
	shifted.And(shifted, mask(w))
	return shifted.Uint64()
}

// Set writes v into the field of the given type at the given bit offset.
// v is masked to the field's width before being shifted into place — see
// DESIGN.md open question 6: STORE/LOAD do not mask on write in the
// original, and this truncation is the one deliberate, tested deviation.
func (c *Configuration) Set(offset int, t decode.FieldType, v uint64) {
	w := t.Width()
	fieldMask := mask(w)
	truncated := new(big.Int).And(new(big.Int).SetUint64(v), fieldMask)

	clearMask := new(big.Int).Lsh(fieldMask, uint(offset))
	clearMask.Not(clearMask)
	clearMask.And(clearMask, mask(c.width))

	c.value.And(c.value, clearMask)
	truncated.Lsh(truncated, uint(offset))
	c.value.Or(c.value, truncated)
}

// Equal reports whether two configurations hold the same bits (ignoring
// width — callers compare configurations of the same width by convention).
func (c *Configuration) Equal(other *Configuration) bool {
	return c.value.Cmp(other.value) == 0
}
