package internal

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// IDGenerator supplies identifiers for conversations and messages that arrive without one
type IDGenerator interface {
	NewID() string
}

// IDFunc adapts a plain function to IDGenerator
type IDFunc func() string

// NewID calls f
func (f IDFunc) NewID() string {
	return f()
}

// UUIDGenerator produces random UUIDv4 identifiers
type UUIDGenerator struct{}

// NewID returns a new random UUID string
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SequentialIDs produces prefix-1, prefix-2, ... and is safe for concurrent use.
// Useful where reproducible output matters, such as tests and golden exports.
type SequentialIDs struct {
	Prefix string
	n      atomic.Int64
}

// NewID returns the next identifier in the sequence
func (s *SequentialIDs) NewID() string {
	return s.Prefix + "-" + strconv.FormatInt(s.n.Add(1), 10)
}

// Clock returns the current time
type Clock func() time.Time

// SystemClock is the wall clock
func SystemClock() time.Time {
	return time.Now()
}

// FixedClock returns a Clock that always reports t
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
