package services

import (
	"math/rand/v2"
	"time"
)

// IDGenerator returns a new id for a project, space or measurement.
type IDGenerator func() int64

// TimestampIDs yields unix millis plus a random offset below 1000. Ids are
// collision resistant at human interaction rates, not globally unique.
func TimestampIDs() IDGenerator {
	return func() int64 {
		return time.Now().UnixMilli() + rand.Int64N(1000)
	}
}

// SequentialIDs counts up from start. Used by tests and fixtures.
func SequentialIDs(start int64) IDGenerator {
	next := start
	return func() int64 {
		id := next
		next++
		return id
	}
}
