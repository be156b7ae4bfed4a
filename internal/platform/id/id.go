// Package id provides monotonically increasing integer identifiers.
//
// Each entity class owns one Sequence. Identifiers start at 1, never
// repeat, and are safe to allocate from concurrent goroutines.
package id

import "sync/atomic"

// Sequence issues unique, strictly increasing int64 identifiers.
// The zero value is ready to use.
type Sequence struct {
	last atomic.Int64
}

// Next returns the next identifier in the sequence.
func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}

// Last returns the most recently issued identifier, or 0 when none
// has been issued yet.
func (s *Sequence) Last() int64 {
	return s.last.Load()
}
