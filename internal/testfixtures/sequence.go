package testfixtures

import (
	"fmt"
	"sync"
)

// Sequence hands out predictable session ids and bearer tokens of the form
// "{prefix}-{n}" and remembers what it issued.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	issued []string
}

// NewSequence returns a sequence whose values start with prefix.
func NewSequence(prefix string) *Sequence {
	if prefix == "" {
		prefix = "seq"
	}
	return &Sequence{prefix: prefix}
}

// Next issues the following value.
func (s *Sequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	value := fmt.Sprintf("%s-%d", s.prefix, len(s.issued)+1)
	s.issued = append(s.issued, value)
	return value
}

// Func exposes Next for injection into service constructors.
func (s *Sequence) Func() func() string {
	return s.Next
}

// Last returns the most recently issued value, or "" before the first call.
func (s *Sequence) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.issued) == 0 {
		return ""
	}
	return s.issued[len(s.issued)-1]
}

// Issued returns a copy of every value handed out so far.
func (s *Sequence) Issued() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.issued...)
}
