package mocks

import (
	"sync"

	"github.com/syslvlup/syslvlup/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued strings are returned in order; an empty queue yields a
// deterministic string of the requested length built from the alphabet.
type MockRandom struct {
	mu      sync.Mutex
	ints    []int
	strings []string
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v
}

// String returns the next queued result
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.strings) == 0 {
		if length <= 0 || alphabet == "" {
			return ""
		}
		out := make([]byte, length)
		for i := range out {
			out[i] = alphabet[0]
		}
		return string(out)
	}
	v := r.strings[0]
	r.strings = r.strings[1:]
	return v
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ints = append(r.ints, values...)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strings = append(r.strings, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ints = nil
	r.strings = nil
}
