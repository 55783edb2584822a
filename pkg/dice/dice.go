package dice

import (
	"sync"

	"github.com/jwebster45206/d20"
)

// Source is a uniform random integer source.
// IntN returns a value in [0, n). Callers never pass n <= 0.
type Source interface {
	IntN(n int) int
}

// RollerSource draws by rolling a single n-sided d20 die and shifting the
// face to zero. It is safe for concurrent use.
type RollerSource struct {
	mu     sync.Mutex
	roller *d20.Roller
}

// NewSource returns a time-seeded roller source.
func NewSource() *RollerSource {
	return &RollerSource{roller: d20.NewRandomRoller()}
}

// NewSeeded returns a reproducible roller source for the given seed.
func NewSeeded(seed int64) *RollerSource {
	return &RollerSource{roller: d20.NewRoller(seed)}
}

func (s *RollerSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	outcome, err := s.roller.Dice(1, uint(n)).Roll()
	if err != nil {
		// only a zero-faced die fails
		panic("dice: " + err.Error())
	}
	return outcome.Value - 1
}

// Sequence replays a scripted list of draws. Each draw returns the next
// value modulo n, so a script always stays in range. When the script is
// exhausted it starts over.
type Sequence struct {
	mu     sync.Mutex
	values []int
	next   int
	calls  []int
}

// NewSequence creates a scripted source.
func NewSequence(values ...int) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, n)
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	if v < 0 {
		v = -v
	}
	return v % n
}

// Calls returns the n of every draw made so far.
func (s *Sequence) Calls() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.calls))
	copy(out, s.calls)
	return out
}

// Pick returns a uniformly chosen element of a non-empty slice.
// It panics on an empty slice; content tables are validated non-empty at load.
func Pick[T any](src Source, items []T) T {
	if len(items) == 0 {
		panic("dice: Pick from empty collection")
	}
	return items[src.IntN(len(items))]
}

// Between returns a value in [lo, lo+span).
func Between(src Source, lo, span int) int {
	if span <= 0 {
		return lo
	}
	return lo + src.IntN(span)
}
