package dice

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence_ReplaysModuloN(t *testing.T) {
	seq := NewSequence(1, 7, -3)

	assert.Equal(t, 1, seq.IntN(4))
	assert.Equal(t, 2, seq.IntN(5))  // 7 % 5
	assert.Equal(t, 0, seq.IntN(3))  // |-3| % 3
	assert.Equal(t, 1, seq.IntN(10)) // wraps to the start
	assert.Equal(t, []int{4, 5, 3, 10}, seq.Calls())
}

func TestSequence_Empty(t *testing.T) {
	seq := NewSequence()
	assert.Equal(t, 0, seq.IntN(6))
}

func TestPick(t *testing.T) {
	items := []string{"goblin", "wolf", "dark_sprite"}

	assert.Equal(t, "dark_sprite", Pick(NewSequence(2), items))
	assert.Equal(t, "goblin", Pick(NewSequence(3), items))

	assert.Panics(t, func() {
		Pick(NewSequence(0), []string{})
	})
}

func TestBetween(t *testing.T) {
	assert.Equal(t, 250, Between(NewSequence(150), 100, 200))
	assert.Equal(t, 100, Between(NewSequence(200), 100, 200))
	assert.Equal(t, 7, Between(NewSequence(9), 7, 0))
}

func TestDefaultSourcesStayInRange(t *testing.T) {
	sources := map[string]Source{
		"global": NewSource(),
		"seeded": NewSeeded(42),
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 500; i++ {
				v := src.IntN(3)
				if v < 0 || v >= 3 {
					t.Fatalf("value %d out of range", v)
				}
			}
		})
	}
}

func TestNewSeeded_Reproducible(t *testing.T) {
	a, b := NewSeeded(7), NewSeeded(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}

func TestRollerSource_CoversEveryFace(t *testing.T) {
	src := NewSeeded(3)
	seen := make(map[int]bool)
	for i := 0; i < 600; i++ {
		seen[src.IntN(6)] = true
	}
	assert.Equal(t, map[int]bool{0: true, 1: true, 2: true, 3: true, 4: true, 5: true}, seen)
	assert.Equal(t, 0, src.IntN(1))
}

func TestRollerSource_ConcurrentDraws(t *testing.T) {
	src := NewSource()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if v := src.IntN(20); v < 0 || v >= 20 {
					t.Errorf("value %d out of range", v)
					return
				}
			}
		}()
	}
	wg.Wait()
}
