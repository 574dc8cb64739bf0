package idgen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence_Next(t *testing.T) {
	s := NewSequence(0)
	assert.Equal(t, uint(1), s.Next())
	assert.Equal(t, uint(2), s.Next())
	assert.Equal(t, uint(2), s.Last())
}

// TestSequence_Observe 已有数据的最大ID+1
func TestSequence_Observe(t *testing.T) {
	s := NewSequence(0)
	s.Observe(7)
	s.Observe(3)
	assert.Equal(t, uint(8), s.Next())
}

func TestSequence_Concurrent(t *testing.T) {
	s := NewSequence(0)
	const n = 100

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[uint]bool, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := s.Next()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
	assert.Equal(t, uint(n), s.Last())
}
