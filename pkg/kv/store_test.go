package kv

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_GetSet(t *testing.T) {
	s := New[string, int]()

	s.Set("foo", 42)
	val, ok := s.Get("foo")
	assert.True(t, ok)
	assert.Equal(t, 42, val)

	_, ok = s.Get("bar")
	assert.False(t, ok)
}

func TestStore_GetOrCreate(t *testing.T) {
	s := New[string, int]()

	val, created := s.GetOrCreate("a", func() int { return 1 })
	assert.True(t, created)
	assert.Equal(t, 1, val)

	val, created = s.GetOrCreate("a", func() int { return 2 })
	assert.False(t, created)
	assert.Equal(t, 1, val, "existing value wins")
}

func TestStore_Take(t *testing.T) {
	s := New[string, string]()
	s.Set("key", "value")

	val, ok := s.Take("key")
	assert.True(t, ok)
	assert.Equal(t, "value", val)

	_, ok = s.Take("key")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStore_Drain(t *testing.T) {
	s := New[string, int]()
	s.Set("a", 1)
	s.Set("b", 2)

	vals := s.Drain()
	assert.ElementsMatch(t, []int{1, 2}, vals)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Keys())
}

func TestStore_Keys(t *testing.T) {
	s := New[string, int]()
	s.Set("x", 1)
	s.Set("y", 2)

	assert.ElementsMatch(t, []string{"x", "y"}, s.Keys())
}

func TestStore_ConcurrentGetOrCreate(t *testing.T) {
	s := New[int, int]()
	var calls atomic.Int32
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.GetOrCreate(7, func() int {
				calls.Add(1)
				return 7
			})
		}()
	}

	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, s.Len())
}
