package listsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_OpenIsIdempotent(t *testing.T) {
	m := NewManager(testOptions(nil, &recorder{}, time.Hour))
	t.Cleanup(func() { _ = m.Close() })

	first := m.Open("one", seedState())
	second := m.Open("one", State{Markdown: "ignored"})

	assert.Same(t, first, second)
	assert.Equal(t, seedState().Markdown, second.Markdown())
	assert.Equal(t, []string{"one"}, m.Lists())
}

func TestManager_ActivateFlushesPrevious(t *testing.T) {
	rec := &recorder{}
	m := NewManager(testOptions(nil, rec, time.Hour))
	t.Cleanup(func() { _ = m.Close() })

	one := m.Open("one", State{})
	m.Open("two", State{})

	_, err := m.Activate("one")
	require.NoError(t, err)
	require.NoError(t, one.SetMarkdown("- [ ] X"))
	assert.True(t, one.Pending())

	active, err := m.Activate("two")
	require.NoError(t, err)
	assert.Equal(t, "two", active.ID())

	assert.False(t, one.Pending(), "switching away lands pending work")
	require.Len(t, one.Tasks(), 1)

	got, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, "two", got.ID())
}

func TestManager_UnknownList(t *testing.T) {
	m := NewManager(testOptions(nil, &recorder{}, time.Hour))

	_, err := m.Activate("nope")
	require.ErrorIs(t, err, ErrUnknownList)
	require.ErrorIs(t, m.Delete("nope"), ErrUnknownList)

	_, ok := m.Active()
	assert.False(t, ok)
}

func TestManager_DeleteCancelsPending(t *testing.T) {
	m := NewManager(testOptions(nil, &recorder{}, 20*time.Millisecond))

	c := m.Open("one", State{})
	_, err := m.Activate("one")
	require.NoError(t, err)
	require.NoError(t, c.SetMarkdown("- [ ] X"))

	require.NoError(t, m.Delete("one"))
	time.Sleep(60 * time.Millisecond)

	assert.Empty(t, c.Tasks())
	_, ok := m.Get("one")
	assert.False(t, ok)
	_, ok = m.Active()
	assert.False(t, ok)
}

func TestManager_Close(t *testing.T) {
	m := NewManager(testOptions(nil, &recorder{}, time.Hour))
	a := m.Open("a", State{})
	b := m.Open("b", State{})

	require.NoError(t, m.Close())

	assert.ErrorIs(t, a.Flush(), ErrClosed)
	assert.ErrorIs(t, b.Flush(), ErrClosed)
	assert.Empty(t, m.Lists())
}
