package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCache_SetGetPurge(t *testing.T) {
	c := New(1, time.Minute)

	var got entry
	assert.False(t, c.Get("missing", &got))

	c.Set("k", entry{Name: "a", Count: 2})
	require.True(t, c.Get("k", &got))
	assert.Equal(t, entry{Name: "a", Count: 2}, got)
	assert.EqualValues(t, 1, c.Len())

	var list []entry
	c.Set("list", []entry{{Name: "x"}, {Name: "y"}})
	require.True(t, c.Get("list", &list))
	assert.Len(t, list, 2)

	c.Purge()
	assert.False(t, c.Get("k", &got))
	assert.EqualValues(t, 0, c.Len())
}

func TestCache_CorruptEntryIsDropped(t *testing.T) {
	c := New(0, time.Minute)
	c.Set("k", "just a string")

	var got entry
	assert.False(t, c.Get("k", &got))
	assert.EqualValues(t, 0, c.Len())
}
