package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct{ ID string }

func TestNamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	root := NewStore(Options{DefaultTTL: time.Minute})
	configs := root.Namespace("config")
	other := root.Namespace(":other: ")

	configs.SetBytes(ctx, "1", []byte("doc"), 0)
	other.SetBytes(ctx, "1", []byte("x"), 0)

	got, ok := configs.GetBytes(ctx, "1")
	require.True(t, ok)
	assert.Equal(t, "doc", string(got))

	raw, ok := root.Get(ctx, "config:1")
	require.True(t, ok)
	assert.Equal(t, []byte("doc"), raw)

	configs.Flush(ctx)
	_, ok = configs.GetBytes(ctx, "1")
	assert.False(t, ok)
	_, ok = other.GetBytes(ctx, "1")
	assert.True(t, ok)
}

func TestBytesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := NewStore(Options{})
	buf := []byte("abc")
	s.SetBytes(ctx, "k", buf, 0)
	buf[0] = 'z'

	got, _ := s.GetBytes(ctx, "k")
	assert.Equal(t, "abc", string(got))
	got[1] = 'z'
	again, _ := s.GetBytes(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestLoadTyped(t *testing.T) {
	ctx := context.Background()
	s := NewStore(Options{Prefix: "serve"})
	s.Set(ctx, "snapshot", &snapshot{ID: "a"}, -1)

	snap, ok := Load[*snapshot](ctx, s, "snapshot")
	require.True(t, ok)
	assert.Equal(t, "a", snap.ID)

	_, ok = Load[string](ctx, s, "snapshot")
	assert.False(t, ok)

	_, ok = s.TTL(ctx, "snapshot")
	assert.False(t, ok)

	s.Delete(ctx, "snapshot")
	_, ok = Load[*snapshot](ctx, s, "snapshot")
	assert.False(t, ok)
}

func TestTTL(t *testing.T) {
	ctx := context.Background()
	s := NewStore(Options{DefaultTTL: time.Minute})
	s.Set(ctx, "k", 1, 0)

	ttl, ok := s.TTL(ctx, "k")
	require.True(t, ok)
	assert.InDelta(t, time.Minute.Seconds(), ttl.Seconds(), 5)

	s.Set(ctx, "short", 1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	_, ok = s.Get(ctx, "short")
	assert.False(t, ok)
}

func TestIncrement(t *testing.T) {
	ctx := context.Background()
	s := NewStore(Options{}).Namespace("rate")

	n, err := s.Increment(ctx, "1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = s.Increment(ctx, "1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ttl, ok := s.TTL(ctx, "1.2.3.4")
	require.True(t, ok)
	assert.LessOrEqual(t, ttl, time.Minute)

	s.Set(ctx, "text", "x", 0)
	_, err = s.Increment(ctx, "text", 1, 0)
	assert.Error(t, err)
}
