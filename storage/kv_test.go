package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestLoadJSON_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	in := doc{Name: "bandana", Count: 3}
	require.NoError(t, SaveJSON(ctx, kv, "k", in))

	var out doc
	ok := LoadJSON(ctx, kv, "k", &out)
	assert.True(t, ok)
	assert.Equal(t, in, out)
}

func TestLoadJSON_AbsentKey(t *testing.T) {
	var out doc
	ok := LoadJSON(context.Background(), NewMemory(), "missing", &out)
	assert.False(t, ok)
}

func TestLoadJSON_CorruptDocumentReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, "k", []byte("{not json")))

	var out doc
	ok := LoadJSON(ctx, kv, "k", &out)
	assert.False(t, ok)
	assert.Zero(t, out)
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, "k", []byte("v")))
	require.NoError(t, kv.Delete(ctx, "k"))

	_, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, "k", []byte("abc")))

	data, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	data[0] = 'x'
	again, _, _ := kv.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}
