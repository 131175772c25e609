package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("llm.provider", "mistral"))
	require.NoError(t, store.Set("llm.provider", "ollama"))

	val, ok := store.Get("llm.provider")
	assert.True(t, ok)
	assert.Equal(t, "ollama", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("s", "text"))
	require.NoError(t, store.Set("i", 30))
	require.NoError(t, store.Set("i64", int64(5)))
	require.NoError(t, store.Set("f", 1.3))
	require.NoError(t, store.Set("b", true))
	require.NoError(t, store.Set("list", []any{"Orsay", 3, "Paris"}))
	require.NoError(t, store.Set("strs", []string{"a"}))

	assert.Equal(t, "text", store.GetString("s"))
	assert.Equal(t, "", store.GetString("i"))

	assert.Equal(t, 30, store.GetInt("i"))
	assert.Equal(t, 5, store.GetInt("i64"))
	assert.Equal(t, 1, store.GetInt("f"))
	assert.Equal(t, 0, store.GetInt("s"))

	assert.InDelta(t, 1.3, store.GetFloat("f"), 1e-9)
	assert.InDelta(t, 30.0, store.GetFloat("i"), 1e-9)
	assert.InDelta(t, 5.0, store.GetFloat("i64"), 1e-9)
	assert.Zero(t, store.GetFloat("s"))
	assert.Zero(t, store.GetFloat("missing"))

	assert.True(t, store.GetBool("b"))
	assert.False(t, store.GetBool("s"))

	assert.Equal(t, []string{"Orsay", "Paris"}, store.GetStringSlice("list"))
	assert.Equal(t, []string{"a"}, store.GetStringSlice("strs"))
	assert.Nil(t, store.GetStringSlice("s"))
}

func TestConfigStoreFrom_CopiesSeed(t *testing.T) {
	seed := map[string]any{"retrieval.top_k": 6}
	store := NewConfigStoreFrom(seed)

	require.NoError(t, store.Set("retrieval.top_k", 8))

	assert.Equal(t, 8, store.GetInt("retrieval.top_k"))
	assert.Equal(t, 6, seed["retrieval.top_k"])
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set(fmt.Sprintf("k%d", n), n)
		}(i)
		go func(n int) {
			defer wg.Done()
			_ = store.GetInt(fmt.Sprintf("k%d", n))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		assert.Equal(t, i, store.GetInt(fmt.Sprintf("k%d", i)))
	}
}
