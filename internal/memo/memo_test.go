package memo

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "bar", Key("bar"))
	assert.Equal(t, "map|20", Key("map", 20))
	assert.Equal(t, "chart|map|20|svg", Key("chart", "map", 20, "svg"))
	assert.NotEqual(t, Key("map", 2), Key("map", 20))
}

func TestDoComputesOnce(t *testing.T) {
	c := New()
	calls := 0
	fn := func() (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := Do(c, "answer", fn)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())
}

func TestDoKeysAreIndependent(t *testing.T) {
	c := New()
	a, err := Do(c, Key("n", 1), func() (string, error) { return "one", nil })
	require.NoError(t, err)
	b, err := Do(c, Key("n", 2), func() (string, error) { return "two", nil })
	require.NoError(t, err)

	assert.Equal(t, "one", a)
	assert.Equal(t, "two", b)
	assert.Equal(t, 2, c.Len())
}

func TestDoDoesNotCacheErrors(t *testing.T) {
	c := New()
	boom := errors.New("boom")
	calls := 0

	_, err := Do(c, "k", func() (int, error) {
		calls++
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := Do(c, "k", func() (int, error) {
		calls++
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 2, calls)
}

func TestDoConcurrent(t *testing.T) {
	var c Cache
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]int, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Do(&c, "slow", func() (int, error) {
				calls.Add(1)
				<-release
				return 9, nil
			})
			if err == nil {
				results[i] = v
			}
		}(i)
	}
	close(release)
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, 9, v)
	}
	assert.Equal(t, int32(1), calls.Load())
}
