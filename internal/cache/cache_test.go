package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// unreachable returns a client whose redis never answers. Every operation
// must degrade to a cache miss rather than surface a connection error.
func unreachable() *Client {
	return New("127.0.0.1:1", "", 0)
}

func TestClient_NilFailsSafe(t *testing.T) {
	var c *Client

	b, err := c.Get(context.Background(), "k")
	assert.NoError(t, err)
	assert.Nil(t, b)

	assert.NoError(t, c.Set(context.Background(), "k", []byte("v"), time.Minute))
	assert.NoError(t, c.Delete(context.Background(), "k"))

	loaded, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		return []byte("from store"), nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []byte("from store"), loaded)
}

func TestClient_UnreachableRedisFailsSafe(t *testing.T) {
	c := unreachable()

	b, err := c.Get(context.Background(), "k")
	assert.NoError(t, err)
	assert.Nil(t, b)

	assert.NoError(t, c.Set(context.Background(), "k", []byte("v"), time.Minute))
	assert.NoError(t, c.Delete(context.Background(), "k"))

	loaded, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		return []byte("from store"), nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []byte("from store"), loaded)
}

func TestClient_GetOrLoadPropagatesLoadError(t *testing.T) {
	c := unreachable()
	wantErr := errors.New("pq: connection refused")

	_, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		return nil, wantErr
	})

	assert.ErrorIs(t, err, wantErr)
}

func TestClient_GetOrLoadCollapsesConcurrentMisses(t *testing.T) {
	c := unreachable()

	var calls int32
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	load := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		started <- struct{}{}
		<-release
		return []byte("fresh"), nil
	}

	var wg sync.WaitGroup
	results := make([][]byte, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrLoad(context.Background(), "report", time.Minute, load)
		}(i)
	}

	// Wait for the first loader to be in flight, then give the second caller
	// time to join it before letting the load finish.
	<-started
	time.Sleep(250 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "concurrent misses should share one load")
	for i := 0; i < 2; i++ {
		assert.NoError(t, errs[i])
		assert.Equal(t, []byte("fresh"), results[i])
	}
}
