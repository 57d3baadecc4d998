package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	release chan struct{}
	err     error
	panics  bool
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	if g.panics {
		panic("boom")
	}
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if g.err != nil {
		return "", g.err
	}
	return "re: " + prompt.Content, nil
}

type result struct {
	reply string
	err   error
}

func collect(ch chan result) ResultFunc {
	return func(reply string, err error) {
		ch <- result{reply: reply, err: err}
	}
}

func waitResult(t *testing.T, ch chan result) result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no result delivered")
		return result{}
	}
}

func TestPool_DeliversReplies(t *testing.T) {
	pool := NewPool(&fakeGenerator{}, 2, 4, time.Second, nil)
	defer pool.Close()

	results := make(chan result, 1)
	require.NoError(t, pool.Submit(context.Background(), Prompt{Content: "hi"}, collect(results)))

	r := waitResult(t, results)
	assert.NoError(t, r.err)
	assert.Equal(t, "re: hi", r.reply)
}

func TestPool_QueueFullDoesNotBlock(t *testing.T) {
	gen := &fakeGenerator{release: make(chan struct{})}
	pool := NewPool(gen, 1, 1, 5*time.Second, nil)

	results := make(chan result, 3)
	ctx := context.Background()
	require.NoError(t, pool.Submit(ctx, Prompt{Content: "1"}, collect(results)))

	// The single worker picks up the first job, the second fills the queue.
	assert.Eventually(t, func() bool {
		return pool.Submit(ctx, Prompt{Content: "2"}, collect(results)) == nil
	}, time.Second, 5*time.Millisecond)

	start := time.Now()
	err := pool.Submit(ctx, Prompt{Content: "3"}, collect(results))
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(gen.release)
	waitResult(t, results)
	waitResult(t, results)
	pool.Close()
}

func TestPool_TimeoutCancelsGeneration(t *testing.T) {
	pool := NewPool(&fakeGenerator{release: make(chan struct{})}, 1, 1, 20*time.Millisecond, nil)
	defer pool.Close()

	results := make(chan result, 1)
	require.NoError(t, pool.Submit(context.Background(), Prompt{Content: "slow"}, collect(results)))

	r := waitResult(t, results)
	assert.ErrorIs(t, r.err, context.DeadlineExceeded)
}

func TestPool_GeneratorErrorsAndPanics(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		pool := NewPool(&fakeGenerator{err: errors.New("upstream down")}, 1, 1, time.Second, nil)
		defer pool.Close()

		results := make(chan result, 1)
		require.NoError(t, pool.Submit(context.Background(), Prompt{}, collect(results)))
		assert.EqualError(t, waitResult(t, results).err, "upstream down")
	})

	t.Run("panic", func(t *testing.T) {
		pool := NewPool(&fakeGenerator{panics: true}, 1, 1, time.Second, nil)
		defer pool.Close()

		results := make(chan result, 1)
		require.NoError(t, pool.Submit(context.Background(), Prompt{}, collect(results)))
		assert.ErrorContains(t, waitResult(t, results).err, "panicked")
	})
}

func TestPool_CloseDrainsAndRejects(t *testing.T) {
	var mu sync.Mutex
	var depths []int
	pool := NewPool(&fakeGenerator{}, 2, 8, time.Second, func(depth int) {
		mu.Lock()
		depths = append(depths, depth)
		mu.Unlock()
	})

	results := make(chan result, 5)
	for i := 0; i < 5; i++ {
		require.NoError(t, pool.Submit(context.Background(), Prompt{Content: "x"}, collect(results)))
	}
	pool.Close()
	pool.Close()

	assert.Len(t, results, 5)
	assert.ErrorIs(t, pool.Submit(context.Background(), Prompt{}, collect(results)), ErrPoolClosed)

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, depths)
}
