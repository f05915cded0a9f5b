package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-faq/internal/models/chat"
	"hotel-faq/internal/types"
)

// fakeChat is a minimal chat.Chat stand-in so Client's caching/retry/timeout
// layer can be exercised without a real Ollama/Groq backend.
type fakeChat struct {
	calls   int32
	content string
	err     error
	delay   time.Duration
}

func (f *fakeChat) Chat(ctx context.Context, messages []chat.Message, opts *chat.ChatOptions) (*types.ChatResponse, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &types.ChatResponse{Content: f.content}, nil
}

func (f *fakeChat) ChatStream(ctx context.Context, messages []chat.Message, opts *chat.ChatOptions) (<-chan types.StreamResponse, error) {
	ch := make(chan types.StreamResponse, 1)
	ch <- types.StreamResponse{Content: f.content, Done: true}
	close(ch)
	return ch, nil
}

func (f *fakeChat) GetModelName() string { return "fake" }
func (f *fakeChat) GetModelID() string   { return "fake-id" }

func newTestClient(t *testing.T, backend chat.Chat, cfg Config) *Client {
	t.Helper()
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 10
	}
	pool, err := ants.NewPool(4)
	require.NoError(t, err)
	return &Client{cfg: cfg, backend: backend, pool: pool, cache: make(map[string]string)}
}

func TestCompleteReturnsBackendContent(t *testing.T) {
	backend := &fakeChat{content: "안녕하세요"}
	c := newTestClient(t, backend, Config{})
	defer c.Close()

	out, err := c.Complete(context.Background(), "prompt", "system", 0.2, 100)
	require.NoError(t, err)
	assert.Equal(t, "안녕하세요", out)
}

func TestCompleteCachesIdenticalCalls(t *testing.T) {
	backend := &fakeChat{content: "cached"}
	c := newTestClient(t, backend, Config{CacheEnabled: true})
	defer c.Close()

	out1, err := c.Complete(context.Background(), "same prompt", "sys", 0.2, 100)
	require.NoError(t, err)
	out2, err := c.Complete(context.Background(), "same prompt", "sys", 0.2, 100)
	require.NoError(t, err)

	assert.Equal(t, out1, out2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.calls), "second identical call must hit the cache, not the backend")
}

func TestCompleteBypassesCacheWhenDisabled(t *testing.T) {
	backend := &fakeChat{content: "x"}
	c := newTestClient(t, backend, Config{CacheEnabled: false})
	defer c.Close()

	_, err := c.Complete(context.Background(), "p", "s", 0.2, 100)
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), "p", "s", 0.2, 100)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&backend.calls))
}

func TestCompleteRetriesTransientFailure(t *testing.T) {
	backend := &fakeChat{err: errors.New("temporary glitch")}
	c := newTestClient(t, backend, Config{MaxRetries: 2})
	defer c.Close()

	_, err := c.Complete(context.Background(), "p", "s", 0.2, 100)
	assert.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&backend.calls), "must make at most MaxRetries attempts in total")
}

func TestCompleteDoesNotRetryOnTimeout(t *testing.T) {
	backend := &fakeChat{content: "slow", delay: 50 * time.Millisecond}
	c := newTestClient(t, backend, Config{Timeout: 10 * time.Millisecond, MaxRetries: 3})
	defer c.Close()

	_, err := c.Complete(context.Background(), "p", "s", 0.2, 100)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.calls), "a timeout must not be retried")
}

func TestPutCacheEvictsOldestPastCacheSize(t *testing.T) {
	c := newTestClient(t, &fakeChat{}, Config{CacheSize: 2})
	defer c.Close()

	c.putCache("a", "1")
	c.putCache("b", "2")
	c.putCache("c", "3")

	assert.Len(t, c.cache, 2)
	_, ok := c.cache["a"]
	assert.False(t, ok, "oldest entry must be evicted once size exceeds CacheSize")
}

func TestCompleteStreamAssemblesChunks(t *testing.T) {
	backend := &fakeChat{content: "스트림 응답"}
	c := newTestClient(t, backend, Config{})
	defer c.Close()

	var received string
	full, err := c.CompleteStream(context.Background(), "p", "s", 0.2, 100, func(token string) {
		received += token
	})
	require.NoError(t, err)
	assert.Equal(t, "스트림 응답", full)
	assert.Equal(t, "스트림 응답", received)
}

func TestNewClientRequiresOllamaServiceWhenGroqDisabled(t *testing.T) {
	_, err := NewClient(Config{}, nil)
	assert.Error(t, err)
}

func TestNewClientRequiresGroqAPIKeyFallsBackToError(t *testing.T) {
	_, err := NewClient(Config{UseGroq: true}, nil)
	assert.Error(t, err, "UseGroq without an API key falls through to the Ollama branch, which requires a service")
}
