// Package llm is the single entry point the pipeline uses to call a
// language model: it picks between a local Ollama backend and a remote
// Groq (OpenAI-compatible) backend, bounds every call with a timeout and a
// small retry budget, and caches identical prompts so repeated turns in a
// conversation don't re-pay generation cost.
package llm

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/singleflight"

	"hotel-faq/internal/logger"
	"hotel-faq/internal/models/chat"
	"hotel-faq/internal/models/utils/ollama"
	"hotel-faq/internal/types"
)

// Config tunes backend selection and resiliency.
type Config struct {
	UseGroq     bool
	GroqAPIKey  string
	GroqModel   string
	GroqBaseURL string

	OllamaModel     string
	OllamaNumCtx    int
	OllamaKeepAlive string
	OllamaNumThread int
	OllamaNumGPU    int
	OllamaNumBatch  int

	Timeout       time.Duration
	MaxRetries    int
	CacheEnabled  bool
	CacheSize     int
	WorkerPoolCap int
}

// StreamCallback receives one generated token at a time.
type StreamCallback func(token string)

// Client is the LLM entry point: Complete runs a cached, retried,
// timeout-bounded call; CompleteStream bypasses the cache to push tokens
// to a callback as they're generated. It wraps a chat.Chat backend
// (Ollama or a Groq-pointed RemoteAPIChat) with the resiliency and caching
// layer the backend itself does not provide.
type Client struct {
	cfg     Config
	backend chat.Chat

	pool  *ants.Pool
	group singleflight.Group

	cacheMu sync.Mutex
	cache   map[string]string
	order   []string
}

// NewClient builds a Client. ollamaService is required unless cfg.UseGroq
// is true and a Groq API key is set.
func NewClient(cfg Config, ollamaService *ollama.OllamaService) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 100
	}
	if cfg.WorkerPoolCap <= 0 {
		cfg.WorkerPoolCap = 8
	}

	pool, err := ants.NewPool(cfg.WorkerPoolCap)
	if err != nil {
		return nil, fmt.Errorf("create llm worker pool: %w", err)
	}

	var backend chat.Chat
	if cfg.UseGroq && cfg.GroqAPIKey != "" {
		baseURL := cfg.GroqBaseURL
		if baseURL == "" {
			baseURL = "https://api.groq.com/openai/v1"
		}
		backend, err = chat.NewRemoteAPIChat(&chat.ChatConfig{
			Source:    types.ModelSourceRemote,
			BaseURL:   baseURL,
			ModelName: cfg.GroqModel,
			APIKey:    cfg.GroqAPIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create groq chat backend: %w", err)
		}
	} else {
		if ollamaService == nil {
			return nil, fmt.Errorf("ollama service required when Groq is not configured")
		}
		backend, err = chat.NewOllamaChat(&chat.ChatConfig{
			Source:    types.ModelSourceLocal,
			ModelName: cfg.OllamaModel,
		}, ollamaService)
		if err != nil {
			return nil, fmt.Errorf("create ollama chat backend: %w", err)
		}
	}

	return &Client{
		cfg:     cfg,
		backend: backend,
		pool:    pool,
		cache:   make(map[string]string),
	}, nil
}

// Close releases the worker pool.
func (c *Client) Close() {
	c.pool.Release()
}

func cacheKey(prompt, system string, temperature float64, maxTokens int) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s|%s|%v|%d", prompt, system, temperature, maxTokens)))
	return hex.EncodeToString(sum[:])
}

// Complete runs prompt/system through the configured backend with caching,
// timeout, and retry. A timeout is not retried (a slow backend stays slow);
// any other transient error is retried, for at most MaxRetries attempts in
// total, with a short backoff between attempts.
func (c *Client) Complete(ctx context.Context, prompt, system string, temperature float64, maxTokens int) (string, error) {
	if !c.cfg.CacheEnabled {
		return c.callWithRetry(ctx, prompt, system, temperature, maxTokens)
	}

	key := cacheKey(prompt, system, temperature, maxTokens)

	c.cacheMu.Lock()
	if cached, ok := c.cache[key]; ok {
		// Move the key to the most-recently-used end so eviction is LRU.
		for i, k := range c.order {
			if k == key {
				c.order = append(append(c.order[:i:i], c.order[i+1:]...), key)
				break
			}
		}
		c.cacheMu.Unlock()
		return cached, nil
	}
	c.cacheMu.Unlock()

	// singleflight collapses concurrent cache misses for the same key into
	// one backend call instead of N duplicate ones.
	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		out, err := c.callWithRetry(ctx, prompt, system, temperature, maxTokens)
		if err != nil {
			return "", err
		}
		c.putCache(key, out)
		return out, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) putCache(key, value string) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	if _, exists := c.cache[key]; exists {
		c.cache[key] = value
		return
	}
	if len(c.order) >= c.cfg.CacheSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.cache, oldest)
	}
	c.cache[key] = value
	c.order = append(c.order, key)
}

func (c *Client) callWithRetry(ctx context.Context, prompt, system string, temperature float64, maxTokens int) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		out, err := c.callOnceWithTimeout(ctx, prompt, system, temperature, maxTokens)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return "", err
		}
		if isTimeout(err) {
			logger.GetLogger(ctx).Warnf("llm call timed out after %s, not retrying", c.cfg.Timeout)
			return "", err
		}
		lastErr = err
		logger.GetLogger(ctx).Warnf("llm call failed (attempt %d/%d): %v", attempt, c.cfg.MaxRetries, err)
		if attempt < c.cfg.MaxRetries {
			time.Sleep(time.Second)
		}
	}
	return "", fmt.Errorf("llm call failed after %d attempts: %w", c.cfg.MaxRetries, lastErr)
}

type timeoutError struct{ timeout time.Duration }

func (e *timeoutError) Error() string { return fmt.Sprintf("llm call timed out after %s", e.timeout) }

func isTimeout(err error) bool {
	_, ok := err.(*timeoutError)
	return ok
}

// chatOptions builds the per-call options, adding the Ollama performance
// knobs only when the Ollama backend is actually in use — a Groq call
// ignores them, but there's no reason to populate fields the remote
// backend has no use for.
func (c *Client) chatOptions(temperature float64, maxTokens int) *chat.ChatOptions {
	opts := &chat.ChatOptions{
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	if !c.cfg.UseGroq {
		opts.NumCtx = c.cfg.OllamaNumCtx
		opts.NumThread = c.cfg.OllamaNumThread
		opts.NumBatch = c.cfg.OllamaNumBatch
		numGPU := c.cfg.OllamaNumGPU
		opts.NumGPU = &numGPU
	}
	return opts
}

func buildMessages(prompt, system string) []chat.Message {
	var messages []chat.Message
	if system != "" {
		messages = append(messages, chat.Message{Role: "system", Content: system})
	}
	messages = append(messages, chat.Message{Role: "user", Content: prompt})
	return messages
}

// callOnceWithTimeout runs exactly one backend call on the worker pool,
// enforcing Timeout via a done channel rather than blocking on the pooled
// goroutine past the deadline.
func (c *Client) callOnceWithTimeout(ctx context.Context, prompt, system string, temperature float64, maxTokens int) (string, error) {
	type callResult struct {
		text string
		err  error
	}
	done := make(chan callResult, 1)

	submitErr := c.pool.Submit(func() {
		resp, err := c.backend.Chat(ctx, buildMessages(prompt, system), c.chatOptions(temperature, maxTokens))
		if err != nil {
			done <- callResult{"", err}
			return
		}
		done <- callResult{resp.Content, nil}
	})
	if submitErr != nil {
		return "", fmt.Errorf("submit llm call: %w", submitErr)
	}

	select {
	case res := <-done:
		return res.text, res.err
	case <-time.After(c.cfg.Timeout):
		return "", &timeoutError{timeout: c.cfg.Timeout}
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// CompleteStream streams tokens from the backend to callback as they
// arrive. Streaming always bypasses the cache, since a caller wanting
// partial tokens wants a fresh generation, not a cache replay.
func (c *Client) CompleteStream(ctx context.Context, prompt, system string, temperature float64, maxTokens int, callback StreamCallback) (string, error) {
	stream, err := c.backend.ChatStream(ctx, buildMessages(prompt, system), c.chatOptions(temperature, maxTokens))
	if err != nil {
		return "", fmt.Errorf("stream llm call: %w", err)
	}

	var full string
	for chunk := range stream {
		if chunk.Content != "" {
			full += chunk.Content
			callback(chunk.Content)
		}
	}
	return full, nil
}
