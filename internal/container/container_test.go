package container

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-faq/internal/config"
	"hotel-faq/internal/types"
)

func TestFindModelConfigReturnsConfiguredEntry(t *testing.T) {
	cfg := &config.Config{Models: []config.ModelConfig{
		{Type: "chat", ModelName: "chat-model"},
		{Type: "rerank", ModelName: "rerank-model"},
	}}
	m := findModelConfig(cfg, "rerank")
	assert.Equal(t, "rerank-model", m.ModelName)
}

func TestFindModelConfigFallsBackToRemoteZeroValue(t *testing.T) {
	cfg := &config.Config{Models: nil}
	m := findModelConfig(cfg, "rerank")
	assert.Equal(t, "rerank", m.Type)
	assert.Equal(t, string(types.ModelSourceRemote), m.Source)
	assert.Empty(t, m.ModelName)
}

func TestInitVectorIndexIsSeededAndSearchable(t *testing.T) {
	idx := initVectorIndex()
	require.NotNil(t, idx)
}

func TestInitSessionStoreUsesConfiguredTTL(t *testing.T) {
	cfg := &config.Config{Session: &config.SessionConfig{TTL: 30 * time.Minute, MaxSessions: 10}}
	store := initSessionStore(cfg)
	require.NotNil(t, store)
	sess := store.GetOrCreate("s1")
	assert.NotNil(t, sess)
}

func TestInitVerifierBuildsUsableVerifier(t *testing.T) {
	v := initVerifier()
	require.NotNil(t, v)
	ok, issues := v.CheckResponseQuality("정상적인 한글 답변입니다")
	assert.True(t, ok)
	assert.Empty(t, issues)
}

func TestInitAntsPoolFallsBackToDefaultSizeOnInvalidConfig(t *testing.T) {
	cfg := &config.Config{Conversation: &config.ConversationConfig{LLM: &config.LLMConfig{WorkerPoolCap: 0}}}
	t.Setenv("CONCURRENCY_POOL_SIZE", "")
	pool, err := initAntsPool(cfg)
	require.NoError(t, err)
	require.NotNil(t, pool)
	defer pool.Release()
	assert.Equal(t, 8, pool.Cap())
}

func TestInitAntsPoolHonorsEnvOverride(t *testing.T) {
	cfg := &config.Config{Conversation: &config.ConversationConfig{LLM: &config.LLMConfig{WorkerPoolCap: 4}}}
	t.Setenv("CONCURRENCY_POOL_SIZE", "3")
	pool, err := initAntsPool(cfg)
	require.NoError(t, err)
	defer pool.Release()
	assert.Equal(t, 3, pool.Cap())
}
