// Package container wires the application's dependency graph: config,
// tracing, the goroutine pool, the LLM and reranker backends, the
// retrieval index, and the nine pipeline node plugins, then exposes a gin
// engine and an asynq worker/scheduler pair through the same dig container
// the teacher module used for its own service wiring.
package container

import (
	"fmt"
	"os"
	"strconv"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/dig"

	"hotel-faq/internal/config"
	"hotel-faq/internal/content"
	"hotel-faq/internal/entity"
	"hotel-faq/internal/grounding"
	"hotel-faq/internal/handler"
	"hotel-faq/internal/hotel"
	"hotel-faq/internal/llm"
	modelrerank "hotel-faq/internal/models/rerank"
	"hotel-faq/internal/models/utils/ollama"
	"hotel-faq/internal/pipeline"
	"hotel-faq/internal/rerank"
	"hotel-faq/internal/router"
	"hotel-faq/internal/session"
	"hotel-faq/internal/tracing"
	"hotel-faq/internal/types"
	"hotel-faq/internal/verify"
	"hotel-faq/internal/vectorindex"
)

// BuildContainer registers every dependency the application needs and
// returns the same container for chaining.
func BuildContainer(container *dig.Container) *dig.Container {
	must(container.Provide(NewResourceCleaner))

	// Core infrastructure
	must(container.Provide(config.LoadConfig))
	must(container.Provide(initTracer))
	must(container.Provide(initAntsPool))
	must(container.Invoke(registerPoolCleanup))

	// Model backends
	must(container.Provide(initOllamaService))
	must(container.Provide(initLLMClient))
	must(container.Provide(initReranker))
	must(container.Provide(initVectorIndex))

	// Domain collaborators
	must(container.Provide(initSessionStore))
	must(container.Provide(entity.NewDefaultResolver))
	must(container.Provide(initGroundingGate))
	must(container.Provide(grounding.NewCategoryChecker))
	must(container.Provide(initVerifier))

	// Pipeline: the event manager plus every self-registering node plugin
	must(container.Provide(pipeline.NewEventManager))
	must(container.Invoke(pipeline.NewRewritePlugin))
	must(container.Invoke(pipeline.NewPreprocessPlugin))
	must(container.Invoke(pipeline.NewClarifyPlugin))
	must(container.Invoke(pipeline.NewRetrievePlugin))
	must(container.Invoke(func(events *pipeline.EventManager, cfg *config.Config) {
		pipeline.NewEvidenceGatePlugin(events, pipeline.EvidenceGateConfig{
			EvidenceThreshold: cfg.Conversation.EvidenceThreshold,
			MinChunks:         cfg.Conversation.MinChunksRequired,
		})
	}))
	must(container.Invoke(pipeline.NewComposePlugin))
	must(container.Invoke(pipeline.NewVerifyPlugin))
	must(container.Invoke(pipeline.NewPolicyPlugin))
	must(container.Invoke(pipeline.NewLogPlugin))
	must(container.Provide(pipeline.NewOrchestrator))

	// HTTP handlers
	must(container.Provide(handler.NewChatHandler))
	must(container.Provide(handler.NewSystemHandler))

	// Router and background scheduler
	must(container.Provide(router.NewRouter))
	must(container.Provide(router.NewAsyncqClient))
	must(container.Provide(router.NewAsynqServer))
	must(container.Invoke(router.RunAsynqServer))
	must(container.Invoke(func(cfg *config.Config, cleaner *ResourceCleaner) error {
		scheduler, err := router.RunAsynqScheduler(cfg)
		if err != nil {
			return err
		}
		cleaner.RegisterWithName("AsynqScheduler", func() error {
			scheduler.Shutdown()
			return nil
		})
		return nil
	}))

	return container
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// initTracer initializes OpenTelemetry tracing.
func initTracer() (*tracing.Tracer, error) {
	return tracing.InitTracer()
}

// initAntsPool creates a goroutine pool that is released on shutdown; the
// LLM client builds and uses its own separate pool.
func initAntsPool(cfg *config.Config) (*ants.Pool, error) {
	poolSize := os.Getenv("CONCURRENCY_POOL_SIZE")
	if poolSize == "" {
		poolSize = strconv.Itoa(cfg.Conversation.LLM.WorkerPoolCap)
	}
	size, err := strconv.Atoi(poolSize)
	if err != nil || size <= 0 {
		size = 8
	}
	return ants.NewPool(size, ants.WithPreAlloc(true))
}

func registerPoolCleanup(pool *ants.Pool, cleaner *ResourceCleaner) {
	cleaner.RegisterWithName("AntsPool", func() error {
		pool.Release()
		return nil
	})
}

// initOllamaService builds the shared Ollama HTTP client.
func initOllamaService() (*ollama.OllamaService, error) {
	return ollama.GetOllamaService()
}

// initLLMClient builds llm.Client from the conversation's LLM settings.
func initLLMClient(cfg *config.Config, ollamaService *ollama.OllamaService) (*llm.Client, error) {
	l := cfg.Conversation.LLM
	return llm.NewClient(llm.Config{
		UseGroq:     l.UseGroq,
		GroqAPIKey:  l.GroqAPIKey,
		GroqModel:   l.GroqModel,
		GroqBaseURL: l.GroqBaseURL,

		OllamaModel:     l.OllamaModel,
		OllamaNumCtx:    l.OllamaNumCtx,
		OllamaKeepAlive: l.OllamaKeepAlive,
		OllamaNumThread: l.OllamaNumThread,
		OllamaNumGPU:    l.OllamaNumGPU,
		OllamaNumBatch:  l.OllamaNumBatch,

		Timeout:       l.Timeout,
		MaxRetries:    l.MaxRetries,
		CacheEnabled:  l.CacheEnabled,
		CacheSize:     l.CacheSize,
		WorkerPoolCap: l.WorkerPoolCap,
	}, ollamaService)
}

// findModelConfig returns the first configured model of the given type, or
// a remote-source config with no base URL, model or key when none is
// configured; a reranker built from it has no usable endpoint, and its
// call errors surface as rerank failures.
func findModelConfig(cfg *config.Config, modelType string) config.ModelConfig {
	for _, m := range cfg.Models {
		if m.Type == modelType {
			return m
		}
	}
	return config.ModelConfig{Type: modelType, Source: string(types.ModelSourceRemote)}
}

// initReranker builds the higher-level rerank.Reranker over whichever
// modelrerank.Reranker backend is configured.
func initReranker(cfg *config.Config) (*rerank.Reranker, error) {
	m := findModelConfig(cfg, "rerank")
	backend, err := modelrerank.NewReranker(&modelrerank.RerankerConfig{
		APIKey:    m.APIKey,
		BaseURL:   m.BaseURL,
		ModelName: m.ModelName,
		Source:    types.ModelSource(m.Source),
	})
	if err != nil {
		return nil, fmt.Errorf("build reranker backend: %w", err)
	}
	return rerank.NewReranker(backend, rerank.Config{
		MinKeep:               cfg.Conversation.RerankMinKeep,
		RelativeThreshold:     cfg.Conversation.RerankRelativeThreshold,
		SkipThreshold:         cfg.Conversation.RerankSkipThreshold,
		AbsoluteRawScoreFloor: cfg.Conversation.RerankAbsoluteRawFloor,
		MaxCacheEntries:       cfg.Conversation.RerankCacheSize,
	}), nil
}

// initGroundingGate builds grounding.Gate from the conversation's grounding
// evidence threshold setting.
func initGroundingGate(cfg *config.Config) *grounding.Gate {
	return grounding.NewGate(grounding.Config{EvidenceThreshold: cfg.Conversation.GroundingEvidenceThreshold})
}

// initVectorIndex wires the retrieval index. Populating it from a real
// document store is an integration concern outside this spec's scope
// (crawling/ingestion are explicitly excluded); this seeds the built-in
// sample corpus so the pipeline is exercisable out of the box.
func initVectorIndex() vectorindex.Index {
	return vectorindex.NewMemoryIndex(content.Seed())
}

// initSessionStore builds the TTL-evicted conversation store.
func initSessionStore(cfg *config.Config) *session.Store {
	return session.NewStore(cfg.Session.TTL, cfg.Session.MaxSessions)
}

// initVerifier builds the answer verifier over the built-in hotel
// configuration entities; a deployment with a curated proper-noun
// whitelist would load it via hotel.LoadKnownNames instead of nil.
func initVerifier() *verify.Verifier {
	return verify.NewVerifier(nil, hotel.ForbiddenKeywords, hotel.SuspiciousPatterns)
}
