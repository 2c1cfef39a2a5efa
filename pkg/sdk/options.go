package shelfdex

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs     []string
	password  string
	keyPrefix string

	index            string
	vectorDimensions int
	similarity       string
	algorithm        string
	hnswM            int
	hnswEFConstruct  int

	embedder     Embedder
	provider     string // openai | langchain, used when embedder is nil
	backend      string
	model        string
	apiKey       string
	baseURL      string
	onFailure    string
	concurrency  int
	cacheEnabled bool

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithRedis sets the Redis address and password.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix sets the prefix of every key the client writes. Default "shelfdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithIndex sets the index name. Default "books".
func WithIndex(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.index = name
	})
}

// WithVectorDimensions sets the embedding dimension of the index. Required.
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithSimilarity sets the vector metric: cosine (default), l2 or ip.
func WithSimilarity(metric string) Option {
	return optionFunc(func(c *clientConfig) {
		c.similarity = metric
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
// Defaults: M=16, EFConstruct=200.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.algorithm = "hnsw"
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithFlatIndex switches the vector index to brute force.
func WithFlatIndex() Option {
	return optionFunc(func(c *clientConfig) {
		c.algorithm = "flat"
	})
}

// WithEmbedder sets a custom embedding provider. It takes precedence over
// WithOpenAI and WithOllama.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithOpenAI embeds through the OpenAI API.
func WithOpenAI(apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.provider = "openai"
		c.apiKey = apiKey
		c.model = model
	})
}

// WithOllama embeds through a local Ollama server. An empty baseURL uses
// the Ollama default.
func WithOllama(baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.provider = "langchain"
		c.backend = "ollama"
		c.baseURL = baseURL
		c.model = model
	})
}

// WithOnFailure sets what a write does when embedding fails: "degrade"
// (default) stores the document without an embedding, "abort" fails it.
func WithOnFailure(policy string) Option {
	return optionFunc(func(c *clientConfig) {
		c.onFailure = policy
	})
}

// WithConcurrency bounds concurrent embedding calls in bulk loads. Default 4.
func WithConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.concurrency = n
	})
}

// WithEmbeddingCache memoizes embeddings in memory and in Redis.
func WithEmbeddingCache() Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheEnabled = true
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
