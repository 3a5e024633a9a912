package draftzero

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	username string
	password string
	db       int

	embedder  Embedder
	explainer Explainer

	dailyCallLimit   int64
	monthlyCallLimit int64

	scoreExponent  float64
	scoreThreshold float64
	maxParallel    int
	maxNodes       int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithCredentials sets the Redis username and logical database.
func WithCredentials(username string, db int) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.db = db
	})
}

// WithEmbedder sets the text embedding provider.
// Required for linkage computation; document operations work without it.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithExplainer sets the linkage explanation provider.
// Without it, qualifying pairs stay unexplained.
func WithExplainer(e Explainer) Option {
	return optionFunc(func(c *clientConfig) {
		c.explainer = e
	})
}

// WithBudget enables the per-user AI call budget. 0 = unlimited for that window.
func WithBudget(dailyCalls, monthlyCalls int64) Option {
	return optionFunc(func(c *clientConfig) {
		c.dailyCallLimit = dailyCalls
		c.monthlyCallLimit = monthlyCalls
	})
}

// WithLinkageTuning sets the similarity sharpening exponent and qualification
// threshold. Defaults: exponent 3, threshold 0.6.
func WithLinkageTuning(exponent, threshold float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.scoreExponent = exponent
		c.scoreThreshold = threshold
	})
}

// WithMaxParallel bounds concurrent AI provider calls. Default: 4.
func WithMaxParallel(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxParallel = n
	})
}

// WithMaxNodes bounds the linkage working set per document. Default: 200.
func WithMaxNodes(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxNodes = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
