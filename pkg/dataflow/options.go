package dataflow

// Option configures a pipeline stage.
type Option func(*config)

type config struct {
	workers    int
	bufferSize int
	// errorHandler sees every error a stage drops.
	errorHandler func(error)
}

func newConfig(opts []Option) *config {
	cfg := &config{workers: 1}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

func (c *config) handle(err error) {
	if c.errorHandler != nil {
		c.errorHandler(err)
	}
}

// WithWorkers sets the number of concurrent workers for a stage.
// Default is 1 (sequential).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithBufferSize sets the buffer size of a stage's output channel.
func WithBufferSize(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.bufferSize = n
		}
	}
}

// WithErrorHandler sets the handler called for every item a stage drops
// because its function failed.
func WithErrorHandler(h func(error)) Option {
	return func(c *config) {
		c.errorHandler = h
	}
}
