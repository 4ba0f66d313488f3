package exchange

type Option func(*Options)

type Options struct {
	// Reload forces a market catalog refresh instead of serving the cache.
	Reload bool
}

func WithReload() Option {
	return func(o *Options) {
		o.Reload = true
	}
}

func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
