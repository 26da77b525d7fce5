package phy

// config.go reduces the Ticker/World construction footprint using
// functional options, grounded directly on the teacher's config.go
// Attr func(*Config) + configDefaults pattern.
// See: http://dave.cheney.net/2014/10/17/functional-options-for-friendly-apis

// tickerConfig holds the options NewTicker accepts.
type tickerConfig struct {
	tickSkipThreshold float64
}

var tickerDefaults = tickerConfig{
	tickSkipThreshold: defaultTickSkipThreshold,
}

// Option configures a Ticker at construction time.
type Option func(*tickerConfig)

// WithTickSkipThreshold overrides the catch-up cap named in §4.9/§9 Open
// Question (c) (default eng.go's capTime, 0.2s).
func WithTickSkipThreshold(seconds float64) Option {
	return func(c *tickerConfig) { c.tickSkipThreshold = seconds }
}
