package dedupe

// Option applies a configuration option to the request tracker.
type Option func(*ringTracker)

// WithMaxSize sets how many request IDs are remembered. Once full, the
// oldest ID is forgotten first. maxSize <= 0 means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *ringTracker) {
		d.maxSize = maxSize
	}
}
