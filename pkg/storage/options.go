package storage

// Option configures Put operations.
type Option func(*putOptions)

// putOptions holds configuration for Put operations.
type putOptions struct {
	key         string // Explicit key (replaces generated)
	prefix      string // Path prefix (e.g., "documents")
	name        string // Display name used in the generated key
	contentType string // Override detected content type
}

// WithKey sets an explicit storage key, replacing the generated key.
// Use this to overwrite an existing file at a specific location.
func WithKey(key string) Option {
	return func(o *putOptions) {
		o.key = key
	}
}

// WithPrefix sets a path prefix for the uploaded file.
// Example: WithPrefix("pdfs") results in "pdfs/{name}-{ulid}.{ext}"
func WithPrefix(prefix string) Option {
	return func(o *putOptions) {
		o.prefix = prefix
	}
}

// WithName sets the display name. It is slugified into the generated key.
func WithName(name string) Option {
	return func(o *putOptions) {
		o.name = name
	}
}

// WithContentType overrides the auto-detected content type.
func WithContentType(ct string) Option {
	return func(o *putOptions) {
		o.contentType = ct
	}
}

// Settings are the values a list of options resolves to.
type Settings struct {
	Key         string
	Prefix      string
	Name        string
	ContentType string
}

// Resolve applies opts for Storage implementations outside this package.
func Resolve(opts ...Option) Settings {
	o := &putOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return Settings{Key: o.key, Prefix: o.prefix, Name: o.name, ContentType: o.contentType}
}
