package catalog

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Loader fetches raw template documents. Implementations live under
// internal/catalog/loader but satisfy this contract.
type Loader interface {
	Load(ctx context.Context, src Source) ([]byte, error)
}

// LoaderFunc adapts a function into a Loader.
type LoaderFunc func(ctx context.Context, src Source) ([]byte, error)

// Load calls the underlying function.
func (fn LoaderFunc) Load(ctx context.Context, src Source) ([]byte, error) {
	return fn(ctx, src)
}

// S3API is the subset of the S3 client the loader needs.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LoaderOptions configures how a Loader resolves sources.
type LoaderOptions struct {
	// FileSystem backs SourceKindFS entries. Defaults to the embedded
	// built-in templates.
	FileSystem fs.FS

	// HTTPClient allows callers to inject custom HTTP behaviour. Nil means
	// HTTP sources are disabled unless AllowHTTPFallback is true.
	HTTPClient *http.Client

	// AllowHTTPFallback enables a default HTTP client when none is supplied.
	AllowHTTPFallback bool

	// RequestTimeout caps remote fetch durations.
	RequestTimeout time.Duration

	// S3 serves SourceKindS3 entries. Nil disables S3 sources.
	S3 S3API
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects an fs.FS implementation for SourceKindFS entries.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote documents.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading with a default client and assigns an
// optional timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// WithS3Client enables S3 sources.
func WithS3Client(client S3API) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.S3 = client
	}
}

// NewLoaderOptions applies a set of LoaderOption values and returns the
// resulting configuration.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.FileSystem == nil {
		cfg.FileSystem = Builtin
	}
	return cfg
}

// Construction helpers live in the top-level promptgen package to prevent import cycles.
