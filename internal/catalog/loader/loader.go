package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-promptgen/pkg/catalog"
)

// Loader implements catalog.Loader by delegating to file, fs.FS, HTTP or S3
// strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
	s3        catalog.S3API
}

// Ensure the implementation satisfies the public interface.
var _ catalog.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options catalog.LoaderOptions) catalog.Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
		s3:        options.S3,
	}
}

// Load fetches the raw document the source points to.
func (l *Loader) Load(ctx context.Context, src catalog.Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("catalog loader: source is nil")
	}

	switch src.Kind() {
	case catalog.SourceKindFile:
		return loadFile(ctx, src.Location())
	case catalog.SourceKindFS:
		return loadFromFS(ctx, l.fs, src.Location())
	case catalog.SourceKindURL:
		if !l.allowHTTP {
			return nil, errors.New("catalog loader: http support disabled")
		}
		return loadHTTP(ctx, l.http, src.Location(), l.timeout)
	case catalog.SourceKindS3:
		if l.s3 == nil {
			return nil, errors.New("catalog loader: s3 support disabled")
		}
		return loadS3(ctx, l.s3, src.Location(), l.timeout)
	default:
		return nil, errors.New("catalog loader: unsupported source kind")
	}
}
