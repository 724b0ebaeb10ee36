package promptgen

import (
	catalogloader "github.com/goliatone/go-promptgen/internal/catalog/loader"
	internalmodel "github.com/goliatone/go-promptgen/internal/model"
	"github.com/goliatone/go-promptgen/pkg/catalog"
	"github.com/goliatone/go-promptgen/pkg/model"
)

// S3Config configures the S3 client used for s3:// template sources.
type S3Config = catalogloader.S3Config

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers. It handles file, fs, url and s3
// sources.
func NewLoader(options ...catalog.LoaderOption) catalog.Loader {
	cfg := catalog.NewLoaderOptions(options...)
	return catalogloader.New(cfg)
}

// NewS3Client builds an S3 client suitable for catalog.WithS3Client.
func NewS3Client(cfg S3Config) catalog.S3API {
	return catalogloader.NewS3Client(cfg)
}

// BuilderOptions configures NewBuilder.
type BuilderOptions = internalmodel.Options

// NewBuilder constructs the template -> form model builder backed by the
// internal implementation.
func NewBuilder(options BuilderOptions) model.Builder {
	return internalmodel.New(options)
}

// HumanizeLabels is a BuilderOptions.Labeler that turns plain token names such
// as "targetAudience" into "Target Audience".
func HumanizeLabels(field model.Field) string {
	return internalmodel.HumanizeLabeler(field)
}

// NewCatalog constructs a catalog whose loader understands every source kind.
// Catalog options are applied after the loader, so WithLoader still wins.
func NewCatalog(loaderOptions []catalog.LoaderOption, options ...catalog.Option) *catalog.Catalog {
	base := []catalog.Option{catalog.WithLoader(NewLoader(loaderOptions...))}
	return catalog.New(append(base, options...)...)
}
