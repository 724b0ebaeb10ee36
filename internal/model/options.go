package model

import pkgmodel "github.com/goliatone/go-promptgen/pkg/model"

// Options configures the behaviour of the Builder. Options are constructed by
// the public adapters and passed into New.
type Options struct {
	Extractor  func(string) []pkgmodel.Field
	Labeler    func(pkgmodel.Field) string
	Action     func(pkgmodel.Template) string
	Method     string
	Decorators []pkgmodel.Decorator
}

func defaultOptions() Options {
	return Options{
		Extractor: parserExtractor,
		Labeler:   KeepLabel,
		Method:    "POST",
	}
}
