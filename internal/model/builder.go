package model

import (
	"errors"
	"fmt"
	"strings"

	pkgmodel "github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/parser"
)

var errTemplateIDMissing = errors.New("model builder: template id is required")

const (
	MetadataCustom = "custom"
	MetadataTags   = "tags"
)

// Builder converts templates into form models.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	opts := defaultOptions()
	if options.Extractor != nil {
		opts.Extractor = options.Extractor
	}
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
	}
	if options.Action != nil {
		opts.Action = options.Action
	}
	if options.Method != "" {
		opts.Method = strings.ToUpper(options.Method)
	}
	opts.Decorators = append(opts.Decorators, options.Decorators...)
	return &Builder{opts: opts}
}

// Build extracts the fields of tpl and assembles the form model renderers
// consume. Field order follows the extractor.
func (b *Builder) Build(tpl pkgmodel.Template) (pkgmodel.FormModel, error) {
	if strings.TrimSpace(tpl.ID) == "" {
		return pkgmodel.FormModel{}, errTemplateIDMissing
	}

	form := pkgmodel.FormModel{
		TemplateID:   tpl.ID,
		TemplateName: tpl.Name,
		Description:  tpl.Description,
		Method:       b.opts.Method,
		Metadata:     make(map[string]string),
	}
	if b.opts.Action != nil {
		form.Action = b.opts.Action(tpl)
	}

	fields := b.opts.Extractor(tpl.Content)
	form.Fields = make([]pkgmodel.Field, 0, len(fields))
	for _, field := range fields {
		if label := b.opts.Labeler(field); label != "" {
			field.Label = label
		}
		form.Fields = append(form.Fields, field)
	}

	if tpl.Custom {
		form.Metadata[MetadataCustom] = "true"
	}
	if len(tpl.Tags) > 0 {
		form.Metadata[MetadataTags] = strings.Join(tpl.Tags, ",")
	}

	for _, decorator := range b.opts.Decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(&form); err != nil {
			return pkgmodel.FormModel{}, fmt.Errorf("model builder: decorate %q: %w", tpl.ID, err)
		}
	}

	if len(form.Metadata) == 0 {
		form.Metadata = nil
	}
	return form, nil
}

func parserExtractor(content string) []pkgmodel.Field {
	return parser.ExtractFields(content)
}
