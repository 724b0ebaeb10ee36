package model

// Builder converts templates into form models.
type Builder interface {
	Build(tpl Template) (FormModel, error)
}

// BuilderFunc adapts a function into a Builder.
type BuilderFunc func(Template) (FormModel, error)

// Build calls the underlying function.
func (fn BuilderFunc) Build(tpl Template) (FormModel, error) {
	return fn(tpl)
}
