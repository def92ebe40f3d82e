package assets

// Loader loads certificate assets by name, without extension.
type Loader interface {
	LoadStyle(name string) (string, error)
	LoadTemplate(name string) (string, error)
	LoadConditions(name string) (string, error)
}

// kind describes one asset category on disk and in the embedded tree.
type kind struct {
	dir      string
	ext      string
	notFound error
}

var (
	styleKind      = kind{dir: "styles", ext: ".css", notFound: ErrStyleNotFound}
	templateKind   = kind{dir: "templates", ext: ".html", notFound: ErrTemplateNotFound}
	conditionsKind = kind{dir: "conditions", ext: ".md", notFound: ErrConditionsNotFound}
)
