package assets

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
)

//go:embed styles/* templates/* conditions/*
var embedded embed.FS

// EmbeddedLoader loads the assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return e.load(styleKind, name)
}

func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return e.load(templateKind, name)
}

func (e *EmbeddedLoader) LoadConditions(name string) (string, error) {
	return e.load(conditionsKind, name)
}

func (e *EmbeddedLoader) load(k kind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	content, err := embedded.ReadFile(path.Join(k.dir, name+k.ext))
	if err != nil {
		return "", fmt.Errorf("%w: %q", k.notFound, name)
	}
	return string(content), nil
}

// EmbeddedNames lists the built-in asset names of the category whose
// not-found error is notFound (ErrStyleNotFound, ErrTemplateNotFound or
// ErrConditionsNotFound). It returns nil for any other error.
func EmbeddedNames(notFound error) []string {
	for _, k := range []kind{styleKind, templateKind, conditionsKind} {
		if !errors.Is(notFound, k.notFound) {
			continue
		}
		entries, err := embedded.ReadDir(k.dir)
		if err != nil {
			return nil
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), k.ext) {
				names = append(names, strings.TrimSuffix(e.Name(), k.ext))
			}
		}
		sort.Strings(names)
		return names
	}
	return nil
}

var _ Loader = (*EmbeddedLoader)(nil)
