package project

import (
	"os"

	"github.com/piwi3910/CarpetNest/internal/model"
)

// DefaultTemplatePath returns ~/.carpetnest/templates.json.
func DefaultTemplatePath() (string, error) {
	return defaultPath("templates.json")
}

// SaveTemplates writes the template store to a JSON file.
func SaveTemplates(path string, store model.TemplateStore) error {
	return writeJSON(path, store)
}

// LoadTemplates reads a template store from a JSON file. A missing file
// yields an empty store.
func LoadTemplates(path string) (model.TemplateStore, error) {
	var store model.TemplateStore
	if err := readJSON(path, &store); err != nil {
		if os.IsNotExist(err) {
			return model.NewTemplateStore(), nil
		}
		return model.TemplateStore{}, err
	}
	if store.Templates == nil {
		store.Templates = []model.NestTemplate{}
	}
	return store, nil
}

// LoadDefaultTemplates loads templates from the default path.
func LoadDefaultTemplates() (model.TemplateStore, error) {
	path, err := DefaultTemplatePath()
	if err != nil {
		return model.NewTemplateStore(), err
	}
	return LoadTemplates(path)
}

// SaveDefaultTemplates saves templates to the default path.
func SaveDefaultTemplates(store model.TemplateStore) error {
	path, err := DefaultTemplatePath()
	if err != nil {
		return err
	}
	return SaveTemplates(path, store)
}
