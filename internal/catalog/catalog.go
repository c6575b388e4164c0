// Package catalog holds the immutable model catalog: the set of chat models
// this relay accepts, built once at startup and passed by reference into the
// handlers and relay.
package catalog

import (
	"fmt"
)

// Model describes a single chat model in the catalog.
type Model struct {
	ID            string `json:"id"`
	Object        string `json:"object"`
	Created       int64  `json:"created"`
	OwnedBy       string `json:"owned_by"`
	Active        bool   `json:"active"`
	ContextWindow int    `json:"context_window"`
}

// Catalog is an immutable, ordered collection of models with a default id.
type Catalog struct {
	defaultID string
	models    []Model
	byID      map[string]Model
}

// New builds a catalog from an ordered model list. Ids must be unique and the
// default id must be present in the list.
func New(defaultID string, models []Model) (*Catalog, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("catalog: model list is empty")
	}

	byID := make(map[string]Model, len(models))
	for _, m := range models {
		if m.ID == "" {
			return nil, fmt.Errorf("catalog: model with empty id")
		}
		if _, dup := byID[m.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate model id %q", m.ID)
		}
		byID[m.ID] = m
	}

	if _, ok := byID[defaultID]; !ok {
		return nil, fmt.Errorf("catalog: default model %q not in catalog", defaultID)
	}

	return &Catalog{
		defaultID: defaultID,
		models:    append([]Model(nil), models...),
		byID:      byID,
	}, nil
}

// Default returns the model id substituted when a request omits the model.
func (c *Catalog) Default() string {
	return c.defaultID
}

// Lookup returns the model for id, if it exists.
func (c *Catalog) Lookup(id string) (Model, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// List returns the models in their catalog order. The slice is a copy.
func (c *Catalog) List() []Model {
	return append([]Model(nil), c.models...)
}

// Builtin returns the compiled-in catalog of supported chat models.
func Builtin() []Model {
	return []Model{
		{ID: "llama3-8b-8192", Object: "model", Created: 1693721698, OwnedBy: "Meta", Active: true, ContextWindow: 8192},
		{ID: "llama3-70b-8192", Object: "model", Created: 1693721698, OwnedBy: "Meta", Active: true, ContextWindow: 8192},
		{ID: "llama2-70b-4096", Object: "model", Created: 1693721698, OwnedBy: "Meta", Active: true, ContextWindow: 4096},
		{ID: "mixtral-8x7b-32768", Object: "model", Created: 1693721698, OwnedBy: "Mistral AI", Active: true, ContextWindow: 32768},
		{ID: "gemma-7b-it", Object: "model", Created: 1693721698, OwnedBy: "Google", Active: true, ContextWindow: 8192},
	}
}
