package openapi

import (
	"strings"
	"sync"
)

// Document is the top-level OpenAPI 3 document, populated once per route at
// bootstrap by the route binder and handed untouched to a renderer afterwards.
type Document struct {
	OpenAPI string              `json:"openapi" yaml:"openapi"`
	Info    Info                `json:"info" yaml:"info"`
	Paths   map[string]PathItem `json:"paths" yaml:"paths"`

	mu sync.Mutex
}

// Info holds API metadata.
type Info struct {
	Title   string `json:"title" yaml:"title"`
	Version string `json:"version" yaml:"version"`
}

// PathItem maps lower-case HTTP methods to operations.
type PathItem map[string]Operation

// Operation describes a single API operation on a path.
type Operation struct {
	Tags        []string              `json:"tags,omitempty" yaml:"tags,omitempty"`
	Summary     string                `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	OperationID string                `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Parameters  []Parameter           `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Responses   map[string]Response   `json:"responses" yaml:"responses"`
	Security    []map[string][]string `json:"security,omitempty" yaml:"security,omitempty"`
}

// Parameter describes one path or query parameter.
type Parameter struct {
	Name     string `json:"name" yaml:"name"`
	In       string `json:"in" yaml:"in"` // "path" | "query"
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Schema   Schema `json:"schema" yaml:"schema"`
}

// Schema is the minimal schema object the binder derives from bindings.
type Schema struct {
	Type string `json:"type" yaml:"type"`
}

// Response describes a single response.
type Response struct {
	Description string `json:"description" yaml:"description"`
}

// NewDocument creates an empty OpenAPI 3.1 document.
func NewDocument(title, version string) *Document {
	return &Document{
		OpenAPI: "3.1.0",
		Info:    Info{Title: title, Version: version},
		Paths:   make(map[string]PathItem),
	}
}

// AddOperation merges op into paths[path][method]. The binder calls this once
// per bound route.
func (d *Document) AddOperation(path, method string, op Operation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Paths[path] == nil {
		d.Paths[path] = make(PathItem)
	}
	d.Paths[path][strings.ToLower(method)] = op
}

// Operation returns the stored operation (for tests and renderers).
func (d *Document) Operation(path, method string) (Operation, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	op, ok := d.Paths[path][strings.ToLower(method)]
	return op, ok
}
