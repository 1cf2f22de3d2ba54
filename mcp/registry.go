package mcp

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Registry holds the tool and resource definitions advertised by an MCP server.
// It is safe for concurrent use; definitions can be registered while the server is running.
type Registry struct {
	mu          sync.Mutex
	definitions map[string]ToolDefinition
	order       []string
	resources   []ResourceDefinition
	templates   []ResourceTemplate
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		definitions: make(map[string]ToolDefinition),
		order:       make([]string, 0),
	}
}

// Register adds a tool definition. If a tool with the same name already exists,
// it is replaced. Returns an error if the name is missing or the input schema
// is not a JSON object.
func (r *Registry) Register(definition ToolDefinition) error {
	if definition.Name == "" {
		return fmt.Errorf("register tool: missing tool name")
	}
	if len(definition.InputSchema) == 0 {
		return fmt.Errorf("register tool: missing input schema for %q", definition.Name)
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(definition.InputSchema, &probe); err != nil || probe == nil {
		return fmt.Errorf("register tool: input schema for %q is not a JSON object", definition.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[definition.Name]; !exists {
		r.order = append(r.order, definition.Name)
	}
	r.definitions[definition.Name] = definition
	return nil
}

// RegisterResource adds a static resource definition.
func (r *Registry) RegisterResource(resource ResourceDefinition) error {
	if resource.URI == "" || resource.Name == "" {
		return fmt.Errorf("register resource: uri and name are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.resources {
		if existing.URI == resource.URI {
			r.resources[i] = resource
			return nil
		}
	}
	r.resources = append(r.resources, resource)
	return nil
}

// RegisterTemplate adds a parameterized resource definition.
func (r *Registry) RegisterTemplate(template ResourceTemplate) error {
	if template.URITemplate == "" || template.Name == "" {
		return fmt.Errorf("register resource template: uriTemplate and name are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.templates = append(r.templates, template)
	return nil
}

// Has reports whether a tool named name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.definitions[name]
	return ok
}

// Definitions returns the tool definitions for all registered tools
// in the order they were first registered. This is used by tools/list.
func (r *Registry) Definitions() []ToolDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()

	defs := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		if def, ok := r.definitions[name]; ok {
			defs = append(defs, def)
		}
	}
	return defs
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.order...)
}

// Resources returns the static resource definitions in registration order.
func (r *Registry) Resources() []ResourceDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append(make([]ResourceDefinition, 0, len(r.resources)), r.resources...)
}

// Templates returns the resource templates in registration order.
func (r *Registry) Templates() []ResourceTemplate {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append(make([]ResourceTemplate, 0, len(r.templates)), r.templates...)
}
