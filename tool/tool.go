// Package tool defines the contract shared by every category handler: the
// argument bag, the typed error taxonomy, and named tool sets.
package tool

import (
	"context"
	"fmt"

	"github.com/bpowers/algorand-mcp/jsonvalue"
	"github.com/bpowers/algorand-mcp/schema"
)

// Handler serves every tool name in its partition. Handlers are stateless
// between calls and report failures as *Error values.
type Handler interface {
	Handle(ctx context.Context, name string, args Args) (jsonvalue.Value, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, name string, args Args) (jsonvalue.Value, error)

func (f HandlerFunc) Handle(ctx context.Context, name string, args Args) (jsonvalue.Value, error) {
	return f(ctx, name, args)
}

// Definition describes a tool as advertised by tools/list.
type Definition struct {
	Name        string
	Description string
	InputSchema *schema.JSON
}

// Func implements a single tool.
type Func func(ctx context.Context, args Args) (jsonvalue.Value, error)

// Tool pairs a definition with its implementation.
type Tool struct {
	Definition
	Func Func
}

// Set is a Handler over a fixed collection of exactly-named tools.
type Set struct {
	tools []Tool
	index map[string]int
}

// NewSet builds a Set. Tool names must be unique and every tool needs an
// input schema.
func NewSet(tools ...Tool) (*Set, error) {
	s := &Set{
		tools: make([]Tool, 0, len(tools)),
		index: make(map[string]int, len(tools)),
	}
	for _, t := range tools {
		if t.Name == "" {
			return nil, fmt.Errorf("new tool set: missing tool name")
		}
		if t.Func == nil {
			return nil, fmt.Errorf("new tool set: %q has no implementation", t.Name)
		}
		if t.InputSchema == nil {
			return nil, fmt.Errorf("new tool set: missing input schema for %q", t.Name)
		}
		if _, dup := s.index[t.Name]; dup {
			return nil, fmt.Errorf("new tool set: duplicate tool %q", t.Name)
		}
		s.index[t.Name] = len(s.tools)
		s.tools = append(s.tools, t)
	}
	return s, nil
}

// MustSet is like NewSet but panics on error; it is used for the static
// tool tables each category declares.
func MustSet(tools ...Tool) *Set {
	s, err := NewSet(tools...)
	if err != nil {
		panic(err)
	}
	return s
}

// Handle implements Handler.
func (s *Set) Handle(ctx context.Context, name string, args Args) (jsonvalue.Value, error) {
	i, ok := s.index[name]
	if !ok {
		return jsonvalue.Value{}, NewUnknownTool(name)
	}
	if args == nil {
		args = Args{}
	}
	return s.tools[i].Func(ctx, args)
}

// Definitions returns the definitions in declaration order.
func (s *Set) Definitions() []Definition {
	defs := make([]Definition, 0, len(s.tools))
	for _, t := range s.tools {
		defs = append(defs, t.Definition)
	}
	return defs
}

// Names returns the tool names in declaration order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.tools))
	for _, t := range s.tools {
		names = append(names, t.Name)
	}
	return names
}
