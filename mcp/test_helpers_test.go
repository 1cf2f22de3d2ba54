package mcp

import (
	"context"
	"encoding/json"

	"github.com/bpowers/algorand-mcp/tool"
)

// stubHandler answers tool calls from a fixed table and records the last arguments.
type stubHandler struct {
	results    map[string]CallToolResult
	errs       map[string]error
	resources  map[string]ReadResourceResult
	calledWith json.RawMessage
	panics     bool
}

func (s *stubHandler) CallTool(ctx context.Context, name string, args json.RawMessage) (CallToolResult, error) {
	if s.panics {
		panic("intentional panic for testing")
	}
	s.calledWith = args
	if err, ok := s.errs[name]; ok {
		return CallToolResult{}, err
	}
	if result, ok := s.results[name]; ok {
		return result, nil
	}
	return CallToolResult{}, tool.NewUnknownTool(name)
}

func (s *stubHandler) ReadResource(ctx context.Context, uri string) (ReadResourceResult, error) {
	if result, ok := s.resources[uri]; ok {
		return result, nil
	}
	return ReadResourceResult{}, tool.NewUnknownTool(uri)
}

var _ Handler = (*stubHandler)(nil)

func textResult(text string) CallToolResult {
	return CallToolResult{Content: []ContentBlock{{Type: "text", Text: text}}}
}

func echoDefinition() ToolDefinition {
	return ToolDefinition{
		Name:        "echo",
		Description: "echoes input",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"msg":{"type":"string"}}}`),
	}
}

func newTestServer(registry *Registry, handler Handler, opts ...Option) (*Server, error) {
	if registry == nil {
		registry = NewRegistry()
	}
	if handler == nil {
		handler = &stubHandler{}
	}
	return NewServer(registry, handler, Implementation{Name: "test", Version: "1.0"}, opts...)
}
