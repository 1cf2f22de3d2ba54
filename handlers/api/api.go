// Package api exposes upstream REST endpoints as passthrough tools. Each
// provider declares its endpoints as data; tool names share the provider's
// "api_<provider>_" prefix and are dispatched by a nested router.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/bpowers/algorand-mcp/handlers/internal/txnutil"
	"github.com/bpowers/algorand-mcp/jsonvalue"
	"github.com/bpowers/algorand-mcp/router"
	"github.com/bpowers/algorand-mcp/schema"
	"github.com/bpowers/algorand-mcp/tool"
	"github.com/bpowers/algorand-mcp/upstream"
)

// ParamType is the JSON type a parameter accepts.
type ParamType int

const (
	StringParam ParamType = iota
	IntParam
	BoolParam
	StringListParam
	IntListParam
)

// Param is a query parameter. Path parameters are derived from the
// endpoint's path template and are always required strings or integers.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
}

// Endpoint describes one upstream GET endpoint exposed as a tool.
type Endpoint struct {
	Name        string
	Description string
	// Path is relative to the service base URL; "{name}" segments are
	// filled from the argument of the same name.
	Path string
	// PathTypes overrides the default string type of path parameters.
	PathTypes map[string]ParamType
	Query     []Param
	// Fixed query parameters are sent on every call.
	Fixed url.Values
	// Group selects the sub-category for providers with a routing table.
	Group string
}

// Provider is one upstream service and its endpoints.
type Provider struct {
	// Name is the segment after "api_", e.g. "indexer".
	Name string
	// Service names the upstream client, see upstream.Clients.Service.
	Service string
	// QueryName maps a camelCase argument name to the upstream's query
	// parameter name.
	QueryName func(string) string
	Endpoints []Endpoint
	// Table routes tool names to endpoint groups. Providers without a
	// table serve every endpoint from a single tool set.
	Table router.Table
}

// Prefix is the tool name prefix shared by the provider's endpoints.
func (p *Provider) Prefix() string { return "api_" + p.Name + "_" }

func keepName(s string) string { return s }

// Handler is the "api_" category: a router over the providers.
type Handler struct {
	*router.Router
	defs []tool.Definition
}

// Definitions returns every passthrough tool's definition.
func (h *Handler) Definitions() []tool.Definition { return h.defs }

// New builds the passthrough category over the default providers.
func New(clients *upstream.Factory) (*Handler, error) {
	return NewWithProviders(clients, Providers()...)
}

// Providers returns the built-in provider tables.
func Providers() []*Provider {
	return []*Provider{
		algodProvider(),
		indexerProvider(),
		nfdProvider(),
		tinymanProvider(),
		vestigeProvider(),
		ultradeProvider(),
	}
}

// NewWithProviders builds the passthrough category over providers, plus the
// local example provider.
func NewWithProviders(clients *upstream.Factory, providers ...*Provider) (*Handler, error) {
	h := &Handler{}
	var table router.Table
	handlers := make(map[string]tool.Handler)

	for _, p := range providers {
		handler, defs, err := p.build(clients)
		if err != nil {
			return nil, err
		}
		table = append(table, router.Rule{Match: router.Prefix(p.Prefix()), Category: p.Name})
		handlers[p.Name] = handler
		h.defs = append(h.defs, defs...)
	}

	example := exampleTools()
	table = append(table, router.Rule{Match: router.Prefix("api_example_"), Category: "example"})
	handlers["example"] = example
	h.defs = append(h.defs, example.Definitions()...)

	r, err := router.New("api", table, handlers)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(h.defs))
	for _, d := range h.defs {
		names = append(names, d.Name)
	}
	if err := table.Validate(names); err != nil {
		return nil, fmt.Errorf("api routing: %w", err)
	}
	h.Router = r
	return h, nil
}

func (p *Provider) build(clients *upstream.Factory) (tool.Handler, []tool.Definition, error) {
	groups := make(map[string][]tool.Tool)
	var order []string
	var defs []tool.Definition
	for i := range p.Endpoints {
		e := &p.Endpoints[i]
		if !strings.HasPrefix(e.Name, p.Prefix()) {
			return nil, nil, fmt.Errorf("provider %s: endpoint %q lacks prefix %q", p.Name, e.Name, p.Prefix())
		}
		t := tool.Tool{
			Definition: tool.Definition{Name: e.Name, Description: e.Description, InputSchema: e.schema()},
			Func: func(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
				return p.call(ctx, clients, e, args)
			},
		}
		if _, ok := groups[e.Group]; !ok {
			order = append(order, e.Group)
		}
		groups[e.Group] = append(groups[e.Group], t)
		defs = append(defs, t.Definition)
	}

	if p.Table == nil {
		if len(order) != 1 || order[0] != "" {
			return nil, nil, fmt.Errorf("provider %s: endpoint groups need a routing table", p.Name)
		}
		set, err := tool.NewSet(groups[""]...)
		if err != nil {
			return nil, nil, fmt.Errorf("provider %s: %w", p.Name, err)
		}
		return set, defs, nil
	}

	handlers := make(map[string]tool.Handler, len(groups))
	for _, g := range order {
		set, err := tool.NewSet(groups[g]...)
		if err != nil {
			return nil, nil, fmt.Errorf("provider %s: %w", p.Name, err)
		}
		handlers[g] = set
	}
	r, err := router.New(p.Name, p.Table, handlers)
	if err != nil {
		return nil, nil, err
	}
	// Every endpoint must be routed to the group that declares it.
	for _, e := range p.Endpoints {
		if got, _ := p.Table.Resolve(e.Name); got != e.Group {
			return nil, nil, fmt.Errorf("provider %s: %q routes to %q, declared in %q", p.Name, e.Name, got, e.Group)
		}
	}
	return r, defs, nil
}

// pathParams returns the "{name}" segments of the endpoint path in order.
func (e *Endpoint) pathParams() []string {
	var names []string
	rest := e.Path
	for {
		i := strings.IndexByte(rest, '{')
		if i < 0 {
			return names
		}
		j := strings.IndexByte(rest[i:], '}')
		if j < 0 {
			return names
		}
		names = append(names, rest[i+1:i+j])
		rest = rest[i+j+1:]
	}
}

func (e *Endpoint) schema() *schema.JSON {
	var props []schema.Prop
	for _, name := range e.pathParams() {
		props = append(props, schema.Prop{Name: name, Schema: paramSchema(e.PathTypes[name], ""), Required: true})
	}
	for _, q := range e.Query {
		props = append(props, schema.Prop{Name: q.Name, Schema: paramSchema(q.Type, q.Description), Required: q.Required})
	}
	props = append(props, txnutil.NetworkProp)
	return schema.Obj(props...)
}

func paramSchema(t ParamType, desc string) *schema.JSON {
	switch t {
	case IntParam:
		return schema.Int(desc)
	case BoolParam:
		return schema.Bool(desc)
	case StringListParam:
		return schema.Arr(schema.Str(""), desc)
	case IntListParam:
		return schema.Arr(schema.Int(""), desc)
	default:
		return schema.Str(desc)
	}
}

func (p *Provider) call(ctx context.Context, clients *upstream.Factory, e *Endpoint, args tool.Args) (jsonvalue.Value, error) {
	path, ident, err := e.expand(args)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	query, err := p.query(e, args)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	client, err := txnutil.Service(clients, args, p.Service)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	v, err := client.Get(ctx, path, query)
	if err != nil {
		if ident == "" {
			return jsonvalue.Value{}, tool.Upstream(err, "%s", e.Name)
		}
		return jsonvalue.Value{}, tool.Upstream(err, "%s %s", e.Name, ident)
	}
	return v, nil
}

// expand fills the path template. The identifier names the path values for
// error messages.
func (e *Endpoint) expand(args tool.Args) (path, ident string, err error) {
	path = e.Path
	var idents []string
	for _, name := range e.pathParams() {
		var value string
		if e.PathTypes[name] == IntParam {
			n, err := args.Uint64(name)
			if err != nil {
				return "", "", err
			}
			value = strconv.FormatUint(n, 10)
		} else {
			if value, err = args.String(name); err != nil {
				return "", "", err
			}
			if strings.Contains(value, "/") || value == "." || value == ".." {
				return "", "", tool.InvalidParamsf("argument %q is not a valid path segment", name)
			}
		}
		path = strings.Replace(path, "{"+name+"}", value, 1)
		idents = append(idents, name+"="+value)
	}
	return path, strings.Join(idents, " "), nil
}

func (p *Provider) query(e *Endpoint, args tool.Args) (url.Values, error) {
	q := url.Values{}
	for k, vs := range e.Fixed {
		q[k] = append([]string(nil), vs...)
	}
	rename := p.QueryName
	if rename == nil {
		rename = keepName
	}
	for _, param := range e.Query {
		if !args.Has(param.Name) {
			if param.Required {
				return nil, tool.InvalidParamsf("missing required argument %q", param.Name)
			}
			continue
		}
		values, err := queryValues(param, args[param.Name])
		if err != nil {
			return nil, err
		}
		q[rename(param.Name)] = values
	}
	return q, nil
}

func queryValues(param Param, v any) ([]string, error) {
	switch param.Type {
	case StringListParam, IntListParam:
		list, ok := v.([]any)
		if !ok {
			// A single value is accepted where a list is expected.
			list = []any{v}
		}
		out := make([]string, 0, len(list))
		for i, e := range list {
			s, err := scalarText(fmt.Sprintf("%s[%d]", param.Name, i), e)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	default:
		s, err := scalarText(param.Name, v)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
}

func scalarText(key string, v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		return "", tool.InvalidParamsf("argument %q must be a string, number or boolean", key)
	}
}

// kebab and snake name upstream query parameters, e.g. nextToken becomes
// next-token for algod and indexer and next_token for the analytics APIs.
func kebab(s string) string { return strcase.ToKebab(s) }

func snake(s string) string { return strcase.ToSnake(s) }
