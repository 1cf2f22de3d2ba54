// Package algorandmcp composes the Algorand tool handlers into a single MCP
// service: one routing table over every category, paginated responses, and
// the wallet and knowledge resources.
package algorandmcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bpowers/algorand-mcp/handlers/accounts"
	"github.com/bpowers/algorand-mcp/handlers/algod"
	"github.com/bpowers/algorand-mcp/handlers/api"
	"github.com/bpowers/algorand-mcp/handlers/txn"
	"github.com/bpowers/algorand-mcp/handlers/uri"
	"github.com/bpowers/algorand-mcp/handlers/utility"
	wallettools "github.com/bpowers/algorand-mcp/handlers/wallet"
	"github.com/bpowers/algorand-mcp/internal/config"
	"github.com/bpowers/algorand-mcp/internal/logging"
	"github.com/bpowers/algorand-mcp/knowledge"
	"github.com/bpowers/algorand-mcp/mcp"
	"github.com/bpowers/algorand-mcp/metrics"
	"github.com/bpowers/algorand-mcp/response"
	"github.com/bpowers/algorand-mcp/router"
	"github.com/bpowers/algorand-mcp/schema"
	"github.com/bpowers/algorand-mcp/tool"
	"github.com/bpowers/algorand-mcp/upstream"
	"github.com/bpowers/algorand-mcp/wallet"
	"github.com/bpowers/algorand-mcp/wallet/sqlitestore"
)

// Argument names consumed by the service before dispatch.
const (
	PageTokenArg    = "pageToken"
	ItemsPerPageArg = "itemsPerPage"
)

// Service implements mcp.Handler over every tool category.
type Service struct {
	registry     *mcp.Registry
	router       *router.Router
	resources    router.Table
	readers      map[string]response.ResourceHandler
	metrics      *metrics.Metrics
	itemsPerPage int

	store     wallet.Store
	ownsStore bool
	clients   *upstream.Factory
}

type options struct {
	store   wallet.Store
	clients *upstream.Factory
	docs    *knowledge.Docs
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*options)

// WithStore uses store for the wallet instead of opening cfg.WalletDB. The
// caller keeps ownership of store.
func WithStore(store wallet.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithFactory replaces the upstream client factory built from cfg.
func WithFactory(f *upstream.Factory) Option {
	return func(o *options) {
		o.clients = f
	}
}

// WithDocs serves docs instead of the embedded documentation.
func WithDocs(docs *knowledge.Docs) Option {
	return func(o *options) {
		o.docs = docs
	}
}

// WithMetrics records tool calls into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New wires every category handler behind the routing table. The table is
// validated against every registered tool name, so a name claimed by no rule
// or a rule that can never win fails here rather than at call time.
func New(cfg config.Config, opts ...Option) (*Service, error) {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if cfg.ItemsPerPage <= 0 {
		return nil, fmt.Errorf("new service: items per page must be positive, got %d", cfg.ItemsPerPage)
	}

	s := &Service{
		registry:     mcp.NewRegistry(),
		resources:    ResourceTable(),
		metrics:      o.metrics,
		itemsPerPage: cfg.ItemsPerPage,
		store:        o.store,
		clients:      o.clients,
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}

	if s.clients == nil {
		f, err := upstream.NewFactory(cfg.Endpoints, cfg.Network,
			upstream.WithHTTPClient(&http.Client{Timeout: cfg.UpstreamTimeout}),
			upstream.WithCacheTTL(cfg.UpstreamCache),
		)
		if err != nil {
			return nil, fmt.Errorf("new service: %w", err)
		}
		s.clients = f
	}

	if s.store == nil {
		store, err := sqlitestore.New(cfg.WalletDB)
		if err != nil {
			return nil, fmt.Errorf("new service: open wallet: %w", err)
		}
		s.store = store
		s.ownsStore = true
	}

	docs := o.docs
	if docs == nil {
		docs = knowledge.Default()
	}

	apiHandler, err := api.New(s.clients)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("new service: %w", err)
	}
	walletHandler := wallettools.New(s.store, s.clients)

	sets := map[string]interface {
		tool.Handler
		Definitions() []tool.Definition
	}{
		CategoryWallet:    walletHandler.Tools(),
		CategoryAccounts:  accounts.Tools(s.clients),
		CategoryUtility:   utility.Tools(),
		CategoryAlgod:     algod.Tools(s.clients),
		CategoryTxn:       txn.Tools(s.clients),
		CategoryAPI:       apiHandler,
		CategoryURI:       uri.Tools(),
		CategoryKnowledge: docs.Tools(),
	}

	table := Table()
	handlers := make(map[string]tool.Handler, len(sets))
	var names []string
	var errs []error
	for _, category := range table.Categories() {
		set, ok := sets[category]
		if !ok {
			errs = append(errs, fmt.Errorf("no handler for category %q", category))
			continue
		}
		handlers[category] = set
		for _, def := range set.Definitions() {
			if got, _ := table.Resolve(def.Name); got != category {
				errs = append(errs, fmt.Errorf("tool %q is declared by %s but routes to %q", def.Name, category, got))
			}
			if err := s.registry.Register(mcpDefinition(def)); err != nil {
				errs = append(errs, err)
			}
			names = append(names, def.Name)
		}
	}
	if err := table.Validate(names); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		s.Close()
		return nil, fmt.Errorf("new service: %w", err)
	}

	s.router, err = router.New("tools", table, handlers, router.WithObserver(s.metrics.Observe))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("new service: %w", err)
	}

	s.readers = map[string]response.ResourceHandler{
		CategoryWallet:    response.WrapResourceHandler(walletHandler.ReadResource),
		CategoryKnowledge: response.WrapResourceHandler(docs.ReadResource),
	}
	for _, r := range append(walletHandler.Resources(), docs.Resources()...) {
		if err := s.registry.RegisterResource(r); err != nil {
			s.Close()
			return nil, fmt.Errorf("new service: %w", err)
		}
	}
	for _, t := range docs.Templates() {
		if err := s.registry.RegisterTemplate(t); err != nil {
			s.Close()
			return nil, fmt.Errorf("new service: %w", err)
		}
	}

	logging.Logger().Info("service ready",
		"network", s.clients.DefaultNetwork(),
		"tools", len(names),
		"itemsPerPage", s.itemsPerPage,
	)
	return s, nil
}

// mcpDefinition adds the pagination arguments every tool accepts.
func mcpDefinition(def tool.Definition) mcp.ToolDefinition {
	in := *def.InputSchema
	props := make(map[string]*schema.JSON, len(in.Properties)+2)
	for k, v := range in.Properties {
		props[k] = v
	}
	props[PageTokenArg] = schema.Str("Opaque token from a previous response's metadata.pageToken")
	props[ItemsPerPageArg] = schema.Int("Page size for the paginated collection in the response")
	in.Properties = props

	raw, err := json.Marshal(&in)
	if err != nil {
		// Schemas are static values built by the schema helpers.
		panic(fmt.Sprintf("marshal input schema for %q: %v", def.Name, err))
	}
	return mcp.ToolDefinition{Name: def.Name, Description: def.Description, InputSchema: raw}
}

// Registry returns the tool and resource definitions to advertise.
func (s *Service) Registry() *mcp.Registry { return s.registry }

// Metrics returns the metrics the service records into.
func (s *Service) Metrics() *metrics.Metrics { return s.metrics }

// Names returns every tool name in registration order.
func (s *Service) Names() []string { return s.registry.Names() }

// Call dispatches a tool and paginates its result.
func (s *Service) Call(ctx context.Context, name string, args tool.Args) (response.Envelope, error) {
	pageToken, err := args.OptString(PageTokenArg, "")
	if err != nil {
		return response.Envelope{}, err
	}
	itemsPerPage, err := args.OptInt(ItemsPerPageArg, s.itemsPerPage)
	if err != nil {
		return response.Envelope{}, err
	}
	if itemsPerPage <= 0 {
		return response.Envelope{}, tool.InvalidParamsf("argument %q must be positive, got %d", ItemsPerPageArg, itemsPerPage)
	}

	raw, err := s.router.Handle(ctx, name, args.Without(PageTokenArg, ItemsPerPageArg))
	if err != nil {
		return response.Envelope{}, err
	}
	return response.Process(raw, pageToken, itemsPerPage)
}

// CallTool implements mcp.Handler.
func (s *Service) CallTool(ctx context.Context, name string, raw json.RawMessage) (mcp.CallToolResult, error) {
	args, err := tool.DecodeArgs(raw)
	if err != nil {
		return mcp.CallToolResult{}, err
	}
	env, err := s.Call(ctx, name, args)
	if err != nil {
		logging.Logger().Debug("tool failed", "tool", name, "kind", tool.KindOf(err).String(), "error", err)
		return mcp.CallToolResult{}, err
	}
	return response.ToolResult(env)
}

// ReadResource implements mcp.Handler.
func (s *Service) ReadResource(ctx context.Context, uri string) (mcp.ReadResourceResult, error) {
	category, ok := s.resources.Resolve(uri)
	if !ok {
		return mcp.ReadResourceResult{}, tool.NewUnknownTool(uri)
	}
	return s.readers[category](ctx, uri)
}

// Close releases the wallet store when the service opened it.
func (s *Service) Close() error {
	if s.ownsStore && s.store != nil {
		return s.store.Close()
	}
	return nil
}
