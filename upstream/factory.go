package upstream

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bpowers/algorand-mcp/tool"
)

// Endpoints lists the base URLs and tokens for one network. Empty URLs mean
// the service is unavailable on that network.
type Endpoints struct {
	AlgodURL     string
	AlgodToken   string
	IndexerURL   string
	IndexerToken string
	NFDURL       string
	VestigeURL   string
	TinymanURL   string
	UltradeURL   string
}

// Clients holds the upstream clients for a single network.
type Clients struct {
	Network string
	Algod   *Client
	Indexer *Client
	NFD     *Client
	Vestige *Client
	Tinyman *Client
	Ultrade *Client
}

// Resolver returns the endpoints for a network id.
type Resolver func(network string) (Endpoints, error)

// Factory builds Clients once per network and memoizes them.
type Factory struct {
	resolve        Resolver
	defaultNetwork string
	httpClient     *http.Client
	cacheTTL       time.Duration

	mu    sync.Mutex
	cache *lru.Cache[string, *Clients]
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithHTTPClient overrides the HTTP client shared by every upstream client.
func WithHTTPClient(c *http.Client) FactoryOption {
	return func(f *Factory) {
		f.httpClient = c
	}
}

// WithCacheTTL enables GET response caching.
func WithCacheTTL(ttl time.Duration) FactoryOption {
	return func(f *Factory) {
		f.cacheTTL = ttl
	}
}

const maxNetworks = 8

func NewFactory(resolve Resolver, defaultNetwork string, opts ...FactoryOption) (*Factory, error) {
	if resolve == nil {
		return nil, fmt.Errorf("new factory: resolver is required")
	}
	if defaultNetwork == "" {
		return nil, fmt.Errorf("new factory: default network is required")
	}
	cache, err := lru.New[string, *Clients](maxNetworks)
	if err != nil {
		return nil, fmt.Errorf("new factory: %w", err)
	}
	f := &Factory{
		resolve:        resolve,
		defaultNetwork: defaultNetwork,
		httpClient:     http.DefaultClient,
		cache:          cache,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// DefaultNetwork returns the network used when a call names none.
func (f *Factory) DefaultNetwork() string { return f.defaultNetwork }

// Select returns the clients for network, or for the default network when
// network is empty. Unknown networks are an InvalidParams error.
func (f *Factory) Select(network string) (*Clients, error) {
	if network == "" {
		network = f.defaultNetwork
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if clients, ok := f.cache.Get(network); ok {
		return clients, nil
	}

	endpoints, err := f.resolve(network)
	if err != nil {
		return nil, tool.InvalidParamsf("%s", err.Error())
	}
	clients, err := f.build(network, endpoints)
	if err != nil {
		return nil, err
	}
	f.cache.Add(network, clients)
	return clients, nil
}

func (f *Factory) build(network string, e Endpoints) (*Clients, error) {
	clients := &Clients{Network: network}

	specs := []struct {
		dst    **Client
		name   string
		url    string
		header http.Header
	}{
		{&clients.Algod, "algod", e.AlgodURL, tokenHeader("X-Algo-API-Token", e.AlgodToken)},
		{&clients.Indexer, "indexer", e.IndexerURL, tokenHeader("X-Indexer-API-Token", e.IndexerToken)},
		{&clients.NFD, "nfd", e.NFDURL, nil},
		{&clients.Vestige, "vestige", e.VestigeURL, nil},
		{&clients.Tinyman, "tinyman", e.TinymanURL, nil},
		{&clients.Ultrade, "ultrade", e.UltradeURL, nil},
	}
	for _, s := range specs {
		if s.url == "" {
			continue
		}
		c, err := NewClient(Options{
			Name:       s.name,
			BaseURL:    s.url,
			Header:     s.header,
			HTTPClient: f.httpClient,
			CacheTTL:   f.cacheTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("build %s clients: %w", network, err)
		}
		*s.dst = c
	}
	return clients, nil
}

func tokenHeader(name, token string) http.Header {
	if token == "" {
		return nil
	}
	h := make(http.Header)
	h.Set(name, token)
	return h
}

// Service returns the named client or an InvalidParams error when that
// service is not configured for the network.
func (c *Clients) Service(name string) (*Client, error) {
	var client *Client
	switch name {
	case "algod":
		client = c.Algod
	case "indexer":
		client = c.Indexer
	case "nfd":
		client = c.NFD
	case "vestige":
		client = c.Vestige
	case "tinyman":
		client = c.Tinyman
	case "ultrade":
		client = c.Ultrade
	default:
		return nil, fmt.Errorf("unknown upstream service %q", name)
	}
	if client == nil {
		return nil, tool.InvalidParamsf("%s is not available on %s", name, c.Network)
	}
	return client, nil
}
