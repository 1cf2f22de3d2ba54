// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/bpowers/algorand-mcp/upstream"
)

const (
	Mainnet  = "mainnet"
	Testnet  = "testnet"
	Localnet = "localnet"
)

// LocalnetToken is the well-known algod and indexer token of a local sandbox.
const LocalnetToken = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

var defaults = map[string]upstream.Endpoints{
	Mainnet: {
		AlgodURL:   "https://mainnet-api.algonode.cloud",
		IndexerURL: "https://mainnet-idx.algonode.cloud",
		NFDURL:     "https://api.nf.domains",
		VestigeURL: "https://api.vestigelabs.org",
		TinymanURL: "https://mainnet.analytics.tinyman.org/api/v1",
		UltradeURL: "https://api.ultrade.org",
	},
	Testnet: {
		AlgodURL:   "https://testnet-api.algonode.cloud",
		IndexerURL: "https://testnet-idx.algonode.cloud",
		NFDURL:     "https://api.testnet.nf.domains",
		TinymanURL: "https://testnet.analytics.tinyman.org/api/v1",
		UltradeURL: "https://api.testnet.ultrade.org",
	},
	Localnet: {
		AlgodURL:     "http://localhost:4001",
		AlgodToken:   LocalnetToken,
		IndexerURL:   "http://localhost:8980",
		IndexerToken: LocalnetToken,
	},
}

// Config holds every setting the server reads at startup.
type Config struct {
	Network string
	// Overrides apply to Network only; other networks use built-in defaults.
	Overrides upstream.Endpoints

	ItemsPerPage    int
	WalletDB        string
	HTTPAddr        string
	MCPToken        string
	UpstreamTimeout time.Duration
	UpstreamCache   time.Duration
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		Network:         Testnet,
		ItemsPerPage:    10,
		WalletDB:        "algorand-mcp-wallet.db",
		HTTPAddr:        ":3000",
		UpstreamTimeout: 15 * time.Second,
	}
}

// Load reads envFile, when non-empty, into the process environment and then
// builds a Config from it.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a getenv-style lookup.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := strings.ToLower(strings.TrimSpace(getenv("ALGORAND_NETWORK"))); v != "" {
		cfg.Network = v
	}
	if _, ok := defaults[cfg.Network]; !ok {
		return Config{}, fmt.Errorf("config: unknown ALGORAND_NETWORK %q", cfg.Network)
	}

	cfg.Overrides = upstream.Endpoints{
		AlgodURL:     getenv("ALGORAND_ALGOD"),
		AlgodToken:   getenv("ALGORAND_ALGOD_TOKEN"),
		IndexerURL:   getenv("ALGORAND_INDEXER"),
		IndexerToken: getenv("ALGORAND_INDEXER_TOKEN"),
		NFDURL:       getenv("NFD_API_URL"),
		VestigeURL:   getenv("VESTIGE_API_URL"),
		TinymanURL:   getenv("TINYMAN_API_URL"),
		UltradeURL:   getenv("ULTRADE_API_URL"),
	}

	if v := getenv("ITEMS_PER_PAGE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("config: ITEMS_PER_PAGE must be a positive integer, got %q", v)
		}
		cfg.ItemsPerPage = n
	}
	if v := getenv("WALLET_DB"); v != "" {
		cfg.WalletDB = v
	}
	if v := getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	cfg.MCPToken = getenv("MCP_TOKEN")

	var err error
	if cfg.UpstreamTimeout, err = duration(getenv, "UPSTREAM_TIMEOUT", cfg.UpstreamTimeout); err != nil {
		return Config{}, err
	}
	if cfg.UpstreamCache, err = duration(getenv, "UPSTREAM_CACHE_TTL", cfg.UpstreamCache); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("config: %s must be a non-negative duration, got %q", key, v)
	}
	return d, nil
}

// Networks lists the known network ids.
func Networks() []string {
	return []string{Mainnet, Testnet, Localnet}
}

// Endpoints resolves the endpoints for network, applying overrides to the
// configured network.
func (c Config) Endpoints(network string) (upstream.Endpoints, error) {
	e, ok := defaults[network]
	if !ok {
		return upstream.Endpoints{}, fmt.Errorf("unknown network %q (want one of %s)", network, strings.Join(Networks(), ", "))
	}
	if network != c.Network {
		return e, nil
	}

	o := c.Overrides
	if o.AlgodURL != "" {
		e.AlgodURL = o.AlgodURL
		e.AlgodToken = o.AlgodToken
	} else if o.AlgodToken != "" {
		e.AlgodToken = o.AlgodToken
	}
	if o.IndexerURL != "" {
		e.IndexerURL = o.IndexerURL
		e.IndexerToken = o.IndexerToken
	} else if o.IndexerToken != "" {
		e.IndexerToken = o.IndexerToken
	}
	e.NFDURL = firstNonEmpty(o.NFDURL, e.NFDURL)
	e.VestigeURL = firstNonEmpty(o.VestigeURL, e.VestigeURL)
	e.TinymanURL = firstNonEmpty(o.TinymanURL, e.TinymanURL)
	e.UltradeURL = firstNonEmpty(o.UltradeURL, e.UltradeURL)
	return e, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
