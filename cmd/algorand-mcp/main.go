// Command algorand-mcp serves the Algorand tools over MCP, on stdio by
// default or over HTTP with the http subcommand.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	algorandmcp "github.com/bpowers/algorand-mcp"
	"github.com/bpowers/algorand-mcp/internal/config"
	"github.com/bpowers/algorand-mcp/internal/logging"
	"github.com/bpowers/algorand-mcp/mcp"
)

const version = "0.1.0"

const instructions = "Algorand blockchain tools. Results are returned as {data, metadata}; " +
	"when metadata.hasNextPage is true, call the tool again with metadata.pageToken as pageToken."

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flags holds the command line overrides applied on top of the environment.
type flags struct {
	envFile      string
	network      string
	itemsPerPage int
	walletDB     string
	logLevel     string
	addr         string
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	cmd := newRootCmd(in, out, errOut)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:           "algorand-mcp",
		Short:         "Serve Algorand tools to MCP clients over stdio",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetOutput(errOut)
			if f.logLevel != "" {
				logging.SetLogLevel(logging.ParseLevel(f.logLevel))
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			svc, server, err := newServer(cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			logging.Logger().Info("serving stdio")
			return server.Serve(cmd.Context(), in, out)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&f.envFile, "env-file", "", "load environment variables from this file first")
	pf.StringVar(&f.network, "network", "", "default network: mainnet, testnet or localnet (overrides ALGORAND_NETWORK)")
	pf.IntVar(&f.itemsPerPage, "items-per-page", 0, "default page size (overrides ITEMS_PER_PAGE)")
	pf.StringVar(&f.walletDB, "wallet-db", "", "wallet database path, or :memory: (overrides WALLET_DB)")
	pf.StringVar(&f.logLevel, "log-level", "", "0=error 1=warn 2=info 3=debug (overrides ALGORAND_MCP_DEBUG)")

	root.AddCommand(newHTTPCmd(&f), newToolsCmd(&f, out))
	return root
}

func newHTTPCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve MCP over HTTP at /mcp, with /health and /metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*f)
			if err != nil {
				return err
			}
			svc, server, err := newServer(cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			addr := cfg.HTTPAddr
			if f.addr != "" {
				addr = f.addr
			}

			srv := &http.Server{
				Addr: addr,
				Handler: server.HTTPHandler(mcp.HTTPOptions{
					Token:   cfg.MCPToken,
					Metrics: svc.Metrics().Handler(),
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return serveHTTP(cmd.Context(), srv)
		},
	}
	cmd.Flags().StringVar(&f.addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

func serveHTTP(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		logging.Logger().Info("serving http", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return nil
	}
}

func newToolsCmd(f *flags, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Validate the routing table and list every tool with its category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*f)
			if err != nil {
				return err
			}
			svc, err := algorandmcp.New(cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			table := algorandmcp.Table()
			for _, name := range svc.Names() {
				category, _ := table.Resolve(name)
				if _, err := fmt.Fprintf(out, "%s\t%s\n", category, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// loadConfig reads the environment (after the optional env file) and applies
// the command line overrides.
func loadConfig(f flags) (config.Config, error) {
	cfg, err := config.Load(f.envFile)
	if err != nil {
		return config.Config{}, err
	}
	if f.network != "" {
		if _, err := cfg.Endpoints(f.network); err != nil {
			return config.Config{}, fmt.Errorf("--network: %w", err)
		}
		if f.network != cfg.Network {
			// Endpoint overrides from the environment describe ALGORAND_NETWORK only.
			cfg.Overrides = config.Default().Overrides
		}
		cfg.Network = f.network
	}
	if f.itemsPerPage < 0 {
		return config.Config{}, fmt.Errorf("--items-per-page must be positive, got %d", f.itemsPerPage)
	}
	if f.itemsPerPage > 0 {
		cfg.ItemsPerPage = f.itemsPerPage
	}
	if f.walletDB != "" {
		cfg.WalletDB = f.walletDB
	}
	return cfg, nil
}

func newServer(cfg config.Config) (*algorandmcp.Service, *mcp.Server, error) {
	svc, err := algorandmcp.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	server, err := mcp.NewServer(svc.Registry(), svc,
		mcp.Implementation{Name: "algorand-mcp", Version: version},
		mcp.WithInstructions(instructions),
	)
	if err != nil {
		svc.Close()
		return nil, nil, err
	}
	return svc, server, nil
}
