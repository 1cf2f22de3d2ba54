package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/algorand-mcp/internal/config"
)

func TestToolsCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"tools", "--wallet-db", ":memory:"}, strings.NewReader(""), &out, &errOut)
	require.NoError(t, err, errOut.String())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Greater(t, len(lines), 100)
	assert.Contains(t, lines, "utility\tping")
	assert.Contains(t, lines, "wallet\twallet_sign_bytes")
	assert.Contains(t, lines, "api\tapi_indexer_lookup_account_transactions")
	assert.Contains(t, lines, "knowledge\tget_knowledge_doc")
}

func TestStdio(t *testing.T) {
	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-11-25","clientInfo":{"name":"test","version":"1"},"capabilities":{}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"ping","arguments":{}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"no_such_tool","arguments":{}}}`,
	}, "\n") + "\n"

	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"--wallet-db", ":memory:"}, strings.NewReader(input), &out, &errOut)
	require.NoError(t, err, errOut.String())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3, "the notification gets no response")
	assert.Contains(t, lines[0], `"name":"algorand-mcp"`)
	assert.Contains(t, lines[1], `pong`)
	assert.Contains(t, lines[2], `-32601`)
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		flags   flags
		check   func(t *testing.T, cfg config.Config)
		wantErr bool
	}{
		{
			name:  "defaults",
			flags: flags{},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, config.Default().ItemsPerPage, cfg.ItemsPerPage)
			},
		},
		{
			name:  "network flag",
			flags: flags{network: "mainnet"},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, "mainnet", cfg.Network)
				e, err := cfg.Endpoints("mainnet")
				require.NoError(t, err)
				assert.Equal(t, "https://mainnet-api.algonode.cloud", e.AlgodURL)
			},
		},
		{
			name:  "page size and wallet flags",
			flags: flags{itemsPerPage: 25, walletDB: ":memory:"},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 25, cfg.ItemsPerPage)
				assert.Equal(t, ":memory:", cfg.WalletDB)
			},
		},
		{name: "unknown network", flags: flags{network: "betanet"}, wantErr: true},
		{name: "negative page size", flags: flags{itemsPerPage: -1}, wantErr: true},
		{name: "missing env file", flags: flags{envFile: filepath.Join(t.TempDir(), "nope.env")}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(tt.flags)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	if _, ok := os.LookupEnv("WALLET_DB"); ok {
		t.Skip("WALLET_DB is set in the environment")
	}
	t.Cleanup(func() { os.Unsetenv("WALLET_DB") })

	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("WALLET_DB=from-env-file.db\n"), 0o644))

	cfg, err := loadConfig(flags{envFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "from-env-file.db", cfg.WalletDB)

	cfg, err = loadConfig(flags{envFile: envFile, walletDB: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.WalletDB, "flags win over the environment")
}

func TestUnknownSubcommand(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"bogus"}, strings.NewReader(""), &out, &errOut)
	require.Error(t, err)
}
