package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv прячет переменные окружения разработчика от теста.
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"DISCORD_TOKEN", "CLIENT_ID", "RPC_URL",
		"PNL_BOT_DISCORD_TOKEN", "PNL_BOT_APPLICATION_ID", "PNL_BOT_RPC_LIST",
		"PNL_BOT_SIGNATURE_LIMIT", "PNL_BOT_REDIS_ADDR", "PNL_BOT_PROMPT_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileWithDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{
		"discord_token": "token",
		"application_id": "123",
		"rpc_list": ["https://api.mainnet-beta.solana.com"],
		"prompt_timeout": 15000
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.DiscordToken)
	assert.Equal(t, "123", cfg.ApplicationID)
	assert.Equal(t, []string{"https://api.mainnet-beta.solana.com"}, cfg.RPCList)
	assert.Equal(t, 15*time.Second, cfg.PromptTimeout)
	assert.Equal(t, 60*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, 30*time.Second, cfg.PriceCacheTTL)
	assert.Equal(t, DefaultSignatureLimit, cfg.SignatureLimit)
	assert.Equal(t, DefaultRPCConcurrency, cfg.RPCConcurrency)
	assert.Equal(t, DefaultPriceAPIURL, cfg.PriceAPIURL)
	assert.Equal(t, DefaultQuoteMint, cfg.QuoteMint)
	assert.Equal(t, DefaultPriceRetries, cfg.PriceRetries)
	assert.Equal(t, DefaultLogFile, cfg.LogFile)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{
		"discord_token": "file-token",
		"application_id": "file-app",
		"rpc_list": ["https://file.example"]
	}`)

	t.Setenv("DISCORD_TOKEN", "env-token")
	t.Setenv("CLIENT_ID", "env-app")
	t.Setenv("RPC_URL", "https://a.example, https://b.example ,")
	t.Setenv("PNL_BOT_SIGNATURE_LIMIT", "250")
	t.Setenv("PNL_BOT_REDIS_ADDR", "localhost:6379")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.DiscordToken)
	assert.Equal(t, "env-app", cfg.ApplicationID)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.RPCList)
	assert.Equal(t, 250, cfg.SignatureLimit)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadConfig_QuoteAnalyzedToken(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{
		"discord_token": "token",
		"application_id": "123",
		"rpc_list": ["https://rpc.example"],
		"quote_mint": "token"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.QuoteMint)
}

func TestLoadConfig_PrefixedEnvWinsOverLegacyName(t *testing.T) {
	clearEnv(t)
	t.Setenv("PNL_BOT_DISCORD_TOKEN", "prefixed")
	t.Setenv("DISCORD_TOKEN", "legacy")
	t.Setenv("CLIENT_ID", "app")
	t.Setenv("RPC_URL", "https://rpc.example")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.DiscordToken)
}

func TestLoadConfig_MissingDefaultFileIsAllowed(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("CLIENT_ID", "app")
	t.Setenv("RPC_URL", "https://rpc.example")

	cfg, err := LoadConfig(DefaultConfigPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://rpc.example"}, cfg.RPCList)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing token",
			body:    `{"application_id": "1", "rpc_list": ["https://rpc"]}`,
			wantErr: "discord_token",
		},
		{
			name:    "missing application id",
			body:    `{"discord_token": "t", "rpc_list": ["https://rpc"]}`,
			wantErr: "application_id",
		},
		{
			name:    "empty rpc list",
			body:    `{"discord_token": "t", "application_id": "1", "rpc_list": []}`,
			wantErr: "rpc_list",
		},
		{
			name:    "websocket rpc url",
			body:    `{"discord_token": "t", "application_id": "1", "rpc_list": ["wss://rpc"]}`,
			wantErr: "invalid RPC URL",
		},
		{
			name:    "signature limit too high",
			body:    `{"discord_token": "t", "application_id": "1", "rpc_list": ["https://rpc"], "signature_limit": 5000}`,
			wantErr: "signature_limit",
		},
		{
			name:    "zero prompt timeout",
			body:    `{"discord_token": "t", "application_id": "1", "rpc_list": ["https://rpc"], "prompt_timeout": 0}`,
			wantErr: "prompt_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
