// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultConfigPath      = "configs/config.json"
	DefaultSignatureLimit  = 100
	DefaultRPCConcurrency  = 8
	DefaultPromptTimeout   = 30000
	DefaultAnalysisTimeout = 60000
	DefaultPriceAPIURL     = "https://lite-api.jup.ag/price/v2"
	DefaultQuoteMint       = "So11111111111111111111111111111111111111112"
	DefaultPriceRetries    = 3
	DefaultPriceCacheTTL   = 30000
	DefaultLogFile         = "bot.log"

	envPrefix = "PNL_BOT"
)

// Config holds bot settings loaded from config.json, .env and the environment.
type Config struct {
	DiscordToken  string   `mapstructure:"discord_token"`
	ApplicationID string   `mapstructure:"application_id"`
	GuildID       string   `mapstructure:"guild_id"`
	RPCList       []string `mapstructure:"rpc_list"`

	SignatureLimit int `mapstructure:"signature_limit"`
	RPCConcurrency int `mapstructure:"rpc_concurrency"`

	PromptTimeout     time.Duration `mapstructure:"-"`
	PromptTimeoutMS   int           `mapstructure:"prompt_timeout"`
	AnalysisTimeout   time.Duration `mapstructure:"-"`
	AnalysisTimeoutMS int           `mapstructure:"analysis_timeout"`

	PriceAPIURL     string        `mapstructure:"price_api_url"`
	QuoteMint       string        `mapstructure:"quote_mint"` // mint address or "token" for the analysed mint
	PriceRetries    int           `mapstructure:"price_retries"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	PriceCacheTTL   time.Duration `mapstructure:"-"`
	PriceCacheTTLMS int           `mapstructure:"price_cache_ttl"`

	MetricsAddr  string `mapstructure:"metrics_addr"`
	DebugLogging bool   `mapstructure:"debug_logging"`
	LogFile      string `mapstructure:"log_file"`
}

// LoadConfig reads configuration from path (optional), .env and the environment.
// Environment variables win over the file.
func LoadConfig(path string) (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config error: %w", err)
			}
		} else if path != DefaultConfigPath {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	if raw := v.GetString("rpc_env"); raw != "" {
		if list := splitList(raw); len(list) > 0 {
			cfg.RPCList = list
		}
	}

	// Convert ms to Duration
	cfg.PromptTimeout = time.Duration(cfg.PromptTimeoutMS) * time.Millisecond
	cfg.AnalysisTimeout = time.Duration(cfg.AnalysisTimeoutMS) * time.Millisecond
	cfg.PriceCacheTTL = time.Duration(cfg.PriceCacheTTLMS) * time.Millisecond

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := map[string]interface{}{
		"guild_id":         "",
		"signature_limit":  DefaultSignatureLimit,
		"rpc_concurrency":  DefaultRPCConcurrency,
		"prompt_timeout":   DefaultPromptTimeout,
		"analysis_timeout": DefaultAnalysisTimeout,
		"price_api_url":    DefaultPriceAPIURL,
		"quote_mint":       DefaultQuoteMint,
		"price_retries":    DefaultPriceRetries,
		"redis_addr":       "",
		"redis_password":   "",
		"redis_db":         0,
		"price_cache_ttl":  DefaultPriceCacheTTL,
		"metrics_addr":     "",
		"debug_logging":    false,
		"log_file":         DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// bindEnv: PNL_BOT_<KEY> для всех ключей, плюс старые имена переменных.
func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := [][]string{
		{"discord_token", envPrefix + "_DISCORD_TOKEN", "DISCORD_TOKEN"},
		{"application_id", envPrefix + "_APPLICATION_ID", "CLIENT_ID"},
		{"rpc_env", envPrefix + "_RPC_LIST", "RPC_URL"},
	}
	for _, b := range bindings {
		if err := v.BindEnv(b...); err != nil {
			return fmt.Errorf("bind env %s: %w", b[0], err)
		}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if clean := strings.TrimSpace(part); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

func (c *Config) validate() error {
	if c.DiscordToken == "" {
		return errors.New("missing discord_token in configuration")
	}
	if c.ApplicationID == "" {
		return errors.New("missing application_id in configuration")
	}
	if len(c.RPCList) == 0 {
		return errors.New("rpc_list must contain at least one RPC endpoint")
	}
	for _, rpcURL := range c.RPCList {
		if err := validateURL(rpcURL, "http"); err != nil {
			return fmt.Errorf("invalid RPC URL %q: %w", rpcURL, err)
		}
	}
	if err := validateURL(c.PriceAPIURL, "http"); err != nil {
		return fmt.Errorf("invalid price_api_url: %w", err)
	}
	if c.QuoteMint == "" {
		return errors.New("quote_mint must not be empty")
	}
	return c.validateNumericParams()
}

func (c *Config) validateNumericParams() error {
	if c.SignatureLimit <= 0 || c.SignatureLimit > 1000 {
		return errors.New("signature_limit must be in 1..1000")
	}
	if c.RPCConcurrency <= 0 {
		return errors.New("invalid rpc_concurrency")
	}
	if c.PromptTimeout <= 0 {
		return errors.New("invalid prompt_timeout")
	}
	if c.AnalysisTimeout <= 0 {
		return errors.New("invalid analysis_timeout")
	}
	if c.PriceRetries <= 0 {
		return errors.New("invalid price_retries")
	}
	if c.PriceCacheTTL < 0 {
		return errors.New("invalid price_cache_ttl")
	}
	if c.RedisDB < 0 {
		return errors.New("invalid redis_db")
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	return nil
}
