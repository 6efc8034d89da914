// cmd/bot/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-pnl-bot/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-pnl-bot/internal/blockchain/solbc/rpc"
	"github.com/rovshanmuradov/solana-pnl-bot/internal/bot"
	"github.com/rovshanmuradov/solana-pnl-bot/internal/config"
	"github.com/rovshanmuradov/solana-pnl-bot/internal/metrics"
	"github.com/rovshanmuradov/solana-pnl-bot/internal/pnl"
	"github.com/rovshanmuradov/solana-pnl-bot/internal/price"
	"github.com/rovshanmuradov/solana-pnl-bot/internal/utils/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "path to config.json")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.LogError("Bot stopped with error", err)
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	log.Info("Starting Solana PnL bot",
		zap.Int("rpc_nodes", len(cfg.RPCList)),
		zap.String("guild_id", cfg.GuildID),
		zap.Bool("price_cache", cfg.RedisAddr != ""),
		zap.Bool("metrics", cfg.MetricsAddr != ""))

	shutdown := bot.NewShutdownHandler(log.Logger, shutdownTimeout)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown.Shutdown(shutdownCtx); err != nil {
			log.LogError("Shutdown finished with errors", err)
		}
	}()

	collector := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := collector.Serve(ctx, cfg.MetricsAddr, log.WithComponent("metrics")); err != nil {
				log.LogError("Metrics server failed", err)
			}
		}()
	}

	// Blockchain
	pool, err := rpc.NewPool(cfg.RPCList, log.WithComponent("rpc"))
	if err != nil {
		return fmt.Errorf("failed to create RPC pool: %w", err)
	}
	client := solbc.NewClient(pool, solbc.ClientConfig{
		SignatureLimit: cfg.SignatureLimit,
		Concurrency:    cfg.RPCConcurrency,
	}, log.WithComponent("solbc"))
	tokenMetadata := solbc.NewTokenMetadataCache(client, log.WithComponent("solbc"))

	// Price
	var oracle pnl.PriceOracle = price.NewJupiterOracle(price.JupiterConfig{
		BaseURL:  cfg.PriceAPIURL,
		MaxTries: uint(cfg.PriceRetries),
	}, log.WithComponent("price"))

	if cfg.RedisAddr != "" {
		store, err := price.NewRedisStore(ctx, price.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		shutdown.Add("redis", store)
		oracle = price.NewCachedOracle(oracle, store, cfg.PriceCacheTTL, collector, log.WithComponent("price"))
	}

	analyzer := pnl.NewAnalyzer(pnl.AnalyzerConfig{
		Transactions: client,
		Prices:       oracle,
		Metadata:     tokenMetadata,
		Recorder:     collector,
		Logger:       log.Logger,
		QuoteMint:    cfg.QuoteMint,
	})

	// Discord
	session, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		return err
	}
	responder := bot.NewSessionResponder(session)
	botLogger := log.WithComponent("bot")

	conversations := bot.NewConversations(responder, analyzer, collector, bot.ConversationConfig{
		PromptTimeout:   cfg.PromptTimeout,
		AnalysisTimeout: cfg.AnalysisTimeout,
	}, botLogger)

	registry, err := bot.NewRegistry(bot.NewPnlCommand(conversations))
	if err != nil {
		return fmt.Errorf("failed to build command registry: %w", err)
	}
	dispatcher := bot.NewDispatcher(registry, responder, collector, botLogger)

	service := bot.NewService(bot.DiscordConfig{
		Token:         cfg.DiscordToken,
		ApplicationID: cfg.ApplicationID,
		GuildID:       cfg.GuildID,
	}, session, registry, dispatcher, conversations, botLogger)

	if err := service.Start(ctx); err != nil {
		_ = service.Close()
		return err
	}
	shutdown.Add("discord", service)

	<-ctx.Done()
	log.Info("Shutdown signal received")
	return nil
}
