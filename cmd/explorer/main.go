package main

import (
	"context"
	"ethereum-block-explorer/internal/adapters/primary"
	"ethereum-block-explorer/internal/adapters/secondary"
	appservice "ethereum-block-explorer/internal/application/service"
	"ethereum-block-explorer/internal/domain/repository"
	"ethereum-block-explorer/internal/domain/service"
	"ethereum-block-explorer/internal/infrastructure/blockchain"
	"ethereum-block-explorer/internal/infrastructure/config"
	"ethereum-block-explorer/internal/infrastructure/database"
	"ethereum-block-explorer/internal/infrastructure/logger"
	"ethereum-block-explorer/internal/infrastructure/messaging"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type reportOptions struct {
	senders   bool
	receivers bool
	full      bool
}

var (
	opts = &reportOptions{}

	rootCmd = &cobra.Command{
		Use:   "explorer [n | start end]",
		Short: "Aggregate ether transfers over a range of Ethereum blocks",
		Long: `Fetches a range of blocks from an Ethereum JSON-RPC provider and prints transfer statistics.

  explorer 0          statistics for the current block
  explorer 5          statistics for the last 5 blocks and the current one
  explorer 1000 1100  statistics for blocks 1000 through 1100`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runExplorer,
	}
)

func init() {
	rootCmd.Flags().BoolVarP(&opts.senders, "senders", "s", false, "Get a sending addresses report")
	rootCmd.Flags().BoolVarP(&opts.receivers, "receivers", "r", false, "Get a receiving addresses report")
	rootCmd.Flags().BoolVarP(&opts.full, "full", "f", false, "Get a full report")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		primary.NewConsoleRenderer(os.Stderr).RenderError(err)
		os.Exit(1)
	}
}

// provideEthereumConfig extracts Ethereum configuration from main config
func provideEthereumConfig(cfg *config.Config) *config.EthereumConfig {
	return &cfg.Ethereum
}

// provideBlockStore opens the configured block cache. The cache is optional, so an
// unavailable backend only disables caching.
func provideBlockStore(cfg *config.Config, log *logger.Logger) repository.BlockStore {
	log = log.WithComponent("block-store")

	switch cfg.Cache.Driver {
	case config.CacheDriverMongoDB:
		ctx := context.Background()
		db, err := database.NewMongoDB(ctx, &cfg.MongoDB)
		if err != nil {
			log.Warn("MongoDB block cache unavailable, caching disabled", zap.Error(err))
			return nil
		}
		if err := db.CreateIndexes(ctx); err != nil {
			log.Warn("Failed to create block cache indexes", zap.Error(err))
		}
		return secondary.NewMongoBlockStore(db)
	case config.CacheDriverPebble:
		store, err := secondary.NewPebbleBlockStore(cfg.Cache.PebblePath)
		if err != nil {
			log.Warn("Pebble block cache unavailable, caching disabled", zap.Error(err))
			return nil
		}
		return store
	default:
		return nil
	}
}

func runExplorer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		explorerService *appservice.ExplorerService
		log             *logger.Logger
	)

	app := fx.New(
		fx.NopLogger,

		// Configuration
		fx.Provide(config.LoadConfig),
		fx.Provide(provideEthereumConfig),

		// Infrastructure
		fx.Provide(logger.NewLogger),
		fx.Provide(blockchain.NewEthereumService),
		fx.Provide(
			fx.Annotate(
				messaging.NewNATSMessagingService,
				fx.As(new(service.MessagingService)),
			),
		),
		fx.Provide(provideBlockStore),

		// Application services
		fx.Provide(appservice.NewExplorerService),

		// Lifecycle hooks
		fx.Invoke(registerHooks),
		fx.Populate(&explorerService, &log),
	)
	if err := app.Err(); err != nil {
		return err
	}

	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := app.Stop(context.Background()); err != nil {
			log.Warn("Error during shutdown", zap.Error(err))
		}
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nGetting your reports. Please be patient, this could take a while.")

	session, err := explorerService.Explore(ctx, args)
	if err != nil {
		return err
	}

	renderer := primary.NewConsoleRenderer(out)
	renderer.RenderStatistics(session.Span(), session.Statistics())

	if opts.senders || opts.full {
		report, err := session.SendersReport(ctx)
		if err != nil {
			return err
		}
		renderer.RenderSenders(report)
	}

	if opts.receivers || opts.full {
		report, err := session.ReceiversReport(ctx)
		if err != nil {
			return err
		}
		renderer.RenderReceivers(report)
	}

	return nil
}

// registerHooks registers application lifecycle hooks
func registerHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *logger.Logger,
	blockchainService service.BlockchainService,
	messagingService service.MessagingService,
	explorerService *appservice.ExplorerService,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Debug("Starting block explorer", zap.String("network", cfg.Ethereum.Network))

			if err := blockchainService.Connect(ctx); err != nil {
				return err
			}

			if err := messagingService.Connect(ctx); err != nil {
				log.Warn("Messaging unavailable, summaries will not be published", zap.Error(err))
			}

			// An unhealthy cache only disables caching
			_ = explorerService.CheckBlockStore(ctx)

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := explorerService.Close(ctx); err != nil {
				log.Warn("Error closing block store", zap.Error(err))
			}

			if err := messagingService.Disconnect(); err != nil {
				log.Warn("Error disconnecting from messaging", zap.Error(err))
			}

			if err := blockchainService.Disconnect(); err != nil {
				log.Warn("Error disconnecting from Ethereum node", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}
