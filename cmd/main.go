// Command navarb watches the NAV of a tokenized index and trades its premium or discount on a DEX aggregator.
//
// Usage:
//
//	navarb --config config.yaml
//	navarb --setup
//
// Required environment variables (a .env file in the working directory is loaded first):
//
//	ZX_API_KEY, CMC_API_KEY, PRIVATE_KEY (not needed with dry_run), optionally
//	ETH_ADDRESS, NETWORK, RPC_URL, SLACK_WEBHOOK_URL
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/navarb/config"
	"github.com/vadiminshakov/navarb/internal"
	"github.com/vadiminshakov/navarb/internal/clients"
	"github.com/vadiminshakov/navarb/internal/events"
	"github.com/vadiminshakov/navarb/internal/setup"
	"github.com/vadiminshakov/navarb/internal/storage/journal"
	"github.com/vadiminshakov/navarb/internal/web"
	"github.com/vadiminshakov/navarb/pkg/retrier"
)

func main() {
	opts, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	if err := config.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(opts.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if opts.Setup {
		path, err := setup.RunTUI()
		if err != nil {
			logger.Fatal("setup failed", zap.Error(err))
		}
		opts.ConfigPath = path
	}

	cfg, err := config.Load(opts.ConfigPath, os.Getenv)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	logger.Info("Config loaded", cfg.Redacted()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("bot stopped with error", zap.Error(err))
	}
	logger.Info("Shut down")
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	r := retrier.New(
		retrier.WithMaxRetries(5),
		retrier.WithRetryIf(func(err error) bool { return !errors.Is(err, context.Canceled) }),
		retrier.WithOnRetry(func(attempt int, wait time.Duration, err error) {
			logger.Warn("rpc connection failed, retrying", zap.Int("attempt", attempt), zap.Duration("wait", wait), zap.Error(err))
		}),
	)

	eth, err := clients.NewEthClient(ctx, cfg.Network.RPCURL, cfg.PrivateKey, r, logger.Named("rpc"))
	if err != nil {
		return err
	}
	defer eth.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cycles := events.NewCycleBroadcaster(16)

	var cycleJournal *journal.WALStore
	if cfg.JournalDir != "" {
		cycleJournal, err = journal.NewWALStore(cfg.JournalDir, logger.Named("journal"))
		if err != nil {
			return err
		}
		defer func() {
			if err := cycleJournal.Close(); err != nil {
				logger.Warn("failed to close cycle journal", zap.Error(err))
			}
		}()
	}

	bot, err := internal.NewTradingBotFromConfig(ctx, cfg, internal.Dependencies{
		Backend:    eth.Client(),
		PrivateKey: eth.PrivateKey(),
		Registerer: registry,
		Cycles:     cycles,
		Journal:    cycleJournal,
	}, logger)
	if err != nil {
		return errors.Wrap(err, "failed to create trading bot")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(ctx)
	})
	if cfg.MetricsAddr != "" {
		srv := web.NewServer(cfg.MetricsAddr, cycles, registry, cfg.StaleAfter, logger.Named("web"))
		if cycleJournal != nil {
			srv.EnableHistory(cycleJournal)
		}
		g.Go(func() error {
			return srv.Start(ctx)
		})
	}

	return g.Wait()
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
