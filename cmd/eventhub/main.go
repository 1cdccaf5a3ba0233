// Command eventhub serves the EventHub session core on localhost.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrymomot/eventhub/modules/api"
	"github.com/dmitrymomot/eventhub/pkg/account"
	"github.com/dmitrymomot/eventhub/pkg/config"
	"github.com/dmitrymomot/eventhub/pkg/event"
	"github.com/dmitrymomot/eventhub/pkg/httpserver"
	"github.com/dmitrymomot/eventhub/pkg/kvstore"
	"github.com/dmitrymomot/eventhub/pkg/logger"
	"github.com/dmitrymomot/eventhub/pkg/persistence"
	"github.com/dmitrymomot/eventhub/pkg/requestid"
	"github.com/dmitrymomot/eventhub/pkg/session"
)

type appConfig struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	Service   string `env:"APP_NAME" envDefault:"eventhub"`
	LogFormat string `env:"LOG_FORMAT"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}

	var (
		appCfg     appConfig
		storageCfg kvstore.Config
		sessionCfg session.Config
		serverCfg  httpserver.Config
		eventCfg   event.Config
	)
	if err := errors.Join(
		config.Load(&appCfg),
		config.Load(&storageCfg),
		config.Load(&sessionCfg),
		config.Load(&serverCfg),
		config.Load(&eventCfg),
	); err != nil {
		return err
	}

	logOpts := []logger.Option{
		logger.WithEnvironment(appCfg.Env, appCfg.Service),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if appCfg.LogFormat != "" {
		logOpts = append(logOpts, logger.WithFormat(logger.Format(appCfg.LogFormat)))
	}
	log := logger.New(logOpts...)
	logger.SetAsDefault(log)

	backend, err := kvstore.Open(ctx, storageCfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error("failed to close storage", logger.Error(err))
		}
	}()

	bridge := persistence.New(backend, persistence.WithLogger(log))
	accounts := account.NewStore(account.WithPersister(bridge), account.WithLogger(log))
	accounts.Load(ctx)

	seed, err := event.LoadSeed(eventCfg)
	if err != nil {
		return err
	}
	catalog := event.NewCatalog(event.WithEvents(seed), event.WithLogger(log))

	nav := api.NewNavigation()
	defer nav.Close()
	signals := session.NewSignalBus()

	manager := session.New(accounts,
		session.WithConfig(sessionCfg),
		session.WithPersister(bridge),
		session.WithNavigator(nav),
		session.WithSignalSource(signals),
		session.WithLogger(log),
	)
	manager.Start(ctx)
	defer manager.Close()

	router := api.Router(api.Options{
		Sessions:   manager,
		Events:     catalog,
		ReturnURLs: bridge,
		Signals:    signals,
		Navigation: nav,
		Readiness:  []func(context.Context) error{backend.Healthcheck},
		Logger:     log,
	})

	server := httpserver.NewFromConfig(serverCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger, addr string) {
			l.Info("eventhub ready",
				slog.String("url", "http://"+addr),
				logger.Driver(backend.Driver()),
				slog.Duration("session_timeout", manager.Timeout()),
			)
		}),
	)
	return server.Run(ctx, router)
}
