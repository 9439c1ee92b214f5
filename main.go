package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catering-menu/bot"
	"catering-menu/config"
	"catering-menu/db"
	"catering-menu/services"
	"catering-menu/web"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	var cfg *config.Config

	app := &cli.App{
		Name:  "catering-menu",
		Usage: "homemade catering menu: browse, fill a cart and send the order as a chat message",
		Before: func(c *cli.Context) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return errors.Wrap(err, "config")
			}
			return setupLogging(cfg.Log)
		},
		Commands: []*cli.Command{
			{
				Name:  "web",
				Usage: "serve the web ordering page",
				Action: func(c *cli.Context) error {
					return runServices(c.Context, cfg, true, false)
				},
			},
			{
				Name:  "bot",
				Usage: "run the Telegram ordering bot",
				Action: func(c *cli.Context) error {
					return runServices(c.Context, cfg, false, true)
				},
			},
			{
				Name:  "serve",
				Usage: "run the web page and the Telegram bot together",
				Action: func(c *cli.Context) error {
					return runServices(c.Context, cfg, true, true)
				},
			},
			{
				Name:  "migrate",
				Usage: "apply embedded SQL migrations",
				Action: func(c *cli.Context) error {
					return runMigrate(c.Context, cfg)
				},
			},
			{
				Name:  "seed",
				Usage: "load the catalog spreadsheet into the menu_items table",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "catalog file (defaults to CATALOG_PATH)"},
				},
				Action: func(c *cli.Context) error {
					path := c.String("file")
					if path == "" {
						path = cfg.Catalog.Path
					}
					return runSeed(c.Context, cfg, path)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Error("exit")
		os.Exit(1)
	}
}

func setupLogging(cfg config.LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return errors.Wrap(err, "LOG_LEVEL")
	}
	log.SetLevel(level)
	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// loadCatalog reads the catalog from the configured source. Without a catalog nothing can be served.
func loadCatalog(ctx context.Context, cfg *config.Config) (*services.Catalog, error) {
	if cfg.Catalog.Source == config.CatalogSourcePostgres {
		pool, err := db.Connect(ctx, cfg.DB)
		if err != nil {
			return nil, errors.Wrap(err, "db")
		}
		defer pool.Close()
		return services.LoadCatalog(ctx, services.PostgresCatalogSource{Pool: pool})
	}
	return services.LoadCatalog(ctx, services.FileCatalogSource{Path: cfg.Catalog.Path})
}

func runServices(parent context.Context, cfg *config.Config, withWeb, withBot bool) error {
	if withBot && cfg.Telegram.Token == "" {
		return errors.New("TOKEN not set")
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := loadCatalog(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}
	log.WithFields(log.Fields{
		"source": cfg.Catalog.Source,
		"dishes": catalog.Len(),
	}).Info("catalog loaded")

	sessions := services.NewSessionStore(cfg.Web.SessionTTL, cfg.Order.MaxQtyPerAdd)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions.RunSweeper(ctx, sweepInterval)
		return nil
	})

	if withWeb {
		svr, err := web.NewServer(cfg, catalog, sessions)
		if err != nil {
			return errors.Wrap(err, "web")
		}
		g.Go(func() error {
			return svr.Run()
		})
		g.Go(func() error {
			<-ctx.Done()
			log.Info("shutting down web server")
			return svr.Shutdown(shutdownTimeout)
		})
	}

	if withBot {
		b, err := bot.New(cfg, catalog, sessions)
		if err != nil {
			return errors.Wrap(err, "bot")
		}
		g.Go(func() error {
			return b.Run(ctx)
		})
	}

	return g.Wait()
}

func runMigrate(ctx context.Context, cfg *config.Config) error {
	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return errors.Wrap(err, "db")
	}
	defer pool.Close()
	return applyMigrations(ctx, pool)
}

func runSeed(ctx context.Context, cfg *config.Config, path string) error {
	catalog, err := services.LoadCatalog(ctx, services.FileCatalogSource{Path: path})
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}
	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return errors.Wrap(err, "db")
	}
	defer pool.Close()

	n, err := services.SeedMenu(ctx, pool, catalog.Dishes())
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"file": path, "dishes": n}).Info("menu seeded")
	return nil
}
