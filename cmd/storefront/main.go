package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/PuerkitoBio/goquery"
	"github.com/campuskart/storefront/internal/cart"
	"github.com/campuskart/storefront/internal/nav"
	"github.com/campuskart/storefront/internal/page"
	"github.com/campuskart/storefront/internal/session"
	"github.com/campuskart/storefront/internal/tabsync"
	"github.com/campuskart/storefront/pkg/config"
	"github.com/campuskart/storefront/pkg/kvstore"
	"github.com/campuskart/storefront/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		logg.Error(ctx, "failed to open page store", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logg.Error(context.Background(), "error closing page store", err)
		}
	}()

	ctx = logg.WithTabID(ctx, store.Origin().String())

	doc, err := loadDocument(cfg.Page.DocumentPath)
	if err != nil {
		logg.Error(ctx, "failed to load page document", err)
		os.Exit(1)
	}

	navigator := nav.NewLogNavigator(logg)

	cartSvc, err := cart.NewService(store, logg)
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}
	sessionSvc, err := session.NewService(store, navigator, logg)
	if err != nil {
		logg.Error(ctx, "failed to create session service", err)
		os.Exit(1)
	}

	ctrl, err := page.NewController(page.Params{
		Doc:       doc,
		Cart:      cartSvc,
		Session:   sessionSvc,
		Store:     store,
		Navigator: navigator,
		Logger:    logg,
		Timing:    cfg.UI,
	})
	if err != nil {
		logg.Error(ctx, "failed to create page controller", err)
		os.Exit(1)
	}

	// Page load sequence: hydrate persisted state, then paint every surface
	// that depends on it.
	cartSvc.Hydrate(ctx)
	sessionSvc.Hydrate(ctx)
	ctrl.LoadTheme(ctx)
	ctrl.PaintBadge()
	ctrl.PaintAllButtons()
	ctrl.PaintAuth()

	watcher, err := tabsync.NewWatcher(tabsync.Params{
		Store:   store,
		Cart:    cartSvc,
		Session: sessionSvc,
		Page:    ctrl,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create tab watcher", err)
		os.Exit(1)
	}

	go func() {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			logg.Error(ctx, "tab watcher stopped", err)
		}
	}()

	logg.Info(logg.WithField(ctx, "driver", cfg.Store.Driver), "page session ready")

	<-ctx.Done()
	logg.Info(context.Background(), "shutting down")
}

func openStore(ctx context.Context, cfg config.StoreConfig) (kvstore.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case config.StoreDriverRedis:
		return kvstore.OpenRedis(ctx, cfg.Redis)
	case config.StoreDriverMemory:
		return kvstore.NewMemoryBackend().Open(), nil
	default:
		return kvstore.OpenSQLite(cfg.SQLitePath, kvstore.NewBroadcaster())
	}
}

func loadDocument(path string) (*goquery.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return goquery.NewDocumentFromReader(f)
}
