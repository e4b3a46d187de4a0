package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	appAccount "github.com/boutiqa/storefront/internal/application/account"
	appCart "github.com/boutiqa/storefront/internal/application/cart"
	appCatalog "github.com/boutiqa/storefront/internal/application/catalog"
	appQuote "github.com/boutiqa/storefront/internal/application/quote"
	appReassort "github.com/boutiqa/storefront/internal/application/reassort"
	"github.com/boutiqa/storefront/internal/config"
	domCatalog "github.com/boutiqa/storefront/internal/domain/catalog"
	"github.com/boutiqa/storefront/internal/infrastructure/assets"
	"github.com/boutiqa/storefront/internal/infrastructure/bus"
	"github.com/boutiqa/storefront/internal/infrastructure/id"
	"github.com/boutiqa/storefront/internal/infrastructure/localstore"
	"github.com/boutiqa/storefront/internal/infrastructure/memory"
	notificationworker "github.com/boutiqa/storefront/internal/infrastructure/notification/worker"
	"github.com/boutiqa/storefront/internal/infrastructure/observability/oteltrace"
	"github.com/boutiqa/storefront/internal/infrastructure/observability/prometrics"
	"github.com/boutiqa/storefront/internal/infrastructure/observability/telemetry"
	"github.com/boutiqa/storefront/internal/infrastructure/observability/zaplogger"
	reassortworker "github.com/boutiqa/storefront/internal/infrastructure/reassort/worker"
	"github.com/boutiqa/storefront/internal/observability"
	"github.com/boutiqa/storefront/internal/pkg/logging"
	httppresentation "github.com/boutiqa/storefront/internal/presentation/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	baseLogger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	logger := zaplogger.Wrap(baseLogger)

	registry := prometrics.New(cfg.ServiceName, "")
	tel := telemetry.New(
		oteltrace.New(cfg.ServiceName),
		logger,
		map[observability.MetricKey]observability.Counter{
			observability.MCartOperations: registry.Counter(
				string(observability.MCartOperations),
				"Total number of cart operations.",
				"operation", "outcome",
			),
			observability.MStockLookups: registry.Counter(
				string(observability.MStockLookups),
				"Total number of stock lookups by outcome.",
				"outcome",
			),
			observability.MEventPublishFailures: registry.Counter(
				string(observability.MEventPublishFailures),
				"Count of domain event publish failures.",
				"event",
			),
			observability.MHTTPRequests: registry.Counter(
				string(observability.MHTTPRequests),
				"Total number of HTTP requests.",
				"method", "route", "status",
			),
		},
		map[observability.MetricKey]observability.Histogram{
			observability.MCartOperationDuration: registry.Histogram(
				string(observability.MCartOperationDuration),
				"Duration of cart operations in seconds.",
				nil,
				"operation",
			),
			observability.MHTTPRequestDuration: registry.Histogram(
				string(observability.MHTTPRequestDuration),
				"Duration of HTTP requests in seconds.",
				nil,
				"method", "route",
			),
		},
	)

	idGenerator := id.NewUUIDGenerator()

	cartStore, err := localstore.NewDisk(cfg.Cart.StoragePrefix, filepath.Join(cfg.DataDir, "carts"), logger)
	if err != nil {
		baseLogger.Fatal("localstore_init_failed", zap.Error(err))
	}
	uploader, err := assets.NewDiskUploader(filepath.Join(cfg.DataDir, "assets"), "/assets")
	if err != nil {
		baseLogger.Fatal("assets_init_failed", zap.Error(err))
	}

	productRepo := memory.NewProductRepository()
	stockRepo := memory.NewStockRepository()
	seedCatalog(productRepo, stockRepo, cfg.Currency)

	quoteRepo := memory.NewQuoteRepository()
	accountRepo := memory.NewAccountRepository()
	reassortRepo := memory.NewReassortRepository()
	historyRepo := memory.NewReassortHistoryRepository()
	notificationRepo := memory.NewNotificationRepository()

	eventBus := bus.NewBus(logger)
	eventBus.Start(context.Background())

	accountService := appAccount.NewService(accountRepo, idGenerator, uploader, eventBus, tel)
	cartService := appCart.NewService(stockRepo, cartStore, accountService, cfg.Cart.WholesaleMinQuantity, tel)
	catalogService, err := appCatalog.NewService(productRepo, cfg.Locales.Default, cfg.Locales.Supported, tel)
	if err != nil {
		baseLogger.Fatal("catalog_init_failed", zap.Error(err))
	}
	quoteService := appQuote.NewService(quoteRepo, idGenerator, eventBus, tel)
	reassortService := appReassort.NewService(reassortRepo, historyRepo, idGenerator, eventBus, tel)

	notifWorker := notificationworker.New(eventBus, notificationRepo, idGenerator, tel)
	notifWorker.Start()

	scheduler := reassortworker.New(reassortService, cfg.Reassort.ScanInterval.Std(), tel)
	scheduler.Start(context.Background())

	handler := httppresentation.NewHandler(
		cartService,
		catalogService,
		quoteService,
		accountService,
		reassortService,
		notificationRepo,
		tel,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("http_server_start", zap.String("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Error("http_server_error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	eventBus.Stop(shutdownCtx)

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("http_server_shutdown_error", zap.Error(err))
	} else {
		baseLogger.Info("http_server_stopped")
	}
}

// seedCatalog loads the demo product set. A real deployment replaces this
// with the document-store backed catalog importer.
func seedCatalog(products *memory.ProductRepository, stock *memory.StockRepository, currencyCode string) {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		unit = currency.EUR
	}

	seed := []struct {
		product domCatalog.Product
		stock   int
	}{
		{
			product: domCatalog.Product{
				ID:        "savon-lavande-250",
				Reference: "SAV-LAV-250",
				Category:  "soaps",
				Price:     domCatalog.Money{Amount: decimal.NewFromFloat(6.90), Currency: unit},
				ImageRef:  "products/savon-lavande.jpg",
				Translations: map[string]domCatalog.Text{
					"fr":    {Name: "Savon à la lavande 250g", Description: "Savon artisanal à l'huile essentielle de lavande."},
					"en":    {Name: "Lavender soap 250g", Description: "Handcrafted soap with lavender essential oil."},
					"es-PE": {Name: "Jabón de lavanda 250g", Description: "Jabón artesanal con aceite esencial de lavanda."},
				},
			},
			stock: 240,
		},
		{
			product: domCatalog.Product{
				ID:        "huile-argan-100",
				Reference: "HUI-ARG-100",
				Category:  "oils",
				Price:     domCatalog.Money{Amount: decimal.NewFromFloat(19.50), Currency: unit},
				ImageRef:  "products/huile-argan.jpg",
				Translations: map[string]domCatalog.Text{
					"fr": {Name: "Huile d'argan 100ml", Description: "Huile d'argan pure pressée à froid."},
					"en": {Name: "Argan oil 100ml", Description: "Pure cold-pressed argan oil."},
				},
			},
			stock: 60,
		},
		{
			product: domCatalog.Product{
				ID:        "coffret-decouverte",
				Reference: "COF-DEC-001",
				Category:  "gift-sets",
				Price:     domCatalog.Money{Amount: decimal.NewFromFloat(34.00), Currency: unit},
				ImageRef:  "products/coffret-decouverte.jpg",
				Translations: map[string]domCatalog.Text{
					"fr": {Name: "Coffret découverte", Description: "Sélection de quatre produits emblématiques."},
					"en": {Name: "Discovery gift set", Description: "A selection of four signature products."},
				},
			},
			stock: 25,
		},
	}

	for _, s := range seed {
		p := s.product
		p.StockUnits = s.stock
		products.Seed(p)
		stock.Set(p.ID, s.stock)
	}
}
