package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	appcart "github.com/greenmart/storefront/internal/application/cart"
	appcatalog "github.com/greenmart/storefront/internal/application/catalog"
	apporder "github.com/greenmart/storefront/internal/application/order"
	apppayment "github.com/greenmart/storefront/internal/application/payment"
	appreview "github.com/greenmart/storefront/internal/application/review"
	"github.com/greenmart/storefront/internal/config"
	domcart "github.com/greenmart/storefront/internal/domain/cart"
	domcatalog "github.com/greenmart/storefront/internal/domain/catalog"
	domorder "github.com/greenmart/storefront/internal/domain/order"
	"github.com/greenmart/storefront/internal/domain/pricing"
	domreview "github.com/greenmart/storefront/internal/domain/review"
	"github.com/greenmart/storefront/internal/infrastructure/id"
	"github.com/greenmart/storefront/internal/infrastructure/memory"
	"github.com/greenmart/storefront/internal/infrastructure/mongodb"
	"github.com/greenmart/storefront/internal/infrastructure/notify"
	"github.com/greenmart/storefront/internal/infrastructure/providerhook"
	"github.com/greenmart/storefront/internal/infrastructure/rediscache"
	"github.com/greenmart/storefront/internal/observability"
	"github.com/greenmart/storefront/internal/observability/oteltrace"
	"github.com/greenmart/storefront/internal/observability/prometrics"
	"github.com/greenmart/storefront/internal/observability/zaplogger"
	httppresentation "github.com/greenmart/storefront/internal/presentation/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := zaplogger.New(
		observability.F("service", cfg.ServiceName),
		observability.F("env", cfg.Env),
	)
	metrics := prometrics.New(prometheus.DefaultRegisterer, "")
	tracer := oteltrace.New(cfg.ServiceName)
	tel := observability.NewTelemetry(tracer, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup_failed", observability.F("error", err.Error()))
		os.Exit(1)
	}

	var cartCache appcart.Cache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Error("redis_unreachable", observability.F("error", err.Error()))
			os.Exit(1)
		}
		cartCache = rediscache.NewCartCache(client)
		logger.Info("cart_cache_enabled", observability.F("addr", cfg.RedisAddr))
	}

	rates := pricing.Rates{
		TaxRate:               cfg.TaxRate,
		ShippingFlatFee:       cfg.ShippingFlatFee,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
	}
	ids := id.NewUUIDGenerator()
	numbers := id.NewNumberGenerator(cfg.OrderNumberPrefix)
	notifier := notify.NewLogNotifier(tel)
	promos := memory.NewPromoResolver(
		pricing.Promo{Code: "WELCOME10", Percent: 0.10, MinSubtotal: 100000},
	)

	catalogSvc := appcatalog.NewService(repos.products, repos.categories, ids, tel)
	cartSvc := appcart.NewService(repos.carts, repos.products, cartCache, rates, tel)
	orderSvc := apporder.NewService(repos.orders, repos.products, cartSvc, ids, numbers, promos, notifier, rates, tel)
	paymentSvc := apppayment.NewService(repos.orders, providerhook.NewStubProvider(), notifier, tel)
	reviewSvc := appreview.NewService(repos.reviews, repos.products, ids, tel)

	webhook := providerhook.NewVerifier(cfg.PaymentWebhookSecret, cfg.PaymentWebhookTolerance)
	handler := httppresentation.NewHandler(catalogSvc, cartSvc, orderSvc, paymentSvc, reviewSvc, webhook, tel)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		logger.Info("http_server_start", observability.F("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", observability.F("error", err.Error()))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", observability.F("error", err.Error()))
	} else {
		logger.Info("http_server_stopped")
	}
}

type repositories struct {
	products   domcatalog.ProductRepository
	categories domcatalog.CategoryRepository
	carts      domcart.Repository
	orders     domorder.Repository
	reviews    domreview.Repository
}

// buildRepositories wires the document store when MONGO_URI is set and falls
// back to the in-memory stores otherwise, which keeps local development free
// of external services.
func buildRepositories(ctx context.Context, cfg config.Config, logger observability.Logger) (repositories, error) {
	if cfg.MongoURI == "" {
		logger.Info("using_memory_repositories")
		return repositories{
			products:   memory.NewProductRepository(),
			categories: memory.NewCategoryRepository(),
			carts:      memory.NewCartRepository(),
			orders:     memory.NewOrderRepository(),
			reviews:    memory.NewReviewRepository(),
		}, nil
	}

	db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return repositories{}, err
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return repositories{}, err
	}
	logger.Info("mongodb_connected", observability.F("database", cfg.MongoDatabase))

	return repositories{
		products:   mongodb.NewProductRepository(db),
		categories: mongodb.NewCategoryRepository(db),
		carts:      mongodb.NewCartRepository(db),
		orders:     mongodb.NewOrderRepository(db),
		reviews:    mongodb.NewReviewRepository(db),
	}, nil
}
