package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dzgamezone-be/internal/category"
	"dzgamezone-be/internal/config"
	"dzgamezone-be/internal/db"
	"dzgamezone-be/internal/logger"
	"dzgamezone-be/internal/metrics"
	"dzgamezone-be/internal/middleware"
	"dzgamezone-be/internal/notification"
	"dzgamezone-be/internal/order"
	"dzgamezone-be/internal/pricing"
	"dzgamezone-be/internal/product"
	"dzgamezone-be/internal/shipping"
	"dzgamezone-be/internal/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	cachePrefix     = "dzgamezone"
	shutdownTimeout = 15 * time.Second
)

// stores holds the repositories of the selected backend.
type stores struct {
	categories category.Repository
	products   product.Repository
	wilayas    shipping.Repository
	orders     order.Repository
	close      func()
}

func postgresStores(database *sql.DB) *stores {
	return &stores{
		categories: category.NewRepository(database),
		products:   product.NewRepository(database),
		wilayas:    shipping.NewRepository(database),
		orders:     order.NewRepository(database),
		close:      func() { database.Close() },
	}
}

func mongoStores(client *mongo.Client, database *mongo.Database) *stores {
	return &stores{
		categories: category.NewMongoRepository(database),
		products:   product.NewMongoRepository(database),
		wilayas:    shipping.NewMongoRepository(database),
		orders:     order.NewMongoRepository(database),
		close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		},
	}
}

// Overridable in tests.
var (
	initDBFunc = func(cfg *config.Config) *stores {
		if cfg.DBDriver == config.DriverPostgres {
			return postgresStores(db.InitDB(cfg))
		}

		client, database := db.InitMongo(cfg)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := db.EnsureIndexes(ctx, database); err != nil {
			log.Fatalf("%v", err)
		}
		return mongoStores(client, database)
	}

	initRedisFunc = db.NewRedis

	startServerFunc = func(srv *http.Server) error {
		return srv.ListenAndServe()
	}
)

type server struct {
	handler  http.Handler
	notifier *notification.Notifier
}

// newServer wires services and handlers over st. rdb may be nil, in which
// case shipping rates are read straight from the store.
func newServer(ctx context.Context, cfg *config.Config, st *stores, rdb *redis.Client) *server {
	reg := metrics.NewRegistry()

	wilayas := st.wilayas
	if rdb != nil {
		wilayas = shipping.NewCachedRepository(wilayas, shipping.NewRedisCache(rdb, cachePrefix, cfg.RateCacheTTL))
	}

	var (
		notifier    *notification.Notifier
		orderNotify order.Notifier
	)
	if cfg.MailEnabled() {
		sender := notification.NewSMTPSender(notification.ShopName, cfg.MailFrom,
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
		notifier = notification.NewNotifier(sender, reg, cfg.RequestTimeout)
		orderNotify = notifier
	} else {
		logger.L().Warn("SMTP not configured, order emails disabled")
	}

	engine := pricing.NewEngine(st.products, wilayas, cfg.FreeShippingThreshold)

	categorySvc := category.NewService(st.categories)
	productSvc := product.NewService(st.products, st.categories)
	shippingSvc := shipping.NewService(wilayas)
	orderSvc := order.NewService(st.orders, st.products, engine, orderNotify, reg)

	limiter := middleware.NewRateLimiter(ctx, cfg.InternalSecretKey)

	r := setupRouter(cfg, limiter, reg)
	r.Route("/api", func(api chi.Router) {
		api.Mount("/categories", category.NewHandler(categorySvc).Routes())
		api.Mount("/products", product.NewHandler(productSvc).Routes())
		api.Mount("/orders", order.NewHandler(orderSvc).Routes())
		api.Mount("/shipping-wilayas", shipping.NewHandler(shippingSvc).Routes())
	})

	return &server{handler: r, notifier: notifier}
}

// setupRouter installs the middleware stack and the service endpoints.
func setupRouter(cfg *config.Config, limiter *middleware.RateLimiter, reg *metrics.Registry) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(limiter.Middleware)
	r.Use(chimw.Timeout(cfg.RequestTimeout))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		utils.WriteJSON(w, http.StatusOK, utils.MessageResponse{Message: "DZ GAME ZONE API"})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
	})
	r.Get("/metrics", reg.Handler())

	return r
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := initDBFunc(cfg)
	defer st.close()

	rdb, err := initRedisFunc(ctx, cfg)
	if err != nil {
		log.Warn("redis unavailable, shipping rates will not be cached", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	app := newServer(ctx, cfg, st, rdb)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", zap.String("addr", srv.Addr), zap.String("driver", cfg.DBDriver))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	if app.notifier != nil {
		app.notifier.Wait()
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
