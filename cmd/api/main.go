package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/enquiries"
	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/media"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/realtime"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/users"
	"github.com/ariefcatur/go-storefront/internal/view"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer, one for every topic
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024)
	prod.Start(ctx)
	emitter := &events.Emitter{Publisher: prod, Service: cfg.ServiceName}

	images, err := media.New(cfg.Cloudinary)
	if err != nil {
		log.Fatalf("media: %v", err)
	}
	if cfg.Auth.SigningKey == "" {
		log.Println("AUTH_SIGNING_KEY is empty: every token will be rejected")
	}

	// Services
	products := &catalog.Repo{DB: db}
	catalogSvc := &catalog.Service{
		Store:  products,
		Cache:  &catalog.Snapshot{Redis: rdb},
		Images: images,
		Events: emitter,
	}
	rules := cart.Rules{FreeShippingOver: cfg.Shop.FreeShippingOver, ShippingFee: cfg.Shop.ShippingFee}
	carts := &cart.Store{Redis: rdb, TTL: cfg.Shop.CartTTL}
	orderSvc := &orders.Service{
		Orders:  &orders.Repo{DB: db},
		Carts:   carts,
		Stocks:  products,
		Catalog: catalogSvc,
		Redis:   rdb,
		Events:  emitter,
		Rules:   rules,
	}
	userRepo := &users.Repo{DB: db}
	presenter := view.Presenter{Symbol: cfg.Shop.CurrencySymbol}

	pages, err := view.NewRenderer()
	if err != nil {
		log.Fatalf("templates: %v", err)
	}

	// Realtime
	productsHub := realtime.NewHub("products", func(ctx context.Context) (any, error) {
		return httpx.ProductsSnapshot(ctx, catalogSvc, presenter)
	}, cfg.CORS)
	ordersHub := realtime.NewHub("orders", func(ctx context.Context) (any, error) {
		return httpx.OrdersSnapshot(ctx, orderSvc, presenter)
	}, cfg.CORS)
	go productsHub.Run(ctx)
	go ordersHub.Run(ctx)

	// every replica needs every event for its own subscribers
	host, _ := os.Hostname()
	group := cfg.ServiceName + "-realtime-" + host
	subscribe(ctx, cfg.KafkaBrokers, group, events.TopicProductChanged, productsHub.HandleMessage)
	subscribe(ctx, cfg.KafkaBrokers, group, events.TopicOrderPlaced, ordersHub.HandleMessage)
	subscribe(ctx, cfg.KafkaBrokers, group, events.TopicOrderStatusChanged, ordersHub.HandleMessage)

	api := &httpx.API{
		Catalog:     catalogSvc,
		Carts:       carts,
		Orders:      orderSvc,
		Enquiries:   &enquiries.Repo{DB: db},
		Users:       userRepo,
		Roles:       &users.Roles{Grants: userRepo, Redis: rdb},
		Verifier:    &auth.Verifier{Key: []byte(cfg.Auth.SigningKey), Issuer: cfg.Auth.Issuer, Audience: cfg.Auth.Audience},
		Presenter:   presenter,
		Pages:       pages,
		Rules:       rules,
		LowStock:    cfg.Shop.LowStockThreshold,
		ProductsHub: productsHub,
		OrdersHub:   ordersHub,
	}
	router := httpx.NewRouter(cfg.CORS)
	api.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // flush the inbox before the loop stops
	cancel()
	prod.WaitClosed()
}

func subscribe(ctx context.Context, brokers []string, group, topic string, h kafkax.Handler) {
	cons := kafkax.NewConsumer(brokers, group, topic, 1)
	go func() {
		if err := cons.Start(ctx, h); err != nil && ctx.Err() == nil {
			log.Printf("realtime consumer %s exit: %v", topic, err)
		}
	}()
}
