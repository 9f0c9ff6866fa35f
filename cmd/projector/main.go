package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/events"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/projector"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/joho/godotenv"
)

// mustAtoi parses a positive count, falling back to def when s is unset or
// not one.
func mustAtoi(s, def string) int {
	if s != "" {
		if i, err := strconv.Atoi(s); err == nil && i > 0 {
			return i
		}
		log.Printf("invalid count %q, using %s", s, def)
	}
	i, err := strconv.Atoi(def)
	if err != nil {
		log.Fatalf("invalid default count %q", def)
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &projector.Service{
		Products:    &catalog.Repo{DB: db},
		Redis:       rdb,
		LowStock:    cfg.Shop.LowStockThreshold,
		ServiceName: cfg.ServiceName + "-projector",
	}
	if err := svc.Warm(ctx); err != nil {
		log.Printf("warm snapshot: %v", err)
	}

	group := getenv("PROJECTOR_GROUP", "catalog-projector")
	workers := mustAtoi(os.Getenv("PROJECTOR_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicProductChanged, workers)

	go func() {
		log.Printf("projector consumer started: group=%s topic=%s workers=%d", group, events.TopicProductChanged, workers)
		if err := cons.Start(ctx, svc.HandleProductChanged); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down projector...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
