package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/events"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/users"
	"github.com/joho/godotenv"
)

func main() {
	var (
		file     = flag.String("products", "", "YAML file with products to add")
		adminUID = flag.String("admin-uid", "", "identity-provider uid to grant the admin role")
		email    = flag.String("admin-email", "", "email stored with the admin profile")
		publish  = flag.Bool("publish", false, "emit change events for seeded products")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	if *file != "" {
		svc := &catalog.Service{Store: &catalog.Repo{DB: db}, Cache: &catalog.Snapshot{Redis: rdb}}
		var prod *kafkax.Producer
		if *publish {
			prod = kafkax.NewProducer(cfg.KafkaBrokers, 256)
			prod.Start(ctx)
			svc.Events = &events.Emitter{Publisher: prod, Service: cfg.ServiceName + "-seed"}
		}

		f, err := os.Open(*file)
		if err != nil {
			log.Fatalf("open %s: %v", *file, err)
		}
		in, err := catalog.LoadSeed(f)
		_ = f.Close()
		if err != nil {
			log.Fatalf("load %s: %v", *file, err)
		}
		n, err := catalog.Seed(ctx, svc, in)
		if err != nil {
			log.Fatalf("seed: %v (created %d)", err, n)
		}
		log.Printf("seeded %d of %d products", n, len(in))

		if prod != nil {
			prod.Close()
			prod.WaitClosed()
		}
	}

	if *adminUID != "" {
		repo := &users.Repo{DB: db}
		if _, err := repo.Ensure(ctx, auth.Identity{UID: *adminUID, Email: *email}); err != nil {
			log.Fatalf("ensure user: %v", err)
		}
		roles := &users.Roles{Grants: repo, Redis: rdb}
		if err := roles.Grant(ctx, *adminUID, users.RoleAdmin); err != nil {
			log.Fatalf("grant admin: %v", err)
		}
		log.Printf("granted %s to %s", users.RoleAdmin, *adminUID)
	}
}
