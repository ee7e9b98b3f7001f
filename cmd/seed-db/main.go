// Command seed-db loads seed users and products from JSON files into a
// PostgreSQL database, running migrations first. Unlike the startup
// bootstrap, it accepts arbitrary file paths.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"

	"github.com/ikram-javatech/product-order-service/internal/bootstrap"
	"github.com/ikram-javatech/product-order-service/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	var (
		databaseURL  string
		usersFile    string
		productsFile string
	)
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&usersFile, "users-file", "db/seed/users.json", "path to users JSON file")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, usersFile, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, usersFile, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	seeder := bootstrap.NewSeeder(
		postgres.NewUserRepository(pool),
		postgres.NewProductRepository(pool),
		pool,
	)

	slog.Info("seeding",
		slog.String("users", usersFile),
		slog.String("products", productsFile),
	)

	usersDir, usersName := filepath.Split(usersFile)
	productsDir, productsName := filepath.Split(productsFile)
	if usersDir != productsDir {
		return errors.New("users and products files must live in the same directory")
	}
	if usersDir == "" {
		usersDir = "."
	}

	return seeder.Load(ctx, os.DirFS(usersDir), usersName, productsName)
}
