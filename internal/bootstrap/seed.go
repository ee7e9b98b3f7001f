// Package bootstrap loads seed users and products from static JSON files into
// the database at startup.
package bootstrap

import (
	"context"
	"encoding/json"
	"io/fs"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ikram-javatech/product-order-service/internal/domain/product"
	"github.com/ikram-javatech/product-order-service/internal/domain/user"
)

// userSeed is a record in users.json. The password field carries a bcrypt
// hash, never a plaintext password.
type userSeed struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// productSeed is a record in products.json. The price is a decimal string.
type productSeed struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	Available   bool   `json:"available"`
}

// Seeder inserts seed data using the domain repositories.
type Seeder struct {
	users    user.Repository
	products product.Repository
	pool     *pgxpool.Pool
}

// NewSeeder creates a Seeder.
func NewSeeder(users user.Repository, products product.Repository, pool *pgxpool.Pool) *Seeder {
	return &Seeder{users: users, products: products, pool: pool}
}

// Load seeds users and products from the given filesystem. Users are inserted
// only when their username is absent; products are inserted only when the
// products table is empty.
func (s *Seeder) Load(ctx context.Context, seedFS fs.FS, usersPath, productsPath string) error {
	if err := s.loadUsers(ctx, seedFS, usersPath); err != nil {
		return errors.Wrap(err, "load users")
	}
	if err := s.loadProducts(ctx, seedFS, productsPath); err != nil {
		return errors.Wrap(err, "load products")
	}
	return nil
}

func (s *Seeder) loadUsers(ctx context.Context, seedFS fs.FS, path string) error {
	lg := zctx.From(ctx)

	data, err := fs.ReadFile(seedFS, path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	var seeds []userSeed
	if err := json.Unmarshal(data, &seeds); err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}

	for _, seed := range seeds {
		_, err := s.users.GetByUsername(ctx, seed.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, user.ErrNotFound) {
			return err
		}

		u := &user.User{
			Username:     seed.Username,
			PasswordHash: seed.Password,
			Roles:        seed.Roles,
		}
		if err := s.users.Create(ctx, u); err != nil {
			return err
		}
		lg.Info("Bootstrapped user", zap.String("username", u.Username))
	}
	return nil
}

func (s *Seeder) loadProducts(ctx context.Context, seedFS fs.FS, path string) error {
	lg := zctx.From(ctx)

	var count int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return errors.Wrap(err, "count products")
	}
	if count > 0 {
		return nil
	}

	data, err := fs.ReadFile(seedFS, path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	var seeds []productSeed
	if err := json.Unmarshal(data, &seeds); err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}

	for _, seed := range seeds {
		price, err := decimal.NewFromString(seed.Price)
		if err != nil {
			return errors.Wrapf(err, "parse price for %q", seed.Name)
		}
		p := &product.Product{
			Name:        seed.Name,
			Description: seed.Description,
			Price:       price,
			Quantity:    seed.Quantity,
			Available:   seed.Available,
		}
		if err := s.products.Create(ctx, p); err != nil {
			return err
		}
	}
	lg.Info("Bootstrapped products", zap.Int("count", len(seeds)))
	return nil
}
