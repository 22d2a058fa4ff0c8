// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"bakerypos/internal/config"
	"bakerypos/internal/core/apperror"
	appctx "bakerypos/internal/core/context"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain/auth"
	"bakerypos/internal/infrastructure/storage/postgres"
	"bakerypos/internal/infrastructure/storage/postgres/auth_repo"
	"bakerypos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.Pool())
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	if err := seedAdminUser(ctx, txManager, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, txManager, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	username := getEnv("ADMIN_USERNAME", "admin")
	password := getEnv("ADMIN_PASSWORD", "Admin123!")

	service := auth.NewService(
		auth_repo.NewUserRepo(txManager),
		auth_repo.NewTokenRepo(txManager),
		txManager,
		nil,
		auth.DefaultServiceConfig(),
	)

	user, err := service.CreateUser(ctx, auth.CreateUserRequest{
		Username: username,
		Password: password,
		FullName: "System Admin",
		Role:     appctx.RoleAdmin,
	})
	if apperror.HasCode(err, apperror.CodeDuplicate) {
		log.Infow("admin user already exists", "username", username)
		return nil
	}
	if err != nil {
		return err
	}

	log.Infow("admin user created", "username", user.Username, "user_id", user.ID)
	return nil
}

type brandSeed struct {
	name     string
	products []productSeed
}

type productSeed struct {
	name         string
	size         string
	price        string
	specialPrice string // empty means no evening price
}

var demoBrands = []brandSeed{
	{"House Bakery", []productSeed{
		{"Sandwich Bread", "450g", "180.00", "150.00"},
		{"Tea Bun", "", "60.00", "45.00"},
		{"Fish Bun", "", "90.00", "70.00"},
		{"Butter Cake", "1kg", "1200.00", ""},
	}},
	{"Sunrise Rolls", []productSeed{
		{"Chicken Roll", "", "120.00", "100.00"},
		{"Vegetable Roti", "", "80.00", ""},
	}},
}

var demoStockItems = []struct {
	name, price, quantity, unit string
}{
	{"Bottled Water 500ml", "100.00", "48", "pcs"},
	{"Milk Packet", "150.00", "24", "pcs"},
	{"Candles", "50.00", "60", "pcs"},
}

var demoSuppliers = []struct {
	name, contact, phone string
}{
	{"Lanka Flour Mills", "N. Perera", "0112000001"},
	{"Green Dairy", "S. Silva", "0112000002"},
}

// seedDemoData loads a small catalog with COPY. It does nothing when brands exist.
func seedDemoData(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	var brands int64
	if err := txManager.GetQuerier(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM brands`).Scan(&brands); err != nil {
		return fmt.Errorf("count brands: %w", err)
	}
	if brands > 0 {
		log.Info("catalog not empty, skipping demo data")
		return nil
	}

	now := time.Now().UTC()
	batch := postgres.NewBatchInserter(txManager)

	var brandRows, productRows, itemRows, supplierRows [][]any
	for _, b := range demoBrands {
		brandID := id.New()
		brandRows = append(brandRows, []any{brandID, b.name, "active", 1, now, now})

		for _, p := range b.products {
			var special *types.Money
			if p.specialPrice != "" {
				v := types.MustMoney(p.specialPrice)
				special = &v
			}
			productRows = append(productRows, []any{
				id.New(), p.name, brandID, types.MustMoney(p.price), special, special != nil,
				p.size, "active", 1, now, now,
			})
		}
	}
	for _, s := range demoStockItems {
		itemRows = append(itemRows, []any{
			id.New(), s.name, types.MustMoney(s.price), types.MustMoney(s.quantity), s.unit, true,
			"active", 1, now, now,
		})
	}
	for _, s := range demoSuppliers {
		supplierRows = append(supplierRows, []any{id.New(), s.name, s.contact, s.phone, "active", 1, now, now})
	}

	return txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		loads := []struct {
			table   string
			columns []string
			rows    [][]any
		}{
			{"brands", []string{"id", "name", "status", "version", "created_at", "updated_at"}, brandRows},
			{"products", []string{
				"id", "name", "brand_id", "price", "special_price", "is_special_pricing",
				"size", "status", "version", "created_at", "updated_at",
			}, productRows},
			{"stock_items", []string{
				"id", "name", "unit_price", "quantity", "unit", "is_sellable",
				"status", "version", "created_at", "updated_at",
			}, itemRows},
			{"suppliers", []string{"id", "name", "contact_person", "phone", "status", "version", "created_at", "updated_at"}, supplierRows},
		}

		for _, l := range loads {
			n, err := batch.CopyFromSlice(ctx, l.table, l.columns, l.rows)
			if err != nil {
				return fmt.Errorf("copy %s: %w", l.table, err)
			}
			log.Infow("seeded", "table", l.table, "rows", n)
		}
		return nil
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
