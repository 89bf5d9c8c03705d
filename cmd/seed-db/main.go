package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"

	"github.com/emberline/glowmart/internal/auth"
	"github.com/emberline/glowmart/internal/domain/catalog"
	"github.com/emberline/glowmart/internal/domain/coupon"
	"github.com/emberline/glowmart/internal/domain/user"
	"github.com/emberline/glowmart/internal/storage/postgres"
)

type seedProduct struct {
	name        string
	description string
	brand       string
	category    string
	sizes       []string
	colors      []string
	price       string
	totalQty    int
}

var (
	seedBrands     = []string{"nike", "adidas", "puma"}
	seedCategories = []string{"sneakers", "apparel"}
	seedColors     = []string{"black", "white", "red"}

	seedProducts = []seedProduct{
		{
			name:        "Air Zoom Twist",
			description: "Lightweight everyday runner",
			brand:       "nike",
			category:    "sneakers",
			sizes:       []string{"40", "41", "42", "43"},
			colors:      []string{"black", "white"},
			price:       "129.99",
			totalQty:    50,
		},
		{
			name:        "Court Classic",
			description: "Low-top court shoe",
			brand:       "adidas",
			category:    "sneakers",
			sizes:       []string{"39", "40", "41"},
			colors:      []string{"white"},
			price:       "89.50",
			totalQty:    30,
		},
		{
			name:        "Track Jacket Retro",
			description: "Full-zip track jacket",
			brand:       "puma",
			category:    "apparel",
			sizes:       []string{"S", "M", "L", "XL"},
			colors:      []string{"red", "black"},
			price:       "64.00",
			totalQty:    80,
		},
	}
)

func main() {
	var (
		databaseURL   string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&adminEmail, "admin-email", "admin@glowmart.local", "email for the seeded admin account")
	flag.StringVar(&adminPassword, "admin-password", "", "password for the seeded admin account (or GLOWMART_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("GLOWMART_SEED_ADMIN_PASSWORD")
	}
	if adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or GLOWMART_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, adminEmail, adminPassword string) error {
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

	users := postgres.NewUserRepository(pool)
	taxa := postgres.NewTaxonRepository(pool)
	products := postgres.NewProductRepository(pool)
	coupons := postgres.NewCouponRepository(pool)

	adminID, err := seedAdmin(ctx, users, adminEmail, adminPassword)
	if err != nil {
		return errors.Wrap(err, "seed admin user")
	}

	if err := seedTaxa(ctx, taxa, adminID); err != nil {
		return errors.Wrap(err, "seed catalog taxa")
	}

	if err := seedCatalog(ctx, products, taxa, adminID); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedCoupons(ctx, coupons, adminID); err != nil {
		return errors.Wrap(err, "seed coupons")
	}

	return nil
}

func seedAdmin(ctx context.Context, users user.Repository, email, password string) (string, error) {
	if existing, err := users.GetByEmail(ctx, email); err == nil {
		slog.Info("admin user already exists", slog.String("email", email))
		return existing.ID, nil
	} else if !errors.Is(err, user.ErrNotFound) {
		return "", err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", errors.Wrap(err, "hash admin password")
	}

	admin := &user.User{
		ID:           uuid.New().String(),
		Fullname:     "Store Admin",
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return "", err
	}

	slog.Info("created admin user", slog.String("email", email))
	return admin.ID, nil
}

func seedTaxa(ctx context.Context, taxa catalog.TaxonRepository, adminID string) error {
	groups := []struct {
		kind  catalog.TaxonKind
		names []string
	}{
		{catalog.KindBrand, seedBrands},
		{catalog.KindCategory, seedCategories},
		{catalog.KindColor, seedColors},
	}

	for _, g := range groups {
		for _, name := range g.names {
			t := &catalog.Taxon{
				ID:     uuid.New().String(),
				Name:   name,
				Slug:   slug.Make(name),
				UserID: adminID,
			}
			err := taxa.Create(ctx, g.kind, t)
			switch {
			case err == nil:
				slog.Info("created taxon", slog.String("kind", string(g.kind)), slog.String("name", name))
			case errors.Is(err, catalog.ErrTaxonExists):
				slog.Info("taxon already exists", slog.String("kind", string(g.kind)), slog.String("name", name))
			default:
				return errors.Wrapf(err, "create %s %q", g.kind, name)
			}
		}
	}
	return nil
}

func seedCatalog(
	ctx context.Context,
	products catalog.ProductRepository,
	taxa catalog.TaxonRepository,
	adminID string,
) error {
	for _, sp := range seedProducts {
		if _, err := products.GetByName(ctx, sp.name); err == nil {
			slog.Info("product already exists", slog.String("name", sp.name))
			continue
		} else if !errors.Is(err, catalog.ErrProductNotFound) {
			return err
		}

		price, err := decimal.NewFromString(sp.price)
		if err != nil {
			return errors.Wrapf(err, "parse price for %q", sp.name)
		}

		p := &catalog.Product{
			ID:          uuid.New().String(),
			Name:        sp.name,
			Slug:        slug.Make(sp.name),
			Description: sp.description,
			Brand:       sp.brand,
			Category:    sp.category,
			Sizes:       sp.sizes,
			Colors:      sp.colors,
			UserID:      adminID,
			Price:       price,
			TotalQty:    sp.totalQty,
		}
		if err := products.Create(ctx, p); err != nil {
			return errors.Wrapf(err, "create product %q", sp.name)
		}

		brand, err := taxa.GetByName(ctx, catalog.KindBrand, sp.brand)
		if err != nil {
			return errors.Wrapf(err, "lookup brand %q", sp.brand)
		}
		if err := taxa.AppendProduct(ctx, catalog.KindBrand, brand.ID, p.ID); err != nil {
			return errors.Wrapf(err, "link product to brand %q", sp.brand)
		}

		category, err := taxa.GetByName(ctx, catalog.KindCategory, sp.category)
		if err != nil {
			return errors.Wrapf(err, "lookup category %q", sp.category)
		}
		if err := taxa.AppendProduct(ctx, catalog.KindCategory, category.ID, p.ID); err != nil {
			return errors.Wrapf(err, "link product to category %q", sp.category)
		}

		slog.Info("created product", slog.String("name", sp.name))
	}
	return nil
}

func seedCoupons(ctx context.Context, coupons coupon.Repository, adminID string) error {
	now := time.Now()
	demo := []coupon.Coupon{
		{
			Code:      "SAVE10",
			StartDate: now,
			EndDate:   now.AddDate(0, 1, 0),
			Discount:  decimal.NewFromInt(10),
		},
		{
			Code:      "WELCOME25",
			StartDate: now,
			EndDate:   now.AddDate(0, 0, 14),
			Discount:  decimal.NewFromInt(25),
		},
	}

	for _, c := range demo {
		c.ID = uuid.New().String()
		c.UserID = adminID
		err := coupons.Create(ctx, &c)
		switch {
		case err == nil:
			slog.Info("created coupon", slog.String("code", c.Code))
		case errors.Is(err, coupon.ErrCodeTaken):
			slog.Info("coupon already exists", slog.String("code", c.Code))
		default:
			return errors.Wrapf(err, "create coupon %s", c.Code)
		}
	}
	return nil
}
