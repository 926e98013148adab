// Package main provides a CLI tool for seeding the database with
// initial data: roles, permissions, the admin user and, optionally, a
// demo catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"stockpro/internal/core/apperror"
	appctx "stockpro/internal/core/context"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/internal/domain/catalogs/currency"
	"stockpro/internal/domain/catalogs/item"
	"stockpro/internal/domain/catalogs/organization"
	"stockpro/internal/domain/catalogs/supplier"
	"stockpro/internal/domain/catalogs/unit"
	"stockpro/internal/infrastructure/storage/postgres"
	"stockpro/internal/infrastructure/storage/postgres/catalog_repo"
	"stockpro/pkg/logger"
	"stockpro/pkg/numerator"
)

// permissionActions per resource. Read-only resources list only "read".
var permissionActions = map[string][]string{
	"catalog:item":            {"read", "create", "update", "delete"},
	"catalog:supplier":        {"read", "create", "update", "delete"},
	"catalog:currency":        {"read", "create", "update", "delete"},
	"catalog:organization":    {"read", "create", "update", "delete"},
	"catalog:unit":            {"read", "create", "update", "delete"},
	"document:operation":      {"read", "create", "update", "delete", "post", "unpost"},
	"document:purchase_order": {"read", "create", "update", "delete", "post"},
	"document:simulation":     {"read", "create", "update", "delete", "post"},
	"register:stock":          {"read"},
	"report":                  {"read"},
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedRolesAndPermissions(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed roles and permissions", "error", err)
	}

	adminUserID, err := seedAdminUser(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log, adminUserID); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// seedRolesAndPermissions creates the built-in roles, the permission
// catalog and the role-permission grants. All statements are
// idempotent.
func seedRolesAndPermissions(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	roles := []struct {
		code, name, description string
		// grant decides which permissions the role receives.
		grant func(resource, action string) bool
	}{
		{"admin", "Administrator", "Full access, including user management",
			func(string, string) bool { return true }},
		{"manager", "Manager", "Catalogs, documents and reports",
			func(string, string) bool { return true }},
		{"operator", "Operator", "Read access plus document entry",
			func(resource, action string) bool {
				return action == "read" || (action == "create" && resource == "document:operation")
			}},
	}

	permIDs := make(map[string]id.ID)
	for resource, actions := range permissionActions {
		for _, action := range actions {
			code := resource + ":" + action
			pid := id.New()
			tag, err := pool.Pool.Exec(ctx, `
				INSERT INTO permissions (id, code, name, description, resource, action)
				VALUES ($1, $2, $2, '', $3, $4)
				ON CONFLICT (code) DO NOTHING
			`, pid, code, resource, action)
			if err != nil {
				return fmt.Errorf("insert permission %s: %w", code, err)
			}
			if tag.RowsAffected() == 0 {
				if err := pool.Pool.QueryRow(ctx,
					`SELECT id FROM permissions WHERE code = $1`, code,
				).Scan(&pid); err != nil {
					return fmt.Errorf("fetch permission %s: %w", code, err)
				}
			}
			permIDs[code] = pid
		}
	}

	for _, r := range roles {
		roleID := id.New()
		tag, err := pool.Pool.Exec(ctx, `
			INSERT INTO roles (id, code, name, description, is_system)
			VALUES ($1, $2, $3, $4, true)
			ON CONFLICT (code) DO NOTHING
		`, roleID, r.code, r.name, r.description)
		if err != nil {
			return fmt.Errorf("insert role %s: %w", r.code, err)
		}
		if tag.RowsAffected() == 0 {
			if err := pool.Pool.QueryRow(ctx,
				`SELECT id FROM roles WHERE code = $1`, r.code,
			).Scan(&roleID); err != nil {
				return fmt.Errorf("fetch role %s: %w", r.code, err)
			}
		}

		for resource, actions := range permissionActions {
			for _, action := range actions {
				if !r.grant(resource, action) {
					continue
				}
				if _, err := pool.Pool.Exec(ctx, `
					INSERT INTO role_permissions (role_id, permission_id)
					VALUES ($1, $2)
					ON CONFLICT (role_id, permission_id) DO NOTHING
				`, roleID, permIDs[resource+":"+action]); err != nil {
					return fmt.Errorf("grant %s:%s to %s: %w", resource, action, r.code, err)
				}
			}
		}
	}

	log.Infow("roles and permissions seeded", "permissions", len(permIDs))
	return nil
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@stockpro.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1 AND deleted_at IS NULL`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name,
			is_active, is_admin, email_verified, created_at, updated_at, version
		)
		VALUES ($1, $2, $3, 'System', 'Admin', true, true, true, NOW(), NOW(), 1)
	`, userID, adminEmail, string(passwordHash))
	if err != nil {
		return id.Nil(), fmt.Errorf("insert admin user: %w", err)
	}

	var adminRoleID id.ID
	err = pool.Pool.QueryRow(ctx,
		`SELECT id FROM roles WHERE code = 'admin'`,
	).Scan(&adminRoleID)
	if err != nil {
		log.Warnw("admin role not found, skipping role assignment", "error", err)
	} else {
		if _, err := pool.Pool.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id, granted_by)
			VALUES ($1, $2, NULL)
			ON CONFLICT (user_id, role_id) DO NOTHING
		`, userID, adminRoleID); err != nil {
			log.Warnw("failed to assign admin role", "error", err)
		}
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", userID)
	return userID, nil
}

// seedDemoData creates a small demo catalog through the domain
// services, so the same hooks and validations run as in the API.
func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger, adminUserID id.ID) error {
	log.Info("seeding demo data...")

	// Domain services check permissions from context.
	ctx = appctx.WithUser(ctx, &appctx.UserContext{
		UserID:  adminUserID.String(),
		Email:   "seed@stockpro.local",
		Roles:   []string{"admin"},
		IsAdmin: true,
	})

	txm := postgres.NewTxManager(pool)
	num := numerator.New(pool)

	currencies := currency.NewService(catalog_repo.NewCurrencyRepo(txm), txm, num)
	units := unit.NewService(catalog_repo.NewUnitRepo(txm), txm, num)
	organizations := organization.NewService(catalog_repo.NewOrganizationRepo(txm), txm, num)
	suppliers := supplier.NewService(catalog_repo.NewSupplierRepo(txm), txm, num)
	items := item.NewService(catalog_repo.NewItemRepo(txm), txm, num)

	// Currencies. BRL is the accounting currency; USD and EUR carry
	// PTAX rates for import pricing.
	var brlID id.ID
	for _, c := range []struct {
		isoCode, name, symbol string
		isBase                bool
	}{
		{"BRL", "Real Brasileiro", "R$", true},
		{"USD", "Dólar Americano", "$", false},
		{"EUR", "Euro", "€", false},
	} {
		iso, sym := c.isoCode, c.symbol
		curr := currency.NewCurrency(c.isoCode, c.name, &iso, &sym)
		curr.IsBase = c.isBase
		curr.DecimalPlaces = 2
		if err := createIgnoringDuplicates(ctx, log, "currency", c.isoCode, func() error {
			return currencies.Create(ctx, curr)
		}); err != nil {
			return err
		}
		if c.isBase {
			if existing, err := currencies.FindByISOCode(ctx, c.isoCode); err == nil {
				brlID = existing.ID
			}
		}
	}

	// Units of measure
	for _, u := range []struct {
		code, name, symbol string
		uType              unit.UnitType
	}{
		{"UN", "Unidade", "un", unit.TypePiece},
		{"KG", "Quilograma", "kg", unit.TypeWeight},
		{"L", "Litro", "l", unit.TypeVolume},
		{"CX", "Caixa", "cx", unit.TypePack},
		{"FD", "Fardo", "fd", unit.TypePack},
	} {
		if err := createIgnoringDuplicates(ctx, log, "unit", u.code, func() error {
			return units.Create(ctx, unit.NewUnit(u.code, u.name, u.symbol, u.uType))
		}); err != nil {
			return err
		}
	}

	// Default organization
	org := organization.NewOrganization("ORG-001", "StockPro Alimentos Ltda", brlID)
	fullName := "StockPro Comércio de Alimentos Ltda"
	cnpj := "12345678000195"
	address := "Av. das Nações, 1000 - São Paulo, SP"
	org.FullName = &fullName
	org.CNPJ = &cnpj
	org.Address = &address
	org.IsDefault = true
	if err := createIgnoringDuplicates(ctx, log, "organization", org.Code, func() error {
		return organizations.Create(ctx, org)
	}); err != nil {
		return err
	}

	// Suppliers
	supplierIDs := make(map[string]id.ID)
	for _, s := range []struct {
		code, name, cnpj, address, fda string
	}{
		{"FOR-001", "Cerealista Boa Safra Ltda", "11222333000181",
			"Rod. BR-153, km 12 - Goiânia, GO", "11111111111"},
		{"FOR-002", "Indústria de Doces Sabor do Norte SA", "44555666000172",
			"Av. Industrial, 450 - Belém, PA", ""},
	} {
		sp := supplier.New(s.code, s.name, s.cnpj)
		sp.Address = s.address
		sp.FDA = s.fda
		if err := createIgnoringDuplicates(ctx, log, "supplier", s.code, func() error {
			return suppliers.Create(ctx, sp)
		}); err != nil {
			return err
		}
		if existing, err := suppliers.FindByCNPJ(ctx, s.cnpj); err == nil {
			supplierIDs[s.code] = existing.ID
		}
	}

	// Items
	for _, it := range []struct {
		code, name, nameEn, ncm string
		supplierCode            string
		cost, sale              string
		packageType             item.PackageType
		unitsPerPackage         int
		measureValue            string
		measureType             string
		minQty                  int64
	}{
		{"ARZ-5KG", "Arroz Branco Tipo 1 5kg", "White Rice 5kg", "10063021",
			"FOR-001", "18.50", "24.90", item.PackageBale, 6, "5", "kg", 120},
		{"FJN-1KG", "Feijão Carioca 1kg", "Carioca Beans 1kg", "07133391",
			"FOR-001", "6.80", "9.50", item.PackageBale, 10, "1", "kg", 200},
		{"CAS-500G", "Castanha do Pará 500g", "Brazil Nuts 500g", "08012100",
			"FOR-002", "28.00", "39.90", item.PackageBox, 12, "500", "g", 48},
		{"DOC-400G", "Doce de Cupuaçu 400g", "Cupuacu Sweet 400g", "20079990",
			"FOR-002", "9.20", "14.50", item.PackageBox, 24, "400", "g", 96},
	} {
		supplierID, ok := supplierIDs[it.supplierCode]
		if !ok {
			log.Warnw("supplier not found for item, skipping", "item", it.code, "supplier", it.supplierCode)
			continue
		}

		entry := item.New(it.code, it.name, supplierID)
		entry.NameEn = it.nameEn
		entry.NCM = it.ncm
		entry.CostPrice = types.MustMoney(it.cost)
		entry.SalePrice = types.MustMoney(it.sale)
		entry.PackageType = it.packageType
		entry.UnitsPerPackage = it.unitsPerPackage
		entry.UnitMeasureValue = decimal.RequireFromString(it.measureValue)
		entry.UnitMeasureType = it.measureType
		entry.MinQuantity = types.NewQuantityFromUnits(it.minQty)

		if err := createIgnoringDuplicates(ctx, log, "item", it.code, func() error {
			return items.Create(ctx, entry)
		}); err != nil {
			return err
		}
	}

	// An initial USD rate so imports can be priced before the first
	// PTAX update arrives.
	if err := currencies.UpdateRate(ctx, "USD", decimal.RequireFromString("5.43"), time.Now()); err != nil {
		log.Warnw("failed to seed initial USD rate", "error", err)
	}

	log.Info("demo data seeded")
	return nil
}

// createIgnoringDuplicates runs create and downgrades duplicate errors
// to a log line, so re-running the seeder is safe.
func createIgnoringDuplicates(ctx context.Context, log *logger.Logger, kind, code string, create func() error) error {
	err := create()
	if err == nil {
		return nil
	}
	if appErr, ok := apperror.AsAppError(err); ok &&
		(appErr.Code == apperror.CodeConflict || appErr.Code == apperror.CodeDuplicate) {
		log.Infow(kind+" already exists, skipping", "code", code)
		return nil
	}
	return fmt.Errorf("create %s %s: %w", kind, code, err)
}
