package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alexmeleta/compliance-mait-api/internal/config"
	"github.com/alexmeleta/compliance-mait-api/internal/db"
	"github.com/alexmeleta/compliance-mait-api/internal/logger"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
	"github.com/alexmeleta/compliance-mait-api/internal/repository"
	"github.com/alexmeleta/compliance-mait-api/internal/service"
)

// permissionCatalog is the full set of permission codes the route gates
// check. Seeding is additive: codes missing from the store are created,
// existing ones are left alone.
var permissionCatalog = []model.Permission{
	{Code: model.PermViewUser, Feature: "USER", Action: model.ActionView},
	{Code: model.PermCreateUser, Feature: "USER", Action: model.ActionCreate},
	{Code: model.PermUpdateUser, Feature: "USER", Action: model.ActionUpdate},
	{Code: model.PermDeleteUser, Feature: "USER", Action: model.ActionDelete},
	{Code: model.PermViewCertificate, Feature: "CERTIFICATE", Action: model.ActionView},
	{Code: model.PermCreateCertificate, Feature: "CERTIFICATE", Action: model.ActionCreate},
	{Code: model.PermUpdateCertificate, Feature: "CERTIFICATE", Action: model.ActionUpdate},
	{Code: model.PermDeleteCertificate, Feature: "CERTIFICATE", Action: model.ActionDelete},
	{Code: model.PermManageJurisdictions, Feature: "JURISDICTION", Action: model.ActionManage},
	{Code: model.PermViewInvite, Feature: "INVITE", Action: model.ActionView},
	{Code: model.PermCreateInvite, Feature: "INVITE", Action: model.ActionCreate},
	{Code: model.PermViewReports, Feature: "REPORT", Action: model.ActionView},
	{Code: model.PermManageRoles, Feature: "ROLE", Action: model.ActionManage},
}

// roleCatalog fixes the well-known roles. Administrator must keep id 1: the
// ownership gates treat that id as the bypass role.
var roleCatalog = []struct {
	role   model.Role
	grants []string // nil means every catalog code
}{
	{
		role:   model.Role{ID: 1, Name: "Administrator", Description: "Full access to every feature"},
		grants: nil,
	},
	{
		role: model.Role{ID: 2, Name: "Member", Description: "Manages own certificates and connections"},
		grants: []string{
			model.PermViewUser,
			model.PermViewCertificate,
			model.PermCreateCertificate,
			model.PermUpdateCertificate,
			model.PermDeleteCertificate,
			model.PermViewInvite,
			model.PermCreateInvite,
		},
	},
	{
		role: model.Role{ID: 3, Name: "Auditor", Description: "Read-only compliance review"},
		grants: []string{
			model.PermViewReports,
			model.PermViewCertificate,
		},
	},
}

var jurisdictionCatalog = []model.Jurisdiction{
	{Name: "State Bar of California", Code: "US-CA", Region: "California"},
	{Name: "New York State Bar Association", Code: "US-NY", Region: "New York"},
	{Name: "State Bar of Texas", Code: "US-TX", Region: "Texas"},
	{Name: "Florida Department of Professional Regulation", Code: "US-FL", Region: "Florida"},
	{Name: "Law Society of Ontario", Code: "CA-ON", Region: "Ontario"},
	{Name: "Law Society of British Columbia", Code: "CA-BC", Region: "British Columbia"},
	{Name: "Solicitors Regulation Authority", Code: "GB-SRA", Region: "England and Wales"},
	{Name: "General Medical Council", Code: "GB-GMC", Region: "United Kingdom"},
	{Name: "Australian Health Practitioner Regulation Agency", Code: "AU-AHPRA", Region: "Australia"},
	{Name: "Engineers Ireland", Code: "IE-EI", Region: "Ireland"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, cleanup := logger.New(logger.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	defer cleanup()

	gormDB, err := db.New(db.Opts{
		Driver:             cfg.DBDriver,
		DSN:                cfg.DBDSN,
		MaxOpenConns:       cfg.DBMaxOpenConns,
		MaxIdleConns:       cfg.DBMaxIdleConns,
		ConnMaxLifetimeMin: cfg.DBConnMaxLifetimeMin,
	})
	if err != nil {
		log.Fatal("database init", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.Role{},
		&model.Permission{},
		&model.User{},
		&model.Credential{},
		&model.Jurisdiction{},
		&model.File{},
		&model.Certificate{},
		&model.Connection{},
		&model.Invite{},
		&model.Notification{},
	); err != nil {
		log.Fatal("auto-migrate", zap.Error(err))
	}

	repos := repository.NewRepositories(gormDB)
	ctx := context.Background()

	created, err := seedPermissions(ctx, repos.Permissions)
	if err != nil {
		log.Fatal("seed permissions", zap.Error(err))
	}
	log.Info("permissions seeded", zap.Int("created", created))

	granted, err := seedRoles(ctx, repos)
	if err != nil {
		log.Fatal("seed roles", zap.Error(err))
	}
	log.Info("roles seeded", zap.Int("grants_added", granted))

	created, err = seedJurisdictions(ctx, repos.Jurisdictions)
	if err != nil {
		log.Fatal("seed jurisdictions", zap.Error(err))
	}
	log.Info("jurisdictions seeded", zap.Int("created", created))

	if err := seedAdmin(ctx, repos, log); err != nil {
		log.Fatal("seed admin", zap.Error(err))
	}

	log.Info("seed completed")
}

func seedPermissions(ctx context.Context, repo repository.PermissionRepository) (int, error) {
	created := 0
	for i := range permissionCatalog {
		p := permissionCatalog[i]
		_, err := repo.FindByCode(ctx, p.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, fmt.Errorf("check permission %s: %w", p.Code, err)
		}
		if err := repo.Create(ctx, &p); err != nil {
			return created, fmt.Errorf("create permission %s: %w", p.Code, err)
		}
		created++
	}
	return created, nil
}

// seedRoles creates missing roles and tops up their grants. Grants already
// present are skipped, so re-running never duplicates join rows and never
// removes grants an operator added by hand.
func seedRoles(ctx context.Context, repos *repository.Repositories) (int, error) {
	permissions := service.NewPermissionService(repos.Permissions)

	granted := 0
	for _, entry := range roleCatalog {
		role, err := repos.Roles.FindByName(ctx, entry.role.Name)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return granted, fmt.Errorf("check role %s: %w", entry.role.Name, err)
			}
			role = &entry.role
			if err := repos.Roles.Create(ctx, role); err != nil {
				return granted, fmt.Errorf("create role %s: %w", entry.role.Name, err)
			}
		}

		want := entry.grants
		if want == nil {
			want = make([]string, 0, len(permissionCatalog))
			for i := range permissionCatalog {
				want = append(want, permissionCatalog[i].Code)
			}
		}

		have, err := permissions.ResolvePermissions(ctx, role.ID)
		if err != nil {
			return granted, err
		}
		haveSet := make(map[string]struct{}, len(have))
		for _, code := range have {
			haveSet[code] = struct{}{}
		}

		for _, code := range want {
			if _, ok := haveSet[code]; ok {
				continue
			}
			permission, err := repos.Permissions.FindByCode(ctx, code)
			if err != nil {
				return granted, fmt.Errorf("find permission %s: %w", code, err)
			}
			if err := repos.Roles.AddPermission(ctx, role.ID, permission.ID); err != nil {
				return granted, fmt.Errorf("grant %s to %s: %w", code, role.Name, err)
			}
			granted++
		}
	}
	return granted, nil
}

func seedJurisdictions(ctx context.Context, repo repository.JurisdictionRepository) (int, error) {
	created := 0
	for i := range jurisdictionCatalog {
		j := jurisdictionCatalog[i]
		_, err := repo.FindByCode(ctx, j.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, fmt.Errorf("check jurisdiction %s: %w", j.Code, err)
		}
		if err := repo.Create(ctx, &j); err != nil {
			return created, fmt.Errorf("create jurisdiction %s: %w", j.Code, err)
		}
		created++
	}
	return created, nil
}

// seedAdmin bootstraps the first administrator account from the
// ADMIN_EMAIL / ADMIN_LOGIN_NAME / ADMIN_PASSWORD environment, creating the
// user and its password credential in one transaction. Skipped when the
// email is already registered.
func seedAdmin(ctx context.Context, repos *repository.Repositories, log *zap.Logger) error {
	email := envOr("ADMIN_EMAIL", "admin@compliance-mait.local")
	loginName := envOr("ADMIN_LOGIN_NAME", "admin")
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin12345"
		log.Warn("ADMIN_PASSWORD not set, using the default; change it after first login")
	}

	if _, err := repos.Users.FindByEmail(ctx, email); err == nil {
		log.Info("admin user already present", zap.String("email", email))
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check admin user: %w", err)
	}

	err := repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		user := &model.User{
			Email:     email,
			FirstName: "System",
			LastName:  "Administrator",
			RoleID:    1,
			Active:    true,
		}
		if err := tx.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}

		credentials := service.NewCredentialService(tx.Credentials)
		_, err := credentials.Create(ctx, service.CreateCredentialInput{
			UserID:    user.ID,
			AuthType:  model.AuthTypePassword,
			LoginName: loginName,
			Password:  password,
		})
		return err
	})
	if err != nil {
		return err
	}

	log.Info("admin user created", zap.String("email", email), zap.String("login_name", loginName))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
