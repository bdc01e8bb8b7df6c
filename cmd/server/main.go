package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	_ "github.com/alexmeleta/compliance-mait-api/docs" // swagger docs

	"github.com/alexmeleta/compliance-mait-api/internal/auth"
	"github.com/alexmeleta/compliance-mait-api/internal/cache"
	"github.com/alexmeleta/compliance-mait-api/internal/config"
	"github.com/alexmeleta/compliance-mait-api/internal/db"
	"github.com/alexmeleta/compliance-mait-api/internal/handler"
	"github.com/alexmeleta/compliance-mait-api/internal/logger"
	"github.com/alexmeleta/compliance-mait-api/internal/mailer"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
	"github.com/alexmeleta/compliance-mait-api/internal/repository"
	"github.com/alexmeleta/compliance-mait-api/internal/router"
	"github.com/alexmeleta/compliance-mait-api/internal/service"
	"github.com/alexmeleta/compliance-mait-api/internal/storage"
)

// @title Compliance MAIT API
// @version 1.0
// @description Certificate and compliance tracking API with role/permission authorization.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, cleanup := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		JSON:       cfg.LogJSON,
		Filename:   cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
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
	log.Info("database connected", zap.String("driver", cfg.DBDriver))

	if cfg.DBAutoMigrate {
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
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	blobs, err := storage.NewS3Store(context.Background(), storage.Options{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		log.Fatal("object storage init", zap.Error(err))
	}

	mail := mailer.NewSMTPMailer(mailer.Options{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.MailFrom,
	}, log)
	defer mail.Close()

	repos := repository.NewRepositories(gormDB)

	jwtService := auth.NewJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.SessionTokenTTLMin)*time.Minute,
		time.Duration(cfg.ResetTokenTTLMin)*time.Minute,
	)
	guard := auth.NewGuard(jwtService, repos.Users, log)

	credentialService := service.NewCredentialService(repos.Credentials)
	permissionService := service.NewPermissionService(repos.Permissions)
	authService := service.NewAuthService(
		repos, repos.Users, credentialService, permissionService,
		jwtService, mail, log, cfg.DefaultRoleID, cfg.AppBaseURL,
	)
	userService := service.NewUserService(repos.Users, repos.Roles, repos.Files)
	roleService := service.NewRoleService(repos.Roles, repos.Permissions)
	certificateService := service.NewCertificateService(repos.Certificates, repos.Jurisdictions, repos.Files)
	jurisdictionService := service.NewJurisdictionService(repos.Jurisdictions, cacheClient)
	connectionService := service.NewConnectionService(repos, repos.Connections, repos.Users)
	inviteService := service.NewInviteService(
		repos, repos.Invites, repos.Users, repos.Roles,
		permissionService, jwtService, mail, cfg.AppBaseURL,
	)
	notificationService := service.NewNotificationService(repos.Notifications, repos.Certificates)
	fileService := service.NewFileService(repos.Files, blobs, log)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, log, router.Deps{
		Guard:         guard,
		Auth:          handler.NewAuthHandler(authService),
		Users:         handler.NewUserHandler(userService),
		Certificates:  handler.NewCertificateHandler(certificateService),
		Jurisdictions: handler.NewJurisdictionHandler(jurisdictionService),
		Connections:   handler.NewConnectionHandler(connectionService),
		Invites:       handler.NewInviteHandler(inviteService),
		Notifications: handler.NewNotificationHandler(notificationService),
		Files:         handler.NewFileHandler(fileService),
		Roles:         handler.NewRoleHandler(roleService, permissionService),

		CertificateOwner:  certificateService.OwnerID,
		InviteOwner:       inviteService.OwnerID,
		NotificationOwner: notificationService.OwnerID,
		FileOwner:         fileService.OwnerID,
	})

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal("server start", zap.Error(err))
		}
	}()
	log.Info("server started",
		zap.String("port", cfg.ServerPort),
		zap.String("swagger", cfg.AppBaseURL+"/swagger/index.html"))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	log.Info("server stopped gracefully")
}
