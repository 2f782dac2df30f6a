package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-account-backend/internal/core/config"
	"go-account-backend/internal/core/database"
	"go-account-backend/internal/core/logger"
	"go-account-backend/internal/domain"
	"go-account-backend/internal/repo"
	"go-account-backend/internal/service"
)

// 初始化 admin 角色和首个管理员账号，可重复执行
func main() {
	_ = godotenv.Load()

	username := flag.String("username", envOr("ADMIN_USERNAME", "admin"), "admin username")
	email := flag.String("email", envOr("ADMIN_EMAIL", "admin@localhost"), "admin email")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (required)")
	flag.Parse()

	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log)
	defer cleanup()

	if *password == "" {
		log.Fatal("admin password required (-password or ADMIN_PASSWORD)")
	}

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	if err := db.AutoMigrate(&domain.Role{}, &domain.User{}); err != nil {
		log.Fatal("automigrate failed", zap.Error(err))
	}

	store := repo.NewGormStore(db)
	roleSvc := service.NewRoleService(store, log)
	userSvc := service.NewUserService(store, log)
	ctx := context.Background()

	role, created, err := roleSvc.Create(ctx, "admin", "full administrative access")
	if err != nil {
		log.Fatal("create admin role", zap.Error(err))
	}
	log.Info("admin role ready", zap.Uint("id", role.ID), zap.Bool("created", created))

	u, err := userSvc.GetByUsername(ctx, *username)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		u, err = userSvc.Create(ctx, *username, *email, *password,
			[]domain.RoleIdentifier{domain.RoleByID(role.ID)})
		if err != nil {
			log.Fatal("create admin user", zap.Error(err))
		}
		log.Info("admin user created", zap.Uint("id", u.ID), zap.String("username", u.Username))
	case err != nil:
		log.Fatal("lookup admin user", zap.Error(err))
	default:
		if !u.HasRole("admin") {
			if _, err := userSvc.AddRole(ctx, u, domain.RoleByID(role.ID)); err != nil {
				log.Fatal("grant admin role", zap.Error(err))
			}
		}
		log.Info("admin user already present", zap.Uint("id", u.ID), zap.String("username", u.Username))
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
