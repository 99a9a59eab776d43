package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"herstory/internal/config"
	"herstory/internal/db"
	"herstory/internal/repository"
	"herstory/internal/service"
	"herstory/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	seedPosts := flag.Bool("seed-posts", cfg.SeedPosts, "insert the sample posts when the post table is empty")
	username := flag.String("username", cfg.AdminUsername, "admin username to provision")
	flag.Parse()

	if cfg.UsingDefaultAdminPassword {
		logger.Warn("ADMIN_PASSWORD not set, provisioning admin with the default password; change it before exposing the server",
			"username", *username)
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Error("database init", "error", err)
		os.Exit(1)
	}
	defer func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	if err := db.Migrate(gormDB); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations completed", "driver", cfg.DBDriver)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	provisioner := service.NewProvisioner(
		repository.NewAdminRepository(gormDB),
		repository.NewPostRepository(gormDB),
	)

	admin, created, err := provisioner.EnsureAdmin(ctx, *username, cfg.AdminPassword)
	if err != nil {
		logger.Error("provision admin", "error", err)
		os.Exit(1)
	}
	if created {
		logger.Info("admin created", "username", admin.Username, "id", admin.ID)
	} else {
		logger.Info("admin already exists, skipping", "username", admin.Username)
	}

	if !*seedPosts {
		logger.Info("seed completed", "posts_inserted", 0)
		return
	}

	n, err := provisioner.SeedPosts(ctx, service.SamplePosts())
	if err != nil {
		logger.Error("seed posts", "error", err)
		os.Exit(1)
	}
	if n == 0 {
		logger.Info("posts already present, skipping sample posts")
	}
	logger.Info("seed completed", "posts_inserted", n)
}
