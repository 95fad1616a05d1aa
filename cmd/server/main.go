package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"butce-backend/internal/auth"
	"butce-backend/internal/config"
	"butce-backend/internal/database"
	"butce-backend/internal/logger"
	"butce-backend/internal/models"
	"butce-backend/internal/report"
	"butce-backend/internal/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger henüz yok
		fmt.Fprintln(os.Stderr, "config hatası:", err)
		os.Exit(1)
	}

	log := logger.New(logger.ConfigForEnvironment(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat))
	defer log.Sync()

	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	if err := database.Init(cfg, log); err != nil {
		log.Fatal("Veritabanı başlatılamadı", zap.Error(err))
	}

	bootstrapUsers(cfg, log)

	var cache *report.Cache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("Redis'e bağlanılamadı, rapor önbelleği kapalı", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			_ = client.Close()
		} else {
			cache = report.NewCache(client, cfg.ReportCacheTTL, log)
			defer client.Close()
		}
		cancel()
	}

	app := server.New(cfg, log, database.DB, cache)

	log.Info("Sunucu başlatılıyor", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.AppEnv))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal("Sunucu durdu", zap.Error(err))
	}
}

// bootstrapUsers creates the two operator accounts when their passwords are
// configured. Existing accounts are left untouched.
func bootstrapUsers(cfg *config.Config, log *zap.Logger) {
	store := auth.NewUserStore(database.DB)
	seeds := []struct {
		username, name, password string
		role                     models.UserRole
	}{
		{"op_manager", "Operasyon Müdürü", cfg.BootstrapOpsPassword, models.RoleOperationsManager},
		{"gm_manager", "Genel Müdür", cfg.BootstrapGMPassword, models.RoleGeneralManager},
	}
	for _, s := range seeds {
		if s.password == "" {
			continue
		}
		created, err := store.EnsureUser(context.Background(), s.username, s.name, s.password, s.role)
		if err != nil {
			log.Fatal("Kullanıcı oluşturulamadı", zap.String("username", s.username), zap.Error(err))
		}
		if created {
			log.Info("Kullanıcı oluşturuldu", zap.String("username", s.username), zap.String("role", string(s.role)))
		}
	}
}
