package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"campus-leave/internal/core/auth"
	"campus-leave/internal/core/cache"
	"campus-leave/internal/core/config"
	"campus-leave/internal/core/database"
	"campus-leave/internal/core/logger"
	"campus-leave/internal/core/mailer"
	"campus-leave/internal/core/oauth"
	"campus-leave/internal/core/server"
	"campus-leave/internal/core/storage"
	"campus-leave/internal/job"
	"campus-leave/internal/repo"
	"campus-leave/internal/service"
	"campus-leave/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, cleanup := logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
		Enable:     cfg.Log.File.Enable,
		Filename:   cfg.Log.File.Filename,
		MaxSizeMB:  cfg.Log.File.MaxSizeMB,
		MaxBackups: cfg.Log.File.MaxBackups,
		MaxAgeDays: cfg.Log.File.MaxAgeDays,
		Compress:   cfg.Log.File.Compress,
	})
	defer cleanup()
	undoStd := logger.RedirectStdLog(log, zapcore.InfoLevel)
	defer undoStd()
	gin.DefaultWriter = logger.ToWriter(log.Named("gin"), zapcore.DebugLevel)

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(context.Background(), db); err != nil {
			log.Fatal("migrate failed", zap.Error(err))
		}
		log.Info("migrate done")
	}

	// redis is optional: without it the dashboard is not cached and the sweep
	// lock is process-local
	var rc *cache.Cache
	if cfg.Redis.Addr != "" {
		rc = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis unavailable, continuing without it", zap.Error(err))
			_ = rc.Close()
			rc = nil
		}
		cancel()
	}
	if rc != nil {
		defer rc.Close()
	}

	var mail mailer.Sender = mailer.LogSender{L: log.Named("mail")}
	if cfg.Mail.Enabled() {
		mail = mailer.NewSMTPSender(mailer.Options{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		})
	}

	store := mustStore(cfg, log)

	var provider service.OAuthProvider
	if g := oauth.NewGoogle(cfg.OAuth.Google.ClientID, cfg.OAuth.Google.ClientSecret, cfg.OAuth.Google.RedirectURL); g.Enabled() {
		provider = g
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL(),
	}

	users := repo.NewUserRepo(db)
	leaves := repo.NewLeaveRepo(db)
	otps := repo.NewOTPRepo(db)

	r := router.NewAPIEngine(router.Deps{
		Config:  cfg,
		Log:     log,
		JWT:     jwter,
		Auth:    service.NewAuthService(users, otps, jwter, mail, provider, cfg.Leave.DefaultTotal, log.Named("auth")),
		Users:   service.NewUserService(users, leaves, rc, cfg.Leave.DefaultTotal, log.Named("users")),
		Leaves:  service.NewLeaveService(leaves, users, log.Named("leave")),
		Blogs:   service.NewBlogService(repo.NewBlogRepo(db)),
		Uploads: service.NewUploadService(users, store, log.Named("upload")),
	})

	var sched *job.Scheduler
	if cfg.Sweep.Enabled {
		var lock job.Locker
		if rc != nil {
			lock = rc
		}
		sched, err = job.NewScheduler(cfg.Sweep.TimeZone, log)
		if err != nil {
			log.Fatal("scheduler", zap.Error(err))
		}
		sweep := job.NewReminderJob(leaves, otps, mail, lock, cfg.App.FrontendURL, log)
		if err := sched.Add(cfg.Sweep.Cron, sweep); err != nil {
			log.Fatal("scheduler", zap.Error(err))
		}
		sched.Start()
	}

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.Bool("sweep", cfg.Sweep.Enabled),
		zap.Bool("redis", rc != nil),
		zap.Bool("smtp", cfg.Mail.Enabled()),
		zap.Bool("google", provider != nil),
		zap.String("storage", cfg.Storage.Driver),
	)

	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api start FAILED", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if sched != nil {
		sched.Stop(10 * time.Second)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	}, l)
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}

func mustStore(cfg *config.Config, l *zap.Logger) storage.ImageStore {
	s := cfg.Storage
	if s.Driver == "cloudinary" {
		c, err := storage.NewCloudinary(s.CloudName, s.APIKey, s.APISecret, s.Folder)
		if err != nil {
			l.Fatal("cloudinary", zap.Error(err))
		}
		return c
	}
	return &storage.Local{Dir: s.LocalDir, BaseURL: s.PublicBaseURL, Folder: s.Folder}
}
