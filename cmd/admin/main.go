package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-leave/internal/core/config"
	"campus-leave/internal/core/database"
	"campus-leave/internal/core/logger"
	"campus-leave/internal/core/mailer"
	"campus-leave/internal/domain"
	"campus-leave/internal/dto"
	"campus-leave/internal/job"
	"campus-leave/internal/repo"
	"campus-leave/internal/service"
	"campus-leave/pkg/apperr"
)

type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func open(configPath string) (*env, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	}, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return &env{cfg: cfg, log: log, db: db}, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		cleanup()
	}, nil
}

func main() {
	_ = godotenv.Load()
	var configPath string

	root := &cobra.Command{
		Use:           "campus-leave-admin",
		Short:         "Maintenance commands for the campus leave service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "config file path")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and seed roles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, done, err := open(configPath)
			if err != nil {
				return err
			}
			defer done()
			if err := database.Migrate(cmd.Context(), e.db); err != nil {
				return err
			}
			e.log.Info("migrate done")
			return nil
		},
	}

	var email, password, name string
	seedCmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the first ADMIN account with its leave balance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, done, err := open(configPath)
			if err != nil {
				return err
			}
			defer done()
			if email == "" {
				email = e.cfg.Seed.AdminEmail
			}
			if password == "" {
				password = e.cfg.Seed.AdminPassword
			}
			if name == "" {
				name = e.cfg.Seed.AdminName
			}
			if email == "" || len(password) < 6 {
				return errors.New("seed-admin: an email and a password of at least 6 characters are required")
			}
			if err := database.Migrate(cmd.Context(), e.db); err != nil {
				return err
			}
			users := service.NewUserService(repo.NewUserRepo(e.db), repo.NewLeaveRepo(e.db), nil, e.cfg.Leave.DefaultTotal, e.log)
			v, err := users.Signup(cmd.Context(), dto.SignupRequest{
				Email:      strings.ToLower(strings.TrimSpace(email)),
				Password:   password,
				Name:       name,
				Gender:     domain.GenderOther,
				Department: domain.DeptAdmin,
				RoleID:     domain.RoleIDOf(domain.RoleAdmin),
				Phone:      "0000000000",
			})
			if apperr.Is(err, apperr.KindConflict) {
				e.log.Info("admin already exists", zap.String("email", email))
				return nil
			}
			if err != nil {
				return err
			}
			e.log.Info("admin created", zap.String("id", v.ID), zap.String("email", v.Email))
			return nil
		},
	}
	seedCmd.Flags().StringVar(&email, "email", "", "admin email (default seed.adminEmail)")
	seedCmd.Flags().StringVar(&password, "password", "", "admin password (default seed.adminPassword)")
	seedCmd.Flags().StringVar(&name, "name", "", "admin display name (default seed.adminName)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Send pending-leave reminders and purge expired codes now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, done, err := open(configPath)
			if err != nil {
				return err
			}
			defer done()
			var mail mailer.Sender = mailer.LogSender{L: e.log.Named("mail")}
			if e.cfg.Mail.Enabled() {
				mail = mailer.NewSMTPSender(mailer.Options{
					Host:     e.cfg.Mail.Host,
					Port:     e.cfg.Mail.Port,
					Username: e.cfg.Mail.Username,
					Password: e.cfg.Mail.Password,
					From:     e.cfg.Mail.From,
				})
			}
			j := job.NewReminderJob(repo.NewLeaveRepo(e.db), repo.NewOTPRepo(e.db), mail, nil, e.cfg.App.FrontendURL, e.log)
			ctx, cancel := context.WithTimeout(cmd.Context(), 20*time.Minute)
			defer cancel()
			res, err := j.Sweep(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("reminders sent: %d, failed: %d, codes purged: %d\n", res.Sent, res.Failed, res.Purged)
			return nil
		},
	}

	root.AddCommand(migrateCmd, seedCmd, sweepCmd)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
