package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	httpadp "homeloan-backend/internal/adapter/http"
	"homeloan-backend/internal/adapter/middleware"
	"homeloan-backend/internal/adapter/repository/mysql"
	"homeloan-backend/internal/config"
	"homeloan-backend/internal/domain/notification"
	"homeloan-backend/internal/infrastructure/cache"
	"homeloan-backend/internal/infrastructure/db"
	"homeloan-backend/internal/infrastructure/logging"
	"homeloan-backend/internal/infrastructure/metrics"
	"homeloan-backend/internal/infrastructure/notify"
	"homeloan-backend/internal/infrastructure/scheduler"
	"homeloan-backend/internal/usecase/loan"
	"homeloan-backend/internal/usecase/payment"
	"homeloan-backend/internal/usecase/reminder"
	"homeloan-backend/internal/usecase/schedule"
)

const (
	jobTimeout      = 5 * time.Minute
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid config")
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.WithError(err).Fatal("logger")
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), cfg.GormLog, log)
	if err != nil {
		log.WithError(err).Fatal("open mysql")
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.WithError(err).Fatal("mysql handle")
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		m, err := db.NewMigrator(gdb)
		if err != nil {
			log.WithError(err).Fatal("migrator")
		}
		// closing m would close the shared pool
		if err := db.MigrateUp(m); err != nil {
			log.WithError(err).Fatal("migrate")
		}
		log.Info("schema up to date")
	}

	rdb, err := cache.OpenRedis(cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		log.WithError(err).Fatal("open redis")
	}
	defer rdb.Close()

	// repositories
	loans := mysql.NewLoanRepository(gdb)
	installments := mysql.NewInstallmentRepository(gdb)
	applicants := mysql.NewApplicantRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	// notifications
	queue := notify.NewRedisQueue(rdb, cfg.NotifyQueueKey)
	events := notify.NewQueuePublisher(queue, log.WithField("component", "publisher"))
	var gateway notification.Gateway = notify.NewLogGateway(log.WithField("component", "mail"))
	if cfg.MailEnabled() {
		gateway = notify.NewMailGateway(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	}
	dispatcher := notify.NewDispatcher(queue, gateway, log.WithField("component", "dispatcher"))

	// usecases
	loanUC := loan.NewUsecase(tx, loans, applicants, schedule.NewGenerator(), events, log.WithField("component", "loan"))
	payUC := payment.NewUsecase(tx, loans, installments, applicants, events, log.WithField("component", "payment"))
	reminders := reminder.NewJob(loans, installments, applicants, events, cfg.ReminderLeadDays, log.WithField("component", "reminder"))

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log.WithField("component", "ratelimit"))

	jobs := scheduler.New(log.WithField("component", "scheduler"), jobTimeout)
	if err := jobs.Add(cfg.ReminderCron, "emi_reminder", reminders.Run); err != nil {
		log.WithError(err).Fatal("schedule reminders")
	}
	if err := jobs.Add("@every 5m", "ratelimit_cleanup", func(context.Context) (int, error) {
		return limiter.Cleanup(time.Now()), nil
	}); err != nil {
		log.WithError(err).Fatal("schedule limiter cleanup")
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(metrics.Middleware(), echomw.Logger(), echomw.Recover())
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	httpadp.Register(e, httpadp.Handlers{
		Health: httpadp.NewHandler(
			httpadp.Check{Name: "mysql", Probe: sqlDB.PingContext},
			httpadp.Check{Name: "redis", Probe: cache.Probe(rdb)},
		),
		Loans: httpadp.NewLoanHandler(loanUC, log),
		EMI:   httpadp.NewEMIHandler(loanUC, payUC, log),
		Admin: httpadp.NewAdminHandler(loanUC, log),
	},
		middleware.Auth([]byte(cfg.JWTSecret)),
		limiter.Middleware(),
		middleware.Idempotency(rdb, cfg.IdempotencyTTL(), log.WithField("component", "idempotency")),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = dispatcher.Run(ctx)
	}()
	jobs.Start()

	go func() {
		addr := ":" + cfg.AppPort
		log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	jobs.Stop(shutdownCtx)
	wg.Wait()
}
