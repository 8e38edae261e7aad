package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/achievo/achievement-portal/internal/app"
	"github.com/achievo/achievement-portal/internal/config"
	"github.com/achievo/achievement-portal/internal/db"
	"github.com/achievo/achievement-portal/internal/jobs"
	"github.com/achievo/achievement-portal/internal/logging"
	"github.com/achievo/achievement-portal/internal/notify"
	"github.com/achievo/achievement-portal/internal/observability"
	"github.com/achievo/achievement-portal/internal/report"
	"github.com/achievo/achievement-portal/internal/scorer"
	"github.com/achievo/achievement-portal/internal/verify"
)

var version = "dev" // set via -ldflags at release time

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer lg.Closer()

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		lg.Base.Warn("sentry init failed", zap.Error(err))
	}
	defer flush()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		lg.Base.Fatal("db open", zap.Error(err))
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		lg.Base.Fatal("db migrate", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := db.NewStore(database)
	mailer := notify.NewMailer(cfg.SMTPAddr, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass, lg.Base)
	alerts, err := notify.NewAdminAlerter(cfg.BotToken, cfg.AdminIDs, lg.Base)
	if err != nil {
		lg.Base.Warn("telegram alerts disabled", zap.Error(err))
	}

	sc := scorer.New(cfg.ScorerURL, cfg.VerifiedThreshold, cfg.PartialThreshold)
	verifier := verify.NewService(store, sc, mailer, lg.Base)
	reports := report.NewBuilder(store, lg.Base)

	runner := jobs.New(ctx)
	runner.Every(10*time.Minute, "email_retry", jobs.EmailRetry(store, mailer, lg.Base))

	app.StartHTTP(ctx, cfg.HTTPAddr, app.Deps{
		DB:      database,
		Store:   store,
		Verify:  verifier,
		Reports: reports,
		Alerts:  alerts,
		Log:     lg.Base,
	})

	lg.Base.Info("achievement portal up",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("env", cfg.Env),
		zap.String("version", version))

	<-ctx.Done()
	lg.Base.Info("shutting down")
	time.Sleep(500 * time.Millisecond)
}
