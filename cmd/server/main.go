// Command server runs the hydration planner API: the entries file store,
// the reminder scheduler over the embedded notification center, and the
// HTTP transport.
//
// @title       Hydration Planner API
// @version     1.0
// @description Water-intake log, daily reminders and notification center.
// @BasePath    /api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-hydration-backend/internal/config"
	httpapi "github.com/tbourn/go-hydration-backend/internal/http"
	"github.com/tbourn/go-hydration-backend/internal/mainloop"
	"github.com/tbourn/go-hydration-backend/internal/notify"
	"github.com/tbourn/go-hydration-backend/internal/observability"
	"github.com/tbourn/go-hydration-backend/internal/reminder"
	"github.com/tbourn/go-hydration-backend/internal/repo"
	"github.com/tbourn/go-hydration-backend/internal/services"
	"github.com/tbourn/go-hydration-backend/internal/store"
	"github.com/tbourn/go-hydration-backend/internal/sysutil"
)

// version is overridden at link time (-ldflags "-X main.version=...").
var version = "dev"

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("load .env")
	}

	cfg := config.MustLoad()
	sysutil.SetupLogging(os.Stderr, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version,
		observability.WithEnvironment(cfg.GinMode),
		observability.WithAttributes(
			attribute.String("hydration.locale", cfg.Locale),
			attribute.String("hydration.timezone", cfg.Timezone),
		),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup")
	}

	for _, dir := range []string{cfg.DataDir, filepath.Dir(cfg.Notify.DBPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("create data dir")
		}
	}

	db, err := repo.OpenSQLite(cfg.Notify.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Notify.DBPath).Msg("open sqlite")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	loc := cfg.Location()
	locale, err := language.Parse(cfg.Locale)
	if err != nil {
		log.Warn().Err(err).Str("locale", cfg.Locale).Msg("unknown APP_LOCALE, using locale-independent case folding")
		locale = language.Und
	}

	// The loop owns the entry store and the published authorization status.
	loop := mainloop.New(64)
	entries := store.Open(cfg.EntriesPath(), store.WithLocation(loc), store.WithLocale(locale))

	policy, err := notify.ParsePolicy(cfg.Notify.Authorization)
	if err != nil {
		log.Fatal().Err(err).Msg("notification policy")
	}
	center := notify.NewCenter(db, policy, notify.WithLocation(loc))
	sched := reminder.New(center, loop, reminder.WithLocation(loc))

	deliverers := []notify.Deliverer{notify.NewLogDeliverer()}
	var tg *notify.TelegramDeliverer
	var bot *tgbotapi.BotAPI
	if cfg.Telegram.Enabled() {
		tg, bot, err = notify.NewTelegramDeliverer(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			log.Error().Err(err).Msg("telegram disabled")
		} else {
			deliverers = append(deliverers, tg)
			log.Info().Str("bot", bot.Self.UserName).Msg("telegram delivery enabled")
		}
	}
	dispatcher := notify.NewDispatcher(center, sched.Delegate(), cfg.Notify.DispatchInterval, deliverers...)

	// Publish the remembered answer before serving.
	if st, err := sched.CheckAuthorization(ctx); err != nil {
		log.Warn().Err(err).Msg("check authorization")
	} else {
		log.Info().Str("status", string(st)).Msg("notification authorization")
	}

	go dispatcher.Start(ctx)
	if tg != nil && bot != nil {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 30
		go tg.Listen(ctx, bot.GetUpdatesChan(u), dispatcher)
	}
	go purgeIdempotency(ctx, db, time.Hour)

	entrySvc := services.NewEntryService(entries, loop, db)
	entrySvc.IdemTTL = cfg.IdempotencyTTL
	reminderSvc := services.NewReminderService(sched, dispatcher, center, loc)

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Services{Entries: entrySvc, Reminders: reminderSvc}, db, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("entries", entries.Path()).
			Str("version", version).
			Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if bot != nil {
		bot.StopReceivingUpdates()
	}
	loop.Close()
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// purgeIdempotency drops expired Idempotency-Key records every interval.
func purgeIdempotency(ctx context.Context, db *gorm.DB, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("purge idempotency")
				continue
			}
			if n > 0 {
				log.Debug().Int64("purged", n).Msg("expired idempotency keys removed")
			}
		}
	}
}
