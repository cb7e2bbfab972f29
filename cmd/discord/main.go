// cmd/discord/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/chatlight/internal/config"
	"github.com/keshon/chatlight/internal/device"
	"github.com/keshon/chatlight/internal/discord"
	"github.com/keshon/chatlight/internal/light"
	"github.com/keshon/chatlight/internal/logging"
	"github.com/keshon/chatlight/pkg/jobmgr"
	"github.com/keshon/chatlight/pkg/retrylimit"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	dotenv := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireDiscord(); err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireDevice(); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if !dotenv {
		logger.Info("no .env file found, using system environment variables")
	}
	logger.Info("starting chatlight bot", zap.String("prefix", cfg.Prefix), zap.String("device", cfg.Device.Addr()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limits := retrylimit.DefaultLimiterConfig()
	limits.Initial = rate.Limit(cfg.Device.Rate)
	limits.Max = rate.Limit(cfg.Device.RateMax)
	limiter := retrylimit.NewAdaptiveLimiter(limits)
	retry := retrylimit.DefaultRetryConfig()
	retry.MaxAttempts = cfg.Device.DialAttempts

	conn, err := device.Dial(ctx, cfg.Device.Addr(), device.DialOptions{
		Options: device.Options{
			Queue:   cfg.Device.Queue,
			Limiter: limiter,
			Logger:  logger.Named("device"),
		},
		Timeout: cfg.Device.DialTimeout,
		Retry:   retry,
	})
	if err != nil {
		logger.Fatal("device unreachable", zap.Error(err))
	}

	bot, err := discord.NewBot(cfg.Discord, logger.Named("discord"))
	if err != nil {
		logger.Fatal("discord setup failed", zap.Error(err))
	}

	dispatcher := light.NewDispatcher(
		light.DefaultSchema(),
		device.Apply(conn, device.WithLogging(logger.Named("device"))),
		bot.Replier(),
		light.WithPrefix(cfg.Prefix),
		light.WithLogger(logger.Named("dispatch")),
	)

	jobs := jobmgr.NewManager(ctx, func(msg string) {
		logger.Info("job status", zap.String("status", msg))
	})

	mustStart := func(name string, run func(context.Context) error) {
		if err := jobs.Start(name, run); err != nil {
			logger.Fatal("job start failed", zap.String("job", name), zap.Error(err))
		}
	}
	mustStart("device", conn.Run)
	mustStart("device-status", func(ctx context.Context) error {
		for u := range conn.Updates() {
			logger.Info("device update", zap.Any("props", u.Props))
		}
		return nil
	})
	mustStart("discord", func(ctx context.Context) error {
		return bot.Run(ctx, dispatcher)
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("received signal, shutting down", zap.Stringer("signal", s))
	case <-jobs.Done():
	}

	if err := jobs.Shutdown(); err != nil {
		logger.Error("chatlight stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("chatlight exited cleanly")
}
