package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/redis/go-redis/v9"

	"fgb-go/cogs"
	"fgb-go/games/blackjack"
	"fgb-go/models"
	"fgb-go/utils"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "fgb",
	})

	cfg, err := utils.LoadConfig()
	if err != nil {
		logger.Fatal("config", "error", err)
	}
	if cfg.BotToken == "" {
		logger.Fatal("BOT_TOKEN not set")
	}

	ctx := context.Background()
	clock := quartz.NewReal()

	var backend utils.Backend
	switch cfg.StoreBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		backend = &utils.RedisBackend{Client: client, Key: cfg.RedisKey}
	default:
		backend = &utils.FileBackend{Path: cfg.StorePath}
	}

	store := utils.NewStore(backend, logger)
	if err := store.Load(ctx); err != nil {
		logger.Fatal("load state", "error", err)
	}

	gateway, err := cogs.NewDiscordGateway(cfg.BotToken, cfg.ChannelID, logger)
	if err != nil {
		logger.Fatal("gateway", "error", err)
	}

	dispatch := utils.NewDispatcher(clock, cfg.DispatchDelay, gateway.Send)
	ledger := utils.NewCooldownLedger(clock, cfg.PersonalCooldown, cfg.GlobalCooldown, cfg.GatherCooldown)
	engine := blackjack.NewEngine(clock, cfg.RoundTimeout, store, ledger, dispatch.Enqueue, logger)
	recent := utils.NewRecentCache(clock, cfg.DedupeWindow)
	awards := utils.NewAwardClient(cfg.AwardURL, cfg.AwardSecret, logger)

	router := cogs.NewRouter(store, ledger, engine, dispatch, recent, awards, logger)

	if err := gateway.Open(func(ev models.Event) {
		router.Handle(ctx, ev)
	}); err != nil {
		logger.Fatal("connect", "error", err)
	}
	defer gateway.Close()

	logger.Info("table is open", "backend", cfg.StoreBackend)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-stop

	logger.Info("shutting down")
}
