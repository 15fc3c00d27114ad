package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/wfunc/monopoly/broadcast"
	"github.com/wfunc/monopoly/config"
	"github.com/wfunc/monopoly/logger"
	"github.com/wfunc/monopoly/monitor"
	"github.com/wfunc/monopoly/persistence"
	"github.com/wfunc/monopoly/room"
	"github.com/wfunc/monopoly/rpc"
	"github.com/wfunc/monopoly/server"
	"github.com/wfunc/monopoly/services"
	"github.com/wfunc/monopoly/session"
)

func main() {
	configPath := flag.String("config", ".", "directory holding config.yaml")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Init("info")
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.Log.Level)
	defer logger.Sync()

	mon := monitor.NewMonitor("monopoly", nil)
	mon.StartServer(cfg.Server.MetricsAddress)
	logger.Log.Infof("Metrics available on %s", cfg.Server.MetricsAddress)

	// Match history is optional; games run the same without it.
	var (
		recorder room.Recorder
		history  rpc.History
	)
	if cfg.Database.Enabled {
		pg := cfg.Database.Postgres
		db, err := persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		logger.Log.Info("Database connection successful.")
		records := services.NewRecordService(db)
		recorder, history = records, records
	}

	sessions := session.NewManager()
	broadcaster := broadcast.NewSessionBroadcaster(sessions)

	rooms := room.NewDirectory(room.Config{
		GracePeriod:     cfg.Game.GracePeriod,
		TimerResolution: cfg.Game.TimerResolution,
		ChatHistory:     cfg.Game.ChatHistory,
		ChatRate:        rate.Limit(cfg.Game.ChatRate),
		ChatBurst:       cfg.Game.ChatBurst,
		LogTail:         cfg.Game.ActionLogTail,
	}, room.Dependencies{
		Broadcaster: broadcaster,
		Recorder:    recorder,
		Monitor:     mon,
	})

	gameServer := server.NewGameServer(server.Options{
		Addr:        cfg.Server.HTTPAddress,
		Heartbeat:   cfg.Server.Heartbeat,
		IdleTimeout: cfg.Server.IdleTimeout,
		Defaults:    room.Settings{Settings: cfg.Game.Settings()},
		Monitor:     mon,
	}, rooms, sessions, broadcaster)

	rpcServer, err := rpc.NewServer(cfg.Server.RPCAddress, rooms, history)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	go rpcServer.Start()

	// Start Server
	errc := make(chan error, 1)
	go func() {
		logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
		errc <- gameServer.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-stop:
		logger.Log.Infof("Received %s, shutting down", sig)
	case err := <-errc:
		if err != nil {
			logger.Log.Errorf("Game server stopped: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := gameServer.Shutdown(ctx); err != nil {
		logger.Log.Warnf("Shutdown: %v", err)
	}
	rpcServer.Stop()
	logger.Log.Infof("Server stopped after %s", mon.Uptime().Round(time.Second))
}
