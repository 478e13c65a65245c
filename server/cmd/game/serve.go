package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/spf13/cobra"

	"github.com/phuhao00/rpgserver/server/configs"
	internalActor "github.com/phuhao00/rpgserver/server/internal/actor"
	"github.com/phuhao00/rpgserver/server/internal/data"
	"github.com/phuhao00/rpgserver/server/internal/dispatch"
	"github.com/phuhao00/rpgserver/server/internal/handler"
	"github.com/phuhao00/rpgserver/server/internal/metrics"
	"github.com/phuhao00/rpgserver/server/internal/network"
	"github.com/phuhao00/rpgserver/server/internal/scene"
	"github.com/phuhao00/rpgserver/server/internal/session"
	"github.com/phuhao00/rpgserver/server/internal/store"
	"github.com/phuhao00/rpgserver/server/internal/utils"
)

const shutdownGrace = 5 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the game server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := configs.LoadConfig(path)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if err := utils.InitLogger(cfg.Server.LogFile, cfg.Server.LogLevel); err != nil {
				return err
			}
			defer utils.SyncLogger()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *configs.Config) error {
	utils.LogInfof("Starting rpgserver %s", version)

	index, err := data.Load(cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("load game data: %w", err)
	}
	entrances, floors, avatars := index.Counts()
	utils.LogInfof("Game data loaded from %s: %d entrances, %d floors, %d avatars", cfg.Data.Dir, entrances, floors, avatars)

	backend, err := store.OpenBackend(store.BackendConfig{
		PostgresURL:   cfg.Database.PostgresURL,
		RedisAddr:     cfg.Redis.Address,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer backend.Stop()
	startCtx, cancel := context.WithTimeout(ctx, shutdownGrace)
	err = backend.Start(startCtx)
	cancel()
	if err != nil {
		return err
	}

	players, err := playerStore(ctx, cfg, backend)
	if err != nil {
		return err
	}

	actorSystem := actor.NewActorSystem()
	worldManagerPID, err := actorSystem.Root.SpawnNamed(internalActor.PropsForWorldManager(), "world-manager")
	if err != nil {
		return fmt.Errorf("spawn world manager: %w", err)
	}

	dispatcher := dispatch.New()
	handler.New(index).Register(dispatcher)
	utils.LogInfof("Routing %d commands", len(dispatcher.Commands()))

	sessionProps := internalActor.PropsForSession(internalActor.SessionDeps{
		Index:        index,
		Registry:     scene.NewRegistry(index),
		Dispatcher:   dispatcher,
		Tokens:       tokenVerifier(cfg, backend),
		Players:      players,
		WorldManager: worldManagerPID,
		Session: session.Options{
			PacketsPerSecond: cfg.Session.PacketsPerSecond,
			Burst:            cfg.Session.Burst,
		},
		AuthTimeout: cfg.Session.AuthTimeout(),
		IdleTimeout: cfg.Session.IdleTimeout(),
	})

	tcpServer := network.NewTCPServer(cfg.Server.Host, cfg.Server.TCPPort, actorSystem, sessionProps, cfg.Session.QueueSize)
	if err := tcpServer.Start(); err != nil {
		return fmt.Errorf("start TCP server: %w", err)
	}

	wsServer := network.NewWSServer(actorSystem, sessionProps, cfg.Session.QueueSize, cfg.Server.AllowedOrigins)
	mux := metrics.NewMux()
	mux.Handle("/ws", wsServer)
	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.HTTPPort)),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpErr := make(chan error, 1)
	go func() {
		utils.LogInfof("HTTP listening on %s (/ws, /metrics, /healthz)", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()

	utils.LogInfo("Server running. Press Ctrl+C to shut down.")
	select {
	case <-ctx.Done():
	case err = <-httpErr:
		utils.LogErrorf("HTTP server failed: %v", err)
	}

	utils.LogInfo("Shutting down...")
	// Gateways return once their session actors have stopped, so profiles
	// are saved before the backend closes.
	tcpServer.Stop()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		utils.LogWarnf("HTTP shutdown: %v", err)
	}
	wsServer.Stop()

	if stopErr := actorSystem.Root.StopFuture(worldManagerPID).Wait(); stopErr != nil {
		utils.LogWarnf("Error stopping WorldManagerActor: %v", stopErr)
	}
	actorSystem.Shutdown()
	utils.LogInfo("Server shut down.")
	return err
}

func playerStore(ctx context.Context, cfg *configs.Config, backend *store.Backend) (store.PlayerStore, error) {
	defaults := store.Defaults{Nickname: cfg.Player.DefaultNickname, Avatars: cfg.Player.DefaultAvatars}
	if backend.DB == nil {
		utils.LogWarn("No database configured; player profiles are kept in memory only.")
		return store.NewMemoryPlayerStore(defaults), nil
	}

	table := store.NewPostgresTable(backend.DB)
	if err := table.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	var cache store.Cache = store.NopCache{}
	if backend.Redis != nil {
		cache = store.NewRedisCache(backend.Redis)
	}
	ttl := time.Duration(cfg.Player.CacheTTLSeconds) * time.Second
	return store.NewDBCacheStore(table, cache, ttl, defaults), nil
}

func tokenVerifier(cfg *configs.Config, backend *store.Backend) store.TokenVerifier {
	if cfg.Auth.EnableDummyAuth || backend.Redis == nil {
		utils.LogWarn("Dummy auth enabled: every uid logs in with the configured token.")
		return store.StaticTokenVerifier{Token: cfg.Auth.DummyToken}
	}
	return store.NewRedisTokenVerifier(store.NewRedisCache(backend.Redis))
}
