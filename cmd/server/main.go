package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/syncus/internal/changefeed"
	"github.com/rpggio/syncus/internal/config"
	"github.com/rpggio/syncus/internal/crypto"
	"github.com/rpggio/syncus/internal/domain/chapter"
	"github.com/rpggio/syncus/internal/domain/media"
	"github.com/rpggio/syncus/internal/domain/party"
	"github.com/rpggio/syncus/internal/domain/status"
	"github.com/rpggio/syncus/internal/domain/stream"
	"github.com/rpggio/syncus/internal/lookup"
	"github.com/rpggio/syncus/internal/mcp"
	"github.com/rpggio/syncus/internal/store"
	"github.com/rpggio/syncus/internal/transport"
	"github.com/rpggio/syncus/internal/workspace"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if logPath := os.Getenv("SYNCUS_LOG_PATH"); logPath != "" {
		fileWriter, file, err := newLogFileWriter(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	broker, err := openChangefeed(cfg.Changefeed, logger)
	if err != nil {
		logger.Error("failed to open changefeed", "driver", cfg.Changefeed.Driver, "error", err)
		os.Exit(1)
	}
	defer broker.Close()

	db, err := openStore(ctx, cfg.Store, broker, logger)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cipher, err := crypto.New(cfg.Crypto.Secret)
	if err != nil {
		logger.Error("failed to initialize cipher", "error", err)
		os.Exit(1)
	}
	if cipher.Ready() != nil {
		logger.Warn("no encryption secret configured; notes and consent changes will be refused")
	}

	svc := newServices(db, cipher, cfg.Lookup, logger)

	workspaces := make(map[party.Role]mcp.Workspace, 2)
	for _, role := range []party.Role{party.RolePrimary, party.RolePartner} {
		identity, err := party.Resolve(role, cfg.Party.Directory())
		if err != nil {
			logger.Error("failed to resolve party", "role", role, "error", err)
			os.Exit(1)
		}
		ctrl := workspace.NewController(identity, svc, broker, logger)
		teardown, err := ctrl.Initialize(ctx, true)
		if err != nil {
			logger.Error("failed to start workspace session", "role", role, "error", err)
			os.Exit(1)
		}
		defer teardown()
		workspaces[role] = ctrl
	}

	defaultRole, _ := party.ParseRole(cfg.Party.Role)
	resolver := newKeyResolver(cfg.Auth)
	mcpServer := mcp.NewServer(mcp.Config{
		Workspaces:    workspaces,
		Resolver:      resolver,
		AuthEnabled:   cfg.Auth.Enabled,
		DefaultRole:   defaultRole,
		TransportMode: cfg.Transport.Mode,
		Version:       version,
		Logger:        logger,
	})

	health := func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		if rb, ok := broker.(*changefeed.RedisBroker); ok {
			return rb.Ping(ctx)
		}
		return nil
	}

	// Branch based on transport mode
	if cfg.Transport.Mode == "stdio" {
		runStdioMode(ctx, logger, mcpServer, defaultRole)
	} else {
		var auth func(http.Handler) http.Handler
		if cfg.Auth.Enabled {
			auth = transport.AuthMiddleware(resolver)
		}
		runHTTPMode(ctx, logger, mcpServer, auth, health, cfg.Server.Host, cfg.Server.Port)
	}
}

func openChangefeed(cfg config.ChangefeedConfig, logger *slog.Logger) (changefeed.Broker, error) {
	if cfg.Driver == "redis" {
		rb, err := changefeed.NewRedisBroker(cfg.RedisURL, logger)
		if err != nil {
			return nil, err
		}
		return rb, nil
	}
	return changefeed.NewMemoryBroker(), nil
}

func openStore(ctx context.Context, cfg config.StoreConfig, feed changefeed.Publisher, logger *slog.Logger) (*store.DB, error) {
	dialect := store.Dialect(cfg.Driver)
	if dialect == store.SQLite {
		if err := ensureDBDir(cfg.DSN); err != nil {
			return nil, fmt.Errorf("prepare database path: %w", err)
		}
	}
	db, err := store.Open(dialect, cfg.DSN, store.WithPublisher(feed), store.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

func newServices(db *store.DB, cipher *crypto.Cipher, cfg config.LookupConfig, logger *slog.Logger) workspace.Services {
	var previews stream.LinkPreviewer
	if cfg.LinkPreviewKey != "" {
		previews = lookup.NewLinkPreviewClient(cfg.LinkPreviewURL, cfg.LinkPreviewKey, cfg.Timeout)
	} else {
		logger.Info("link previews disabled")
	}
	var searcher media.Searcher
	if cfg.MediaKey != "" {
		searcher = lookup.NewMediaClient(cfg.MediaURL, cfg.MediaKey, cfg.Timeout)
	} else {
		logger.Info("media search disabled")
	}

	streamSvc := stream.NewService(store.NewStreamRepository(db), cipher, previews, logger)
	return workspace.Services{
		Status:  status.NewService(store.NewStatusRepository(db), logger),
		Chapter: chapter.NewService(store.NewChapterRepository(db), streamSvc, logger),
		Stream:  streamSvc,
		Media:   media.NewService(store.NewMediaRepository(db), searcher, logger),
	}
}

func newKeyResolver(cfg config.AuthConfig) *transport.KeyResolver {
	hashes := make(map[string]party.Role, len(cfg.Keys))
	for _, k := range cfg.Keys {
		role, err := party.ParseRole(k.Role)
		if err != nil {
			continue
		}
		hashes[k.Hash] = role
	}
	return transport.NewKeyResolver(hashes)
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server, role party.Role) {
	logger.Info("starting stdio transport", "role", role)

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server, auth func(http.Handler) http.Handler,
	health transport.HealthCheck, host string, port int) {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewServer(mcpHandler, auth, health),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "auth", auth != nil)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
