// CLAUDE:SUMMARY Entry point for the uijit canvas service — MCP over stdio, HTTP/WebSocket receivers, SQLite audit log.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/uijit/audit"
	"github.com/hazyhaar/uijit/canvas"
	"github.com/hazyhaar/uijit/dbopen"
	"github.com/hazyhaar/uijit/idgen"
	"github.com/hazyhaar/uijit/web"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// Logging goes to stderr: stdout is the MCP transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Audit DB.
	auditDB, err := dbopen.Open(cfg.AuditDB, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("audit db", "error", err)
		os.Exit(1)
	}
	defer auditDB.Close()

	auditor := audit.NewSQLiteLogger(auditDB, audit.WithIDGenerator(idgen.Prefixed("aud_", idgen.NanoID(12))))
	if err := auditor.Init(); err != nil {
		slog.Error("audit init", "error", err)
		os.Exit(1)
	}
	defer auditor.Close()

	mgr := canvas.New(cfg, logger, canvas.WithAudit(auditor))

	// Receiver-facing HTTP/WebSocket server.
	srv := web.NewServer(mgr, logger)
	webErr := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			webErr <- err
		}
	}()

	// MCP over stdio for the agent.
	if env("MCP_TRANSPORT", "stdio") == "stdio" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{Name: "uijit", Version: version}, nil)
		mgr.RegisterMCP(mcpSrv)

		slog.Info("mcp server starting", "transport", "stdio")
		if err := mcpSrv.Run(ctx, &mcp.IOTransport{Reader: os.Stdin, Writer: os.Stdout}); err != nil && ctx.Err() == nil {
			slog.Error("mcp server", "error", err)
			os.Exit(1)
		}
	} else {
		select {
		case err := <-webErr:
			slog.Error("web server", "error", err)
			os.Exit(1)
		case <-ctx.Done():
		}
	}

	slog.Info("uijit stopped")
}

// loadConfig merges the optional YAML file with environment overrides.
func loadConfig(path string) (*canvas.Config, error) {
	cfg := &canvas.Config{}
	if path != "" {
		loaded, err := canvas.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.Host = env("UIJIT_HOST", cfg.Host)
	if p := os.Getenv("UIJIT_PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		cfg.Port = port
	}
	cfg.ExternalHost = env("UIJIT_EXTERNAL_HOST", cfg.ExternalHost)
	cfg.DefaultSize = env("UIJIT_DEFAULT_SIZE", cfg.DefaultSize)
	cfg.AuditDB = env("UIJIT_AUDIT_DB", cfg.AuditDB)
	if cfg.AuditDB == "" {
		cfg.AuditDB = "uijit.db"
	}
	return cfg, nil
}

func logLevel() slog.Level {
	switch env("LOG_LEVEL", "info") {
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

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
