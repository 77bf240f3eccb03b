package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huddlehq/huddle/internal/config"
	"github.com/huddlehq/huddle/internal/featureflag"
	"github.com/huddlehq/huddle/internal/server"
	"github.com/huddlehq/huddle/internal/service"
	"github.com/huddlehq/huddle/internal/telemetry"
)

const banner = `
 _  _ _   _ ___  ___  _    ___
| || | | | |   \|   \| |  | __|
| __ | |_| | |) | |) | |__| _|
|_||_|\___/|___/|___/|____|___|
`

func newServeCmd() *cobra.Command {
	var (
		port   int
		host   string
		dev    bool
		daemon bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Huddle API server",
		Long:  "Start the HTTP server that exposes the project, board, vault, and submission APIs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if daemon {
				return runServeDaemon()
			}
			return runServe(host, port, dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP listen port (overrides config)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP listen host (overrides config)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging, CORS *)")
	cmd.Flags().BoolVar(&daemon, "daemon", false, "Run the server in the background")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

// runServeDaemon re-executes the current binary detached from the terminal
// and records its PID so 'huddle stop' can find it.
func runServeDaemon() error {
	args := []string{"serve"}
	if cfgFile != "" {
		args = append(args, "--config", cfgFile)
	}
	if dataDir != "" {
		args = append(args, "--data-dir", dataDir)
	}

	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		if mkErr := os.MkdirAll(resolveDataDir(), 0755); mkErr != nil {
			return fmt.Errorf("create data dir: %w", mkErr)
		}
		logFile, err = os.OpenFile(logFilePath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
	}
	defer logFile.Close()

	child := exec.Command(os.Args[0], args...)
	child.Stdout = logFile
	child.Stderr = logFile
	setSysProcAttr(child)

	if err := child.Start(); err != nil {
		return fmt.Errorf("start background server: %w", err)
	}
	if err := writePID(child.Process.Pid); err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}

	fmt.Printf("Huddle server started in the background (PID %d)\n", child.Process.Pid)
	fmt.Printf("  Logs: %s\n", logFilePath())
	fmt.Println("  Stop with: huddle stop")
	return nil
}

func runServe(host string, port int, dev bool) error {
	fmt.Print(banner)
	fmt.Println()

	cfg := loadConfig()
	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if dev {
		cfg.Logging.Level = "debug"
		cfg.Server.CORS.Origins = []string{"*"}
	}

	logger := newLogger(cfg.Logging)

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	logger.Info("store opened", "driver", st.Driver())

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "huddle-dev-secret-change-me"
		logger.Warn("auth.jwt_secret not set, using an insecure development secret")
	}
	authSvc := service.NewAuthService(jwtSecret, config.Duration(cfg.Auth.TokenTTL, 7*24*time.Hour))
	vaultSvc := service.NewVaultService(st)

	flags, err := loadFlags(cfg, logger)
	if err != nil {
		return err
	}

	tracker := telemetry.New(context.Background(), st, cfg.Telemetry.Disabled, func() telemetry.Properties {
		ctx := context.Background()
		projects, _ := st.CountProjects(ctx)
		tasks, _ := st.CountTasks(ctx)
		secrets, _ := st.CountSecrets(ctx)
		return telemetry.Properties{
			Version:     appVersion,
			GoVersion:   runtime.Version(),
			OS:          runtime.GOOS,
			Arch:        runtime.GOARCH,
			StoreDriver: st.Driver(),
			Projects:    projects,
			Tasks:       tasks,
			Secrets:     secrets,
		}
	})
	if tracker != nil {
		telemetry.PrintNotice()
		tracker.Start()
		defer tracker.Shutdown()
	}

	srvCfg := server.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ShutdownTimeout: config.Duration(cfg.Server.ShutdownTimeout, 30*time.Second),
		CORSOrigins:     cfg.Server.CORS.Origins,
		RateLimit:       cfg.Server.RateLimit,
		Version:         appVersion,
	}
	srv := server.New(srvCfg, st, authSvc, vaultSvc, flags, logger)

	if err := writePID(os.Getpid()); err != nil {
		logger.Warn("failed to write PID file", "error", err)
	}
	defer removePID()

	fmt.Printf("→ Huddle %s\n", versionString())
	fmt.Printf("→ Listening on http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("→ OpenAPI:    http://%s:%d/openapi.json\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("→ Health:     http://%s:%d/healthz\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("→ MCP:        http://%s:%d/mcp\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()

	return srv.ListenAndServe()
}

// loadFlags reads the feature-flag rules file when one is configured; with
// no file every flag evaluates to its absence (false).
func loadFlags(cfg *config.Config, logger *slog.Logger) (*featureflag.Service, error) {
	ttl := config.Duration(cfg.Flags.CacheTTL, 30*time.Second)
	if cfg.Flags.Path == "" {
		return featureflag.New(nil, ttl), nil
	}
	flags, err := featureflag.Load(cfg.Flags.Path, ttl)
	if err != nil {
		return nil, fmt.Errorf("load feature flags: %w", err)
	}
	logger.Info("feature flags loaded", "path", cfg.Flags.Path)
	return flags, nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
