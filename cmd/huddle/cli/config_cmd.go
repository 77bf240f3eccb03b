package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/huddlehq/huddle/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage Huddle configuration",
		Long:  "Initialize a default configuration file, display the effective configuration, or manage persisted runtime settings.",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

// ---------- config init ----------

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default huddle.yaml configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config file")

	return cmd
}

func runConfigInit(force bool) error {
	path := "huddle.yaml"

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created %s\n", path)
	fmt.Println("Set auth.jwt_secret (or HUDDLE_AUTH_JWT_SECRET), then run 'huddle serve'.")
	return nil
}

// ---------- config show ----------

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}
}

func runConfigShow() error {
	cfg := loadConfig()

	fmt.Printf("server.host:              %s\n", cfg.Server.Host)
	fmt.Printf("server.port:              %d\n", cfg.Server.Port)
	fmt.Printf("server.shutdown_timeout:  %s\n", cfg.Server.ShutdownTimeout)
	fmt.Printf("server.rate_limit:        %d/min\n", cfg.Server.RateLimit)
	fmt.Printf("server.cors.origins:      %v\n", cfg.Server.CORS.Origins)
	if cfg.Auth.JWTSecret != "" {
		fmt.Printf("auth.jwt_secret:          (set)\n")
	} else {
		fmt.Printf("auth.jwt_secret:          (not set)\n")
	}
	fmt.Printf("auth.token_ttl:           %s\n", cfg.Auth.TokenTTL)
	fmt.Printf("store.driver:             %s\n", cfg.Store.Driver)
	fmt.Printf("store.dsn:                %s\n", cfg.Store.DSN)
	fmt.Printf("flags.path:               %s\n", cfg.Flags.Path)
	fmt.Printf("flags.cache_ttl:          %s\n", cfg.Flags.CacheTTL)
	fmt.Printf("logging.level:            %s\n", cfg.Logging.Level)
	fmt.Printf("logging.format:           %s\n", cfg.Logging.Format)
	fmt.Printf("telemetry.disabled:       %v\n", cfg.Telemetry.Disabled)
	return nil
}

// ---------- config set / get ----------
//
// Settings written here land in the store's settings table, not the YAML
// file. They survive restarts and are read at startup (telemetry.enabled,
// instance_id).

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Persist a runtime setting in the store",
		Example: `  huddle config set telemetry.enabled false
  huddle config set instance_id my-stable-id`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}
}

func runConfigSet(key, value string) error {
	st, err := openStore(loadConfig())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if err := st.SetSetting(context.Background(), key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Read a persisted runtime setting from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	}
}

func runConfigGet(key string) error {
	st, err := openStore(loadConfig())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	value, err := st.GetSetting(context.Background(), key)
	if err != nil {
		return fmt.Errorf("%s is not set", key)
	}
	fmt.Println(value)
	return nil
}
