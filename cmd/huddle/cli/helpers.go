package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/huddlehq/huddle/internal/config"
	"github.com/huddlehq/huddle/internal/store"
)

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// resolveDataDir returns the data directory from the --data-dir flag,
// the HUDDLE_DATA_DIR env var, or ~/.huddle as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("HUDDLE_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return home + "/.huddle"
}

// loadConfig reads the YAML config from --config, ./huddle.yaml, or
// ~/.huddle/huddle.yaml, falling back to defaults when none exists. A
// HUDDLE_AUTH_JWT_SECRET env var (via viper) overrides the file.
func loadConfig() *config.Config {
	path := cfgFile
	if path == "" {
		for _, candidate := range []string{"huddle.yaml", filepath.Join(resolveDataDir(), "huddle.yaml")} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	cfg := config.Default()
	if path != "" {
		if loaded, err := config.Load(path); err == nil {
			cfg = loaded
		}
	}

	if secret := viper.GetString("auth.jwt_secret"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if cfg.Store.DSN == "" && cfg.Store.Driver == "sqlite" {
		cfg.Store.DSN = resolveDataDir()
	}
	return cfg
}

// openStore opens the configured backing store.
func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(cfg.Store.Driver, cfg.Store.DSN)
}

// --- PID file management ---

func pidFilePath() string {
	return filepath.Join(resolveDataDir(), "huddle.pid")
}

func writePID(pid int) error {
	dir := resolveDataDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0644)
}

func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePID() {
	os.Remove(pidFilePath())
}

func logFilePath() string {
	return filepath.Join(resolveDataDir(), "huddle.log")
}

// versionString returns a display version string.
func versionString() string {
	if appVersion == "" || appVersion == "dev" {
		return "dev"
	}
	if strings.HasPrefix(appVersion, "v") {
		return appVersion
	}
	return "v" + appVersion
}
