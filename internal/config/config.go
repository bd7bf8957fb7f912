// Package config provides application configuration management with support
// for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Metadata MetadataConfig
	Library  LibraryConfig
	Player   PlayerConfig
	Sync     SyncConfig
	Download DownloadConfig
	Server   ServerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// MetadataConfig holds metadata/state storage configuration (resume store,
// search index, change log database all live under this base path).
type MetadataConfig struct {
	BasePath string
}

// LibraryConfig holds §6 "library.*" scanner configuration.
type LibraryConfig struct {
	Paths        []string      // library.paths
	AutoScan     bool          // library.auto_scan
	ScanInterval time.Duration // library.scan_interval
}

// PlayerConfig holds §6 "player.*" PlaybackState defaults.
type PlayerConfig struct {
	DefaultVolume    int           // player.default_volume (0-100)
	DefaultSpeed     float64       // player.default_speed (0.5-3.0)
	AutoSaveInterval time.Duration // player.auto_save_interval
	ResumeOnStart    bool          // player.resume_on_start
}

// SyncConfig holds §6 "sync.*" engine configuration.
type SyncConfig struct {
	Enabled            bool          // sync.enabled
	AutoSync           bool          // sync.auto_sync
	ConflictResolution string        // sync.conflict_resolution: newest|local|remote|merge
	TombstoneTTL       time.Duration // tombstone GC interval, §9 open question (default 30d)
	DeviceID           string        // stable identity for this replica
	PairingTokenTTL    time.Duration // handshake token lifetime for mDNS-discovered pairing requests
}

// DownloadConfig holds §6 "download.*" manager tunables.
type DownloadConfig struct {
	MaxConcurrent    int   // download.max_concurrent
	BandwidthLimit   int64 // download.bandwidth_limit, bytes/sec, 0 = unlimited
	RetryMaxAttempts int   // download.retry_max_attempts
	BurstBytes       int64 // token bucket burst capacity
}

// ServerConfig holds control-surface HTTP server configuration.
type ServerConfig struct {
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	AdvertiseMDNS bool
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	metadataPath := flag.String("metadata-path", "", "Base path for metadata/state storage")

	libraryPaths := flag.String("library-paths", "", "Comma-separated library root paths")
	autoScan := flag.String("auto-scan", "", "Start the watcher at boot (default: true)")
	scanInterval := flag.String("scan-interval", "", "Periodic re-scan interval (default: 1h)")

	defaultVolume := flag.String("default-volume", "", "Default playback volume 0-100 (default: 100)")
	defaultSpeed := flag.String("default-speed", "", "Default playback speed 0.5-3.0 (default: 1.0)")
	autoSaveInterval := flag.String("auto-save-interval", "", "Playback position save interval (default: 10s)")
	resumeOnStart := flag.String("resume-on-start", "", "Resume last book on start (default: true)")

	syncEnabled := flag.String("sync-enabled", "", "Enable the sync engine (default: true)")
	autoSync := flag.String("auto-sync", "", "Automatically sync on change (default: true)")
	conflictResolution := flag.String("conflict-resolution", "", "newest|local|remote|merge (default: newest)")
	deviceID := flag.String("device-id", "", "Stable identifier for this replica")

	maxConcurrentDownloads := flag.String("download-max-concurrent", "", "Max concurrent downloads (default: 3)")
	bandwidthLimit := flag.String("bandwidth-limit", "", "Aggregate download bandwidth limit, bytes/sec (default: 0=unlimited)")
	retryMaxAttempts := flag.String("retry-max-attempts", "", "Max download retry attempts (default: 5)")

	serverPort := flag.String("port", "", "Control-surface server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	advertiseMDNS := flag.String("advertise-mdns", "", "Advertise sync peer via mDNS (default: true)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Metadata: MetadataConfig{
			BasePath: getConfigValue(*metadataPath, "METADATA_PATH", ""),
		},
		Library: LibraryConfig{
			Paths:    splitAndTrim(getConfigValue(*libraryPaths, "LIBRARY_PATHS", "")),
			AutoScan: getBoolConfigValue(*autoScan, "LIBRARY_AUTO_SCAN", true),
		},
		Player: PlayerConfig{
			DefaultVolume: getIntConfigValue(*defaultVolume, "PLAYER_DEFAULT_VOLUME", 100),
			ResumeOnStart: getBoolConfigValue(*resumeOnStart, "PLAYER_RESUME_ON_START", true),
		},
		Sync: SyncConfig{
			Enabled:            getBoolConfigValue(*syncEnabled, "SYNC_ENABLED", true),
			AutoSync:           getBoolConfigValue(*autoSync, "SYNC_AUTO_SYNC", true),
			ConflictResolution: getConfigValue(*conflictResolution, "SYNC_CONFLICT_RESOLUTION", "newest"),
			DeviceID:           getConfigValue(*deviceID, "DEVICE_ID", ""),
		},
		Download: DownloadConfig{
			MaxConcurrent:    getIntConfigValue(*maxConcurrentDownloads, "DOWNLOAD_MAX_CONCURRENT", 3),
			BandwidthLimit:   getInt64ConfigValue(*bandwidthLimit, "DOWNLOAD_BANDWIDTH_LIMIT", 0),
			RetryMaxAttempts: getIntConfigValue(*retryMaxAttempts, "DOWNLOAD_RETRY_MAX_ATTEMPTS", 5),
			BurstBytes:       1 << 20, // 1 MiB burst
		},
		Server: ServerConfig{
			Port:          getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AdvertiseMDNS: getBoolConfigValue(*advertiseMDNS, "ADVERTISE_MDNS", true),
		},
	}

	speedStr := getConfigValue(*defaultSpeed, "PLAYER_DEFAULT_SPEED", "1.0")
	speed, err := strconv.ParseFloat(speedStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid default speed %q: %w", speedStr, err)
	}
	cfg.Player.DefaultSpeed = speed

	for _, d := range []struct {
		target *time.Duration
		str    string
		field  string
	}{
		{&cfg.Library.ScanInterval, getConfigValue(*scanInterval, "LIBRARY_SCAN_INTERVAL", "1h"), "scan interval"},
		{&cfg.Player.AutoSaveInterval, getConfigValue(*autoSaveInterval, "PLAYER_AUTO_SAVE_INTERVAL", "10s"), "auto save interval"},
		{&cfg.Sync.TombstoneTTL, getConfigValue("", "SYNC_TOMBSTONE_TTL", "720h"), "tombstone TTL"},
		{&cfg.Sync.PairingTokenTTL, getConfigValue("", "SYNC_PAIRING_TOKEN_TTL", "5m"), "pairing token TTL"},
		{&cfg.Server.ReadTimeout, getConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"), "read timeout"},
		{&cfg.Server.WriteTimeout, getConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"), "write timeout"},
		{&cfg.Server.IdleTimeout, getConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"), "idle timeout"},
	} {
		dur, err := time.ParseDuration(d.str)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.field, d.str, err)
		}
		*d.target = dur
	}

	if err := cfg.expandMetadataPath(); err != nil {
		return nil, fmt.Errorf("invalid metadata path: %w", err)
	}
	if err := cfg.expandLibraryPaths(); err != nil {
		return nil, fmt.Errorf("invalid library paths: %w", err)
	}
	if cfg.Sync.DeviceID == "" {
		cfg.Sync.DeviceID = defaultDeviceID()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}
	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Metadata.BasePath == "" {
		return errors.New("metadata base path cannot be empty after expansion")
	}

	if c.Player.DefaultSpeed < 0.5 || c.Player.DefaultSpeed > 3.0 {
		return fmt.Errorf("default speed %.2f out of range [0.5, 3.0]", c.Player.DefaultSpeed)
	}
	if c.Player.DefaultVolume < 0 || c.Player.DefaultVolume > 100 {
		return fmt.Errorf("default volume %d out of range [0, 100]", c.Player.DefaultVolume)
	}

	validResolutions := map[string]bool{"newest": true, "local": true, "remote": true, "merge": true}
	if !validResolutions[c.Sync.ConflictResolution] {
		return fmt.Errorf("invalid conflict resolution: %s", c.Sync.ConflictResolution)
	}

	if c.Download.MaxConcurrent < 1 {
		return errors.New("download.max_concurrent must be at least 1")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute. If path is empty and
// defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}
	return filepath.Clean(path), nil
}

func (c *Config) expandMetadataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, ".storystream")
	expanded, err := expandPath(c.Metadata.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Metadata.BasePath = expanded
	return nil
}

// expandLibraryPaths expands ~ and makes every library root absolute.
// An empty path list is allowed; roots can be configured later.
func (c *Config) expandLibraryPaths() error {
	expanded := make([]string, 0, len(c.Library.Paths))
	for _, p := range c.Library.Paths {
		e, err := expandPath(p, "")
		if err != nil {
			return err
		}
		expanded = append(expanded, e)
	}
	c.Library.Paths = expanded
	return nil
}

func defaultDeviceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "device-local"
	}
	return "device-" + host
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// getInt64ConfigValue returns an int64 from flag, env var, or default.
func getInt64ConfigValue(flagValue, envKey string, defaultValue int64) int64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseInt(strValue, 10, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- config file path comes from a trusted local flag
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
