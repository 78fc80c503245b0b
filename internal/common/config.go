package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the scheduler application configuration
type Config struct {
	Environment string            `toml:"environment"` // "development" or "production"
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	Logging     LoggingConfig     `toml:"logging"`
	Scheduler   SchedulerConfig   `toml:"scheduler"`
	Events      EventsConfig      `toml:"events"`
	AutoRestart AutoRestartConfig `toml:"auto_restart"`
	WebSocket   WebSocketConfig   `toml:"websocket"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05.000")
}

// SchedulerConfig tunes the main loop and its timers.
type SchedulerConfig struct {
	WorkflowFile       string `toml:"workflow_file"`      // Path to the flow TOML
	WorkflowOwner      string `toml:"workflow_owner"`     // Defaults to $USER
	MainLoopInterval   string `toml:"main_loop_interval"` // e.g. "1s"
	QuickInterval      string `toml:"quick_interval"`     // e.g. "500ms"
	GraphWindowExtent  int    `toml:"graph_window_extent" validate:"gte=0"`
	RunaheadLimit      int64  `toml:"runahead_limit" validate:"gte=0"`
	ProcessPoolSize    int    `toml:"process_pool_size" validate:"gte=0"`
	AbortOnTaskFailure bool   `toml:"abort_on_task_failure"`
	WorkflowTimeout    string `toml:"workflow_timeout"`   // "" disables
	InactivityTimeout  string `toml:"inactivity_timeout"` // "" disables
	StallTimeout       string `toml:"stall_timeout"`
	RestartTimeout     string `toml:"restart_timeout"`
	ShutdownTimeout    string `toml:"shutdown_timeout"` // hard cap on the final phase
}

// EventsConfig controls workflow event handling.
type EventsConfig struct {
	// AbortOn promotes the named events to a scheduler error.
	AbortOn []string `toml:"abort_on"`
	// Handlers are shell templates run per event (logged in simulation).
	Handlers []string `toml:"handlers"`
}

// AutoRestartConfig drives the host migration planner.
type AutoRestartConfig struct {
	Enabled        bool     `toml:"enabled"`
	Interval       string   `toml:"interval"`        // planner cadence, e.g. "1m"
	CondemnedHosts []string `toml:"condemned_hosts"` // trailing "!" forces stop without restart
	AvailableHosts []string `toml:"available_hosts"`
	RestartDelay   string   `toml:"restart_delay"` // max random stagger, e.g. "30s"
}

type WebSocketConfig struct {
	// PushRate caps delta frames per second across the whole subscriber
	// hub (one shared limit, not one per subscriber); zero disables it.
	PushRate float64 `toml:"push_rate" validate:"gte=0"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8210,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{Path: "./data/cursus"},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
		Scheduler: SchedulerConfig{
			WorkflowFile:      "flow.toml",
			MainLoopInterval:  "1s",
			QuickInterval:     "500ms",
			GraphWindowExtent: 1,
			RunaheadLimit:     2,
			ProcessPoolSize:   4,
			StallTimeout:      "1h",
			RestartTimeout:    "2m",
			ShutdownTimeout:   "30s",
		},
		AutoRestart: AutoRestartConfig{
			Interval:     "1m",
			RestartDelay: "30s",
		},
		WebSocket: WebSocketConfig{PushRate: 20},
	}
}

// LoadFromFiles loads configuration from a chain of TOML files (later
// files override earlier ones), then applies environment overrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := DefaultConfig()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(config)
	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// applyEnvOverrides applies CURSUS_* environment variables.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("CURSUS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("CURSUS_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("CURSUS_LOG_LEVEL"); v != "" {
		config.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("CURSUS_WORKFLOW_FILE"); v != "" {
		config.Scheduler.WorkflowFile = v
	}
	if v := os.Getenv("CURSUS_DB_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
}

// ApplyFlagOverrides applies command-line overrides (highest priority).
func ApplyFlagOverrides(config *Config, port int, host, workflowFile string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if workflowFile != "" {
		config.Scheduler.WorkflowFile = workflowFile
	}
	if config.Scheduler.WorkflowOwner == "" {
		config.Scheduler.WorkflowOwner = os.Getenv("USER")
		if config.Scheduler.WorkflowOwner == "" {
			config.Scheduler.WorkflowOwner = "unknown"
		}
	}
}

// Duration parses a config duration string with a fallback.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
