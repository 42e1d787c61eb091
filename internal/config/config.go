package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the relay configuration loaded from the environment.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	FollowUpBossAPIKey  string        `mapstructure:"followupboss_api_key"`
	FollowUpBossBaseURL string        `mapstructure:"followupboss_base_url"`
	System              string        `mapstructure:"fub_system"`
	FUBTimeoutSeconds   int64         `mapstructure:"fub_timeout_seconds"`
	FUBTimeout          time.Duration `mapstructure:"-"`

	NotifiersFile string `mapstructure:"notifiers_file"`

	IntakeQueueURL    string `mapstructure:"intake_queue_url"`
	IntakeRegion      string `mapstructure:"intake_region"`
	IntakeWaitSeconds int64  `mapstructure:"intake_wait_seconds"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables (with an optional
// configs/.env file for development). The Follow Up Boss API key is required:
// its absence is a configuration error raised here, before any network call.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "nebula-lead-relay")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("followupboss_base_url", "https://api.followupboss.com/v1")
	v.SetDefault("fub_system", "Nebula")
	v.SetDefault("fub_timeout_seconds", 30)
	v.SetDefault("notifiers_file", "")
	v.SetDefault("intake_wait_seconds", 20)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/leads.db")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env vars through Unmarshal unless
	// each key is bound explicitly.
	for _, key := range []string{
		"app_name", "app_env", "log_level",
		"followupboss_api_key", "followupboss_base_url",
		"fub_system", "fub_timeout_seconds",
		"notifiers_file",
		"intake_queue_url", "intake_region", "intake_wait_seconds",
		"storage_type", "bbolt_path",
		"storage_ttl_seconds", "storage_cleanup_interval_seconds",
	} {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.FollowUpBossAPIKey) == "" {
		return nil, fmt.Errorf("FOLLOWUPBOSS_API_KEY is not set")
	}

	if cfg.FUBTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid fub_timeout_seconds (must be positive seconds)")
	}
	cfg.FUBTimeout = time.Duration(cfg.FUBTimeoutSeconds) * time.Second

	if cfg.IntakeWaitSeconds < 0 || cfg.IntakeWaitSeconds > 20 {
		return nil, fmt.Errorf("invalid intake_wait_seconds (sqs allows 0-20)")
	}

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}
