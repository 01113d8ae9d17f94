package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServerURL string
	DataDir   string
	LogLevel  string
	Sound     bool
}

// Load reads configuration from (in increasing precedence) built-in
// defaults, ~/.config/ehealth/config.yaml, a local .env file, and
// EHEALTH_* environment variables. The config file is watched so a running
// session picks up edits.
func Load() (Config, *viper.Viper, error) {
	// A missing .env is fine; it only exists in dev setups.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "ehealth"))
	}
	v.AddConfigPath(".")

	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("log_level", "info")
	v.SetDefault("sound", true)

	v.SetEnvPrefix("EHEALTH")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// No config file is a supported setup; anything else is real.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, nil, err
		}
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		log.Println("Config file has changed:", e.Name)
	})
	v.WatchConfig()

	cfg := Config{
		ServerURL: v.GetString("server_url"),
		DataDir:   v.GetString("data_dir"),
		LogLevel:  v.GetString("log_level"),
		Sound:     v.GetBool("sound"),
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return Config{}, nil, err
	}
	return cfg, v, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ehealth"
	}
	return filepath.Join(home, ".ehealth")
}
