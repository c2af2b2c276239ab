package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	JoinTimeout    time.Duration `mapstructure:"join_timeout"`
	RoomBacklog    int           `mapstructure:"room_backlog"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
	RoomTTL        time.Duration `mapstructure:"room_ttl"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("read_limit", 30000)
	v.SetDefault("join_timeout", "10s")
	v.SetDefault("room_backlog", 256)
	v.SetDefault("sweep_interval", "60s")
	v.SetDefault("room_ttl", "720h")
	v.SetDefault("allowed_origins", []string{"*"})

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d\n", cfg.Mode, cfg.Port)
	return &cfg, nil
}
