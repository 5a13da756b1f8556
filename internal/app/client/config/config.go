package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultLogLevel      = "info"
	defaultEnv           = "local"
	defaultConfigDir     = ".marketsync"
	defaultBatchSize     = 50
)

type Config struct {
	Env           string `mapstructure:"app_env"`
	ServerAddress string `mapstructure:"server_address"`
	LogLevel      string `mapstructure:"log_level"`
	ConfigDir     string `mapstructure:"config_dir"`
	TokenPath     string `mapstructure:"token_path"`
	DataPath      string `mapstructure:"data_path"`
	DevicePath    string `mapstructure:"device_path"`
	DeviceID      string `mapstructure:"device_id"`
	BatchSize     int    `mapstructure:"sync_batch_size"`
	EnableTLS     bool   `mapstructure:"enable_tls"`
}

// MustLoad загружает конфигурацию клиента
func MustLoad() *Config {
	// Определяем путь к .env файлу (относительно места запуска)
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	viper.SetDefault("LOG_LEVEL", defaultLogLevel)
	viper.SetDefault("CONFIG_DIR", defaultConfigDir)
	viper.SetDefault("SYNC_BATCH_SIZE", defaultBatchSize)
	viper.SetDefault("ENABLE_TLS", false)

	cfg := &Config{
		Env:           viper.GetString("APP_ENV"),
		ServerAddress: viper.GetString("SERVER_ADDRESS"),
		LogLevel:      viper.GetString("LOG_LEVEL"),
		ConfigDir:     viper.GetString("CONFIG_DIR"),
		DeviceID:      viper.GetString("DEVICE_ID"),
		BatchSize:     viper.GetInt("SYNC_BATCH_SIZE"),
		EnableTLS:     viper.GetBool("ENABLE_TLS"),
	}

	// Директория данных клиента живет в домашней директории пользователя
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	if !filepath.IsAbs(cfg.ConfigDir) {
		cfg.ConfigDir = filepath.Join(home, cfg.ConfigDir)
	}

	cfg.TokenPath = viper.GetString("TOKEN_PATH")
	if cfg.TokenPath == "" {
		cfg.TokenPath = filepath.Join(cfg.ConfigDir, "token")
	}
	cfg.DataPath = viper.GetString("DATA_PATH")
	if cfg.DataPath == "" {
		cfg.DataPath = filepath.Join(cfg.ConfigDir, "catalog.db")
	}
	cfg.DevicePath = viper.GetString("DEVICE_PATH")
	if cfg.DevicePath == "" {
		cfg.DevicePath = filepath.Join(cfg.ConfigDir, "device")
	}

	return cfg
}
