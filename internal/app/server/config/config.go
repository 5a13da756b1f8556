package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	defaultPageSize  = 100
	defaultRateLimit = 20
)

type Config struct {
	Env    string
	DB     DB
	Server server
	Logger logger
	Sync   Sync
}

type defaultConfig struct {
	RunAddress    string
	DatabaseURI   string
	LogLevel      string
	Env           string
	Migrations    string
	PageSize      int
	RetentionDays int
	RateLimitRPS  int
}

// DB настройки базы данных
type DB struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type server struct {
	RunAddress   string `env:"RUN_ADDRESS"`
	RateLimitRPS int    `env:"RATE_LIMIT_RPS"`
}

type logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Sync настройки протокола синхронизации
type Sync struct {
	// PageSize максимальный размер страницы pull-выборки
	PageSize int `env:"SYNC_PAGE_SIZE"`
	// RetentionDays горизонт хранения завершенных delete-записей очереди;
	// 0 - хранить бессрочно (очередь является единственным источником
	// информации об удалениях для pull)
	RetentionDays int `env:"SYNC_RETENTION_DAYS"`
}

func MustLoad() *Config {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	viper.AutomaticEnv()
	d := defaultConfig{
		RunAddress:    viper.GetString("run_address"),
		DatabaseURI:   viper.GetString("database_uri"),
		LogLevel:      viper.GetString("log_level"),
		Env:           viper.GetString("app_env"),
		Migrations:    viper.GetString("migrations_path"),
		PageSize:      viper.GetInt("sync_page_size"),
		RetentionDays: viper.GetInt("sync_retention_days"),
		RateLimitRPS:  viper.GetInt("rate_limit_rps"),
	}
	if d.PageSize <= 0 {
		d.PageSize = defaultPageSize
	}
	if d.RateLimitRPS <= 0 {
		d.RateLimitRPS = defaultRateLimit
	}

	config := Config{
		Env: d.Env,
		DB: DB{
			DatabaseURI: d.DatabaseURI,
			Migrations:  d.Migrations,
		},
		Server: server{
			RunAddress:   d.RunAddress,
			RateLimitRPS: d.RateLimitRPS,
		},
		Logger: logger{LogLevel: d.LogLevel},
		Sync: Sync{
			PageSize:      d.PageSize,
			RetentionDays: d.RetentionDays,
		},
	}

	return &config
}
