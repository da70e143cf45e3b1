package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Google     GoogleConfig     `yaml:"google"`
	Redis      RedisConfig      `yaml:"redis"`
	Namelist   NamelistConfig   `yaml:"namelist"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Exports    ExportConfig     `yaml:"exports"`
	Managers   []int64          `yaml:"managers"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
	// Base URL of the rationbook API the bot talks to.
	APIBaseURL string `yaml:"api_base_url"`
}

type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	RationsSheet    string `yaml:"rations_sheet"`
	NamelistSheet   string `yaml:"namelist_sheet"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type NamelistConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `yaml:"prometheus_enabled"`
	PrometheusPort    int    `yaml:"prometheus_port"`
	LogLevel          string `yaml:"log_level"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

// Load reads the YAML config with environment variables expanded. A .env
// file beside the binary is applied first when present.
func Load(configPath string) (*Config, error) {
	// .env is optional; system environment wins when it is missing.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	if config.Namelist.CacheTTLSeconds == 0 {
		config.Namelist.CacheTTLSeconds = 60
	}
	if config.Google.RationsSheet == "" {
		config.Google.RationsSheet = "Rations"
	}
	if config.Google.NamelistSheet == "" {
		config.Google.NamelistSheet = "Namelist"
	}

	return &config, nil
}
