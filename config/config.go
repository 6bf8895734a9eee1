package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is assembled once at startup and threaded through constructors.
// Nothing below this package reads environment variables or config files.
type Config struct {
	MySQL struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		DBName   string `mapstructure:"dbname"`
	} `mapstructure:"mysql"`

	Solana struct {
		RPCURL     string `mapstructure:"rpc_url"`
		Commitment string `mapstructure:"commitment"` // processed, confirmed or finalized
	} `mapstructure:"solana"`

	Assets []AssetConfig `mapstructure:"assets"`

	Payment struct {
		MemoMaxLen      int `mapstructure:"memo_max_len"`
		PollIntervalSec int `mapstructure:"poll_interval"`
		MaxPollAttempts int `mapstructure:"max_poll_attempts"`
	} `mapstructure:"payment"`

	Phantom struct {
		AppURL     string `mapstructure:"app_url"`     // merchant site shown by the wallet
		BaseURL    string `mapstructure:"base_url"`    // phantom universal link base
		LinkTTLHrs int    `mapstructure:"link_ttl_hrs"`
	} `mapstructure:"phantom"`

	App struct {
		Port          int    `mapstructure:"port"`
		BaseURL       string `mapstructure:"base_url"` // public URL of this service
		StatusPageURL string `mapstructure:"status_page_url"`
		PollTokenKey  string `mapstructure:"poll_token_key"`
		PollTokenTTL  int    `mapstructure:"poll_token_ttl"` // seconds
		RateLimit     int    `mapstructure:"rate_limit"`     // requests per minute per IP
		LogLevel      string `mapstructure:"log_level"`
	} `mapstructure:"app"`
}

type AssetConfig struct {
	Symbol   string `mapstructure:"symbol"`
	Mint     string `mapstructure:"mint"` // empty for the native asset
	Decimals int    `mapstructure:"decimals"`
	Native   bool   `mapstructure:"native"`
}

func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.MySQL.User, c.MySQL.Password, c.MySQL.Host, c.MySQL.Port, c.MySQL.DBName)
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Payment.PollIntervalSec) * time.Second
}

func (c *Config) LinkTTL() time.Duration {
	return time.Duration(c.Phantom.LinkTTLHrs) * time.Hour
}

func (c *Config) PollTokenTTL() time.Duration {
	return time.Duration(c.App.PollTokenTTL) * time.Second
}

// Load reads config.yaml from the working directory. A .env file, if present,
// is loaded first so ${VAR} expansion inside the yaml can see it.
func Load() (*Config, error) {
	godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Solana.RPCURL == "" {
		return nil, fmt.Errorf("solana.rpc_url is empty in config")
	}
	if cfg.App.PollTokenKey == "" {
		return nil, fmt.Errorf("app.poll_token_key is empty in config")
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("mysql.host", "localhost")
	viper.SetDefault("mysql.port", 3306)
	viper.SetDefault("solana.commitment", "confirmed")
	viper.SetDefault("payment.memo_max_len", 100)
	viper.SetDefault("payment.poll_interval", 3)
	viper.SetDefault("payment.max_poll_attempts", 5)
	viper.SetDefault("phantom.base_url", "https://phantom.app/ul/v1")
	viper.SetDefault("phantom.link_ttl_hrs", 24)
	viper.SetDefault("app.port", 8080)
	viper.SetDefault("app.poll_token_ttl", 30)
	viper.SetDefault("app.rate_limit", 60)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("assets", []map[string]any{
		{"symbol": "SOL", "decimals": 9, "native": true},
		{"symbol": "USDC", "mint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "decimals": 6},
		{"symbol": "USDT", "mint": "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", "decimals": 6},
	})
}
