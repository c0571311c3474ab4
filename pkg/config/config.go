package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"CrediTech/pkg/util"
)

// Category binds a credit category key to its central bank series and the
// synthetic base-rate range used when the series is unavailable.
type Category struct {
	Key         string  `yaml:"key"`
	SeriesID    int     `yaml:"series_id"`
	Description string  `yaml:"description"`
	BaseMin     float64 `yaml:"base_min"`
	BaseWidth   float64 `yaml:"base_width"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SlowThreshold   time.Duration `yaml:"slow_threshold"`
		RateLimit       struct {
			Capacity  float64 `yaml:"capacity"`
			RefillRPS float64 `yaml:"refill_rps"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Logging struct {
		Level     string `yaml:"level"`
		Format    string `yaml:"format"`
		Output    string `yaml:"output"`
		Collector struct {
			Enabled   bool          `yaml:"enabled"`
			Interval  time.Duration `yaml:"interval"`
			Threshold int           `yaml:"threshold"`
			Topic     string        `yaml:"topic"`
		} `yaml:"collector"`
	} `yaml:"logging"`
	BCB struct {
		BaseURL         string        `yaml:"base_url"`
		Timeout         time.Duration `yaml:"timeout"`
		Retries         int           `yaml:"retries"`
		PolicySeriesID  int           `yaml:"policy_series_id"`
		PriceSeriesID   int           `yaml:"price_series_id"`
		InterFetchDelay time.Duration `yaml:"inter_fetch_delay"`
		HistoryYears    int           `yaml:"history_years"`
		CacheTTL        time.Duration `yaml:"cache_ttl"`
	} `yaml:"bcb"`
	Analytics struct {
		Seed          int64      `yaml:"seed"`
		SyntheticDays int        `yaml:"synthetic_days"`
		Categories    []Category `yaml:"categories"`
		Training      struct {
			Epochs          int     `yaml:"epochs"`
			BatchSize       int     `yaml:"batch_size"`
			LearningRate    float64 `yaml:"learning_rate"`
			ValidationSplit float64 `yaml:"validation_split"`
			Dropout         float64 `yaml:"dropout"`
		} `yaml:"training"`
		Clustering struct {
			K             int `yaml:"k"`
			Population    int `yaml:"population"`
			MaxIterations int `yaml:"max_iterations"`
		} `yaml:"clustering"`
		HistorySamples int `yaml:"history_samples"`
	} `yaml:"analytics"`
	Cache struct {
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		EventsTopic  string   `yaml:"events_topic"`
		CommandTopic string   `yaml:"command_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
}

// DefaultCategories are the four consumer credit categories tracked by default.
func DefaultCategories() []Category {
	return []Category{
		{Key: "pessoa-fisica-credito-pessoal", SeriesID: 25497, Description: "Crédito pessoal não consignado", BaseMin: 25, BaseWidth: 15},
		{Key: "pessoa-fisica-cheque-especial", SeriesID: 25498, Description: "Cheque especial", BaseMin: 120, BaseWidth: 40},
		{Key: "pessoa-fisica-cartao-credito-rotativo", SeriesID: 25499, Description: "Cartão de crédito rotativo", BaseMin: 300, BaseWidth: 100},
		{Key: "veiculo-financiamento", SeriesID: 25503, Description: "Financiamento de veículos", BaseMin: 15, BaseWidth: 10},
	}
}

// Default returns a fully populated configuration with every optional backend disabled.
func Default() *Config {
	c := &Config{Environment: "development"}
	c.applyDefaults()
	return c
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides selected fields from the process environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CREDITECH_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("BCB_BASE_URL"); v != "" {
		c.BCB.BaseURL = v
	}
	if v := os.Getenv("ANALYTICS_SEED"); v != "" {
		if s, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Analytics.Seed = s
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.RateLimit.Capacity == 0 {
		c.Server.RateLimit.Capacity = 20
	}
	if c.Server.RateLimit.RefillRPS == 0 {
		c.Server.RateLimit.RefillRPS = 5
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.BCB.BaseURL == "" {
		c.BCB.BaseURL = "https://api.bcb.gov.br"
	}
	if c.BCB.Timeout == 0 {
		c.BCB.Timeout = 10 * time.Second
	}
	if c.BCB.PolicySeriesID == 0 {
		c.BCB.PolicySeriesID = 11
	}
	if c.BCB.PriceSeriesID == 0 {
		c.BCB.PriceSeriesID = 433
	}
	if c.BCB.InterFetchDelay == 0 {
		c.BCB.InterFetchDelay = 500 * time.Millisecond
	}
	if c.BCB.HistoryYears == 0 {
		c.BCB.HistoryYears = 5
	}
	if c.BCB.CacheTTL == 0 {
		c.BCB.CacheTTL = 6 * time.Hour
	}
	if c.Analytics.SyntheticDays == 0 {
		c.Analytics.SyntheticDays = 1825
	}
	if len(c.Analytics.Categories) == 0 {
		c.Analytics.Categories = DefaultCategories()
	}
	t := &c.Analytics.Training
	if t.Epochs == 0 {
		t.Epochs = 50
	}
	if t.BatchSize == 0 {
		t.BatchSize = 32
	}
	if t.LearningRate == 0 {
		t.LearningRate = 0.001
	}
	if t.ValidationSplit == 0 {
		t.ValidationSplit = 0.2
	}
	if t.Dropout == 0 {
		t.Dropout = 0.2
	}
	cl := &c.Analytics.Clustering
	if cl.K == 0 {
		cl.K = 5
	}
	if cl.Population == 0 {
		cl.Population = 1000
	}
	if cl.MaxIterations == 0 {
		cl.MaxIterations = 100
	}
	if c.Analytics.HistorySamples == 0 {
		c.Analytics.HistorySamples = 10000
	}
	if c.Kafka.EventsTopic == "" {
		c.Kafka.EventsTopic = "creditech.analytics.events"
	}
	if c.Kafka.CommandTopic == "" {
		c.Kafka.CommandTopic = "creditech.analytics.commands"
	}
	if c.Logging.Collector.Topic == "" {
		c.Logging.Collector.Topic = "creditech.logs.digest"
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "creditech"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Analytics.Categories) == 0 {
		return fmt.Errorf("analytics.categories cannot be empty")
	}
	seen := make(map[string]struct{}, len(c.Analytics.Categories))
	for _, cat := range c.Analytics.Categories {
		if cat.Key == "" {
			return fmt.Errorf("analytics.categories: key is required")
		}
		if _, dup := seen[cat.Key]; dup {
			return fmt.Errorf("analytics.categories: duplicate key '%s'", cat.Key)
		}
		seen[cat.Key] = struct{}{}
		if cat.BaseWidth < 0 || cat.BaseMin < 0 {
			return fmt.Errorf("analytics.categories[%s]: base range must be non-negative", cat.Key)
		}
	}
	if v := c.Analytics.Training.ValidationSplit; v < 0 || v >= 1 {
		return fmt.Errorf("analytics.training.validation_split must be in [0,1), got %v", v)
	}
	if d := c.Analytics.Training.Dropout; d < 0 || d >= 1 {
		return fmt.Errorf("analytics.training.dropout must be in [0,1), got %v", d)
	}
	if c.Analytics.Clustering.K > c.Analytics.Clustering.Population {
		return fmt.Errorf("analytics.clustering.k cannot exceed population")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	if c.Cache.Redis.Enabled && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required when redis is enabled")
	}
	return nil
}

// Category returns the configured category for key.
func (c *Config) Category(key string) (Category, bool) {
	for _, cat := range c.Analytics.Categories {
		if cat.Key == key {
			return cat, true
		}
	}
	return Category{}, false
}
