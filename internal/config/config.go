// Package config carrega a configuração do gateway: defaults, arquivo YAML opcional,
// .env opcional e variáveis de ambiente (nessa ordem de precedência crescente).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Site        SiteConfig        `mapstructure:"site"`
	RateLimiter RateLimiterConfig `mapstructure:"rate_limiter"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency"`
	Stats       StatsConfig       `mapstructure:"stats"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Assistant   AssistantConfig   `mapstructure:"assistant"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	UpstreamURL string            `mapstructure:"upstream_url"`
}

type ServerConfig struct {
	ListenAddr        string        `mapstructure:"listen_addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type SiteConfig struct {
	Origin string `mapstructure:"origin"`
	Dev    bool   `mapstructure:"dev"`
}

// RateLimiterConfig é fixo durante a vida do processo.
type RateLimiterConfig struct {
	WindowMs             int64         `mapstructure:"window_ms"`
	MaxRequestsPerWindow int           `mapstructure:"max_requests_per_window"`
	ScopePrefixes        []string      `mapstructure:"scope_prefixes"`
	SweepInterval        time.Duration `mapstructure:"sweep_interval"`
	ClientIDHeader       string        `mapstructure:"client_id_header"`
	AddressHeaders       []string      `mapstructure:"address_headers"`
	UseRemoteAddr        bool          `mapstructure:"use_remote_addr"`
	DenialLogEvery       time.Duration `mapstructure:"denial_log_every"`
}

func (c RateLimiterConfig) Window() time.Duration {
	return time.Duration(c.WindowMs) * time.Millisecond
}

type ConcurrencyConfig struct {
	Max     int           `mapstructure:"max"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StatsConfig struct {
	Memory MemoryStatsConfig `mapstructure:"memory"`
	Redis  RedisStatsConfig  `mapstructure:"redis"`
}

type MemoryStatsConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	TrackKeys bool `mapstructure:"track_keys"`
}

type RedisStatsConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	Prefix    string        `mapstructure:"prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
	Bucket    string        `mapstructure:"bucket"`
	TrackKeys bool          `mapstructure:"track_keys"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type AssistantConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	GoogleAPIKey      string `mapstructure:"google_api_key"`
	ModelID           string `mapstructure:"model_id"`
	ResumeURL         string `mapstructure:"resume_url"`
	ResumeCacheMs     int64  `mapstructure:"resume_cache_ms"`
	SystemInstruction string `mapstructure:"system_instruction"`
}

func (c AssistantConfig) ResumeCacheDuration() time.Duration {
	return time.Duration(c.ResumeCacheMs) * time.Millisecond
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Dev   bool   `mapstructure:"dev"`
}

var (
	ErrInvalidWindow      = errors.New("rate_limiter.window_ms must be > 0")
	ErrInvalidMaxRequests = errors.New("rate_limiter.max_requests_per_window must be > 0")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.idle_timeout", 90*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("site.origin", "")
	v.SetDefault("site.dev", false)

	v.SetDefault("rate_limiter.window_ms", 60_000)
	v.SetDefault("rate_limiter.max_requests_per_window", 10)
	v.SetDefault("rate_limiter.scope_prefixes", []string{"/api/"})
	v.SetDefault("rate_limiter.sweep_interval", 0)
	v.SetDefault("rate_limiter.client_id_header", "X-Client-ID")
	v.SetDefault("rate_limiter.address_headers", []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"})
	v.SetDefault("rate_limiter.use_remote_addr", false)
	v.SetDefault("rate_limiter.denial_log_every", time.Second)

	v.SetDefault("concurrency.max", 100)
	v.SetDefault("concurrency.timeout", 0)

	v.SetDefault("stats.memory.enabled", true)
	v.SetDefault("stats.memory.track_keys", false)
	v.SetDefault("stats.redis.enabled", false)
	v.SetDefault("stats.redis.addr", "")
	v.SetDefault("stats.redis.password", "")
	v.SetDefault("stats.redis.db", 0)
	v.SetDefault("stats.redis.prefix", "ratelimit:stats")
	v.SetDefault("stats.redis.ttl", 24*time.Hour)
	v.SetDefault("stats.redis.bucket", "minute")
	v.SetDefault("stats.redis.track_keys", false)

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("assistant.enabled", true)
	v.SetDefault("assistant.google_api_key", "")
	v.SetDefault("assistant.model_id", "gemini-2.0-flash")
	v.SetDefault("assistant.resume_url", "")
	v.SetDefault("assistant.resume_cache_ms", 3_600_000)
	v.SetDefault("assistant.system_instruction", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.dev", false)

	v.SetDefault("upstream_url", "")
}

// nomes de variáveis herdados do site, além do mapeamento automático (a.b -> A_B).
var legacyEnv = map[string][]string{
	"assistant.google_api_key":  {"GOOGLE_API_KEY"},
	"assistant.model_id":        {"GOOGLE_AI_MODEL_ID"},
	"assistant.resume_url":      {"RESUME_URL"},
	"assistant.resume_cache_ms": {"RESUME_CACHE_DURATION"},
	"site.origin":               {"SITE_ORIGIN"},
	"upstream_url":              {"UPSTREAM_URL"},
	"server.listen_addr":        {"LISTEN_ADDR"},
}

// Load monta a configuração. configPath e envFile são opcionais; um envFile
// inexistente é ignorado, um configPath inexistente é erro.
func Load(configPath, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, envKey}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate recusa configurações que desligariam o rate limit em silêncio.
func (c *Config) Validate() error {
	var errs []error
	if c.RateLimiter.WindowMs <= 0 {
		errs = append(errs, fmt.Errorf("%w (got %d)", ErrInvalidWindow, c.RateLimiter.WindowMs))
	}
	if c.RateLimiter.MaxRequestsPerWindow <= 0 {
		errs = append(errs, fmt.Errorf("%w (got %d)", ErrInvalidMaxRequests, c.RateLimiter.MaxRequestsPerWindow))
	}
	if len(c.RateLimiter.ScopePrefixes) == 0 {
		errs = append(errs, errors.New("rate_limiter.scope_prefixes must not be empty"))
	}
	if c.Concurrency.Max < 0 {
		errs = append(errs, errors.New("concurrency.max must be >= 0"))
	}
	if c.Stats.Redis.Enabled && strings.TrimSpace(c.Stats.Redis.Addr) == "" {
		errs = append(errs, errors.New("stats.redis.addr is required when stats.redis.enabled=true"))
	}
	if c.Assistant.Enabled {
		if c.Assistant.GoogleAPIKey == "" {
			errs = append(errs, errors.New("assistant.google_api_key (GOOGLE_API_KEY) is required when the assistant is enabled"))
		}
		if c.Assistant.ResumeURL == "" {
			errs = append(errs, errors.New("assistant.resume_url (RESUME_URL) is required when the assistant is enabled"))
		}
		if c.Assistant.ResumeCacheMs < 0 {
			errs = append(errs, errors.New("assistant.resume_cache_ms must be >= 0"))
		}
	}
	return errors.Join(errs...)
}
