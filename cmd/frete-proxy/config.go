package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"frete-proxy/frete/application"
	"frete-proxy/frete/infra"

	"github.com/spf13/viper"
)

const (
	backendFile   = "file"
	backendRedis  = "redis"
	backendMemory = "memory"
	backendNone   = "none"
)

type config struct {
	ListenAddr string `mapstructure:"listen_addr"`
	LogLevel   string `mapstructure:"log_level"`

	MelhorEnvioToken     string        `mapstructure:"melhor_envio_token"`
	MelhorEnvioURL       string        `mapstructure:"melhor_envio_url"`
	MelhorEnvioUserAgent string        `mapstructure:"melhor_envio_user_agent"`
	UpstreamTimeout      time.Duration `mapstructure:"upstream_timeout"`

	CacheBackend    string        `mapstructure:"cache_backend"`
	CacheFile       string        `mapstructure:"cache_file"`
	CacheMaxAge     time.Duration `mapstructure:"cache_max_age"`
	CacheSweepEvery time.Duration `mapstructure:"cache_sweep_every"`
	CacheRedisKey   string        `mapstructure:"cache_redis_key"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	StatsBackend string        `mapstructure:"stats_backend"`
	StatsPrefix  string        `mapstructure:"stats_prefix"`
	StatsTTL     time.Duration `mapstructure:"stats_ttl"`

	SamplerEnabled  bool          `mapstructure:"sampler_enabled"`
	SamplerInterval time.Duration `mapstructure:"sampler_interval"`

	ConcurrencyMax     int           `mapstructure:"concurrency_max"`
	ConcurrencyTimeout time.Duration `mapstructure:"concurrency_timeout"`

	CORSAllowedOrigin string `mapstructure:"cors_allowed_origin"`
}

// setDefaults também registra todas as chaves: sem isso o AutomaticEnv não
// enxerga a variável no Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("log_level", "info")

	v.SetDefault("melhor_envio_token", "")
	v.SetDefault("melhor_envio_url", infra.DefaultMelhorEnvioURL)
	v.SetDefault("melhor_envio_user_agent", "frete-proxy")
	v.SetDefault("upstream_timeout", infra.DefaultUpstreamTimeout)

	v.SetDefault("cache_backend", backendFile)
	v.SetDefault("cache_file", "fretes.json")
	v.SetDefault("cache_max_age", application.DefaultMaxAge)
	v.SetDefault("cache_sweep_every", application.DefaultSweepEvery)
	v.SetDefault("cache_redis_key", "frete:latest")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("stats_backend", backendMemory)
	v.SetDefault("stats_prefix", "frete:stats")
	v.SetDefault("stats_ttl", 24*time.Hour)

	v.SetDefault("sampler_enabled", true)
	v.SetDefault("sampler_interval", application.DefaultSamplerInterval)

	v.SetDefault("concurrency_max", 100)
	v.SetDefault("concurrency_timeout", time.Duration(0))

	v.SetDefault("cors_allowed_origin", "*")
}

// loadConfig lê defaults, arquivo opcional e variáveis de ambiente, nessa
// ordem de precedência crescente. Flags já ligadas ao v ganham de todos.
func loadConfig(v *viper.Viper, path string) (config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("ler arquivo de configuração: %w", err)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("interpretar configuração: %w", err)
	}
	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(cfg.CacheBackend))
	cfg.StatsBackend = strings.ToLower(strings.TrimSpace(cfg.StatsBackend))

	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (c config) validate() error {
	if strings.TrimSpace(c.MelhorEnvioToken) == "" {
		return errors.New("MELHOR_ENVIO_TOKEN é obrigatório")
	}

	switch c.CacheBackend {
	case backendFile:
		if strings.TrimSpace(c.CacheFile) == "" {
			return errors.New("CACHE_FILE é obrigatório quando CACHE_BACKEND=file")
		}
	case backendRedis, backendMemory:
	default:
		return fmt.Errorf("CACHE_BACKEND inválido %q (use file, redis ou memory)", c.CacheBackend)
	}

	switch c.StatsBackend {
	case backendMemory, backendRedis, backendNone:
	default:
		return fmt.Errorf("STATS_BACKEND inválido %q (use memory, redis ou none)", c.StatsBackend)
	}

	if c.needsRedis() && strings.TrimSpace(c.RedisAddr) == "" {
		return errors.New("REDIS_ADDR é obrigatório quando algum backend é redis")
	}

	if c.UpstreamTimeout <= 0 {
		return errors.New("UPSTREAM_TIMEOUT deve ser > 0")
	}
	if c.CacheMaxAge <= 0 {
		return errors.New("CACHE_MAX_AGE deve ser > 0")
	}
	if c.CacheSweepEvery <= 0 {
		return errors.New("CACHE_SWEEP_EVERY deve ser > 0")
	}
	if c.SamplerEnabled && c.SamplerInterval <= 0 {
		return errors.New("SAMPLER_INTERVAL deve ser > 0")
	}
	if c.ConcurrencyMax < 0 {
		return errors.New("CONCURRENCY_MAX deve ser >= 0")
	}
	if c.ConcurrencyTimeout < 0 {
		return errors.New("CONCURRENCY_TIMEOUT deve ser >= 0")
	}
	return nil
}

func (c config) needsRedis() bool {
	return c.CacheBackend == backendRedis || c.StatsBackend == backendRedis
}
