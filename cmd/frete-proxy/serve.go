package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"frete-proxy/frete"
	"frete-proxy/frete/application"
	"frete-proxy/frete/domain"
	"frete-proxy/frete/infra"
	"frete-proxy/internal/logging"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// components é o grafo montado a partir da configuração, sem servidor HTTP.
type components struct {
	handler http.Handler
	cache   *application.ResultCache
	sampler *application.Sampler
	closers []func() error
}

func (c *components) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
}

func serve(ctx context.Context, cfg config) error {
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	comp, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer comp.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	janitorDone := comp.cache.StartJanitor(ctx)
	samplerDone := closedChan()
	if comp.sampler != nil {
		samplerDone = comp.sampler.Start(ctx)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           comp.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// precisa comportar o prazo da transportadora
		WriteTimeout: cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("frete-proxy escutando",
		zap.String("endereco", cfg.ListenAddr),
		zap.String("cache", cfg.CacheBackend),
		zap.Duration("cache_max_age", cfg.CacheMaxAge),
		zap.String("estatisticas", cfg.StatsBackend),
		zap.Bool("amostrador", cfg.SamplerEnabled),
		zap.Duration("amostrador_intervalo", cfg.SamplerInterval),
		zap.Int("concorrencia_max", cfg.ConcurrencyMax),
	)

	err = srv.ListenAndServe()
	cancel()
	<-janitorDone
	<-samplerDone

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("servidor http: %w", err)
	}
	log.Info("frete-proxy encerrado")
	return nil
}

// build monta cache, cliente, estatísticas, serviço, amostrador e roteador.
func build(ctx context.Context, cfg config, log *zap.Logger) (*components, error) {
	comp := &components{}

	var rdb *redis.Client
	if cfg.needsRedis() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		comp.closers = append(comp.closers, rdb.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			comp.close()
			return nil, fmt.Errorf("redis ping em %s: %w", cfg.RedisAddr, err)
		}
	}

	var durable domain.Slot
	switch cfg.CacheBackend {
	case backendFile:
		durable = infra.NewFileSlot(cfg.CacheFile)
	case backendRedis:
		durable = infra.NewRedisSlot(rdb,
			infra.WithSlotKey(cfg.CacheRedisKey),
			// a chave some sozinha depois de 2x a idade máxima
			infra.WithSlotTTL(2*cfg.CacheMaxAge),
		)
	}
	cache := application.NewResultCache(durable, infra.NewMemorySlot(),
		application.WithMaxAge(cfg.CacheMaxAge),
		application.WithSweepEvery(cfg.CacheSweepEvery),
		application.WithCacheLogger(log.Named("cache")),
	)
	comp.cache = cache

	client, err := infra.NewMelhorEnvioClient(cfg.MelhorEnvioToken,
		infra.WithURL(cfg.MelhorEnvioURL),
		infra.WithTimeout(cfg.UpstreamTimeout),
		infra.WithUserAgent(cfg.MelhorEnvioUserAgent),
	)
	if err != nil {
		comp.close()
		return nil, err
	}

	h := &frete.Handler{Cache: cache, Log: log.Named("http")}

	var stats domain.StatsStore
	switch cfg.StatsBackend {
	case backendMemory:
		mem := infra.NewMemoryStatsStore()
		stats, h.Stats = mem, mem
	case backendRedis:
		shared := infra.NewRedisStatsStore(rdb,
			infra.WithStatsPrefix(cfg.StatsPrefix),
			infra.WithStatsTTL(cfg.StatsTTL),
		)
		stats, h.Stats = shared, shared
	}

	svc := application.QuoteService{Client: client, Cache: cache, Stats: stats, Log: log.Named("cotacao")}
	h.Quoter = svc

	gate := application.Gate{WaitTimeout: cfg.ConcurrencyTimeout}
	if cfg.ConcurrencyMax > 0 {
		slots := infra.NewChanSlots(cfg.ConcurrencyMax)
		gate.Slots, h.Slots = slots, slots
	}

	if cfg.SamplerEnabled {
		comp.sampler = application.NewSampler(svc,
			application.WithGate(gate),
			application.WithSamplerInterval(cfg.SamplerInterval),
			application.WithSamplerLogger(log.Named("amostrador")),
		)
		h.Sampler = comp.sampler
	}

	comp.handler = frete.NewRouter(h, frete.RouterOptions{
		AllowedOrigin: cfg.CORSAllowedOrigin,
		Gate:          gate,
	})
	return comp, nil
}

func closedChan() <-chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}
