package application

import (
	"context"
	"time"

	"frete-proxy/frete/domain"

	"go.uber.org/zap"
)

const (
	DefaultMaxAge     = 5 * time.Minute
	DefaultSweepEvery = 5 * time.Minute
)

// ResultCache guarda o último resultado de cotação em duas camadas:
// um slot durável (arquivo ou redis) e um slot em memória usado como
// fallback quando o durável está ilegível ou indisponível.
//
// Falha de armazenamento nunca sobe para quem chamou: é logada e a leitura
// degrada para a memória ou para vazio.
type ResultCache struct {
	durable domain.Slot
	memory  domain.Slot

	maxAge     time.Duration
	sweepEvery time.Duration
	now        func() time.Time
	log        *zap.Logger
}

type CacheOption func(*ResultCache)

func WithMaxAge(d time.Duration) CacheOption {
	return func(c *ResultCache) { c.maxAge = d }
}

func WithSweepEvery(d time.Duration) CacheOption {
	return func(c *ResultCache) { c.sweepEvery = d }
}

func WithClock(now func() time.Time) CacheOption {
	return func(c *ResultCache) { c.now = now }
}

func WithCacheLogger(l *zap.Logger) CacheOption {
	return func(c *ResultCache) { c.log = l }
}

// NewResultCache cria o cache. durable pode ser nil (só memória).
func NewResultCache(durable, memory domain.Slot, opts ...CacheOption) *ResultCache {
	c := &ResultCache{
		durable:    durable,
		memory:     memory,
		maxAge:     DefaultMaxAge,
		sweepEvery: DefaultSweepEvery,
		now:        time.Now,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ResultCache) MaxAge() time.Duration     { return c.maxAge }
func (c *ResultCache) SweepEvery() time.Duration { return c.sweepEvery }

// Write substitui o valor guardado e carimba AtualizadoEm com o relógio do cache.
// Devolve o valor como foi gravado.
func (c *ResultCache) Write(ctx context.Context, res domain.CachedResult) domain.CachedResult {
	// a gravação não deve ser abortada porque o cliente desconectou
	ctx = context.WithoutCancel(ctx)

	res.AtualizadoEm = c.now().Round(0)
	res.Fretes = append([]domain.QuoteOption(nil), res.Fretes...)

	if err := c.memory.Store(ctx, res); err != nil {
		c.log.Warn("falha ao gravar slot em memória", zap.Error(err))
	}
	if c.durable != nil {
		if err := c.durable.Store(ctx, res); err != nil {
			c.log.Warn("falha ao gravar slot durável; leitura usará a memória", zap.Error(err))
		}
	}
	return res
}

// Read devolve o último resultado se ele tiver no máximo maxAge.
// Valor vencido não é apagado aqui: só a próxima escrita ou o Sweep o removem.
func (c *ResultCache) Read(ctx context.Context, maxAge time.Duration) (domain.CachedResult, bool) {
	latest := c.load(ctx)
	if latest == nil {
		return domain.CachedResult{}, false
	}
	if c.now().Sub(latest.AtualizadoEm) > maxAge {
		return domain.CachedResult{}, false
	}
	return *latest, true
}

// ReadLatest é o Read com o maxAge configurado (padrão 5 minutos).
func (c *ResultCache) ReadLatest(ctx context.Context) (domain.CachedResult, bool) {
	return c.Read(ctx, c.maxAge)
}

// load lê as duas camadas. Se ambas tiverem valor, vence o mais novo: uma
// gravação durável que falhou não pode ressuscitar um valor antigo do disco.
func (c *ResultCache) load(ctx context.Context) *domain.CachedResult {
	var durable *domain.CachedResult
	if c.durable != nil {
		v, err := c.durable.Load(ctx)
		if err != nil {
			c.log.Warn("slot durável ilegível; usando memória", zap.Error(err))
		} else {
			durable = v
		}
	}

	mem, err := c.memory.Load(ctx)
	if err != nil {
		c.log.Warn("falha ao ler slot em memória", zap.Error(err))
		mem = nil
	}

	switch {
	case durable == nil:
		return mem
	case mem == nil:
		return durable
	case mem.AtualizadoEm.After(durable.AtualizadoEm):
		return mem
	default:
		return durable
	}
}

// Sweep esvazia as duas camadas.
func (c *ResultCache) Sweep(ctx context.Context) {
	if c.durable != nil {
		if err := c.durable.Clear(ctx); err != nil {
			c.log.Warn("falha ao limpar slot durável", zap.Error(err))
		}
	}
	if err := c.memory.Clear(ctx); err != nil {
		c.log.Warn("falha ao limpar slot em memória", zap.Error(err))
	}
}

// StartJanitor inicia uma goroutine que chama Sweep a cada sweepEvery.
// Pare cancelando o contexto; o canal devolvido fecha quando a goroutine termina.
func (c *ResultCache) StartJanitor(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if c.sweepEvery <= 0 {
		close(done)
		return done
	}

	t := time.NewTicker(c.sweepEvery)
	go func() {
		defer close(done)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				c.Sweep(ctx)
				c.log.Debug("cache de fretes limpo")
			}
		}
	}()
	return done
}
