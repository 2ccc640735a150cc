package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"frete-proxy/frete/domain"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const DefaultSamplerInterval = 5 * time.Second

// Faixas dos pedidos sintéticos.
const (
	minCep = 1000000
	maxCep = 99999999

	minWeight, maxWeight = 0.1, 30.0
	minWidth, maxWidth   = 11, 70
	minHeight, maxHeight = 2, 60
	minLength, maxLength = 16, 100
	minValue, maxValue   = 10.0, 2000.0
)

var ErrSamplerRunning = errors.New("amostrador já está em execução")

// Quoter é o caminho de cotação compartilhado com o handler HTTP.
type Quoter interface {
	Quote(ctx context.Context, req domain.ShipmentRequest, origin domain.Origin) ([]domain.QuoteOption, error)
}

// Sampler gera pedidos sintéticos em intervalo fixo e passa pelo mesmo fluxo
// de cotação do cliente, mantendo o cache aquecido.
//
// Nenhum lock é mantido durante a chamada à transportadora; a única disputa
// com o tráfego real é a troca atômica do slot no ResultCache e as vagas do
// Gate, que o amostrador nunca espera: sem vaga livre a iteração é pulada.
type Sampler struct {
	quoter   Quoter
	gate     Gate
	interval time.Duration
	log      *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand

	running    *atomic.Bool
	iterations *atomic.Int64
	failures   *atomic.Int64
	skipped    *atomic.Int64
}

type SamplerOption func(*Sampler)

func WithSamplerInterval(d time.Duration) SamplerOption {
	return func(s *Sampler) { s.interval = d }
}

// WithRand fixa a fonte aleatória (útil em testes).
func WithRand(r *rand.Rand) SamplerOption {
	return func(s *Sampler) { s.rng = r }
}

// WithGate divide as vagas de chamada com o tráfego real.
func WithGate(g Gate) SamplerOption {
	return func(s *Sampler) { s.gate = g }
}

func WithSamplerLogger(l *zap.Logger) SamplerOption {
	return func(s *Sampler) { s.log = l }
}

func NewSampler(q Quoter, opts ...SamplerOption) *Sampler {
	s := &Sampler{
		quoter:     q,
		interval:   DefaultSamplerInterval,
		log:        zap.NewNop(),
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		running:    atomic.NewBool(false),
		iterations: atomic.NewInt64(0),
		failures:   atomic.NewInt64(0),
		skipped:    atomic.NewInt64(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sampler) Interval() time.Duration { return s.interval }
func (s *Sampler) Iterations() int64       { return s.iterations.Load() }
func (s *Sampler) Failures() int64         { return s.failures.Load() }
func (s *Sampler) Skipped() int64          { return s.skipped.Load() }

// NextRequest sorteia um pedido plausível.
func (s *Sampler) NextRequest() domain.ShipmentRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.ShipmentRequest{
		CepOrigem:   s.cep(),
		CepDestino:  s.cep(),
		Peso:        domain.NewNumber(s.decimal(minWeight, maxWeight)),
		Valor:       domain.NewNumber(s.decimal(minValue, maxValue)),
		Largura:     domain.NewNumber(float64(s.between(minWidth, maxWidth))),
		Altura:      domain.NewNumber(float64(s.between(minHeight, maxHeight))),
		Comprimento: domain.NewNumber(float64(s.between(minLength, maxLength))),
	}
}

func (s *Sampler) cep() string {
	return fmt.Sprintf("%08d", s.between(minCep, maxCep))
}

func (s *Sampler) between(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo+1)
}

// decimal sorteia em [lo, hi] com duas casas.
func (s *Sampler) decimal(lo, hi float64) float64 {
	v := lo + s.rng.Float64()*(hi-lo)
	return math.Min(hi, math.Max(lo, math.Round(v*100)/100))
}

// RunOnce faz uma iteração. O erro já foi logado; é devolvido para testes.
// Iteração pulada por falta de vaga não conta como falha.
func (s *Sampler) RunOnce(ctx context.Context) error {
	release, ok := s.gate.TryEnter()
	if !ok {
		s.skipped.Inc()
		s.log.Debug("amostrador: sem vaga livre, iteração pulada")
		return nil
	}
	defer release()

	req := s.NextRequest()
	s.iterations.Inc()

	quotes, err := s.quoter.Quote(ctx, req, domain.OriginSampler)
	if err != nil {
		s.failures.Inc()
		s.log.Warn("amostrador: cotação falhou",
			zap.String("tipo", domain.KindOf(err)),
			zap.Error(err),
		)
		return err
	}
	s.log.Debug("amostrador: cache atualizado",
		zap.String("cep_origem", req.CepOrigem),
		zap.String("cep_destino", req.CepDestino),
		zap.Int("fretes", len(quotes)),
	)
	return nil
}

// Run roda até o ctx ser cancelado. O ritmo é controlado por um token bucket
// com uma ficha a cada interval: a primeira iteração é imediata.
func (s *Sampler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("intervalo do amostrador inválido: %s", s.interval)
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrSamplerRunning
	}
	defer s.running.Store(false)

	lim := rate.NewLimiter(rate.Every(s.interval), 1)
	for {
		if err := lim.Wait(ctx); err != nil {
			// Wait também falha quando o prazo do ctx não comporta a espera
			<-ctx.Done()
			return ctx.Err()
		}
		_ = s.RunOnce(ctx)
	}
}

// Start roda Run em uma goroutine. O canal fecha quando ela termina.
func (s *Sampler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Warn("amostrador encerrado", zap.Error(err))
		}
	}()
	return done
}
