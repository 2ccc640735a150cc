package application

import (
	"context"
	"time"

	"frete-proxy/frete/domain"

	"go.uber.org/zap"
)

// QuoteService concentra o fluxo de cotação, sem saber nada sobre HTTP:
// valida o pedido, chama a transportadora, traduz a resposta e grava no cache.
//
// É o mesmo caminho usado pelo handler de /calcular-frete e pelo Sampler.
type QuoteService struct {
	Client domain.QuoteClient
	Cache  *ResultCache
	Stats  domain.StatsStore
	Log    *zap.Logger
}

func (s QuoteService) Quote(ctx context.Context, req domain.ShipmentRequest, origin domain.Origin) ([]domain.QuoteOption, error) {
	if err := ValidateShipment(req); err != nil {
		return nil, err
	}

	log := s.logger().With(
		zap.String("origem", string(origin)),
		zap.String("cep_origem", req.CepOrigem),
		zap.String("cep_destino", req.CepDestino),
	)

	start := time.Now()
	body, err := s.Client.Calculate(ctx, BuildUpstreamPayload(req))
	if err != nil {
		s.record(ctx, origin, domain.KindOf(err), 0)
		log.Warn("falha ao consultar transportadora", zap.Error(err), zap.Duration("duracao", time.Since(start)))
		return nil, err
	}

	quotes, err := TranslateUpstreamResponse(body)
	if err != nil {
		s.record(ctx, origin, domain.KindOf(err), 0)
		log.Warn("resposta da transportadora fora do formato", zap.Error(err))
		return nil, err
	}
	s.record(ctx, origin, domain.OutcomeOK, len(quotes))
	log.Debug("cotação concluída", zap.Int("fretes", len(quotes)), zap.Duration("duracao", time.Since(start)))

	if s.Cache != nil {
		s.Cache.Write(ctx, domain.CachedResult{Pedido: req, Fretes: quotes, Origem: origin})
	}
	return quotes, nil
}

func (s QuoteService) record(ctx context.Context, origin domain.Origin, outcome string, n int) {
	if s.Stats == nil {
		return
	}
	err := s.Stats.Record(ctx, domain.QuoteEvent{
		Origin:  origin,
		Outcome: outcome,
		Quotes:  n,
		At:      time.Now(),
	})
	if err != nil {
		s.logger().Debug("falha ao registrar estatística", zap.Error(err))
	}
}

func (s QuoteService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
