package infra

import (
	"context"

	"frete-proxy/frete/domain"

	"go.uber.org/atomic"
)

// MemorySlot guarda o último resultado em memória do processo.
// Store troca um ponteiro inteiro, então quem lê nunca vê valor pela metade.
type MemorySlot struct {
	v atomic.Pointer[domain.CachedResult]
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Load(context.Context) (*domain.CachedResult, error) {
	p := s.v.Load()
	if p == nil {
		return nil, nil
	}
	cp := *p
	cp.Fretes = append([]domain.QuoteOption(nil), p.Fretes...)
	return &cp, nil
}

func (s *MemorySlot) Store(_ context.Context, res domain.CachedResult) error {
	res.Fretes = append([]domain.QuoteOption(nil), res.Fretes...)
	s.v.Store(&res)
	return nil
}

func (s *MemorySlot) Clear(context.Context) error {
	s.v.Store(nil)
	return nil
}
