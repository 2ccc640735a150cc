package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"frete-proxy/frete/domain"
)

// slotFake é um Slot em memória protegido por mutex.
type slotFake struct {
	mu  sync.Mutex
	val *domain.CachedResult

	loadErr  error
	storeErr error
	stores   int
}

func (s *slotFake) Load(context.Context) (*domain.CachedResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.val == nil {
		return nil, nil
	}
	v := *s.val
	return &v, nil
}

func (s *slotFake) Store(_ context.Context, res domain.CachedResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stores++
	if s.storeErr != nil {
		return s.storeErr
	}
	s.val = &res
	return nil
}

func (s *slotFake) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.val = nil
	return nil
}

var errDiscoIndisponivel = errors.New("disco indisponível")

// clientFake responde sempre com body/err e conta as chamadas.
type clientFake struct {
	mu       sync.Mutex
	body     []byte
	err      error
	calls    int
	payloads []domain.UpstreamPayload
}

func (c *clientFake) Calculate(_ context.Context, p domain.UpstreamPayload) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.payloads = append(c.payloads, p)
	return c.body, c.err
}

func (c *clientFake) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type statsFake struct {
	mu     sync.Mutex
	events []domain.QuoteEvent
}

func (s *statsFake) Record(_ context.Context, ev domain.QuoteEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

// clock controlável.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
