package infra

import (
	"context"
	"sync"
)

// ChanSlots implementa domain.CallSlots com um channel bufferizado.
type ChanSlots struct {
	sem chan struct{}
}

// NewChanSlots cria n vagas (n > 0).
func NewChanSlots(n int) *ChanSlots {
	return &ChanSlots{sem: make(chan struct{}, n)}
}

func (p *ChanSlots) Acquire(ctx context.Context) (func(), error) {
	select {
	case p.sem <- struct{}{}:
		return p.releaser(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *ChanSlots) TryAcquire() (func(), bool) {
	select {
	case p.sem <- struct{}{}:
		return p.releaser(), true
	default:
		return nil, false
	}
}

// releaser devolve a vaga uma única vez, mesmo com defer duplicado.
func (p *ChanSlots) releaser() func() {
	var once sync.Once
	return func() { once.Do(func() { <-p.sem }) }
}

func (p *ChanSlots) InFlight() int { return len(p.sem) }
func (p *ChanSlots) Capacity() int { return cap(p.sem) }
