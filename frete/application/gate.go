package application

import (
	"context"
	"time"

	"frete-proxy/frete/domain"
)

// Gate aplica o limite de chamadas à transportadora. Slots nil desliga o limite.
type Gate struct {
	Slots domain.CallSlots
	// WaitTimeout <= 0 espera enquanto o ctx do chamador viver.
	WaitTimeout time.Duration
}

func (g Gate) Enabled() bool { return g.Slots != nil }

// Enter espera uma vaga. Estourar o WaitTimeout vira *domain.BusyError;
// cancelamento do próprio chamador devolve o erro do ctx.
func (g Gate) Enter(ctx context.Context) (func(), error) {
	if g.Slots == nil {
		return func() {}, nil
	}

	waitCtx := ctx
	if g.WaitTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, g.WaitTimeout)
		defer cancel()
	}

	start := time.Now()
	release, err := g.Slots.Acquire(waitCtx)
	if err == nil {
		return release, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, &domain.BusyError{Waited: time.Since(start)}
}

// TryEnter pega uma vaga só se houver uma livre agora.
func (g Gate) TryEnter() (func(), bool) {
	if g.Slots == nil {
		return func() {}, true
	}
	return g.Slots.TryAcquire()
}
