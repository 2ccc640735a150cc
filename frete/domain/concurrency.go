package domain

import "context"

// CallSlots limita quantas chamadas à transportadora ficam em voo. A mesma
// instância é dividida entre /calcular-frete e o amostrador.
type CallSlots interface {
	// Acquire espera uma vaga até o ctx encerrar. O release pode ser
	// chamado mais de uma vez.
	Acquire(ctx context.Context) (release func(), err error)
	// TryAcquire nunca espera.
	TryAcquire() (release func(), ok bool)
}
