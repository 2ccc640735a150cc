package domain

import (
	"context"
	"time"
)

// QuoteEvent representa uma ida e volta à transportadora.
//
// Outcome é "ok" ou um dos Kind* de errors.go. Cuidado com cardinalidade:
// não inclua CEP aqui.
type QuoteEvent struct {
	Origin  Origin
	Outcome string
	Quotes  int

	At time.Time
}

const OutcomeOK = "ok"

// StatsStore é a estratégia de persistência das estatísticas de cotação.
//
// Implementações podem armazenar em Redis, memória, etc.
// Quem chama trata erro como best-effort (não derruba a cotação).
type StatsStore interface {
	Record(ctx context.Context, ev QuoteEvent) error
}
