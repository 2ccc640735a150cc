package infra

import (
	"context"
	"sync"
	"time"

	"frete-proxy/frete/domain"
)

// Counters acumula idas à transportadora.
type Counters struct {
	OK     int64 `json:"ok"`
	Failed int64 `json:"falhas"`
	Quotes int64 `json:"fretes"`
}

// StatsSnapshot é a fotografia devolvida em /estatisticas, igual nos dois stores.
type StatsSnapshot struct {
	Total     Counters            `json:"total"`
	ByOrigin  map[string]Counters `json:"por_origem"`
	ByOutcome map[string]int64    `json:"por_resultado"`
	// PerMinute só é preenchido pelo RedisStatsStore com série ligada,
	// do minuto mais antigo para o atual.
	PerMinute []MinuteCounters `json:"por_minuto,omitempty"`
}

// MinuteCounters é um ponto da série por minuto.
type MinuteCounters struct {
	Minute time.Time `json:"minuto"`
	OK     int64     `json:"ok"`
	Failed int64     `json:"falhas"`
}

// MemoryStatsStore é uma implementação simples em memória.
//
// Não faz expiração: os contadores vivem enquanto o processo viver.
type MemoryStatsStore struct {
	mu        sync.Mutex
	total     Counters
	byOrigin  map[string]Counters
	byOutcome map[string]int64
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{
		byOrigin:  make(map[string]Counters),
		byOutcome: make(map[string]int64),
	}
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.QuoteEvent) error {
	origin := string(ev.Origin)

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.byOrigin[origin]
	if ev.Outcome == domain.OutcomeOK {
		s.total.OK++
		s.total.Quotes += int64(ev.Quotes)
		c.OK++
		c.Quotes += int64(ev.Quotes)
	} else {
		s.total.Failed++
		c.Failed++
	}
	s.byOrigin[origin] = c
	s.byOutcome[ev.Outcome]++
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) Snapshot(context.Context) (StatsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := StatsSnapshot{
		Total:     s.total,
		ByOrigin:  make(map[string]Counters, len(s.byOrigin)),
		ByOutcome: make(map[string]int64, len(s.byOutcome)),
	}
	for k, v := range s.byOrigin {
		out.ByOrigin[k] = v
	}
	for k, v := range s.byOutcome {
		out.ByOutcome[k] = v
	}
	return out, nil
}
