package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"frete-proxy/frete/domain"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cast"
)

// RedisStatsStore guarda os contadores de cotação em hashes do Redis, somados
// entre todas as réplicas do relay:
//
//	<prefix>:total                   ok / falhas / fretes
//	<prefix>:origem                  <origem>:<resultado> e <origem>:fretes
//	<prefix>:minuto:<yyyymmddhhmm>   série por minuto (ok / falhas), com ttl
type RedisStatsStore struct {
	rdb *redis.Client

	prefix string
	// ttl vale só para a série por minuto; os totais não expiram.
	ttl    time.Duration
	series bool
	// window é quantos minutos da série o Snapshot devolve.
	window int
	now    func() time.Time
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		if p := strings.Trim(prefix, ": "); p != "" {
			s.prefix = p
		}
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

// WithStatsSeries liga ou desliga a série por minuto.
func WithStatsSeries(on bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.series = on }
}

// WithStatsWindow define quantos minutos da série entram no Snapshot.
func WithStatsWindow(minutes int) RedisStatsOption {
	return func(s *RedisStatsStore) {
		if minutes > 0 {
			s.window = minutes
		}
	}
}

func WithStatsClock(now func() time.Time) RedisStatsOption {
	return func(s *RedisStatsStore) { s.now = now }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "frete:stats",
		ttl:    24 * time.Hour,
		series: true,
		window: 15,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) totalKey() string  { return s.prefix + ":total" }
func (s *RedisStatsStore) originKey() string { return s.prefix + ":origem" }

func (s *RedisStatsStore) minuteKey(at time.Time) string {
	return fmt.Sprintf("%s:minuto:%s", s.prefix, at.UTC().Format("200601021504"))
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.QuoteEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = s.now()
	}
	ok := ev.Outcome == domain.OutcomeOK
	field := "falhas"
	if ok {
		field = "ok"
	}

	pipe := s.rdb.TxPipeline()
	pipe.HIncrBy(ctx, s.totalKey(), field, 1)
	if ok && ev.Quotes > 0 {
		pipe.HIncrBy(ctx, s.totalKey(), "fretes", int64(ev.Quotes))
	}

	if origin := strings.TrimSpace(string(ev.Origin)); origin != "" {
		pipe.HIncrBy(ctx, s.originKey(), origin+":"+ev.Outcome, 1)
		if ok && ev.Quotes > 0 {
			pipe.HIncrBy(ctx, s.originKey(), origin+":fretes", int64(ev.Quotes))
		}
	}

	if s.series {
		key := s.minuteKey(at)
		pipe.HIncrBy(ctx, key, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Snapshot remonta os contadores no mesmo formato do MemoryStatsStore e,
// com a série ligada, acrescenta os últimos minutos (zerados quando não houve
// cotação ou a chave já expirou).
func (s *RedisStatsStore) Snapshot(ctx context.Context) (StatsSnapshot, error) {
	pipe := s.rdb.Pipeline()
	totalCmd := pipe.HGetAll(ctx, s.totalKey())
	originCmd := pipe.HGetAll(ctx, s.originKey())

	var minutes []time.Time
	var minuteCmds []*redis.MapStringStringCmd
	if s.series {
		current := s.now().UTC().Truncate(time.Minute)
		for i := s.window - 1; i >= 0; i-- {
			m := current.Add(-time.Duration(i) * time.Minute)
			minutes = append(minutes, m)
			minuteCmds = append(minuteCmds, pipe.HGetAll(ctx, s.minuteKey(m)))
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return StatsSnapshot{}, fmt.Errorf("ler estatísticas no redis: %w", err)
	}

	total := totalCmd.Val()
	snap := StatsSnapshot{
		Total: Counters{
			OK:     cast.ToInt64(total["ok"]),
			Failed: cast.ToInt64(total["falhas"]),
			Quotes: cast.ToInt64(total["fretes"]),
		},
		ByOrigin:  make(map[string]Counters),
		ByOutcome: make(map[string]int64),
	}

	for field, raw := range originCmd.Val() {
		origin, outcome, found := strings.Cut(field, ":")
		if !found {
			continue
		}
		n := cast.ToInt64(raw)
		c := snap.ByOrigin[origin]
		switch outcome {
		case "fretes":
			c.Quotes += n
		case domain.OutcomeOK:
			c.OK += n
			snap.ByOutcome[outcome] += n
		default:
			c.Failed += n
			snap.ByOutcome[outcome] += n
		}
		snap.ByOrigin[origin] = c
	}

	for i, cmd := range minuteCmds {
		v := cmd.Val()
		snap.PerMinute = append(snap.PerMinute, MinuteCounters{
			Minute: minutes[i],
			OK:     cast.ToInt64(v["ok"]),
			Failed: cast.ToInt64(v["falhas"]),
		})
	}
	return snap, nil
}
