package frete

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"frete-proxy/frete/application"
	"frete-proxy/frete/domain"
	"frete-proxy/frete/infra"

	"go.uber.org/zap"
)

const (
	LivenessMessage = "🟢 API Melhor Envio está ativa."

	maxRequestBody = 1 << 20
)

// StatsSnapshotter é implementado pelos stores de estatística do infra.
type StatsSnapshotter interface {
	Snapshot(ctx context.Context) (infra.StatsSnapshot, error)
}

type SlotsInfo interface {
	InFlight() int
	Capacity() int
}

type SamplerInfo interface {
	Iterations() int64
	Failures() int64
	Skipped() int64
}

// Handler reúne as dependências das rotas. Stats, Slots e Sampler são
// opcionais e só aparecem em /estatisticas.
type Handler struct {
	Quoter application.Quoter
	Cache  *application.ResultCache
	Log    *zap.Logger

	Stats   StatsSnapshotter
	Slots   SlotsInfo
	Sampler SamplerInfo
}

type RouterOptions struct {
	// AllowedOrigin vai em Access-Control-Allow-Origin. Vazio desliga o CORS.
	AllowedOrigin string
	// Gate limita /calcular-frete, que é quem chama a transportadora.
	Gate application.Gate
}

type quotesResponse struct {
	Fretes       []domain.QuoteOption `json:"fretes"`
	AtualizadoEm *time.Time           `json:"atualizado_em,omitempty"`
}

func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Index)
	mux.Handle("POST /calcular-frete", GateMiddleware(opts.Gate)(http.HandlerFunc(h.CalcularFrete)))
	mux.HandleFunc("GET /consultar-frete", h.ConsultarFrete)
	mux.HandleFunc("GET /fretes.json", h.ConsultarFrete)
	if h.Stats != nil {
		mux.HandleFunc("GET /estatisticas", h.Estatisticas)
	}

	out := http.Handler(mux)
	if opts.AllowedOrigin != "" {
		out = CORSMiddleware(opts.AllowedOrigin)(out)
	}
	out = AccessLogMiddleware(h.logger())(out)
	return out
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, LivenessMessage)
}

// CalcularFrete: POST /calcular-frete.
func (h *Handler) CalcularFrete(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.fail(w, r, &domain.TooLargeError{Limit: tooBig.Limit})
			return
		}
		h.fail(w, r, &domain.InputError{Reason: "corpo da requisição ilegível"})
		return
	}

	req, err := domain.ParseShipmentRequest(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	quotes, err := h.Quoter.Quote(r.Context(), req, domain.OriginCaller)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if quotes == nil {
		quotes = []domain.QuoteOption{}
	}
	writeJSON(w, http.StatusOK, quotesResponse{Fretes: quotes})
}

// ConsultarFrete: GET /consultar-frete. Nunca falha por falta de cache:
// lista vazia é a resposta esperada quando não há resultado recente.
func (h *Handler) ConsultarFrete(w http.ResponseWriter, r *http.Request) {
	resp := quotesResponse{Fretes: []domain.QuoteOption{}}
	if h.Cache != nil {
		if res, ok := h.Cache.ReadLatest(r.Context()); ok {
			if res.Fretes != nil {
				resp.Fretes = res.Fretes
			}
			resp.AtualizadoEm = &res.AtualizadoEm
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type statsResponse struct {
	Cotacoes    infra.StatsSnapshot `json:"cotacoes"`
	EmAndamento *int                `json:"em_andamento,omitempty"`
	Capacidade  *int                `json:"capacidade,omitempty"`
	Amostrador  *samplerStats       `json:"amostrador,omitempty"`
}

type samplerStats struct {
	Iteracoes int64 `json:"iteracoes"`
	Falhas    int64 `json:"falhas"`
	Puladas   int64 `json:"puladas"`
}

func (h *Handler) Estatisticas(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Stats.Snapshot(r.Context())
	if err != nil {
		h.logger().Error("falha ao ler estatísticas", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Erro: "estatísticas indisponíveis",
			Tipo: domain.KindInternal,
		})
		return
	}

	resp := statsResponse{Cotacoes: snap}
	if h.Slots != nil {
		inFlight, capacity := h.Slots.InFlight(), h.Slots.Capacity()
		resp.EmAndamento, resp.Capacidade = &inFlight, &capacity
	}
	if h.Sampler != nil {
		resp.Amostrador = &samplerStats{
			Iteracoes: h.Sampler.Iterations(),
			Falhas:    h.Sampler.Failures(),
			Puladas:   h.Sampler.Skipped(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := newErrorResponse(err)
	if status >= http.StatusInternalServerError {
		h.logger().Error("cotação falhou",
			zap.String("tipo", resp.Tipo),
			zap.Int("status_upstream", resp.StatusUpstream),
			zap.Error(err),
		)
	} else {
		h.logger().Info("pedido de cotação inválido", zap.Strings("campos", resp.Campos), zap.Error(err))
	}
	writeJSON(w, status, resp)
}

func (h *Handler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}
