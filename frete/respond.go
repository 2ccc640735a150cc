package frete

import (
	"encoding/json"
	"errors"
	"net/http"

	"frete-proxy/frete/domain"
)

type errorResponse struct {
	Erro           string   `json:"erro"`
	Tipo           string   `json:"tipo"`
	Campos         []string `json:"campos,omitempty"`
	StatusUpstream int      `json:"status_upstream,omitempty"`
	CorpoUpstream  string   `json:"corpo_upstream,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// statusFor traduz a taxonomia de erro para status HTTP. O que não é entrada
// inválida, corpo grande demais, timeout ou falta de vaga cai em 500.
func statusFor(kind string) int {
	switch kind {
	case domain.KindInput:
		return http.StatusBadRequest
	case domain.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case domain.KindBusy:
		return http.StatusServiceUnavailable
	case domain.KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func newErrorResponse(err error) (int, errorResponse) {
	kind := domain.KindOf(err)
	resp := errorResponse{Erro: err.Error(), Tipo: kind}

	var inErr *domain.InputError
	if errors.As(err, &inErr) {
		resp.Campos = inErr.Fields
	}
	var httpErr *domain.UpstreamHTTPError
	if errors.As(err, &httpErr) {
		resp.StatusUpstream = httpErr.Status
		resp.CorpoUpstream = httpErr.Body
	}
	return statusFor(kind), resp
}
