package frete

import (
	"net/http"

	"frete-proxy/frete/application"
)

// GateMiddleware segura uma vaga do gate enquanto o handler embrulhado roda.
// Sem vaga dentro do prazo a resposta é 503 com tipo "concorrencia".
func GateMiddleware(gate application.Gate) func(next http.Handler) http.Handler {
	if !gate.Enabled() {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, err := gate.Enter(r.Context())
			if err != nil {
				status, resp := newErrorResponse(err)
				writeJSON(w, status, resp)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
