package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Tipos de erro expostos na resposta HTTP e nas estatísticas.
const (
	KindInput           = "entrada_invalida"
	KindTooLarge        = "corpo_grande_demais"
	KindUpstreamHTTP    = "upstream_http"
	KindUpstreamFormat  = "upstream_formato"
	KindUpstreamTimeout = "upstream_timeout"
	KindBusy            = "concorrencia"
	KindInternal        = "interno"
)

// InputError: campo obrigatório ausente ou com valor inválido. Vira 400.
type InputError struct {
	Fields []string
	Reason string
}

func (e *InputError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	return e.Reason + ": " + strings.Join(e.Fields, ", ")
}

// TooLargeError: o corpo do pedido passou do limite aceito. Vira 413.
type TooLargeError struct {
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("corpo da requisição maior que %d bytes", e.Limit)
}

// UpstreamHTTPError: a transportadora respondeu com status diferente de 200.
type UpstreamHTTPError struct {
	Status int
	Body   string
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("transportadora respondeu com status %d", e.Status)
}

// UpstreamFormatError: status 200, mas o corpo não tem a coleção de ofertas.
// Separado do UpstreamHTTPError para distinguir "transportadora fora" de
// "API da transportadora mudou".
type UpstreamFormatError struct {
	Reason string
	Err    error
}

func (e *UpstreamFormatError) Error() string {
	if e.Err != nil {
		return "resposta da transportadora em formato inesperado: " + e.Reason + ": " + e.Err.Error()
	}
	return "resposta da transportadora em formato inesperado: " + e.Reason
}

func (e *UpstreamFormatError) Unwrap() error { return e.Err }

// UpstreamTimeoutError: a chamada passou do prazo configurado.
type UpstreamTimeoutError struct {
	Timeout time.Duration
	Err     error
}

func (e *UpstreamTimeoutError) Error() string {
	return fmt.Sprintf("transportadora não respondeu em %s", e.Timeout)
}

func (e *UpstreamTimeoutError) Unwrap() error { return e.Err }

// BusyError: todas as vagas de chamada à transportadora ficaram ocupadas
// durante o prazo de espera. Vira 503.
type BusyError struct {
	Waited time.Duration
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("muitas cotações em andamento, tente novamente (esperou %s)", e.Waited.Round(time.Millisecond))
}

// KindOf classifica um erro na taxonomia acima.
func KindOf(err error) string {
	var (
		inErr  *InputError
		big    *TooLargeError
		httpEr *UpstreamHTTPError
		fmtErr *UpstreamFormatError
		toErr  *UpstreamTimeoutError
		busy   *BusyError
	)
	switch {
	case errors.As(err, &inErr):
		return KindInput
	case errors.As(err, &big):
		return KindTooLarge
	case errors.As(err, &httpEr):
		return KindUpstreamHTTP
	case errors.As(err, &fmtErr):
		return KindUpstreamFormat
	case errors.As(err, &toErr):
		return KindUpstreamTimeout
	case errors.As(err, &busy):
		return KindBusy
	default:
		return KindInternal
	}
}
