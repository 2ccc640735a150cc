package application

import (
	"bytes"
	"encoding/json"
	"strings"

	"frete-proxy/frete/domain"

	"github.com/spf13/cast"
)

// BuildUpstreamPayload monta o corpo esperado pela API de cálculo.
// Dimensões ausentes caem no pacote padrão (15x10x20 cm). Sem efeitos colaterais.
func BuildUpstreamPayload(req domain.ShipmentRequest) domain.UpstreamPayload {
	width, height, length := req.Dimensions()
	return domain.UpstreamPayload{
		From: domain.PostalCode{PostalCode: req.CepOrigem},
		To:   domain.PostalCode{PostalCode: req.CepDestino},
		Package: domain.PackageSpec{
			Weight: req.Peso.Float(),
			Width:  width,
			Height: height,
			Length: length,
		},
		Options: domain.PayloadOptions{InsuranceValue: req.Valor.Float()},
	}
}

type upstreamOffer struct {
	Name         string          `json:"name"`
	Price        any             `json:"price"`
	DeliveryTime any             `json:"delivery_time"`
	Error        json.RawMessage `json:"error"`
	Company      *struct {
		Name string `json:"name"`
	} `json:"company"`
}

// TranslateUpstreamResponse converte o corpo da transportadora na lista de fretes.
//
// Aceita {"data": [...]} ou uma lista no topo. Sem a coleção de ofertas devolve
// *domain.UpstreamFormatError. A ordem das ofertas é mantida e nenhuma é
// descartada: ofertas com erro viram entradas com Sucesso=false.
func TranslateUpstreamResponse(body []byte) ([]domain.QuoteOption, error) {
	offers, err := extractOffers(body)
	if err != nil {
		return nil, err
	}

	out := make([]domain.QuoteOption, 0, len(offers))
	for _, raw := range offers {
		var o upstreamOffer
		if err := json.Unmarshal(raw, &o); err != nil {
			out = append(out, domain.QuoteOption{
				Transportadora: domain.UnknownCarrier,
				Erro:           "oferta ilegível",
			})
			continue
		}
		out = append(out, o.toQuote())
	}
	return out, nil
}

func extractOffers(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, &domain.UpstreamFormatError{Reason: "corpo vazio"}
	}

	switch trimmed[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, &domain.UpstreamFormatError{Reason: "lista de ofertas inválida", Err: err}
		}
		return list, nil
	case '{':
		var env struct {
			Data *[]json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, &domain.UpstreamFormatError{Reason: "campo data inválido", Err: err}
		}
		if env.Data == nil {
			return nil, &domain.UpstreamFormatError{Reason: "campo data ausente"}
		}
		return *env.Data, nil
	default:
		return nil, &domain.UpstreamFormatError{Reason: "corpo não é JSON de ofertas"}
	}
}

func (o upstreamOffer) carrier() string {
	if o.Company != nil && strings.TrimSpace(o.Company.Name) != "" {
		return o.Company.Name
	}
	if strings.TrimSpace(o.Name) != "" {
		return o.Name
	}
	return domain.UnknownCarrier
}

func (o upstreamOffer) toQuote() domain.QuoteOption {
	q := domain.QuoteOption{Transportadora: o.carrier(), Servico: o.Name}

	if reason, failed := errorReason(o.Error); failed {
		q.Erro = reason
		return q
	}

	price, err := cast.ToFloat64E(o.Price)
	if o.Price == nil || err != nil {
		q.Erro = "oferta sem preço válido"
		return q
	}

	q.Sucesso = true
	q.Preco = price
	q.PrazoEntrega = cast.ToInt(o.DeliveryTime)
	return q
}

// errorReason interpreta o marcador "error" da oferta. Ausente, null, false ou
// string vazia contam como sem erro.
func errorReason(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw), true
	}
	switch e := v.(type) {
	case nil:
		return "", false
	case bool:
		if !e {
			return "", false
		}
		return "erro não informado", true
	case string:
		if strings.TrimSpace(e) == "" {
			return "", false
		}
		return e, true
	default:
		return string(raw), true
	}
}
