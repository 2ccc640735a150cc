package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Dimensões padrão (cm) usadas quando o pedido não informa o pacote.
const (
	DefaultWidth  = 15.0
	DefaultHeight = 10.0
	DefaultLength = 20.0
)

var errNotNumeric = errors.New("valor não numérico")

// Number aceita tanto número JSON quanto string numérica ("2.5").
// Booleanos, objetos, strings não numéricas, NaN e infinitos são rejeitados.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return errNotNumeric
	}
	switch v := raw.(type) {
	case float64:
		*n = Number(v)
		return nil
	case string:
		if strings.TrimSpace(v) == "" {
			return errNotNumeric
		}
		f, err := cast.ToFloat64E(strings.TrimSpace(v))
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return errNotNumeric
		}
		*n = Number(f)
		return nil
	default:
		return errNotNumeric
	}
}

func (n *Number) Float() float64 {
	if n == nil {
		return 0
	}
	return float64(*n)
}

func NewNumber(v float64) *Number {
	n := Number(v)
	return &n
}

// ShipmentRequest é o pedido de cotação enviado pela loja.
type ShipmentRequest struct {
	CepOrigem   string  `json:"cep_origem" validate:"required"`
	CepDestino  string  `json:"cep_destino" validate:"required"`
	Peso        *Number `json:"peso" validate:"required"`
	Valor       *Number `json:"valor,omitempty"`
	Largura     *Number `json:"largura,omitempty"`
	Altura      *Number `json:"altura,omitempty"`
	Comprimento *Number `json:"comprimento,omitempty"`
}

// Dimensions devolve largura, altura e comprimento aplicando o pacote padrão
// (15x10x20) para o que não foi informado.
func (r ShipmentRequest) Dimensions() (width, height, length float64) {
	width, height, length = DefaultWidth, DefaultHeight, DefaultLength
	if r.Largura != nil {
		width = r.Largura.Float()
	}
	if r.Altura != nil {
		height = r.Altura.Float()
	}
	if r.Comprimento != nil {
		length = r.Comprimento.Float()
	}
	return width, height, length
}

// ParseShipmentRequest decodifica o corpo campo a campo, para que o erro
// aponte exatamente quais campos vieram com tipo inválido.
//
// Campos obrigatórios ausentes não são tratados aqui (ver validação no
// application.QuoteService).
func ParseShipmentRequest(body []byte) (ShipmentRequest, error) {
	var req ShipmentRequest
	if len(bytes.TrimSpace(body)) == 0 {
		return req, &InputError{Reason: "corpo vazio"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return req, &InputError{Reason: "JSON inválido"}
	}

	var invalid []string
	for key, raw := range fields {
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var err error
		switch key {
		case "cep_origem":
			req.CepOrigem, err = parseCep(raw)
		case "cep_destino":
			req.CepDestino, err = parseCep(raw)
		case "peso":
			req.Peso, err = parseNumber(raw)
		case "valor":
			req.Valor, err = parseNumber(raw)
		case "largura":
			req.Largura, err = parseNumber(raw)
		case "altura":
			req.Altura, err = parseNumber(raw)
		case "comprimento":
			req.Comprimento, err = parseNumber(raw)
		}
		if err != nil {
			invalid = append(invalid, key)
		}
	}

	if len(invalid) > 0 {
		sort.Strings(invalid)
		return req, &InputError{Fields: invalid, Reason: "campos com valor inválido"}
	}
	return req, nil
}

func parseCep(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func parseNumber(raw json.RawMessage) (*Number, error) {
	var n Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
