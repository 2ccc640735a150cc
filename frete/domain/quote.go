package domain

import (
	"context"
	"time"
)

// UnknownCarrier é usado quando a oferta com erro não traz o nome da transportadora.
const UnknownCarrier = "unknown"

// QuoteOption é uma oferta de frete já no formato devolvido para a loja.
// Sucesso e falha são mutuamente exclusivos: ofertas com erro carregam apenas
// Transportadora/Servico e Erro.
type QuoteOption struct {
	Transportadora string  `json:"transportadora"`
	Servico        string  `json:"servico,omitempty"`
	Preco          float64 `json:"preco,omitempty"`
	PrazoEntrega   int     `json:"prazo_entrega,omitempty"`
	Sucesso        bool    `json:"sucesso"`
	Erro           string  `json:"erro,omitempty"`
}

// Origin identifica quem disparou a cotação.
type Origin string

const (
	OriginCaller  Origin = "cliente"
	OriginSampler Origin = "amostrador"
)

// CachedResult é o último resultado calculado. Existe no máximo um por vez;
// cada escrita substitui o anterior por inteiro.
type CachedResult struct {
	Pedido       ShipmentRequest `json:"pedido"`
	Fretes       []QuoteOption   `json:"fretes"`
	AtualizadoEm time.Time       `json:"atualizado_em"`
	Origem       Origin          `json:"origem,omitempty"`
}

// Slot guarda um único CachedResult.
//
// Load devolve (nil, nil) quando o slot está vazio. Store precisa ser atômico
// do ponto de vista de quem lê: nunca um Fretes de uma escrita com o
// AtualizadoEm de outra.
type Slot interface {
	Load(ctx context.Context) (*CachedResult, error)
	Store(ctx context.Context, res CachedResult) error
	Clear(ctx context.Context) error
}

// Formato esperado pela API de cálculo da transportadora.
type UpstreamPayload struct {
	From    PostalCode     `json:"from"`
	To      PostalCode     `json:"to"`
	Package PackageSpec    `json:"package"`
	Options PayloadOptions `json:"options"`
}

type PostalCode struct {
	PostalCode string `json:"postal_code"`
}

type PackageSpec struct {
	Weight float64 `json:"weight"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Length float64 `json:"length"`
}

type PayloadOptions struct {
	InsuranceValue float64 `json:"insurance_value"`
}

// QuoteClient chama a API da transportadora e devolve o corpo bruto da resposta
// quando o status é 200. Erros seguem a taxonomia de errors.go.
type QuoteClient interface {
	Calculate(ctx context.Context, payload UpstreamPayload) ([]byte, error)
}
