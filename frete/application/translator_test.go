package application

import (
	"errors"
	"testing"

	"frete-proxy/frete/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpstreamPayload_AppliesDefaultDimensions(t *testing.T) {
	p := BuildUpstreamPayload(domain.ShipmentRequest{
		CepOrigem:  "01310000",
		CepDestino: "20040002",
		Peso:       domain.NewNumber(2.5),
		Valor:      domain.NewNumber(150),
	})

	assert.Equal(t, domain.UpstreamPayload{
		From:    domain.PostalCode{PostalCode: "01310000"},
		To:      domain.PostalCode{PostalCode: "20040002"},
		Package: domain.PackageSpec{Weight: 2.5, Width: 15, Height: 10, Length: 20},
		Options: domain.PayloadOptions{InsuranceValue: 150},
	}, p)
}

func TestBuildUpstreamPayload_PassesExplicitDimensions(t *testing.T) {
	p := BuildUpstreamPayload(domain.ShipmentRequest{
		CepOrigem:   "01310000",
		CepDestino:  "20040002",
		Peso:        domain.NewNumber(1),
		Largura:     domain.NewNumber(33),
		Altura:      domain.NewNumber(4),
		Comprimento: domain.NewNumber(70),
	})

	assert.Equal(t, domain.PackageSpec{Weight: 1, Width: 33, Height: 4, Length: 70}, p.Package)
	assert.Zero(t, p.Options.InsuranceValue, "valor ausente vira 0")
}

func TestTranslateUpstreamResponse_KeepsOrderAndErroredOffers(t *testing.T) {
	body := []byte(`{"data": [
		{"name": "PAC", "price": "23.50", "delivery_time": 7, "company": {"name": "Correios"}},
		{"name": ".Com", "error": "área não atendida", "company": {"name": "Jadlog"}},
		{"name": "SEDEX", "price": 41.9, "delivery_time": "2", "company": {"name": "Correios"}},
		{"error": "serviço indisponível"}
	]}`)

	got, err := TranslateUpstreamResponse(body)
	require.NoError(t, err)

	assert.Equal(t, []domain.QuoteOption{
		{Transportadora: "Correios", Servico: "PAC", Preco: 23.5, PrazoEntrega: 7, Sucesso: true},
		{Transportadora: "Jadlog", Servico: ".Com", Erro: "área não atendida"},
		{Transportadora: "Correios", Servico: "SEDEX", Preco: 41.9, PrazoEntrega: 2, Sucesso: true},
		{Transportadora: domain.UnknownCarrier, Erro: "serviço indisponível"},
	}, got)

	for _, q := range got {
		assert.NotEqual(t, q.Sucesso, q.Erro != "", "cada oferta é sucesso ou falha, nunca os dois")
	}
}

func TestTranslateUpstreamResponse_TopLevelList(t *testing.T) {
	got, err := TranslateUpstreamResponse([]byte(`[{"name": "Mini Envios", "price": "12.00", "delivery_time": 9}]`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Mini Envios", got[0].Transportadora, "sem company usa name")
	assert.Equal(t, 12.0, got[0].Preco)
}

func TestTranslateUpstreamResponse_FalseOrEmptyErrorIsNotFailure(t *testing.T) {
	got, err := TranslateUpstreamResponse([]byte(`{"data": [
		{"name": "PAC", "price": 10, "error": null},
		{"name": "PAC", "price": 10, "error": false},
		{"name": "PAC", "price": 10, "error": ""}
	]}`))
	require.NoError(t, err)
	for _, q := range got {
		assert.True(t, q.Sucesso)
	}
}

func TestTranslateUpstreamResponse_OfferWithoutPriceIsFailure(t *testing.T) {
	got, err := TranslateUpstreamResponse([]byte(`{"data": [{"name": "PAC", "price": "grátis"}, {"name": "SEDEX"}]}`))
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, q := range got {
		assert.False(t, q.Sucesso)
		assert.Equal(t, "oferta sem preço válido", q.Erro)
	}
}

func TestTranslateUpstreamResponse_FormatErrors(t *testing.T) {
	for _, body := range []string{
		``,
		`{"message": "Unauthenticated."}`,
		`{"data": null}`,
		`{"data": "x"}`,
		`"texto"`,
		`<html></html>`,
	} {
		_, err := TranslateUpstreamResponse([]byte(body))
		var fmtErr *domain.UpstreamFormatError
		assert.True(t, errors.As(err, &fmtErr), "body %q: %v", body, err)
	}
}

func TestTranslateUpstreamResponse_EmptyCollection(t *testing.T) {
	got, err := TranslateUpstreamResponse([]byte(`{"data": []}`))
	require.NoError(t, err)
	assert.Empty(t, got)
}
