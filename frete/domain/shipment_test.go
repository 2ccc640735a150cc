package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_AcceptsNumberAndNumericString(t *testing.T) {
	var v struct {
		A Number `json:"a"`
		B Number `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 2.5, "b": " 150 "}`), &v))
	assert.Equal(t, Number(2.5), v.A)
	assert.Equal(t, Number(150), v.B)
}

func TestNumber_RejectsNonNumeric(t *testing.T) {
	for _, raw := range []string{`"abc"`, `""`, `true`, `{}`, `[1]`, `"NaN"`, `"Inf"`, `"-Infinity"`, `" +inf "`} {
		var n Number
		assert.Error(t, json.Unmarshal([]byte(raw), &n), raw)
	}
}

func TestParseShipmentRequest_ParsesAllFields(t *testing.T) {
	req, err := ParseShipmentRequest([]byte(`{
		"cep_origem": " 01310000 ",
		"cep_destino": "20040002",
		"peso": 2.5,
		"valor": "150",
		"largura": 30,
		"campo_extra": "ignorado"
	}`))
	require.NoError(t, err)

	assert.Equal(t, "01310000", req.CepOrigem)
	assert.Equal(t, "20040002", req.CepDestino)
	assert.Equal(t, 2.5, req.Peso.Float())
	assert.Equal(t, 150.0, req.Valor.Float())
	assert.Equal(t, 30.0, req.Largura.Float())
	assert.Nil(t, req.Altura)
	assert.Nil(t, req.Comprimento)
}

func TestParseShipmentRequest_NamesInvalidFields(t *testing.T) {
	_, err := ParseShipmentRequest([]byte(`{"cep_origem": 1310000, "peso": "pesado", "valor": 10}`))

	var inErr *InputError
	require.True(t, errors.As(err, &inErr))
	assert.Equal(t, []string{"cep_origem", "peso"}, inErr.Fields)
}

func TestParseShipmentRequest_NullCountsAsAbsent(t *testing.T) {
	req, err := ParseShipmentRequest([]byte(`{"cep_origem": "01310000", "peso": null}`))
	require.NoError(t, err)
	assert.Nil(t, req.Peso)
}

func TestParseShipmentRequest_RejectsEmptyAndMalformedBody(t *testing.T) {
	for _, body := range []string{``, `   `, `{`, `[1,2]`} {
		_, err := ParseShipmentRequest([]byte(body))
		var inErr *InputError
		assert.True(t, errors.As(err, &inErr), "body %q", body)
	}
}

func TestShipmentRequest_DimensionsDefaults(t *testing.T) {
	w, h, l := ShipmentRequest{}.Dimensions()
	assert.Equal(t, [3]float64{15, 10, 20}, [3]float64{w, h, l})

	w, h, l = ShipmentRequest{Largura: NewNumber(40), Altura: NewNumber(0), Comprimento: NewNumber(55)}.Dimensions()
	assert.Equal(t, [3]float64{40, 0, 55}, [3]float64{w, h, l})
}
