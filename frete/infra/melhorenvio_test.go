package infra

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"frete-proxy/frete/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var payload = domain.UpstreamPayload{
	From:    domain.PostalCode{PostalCode: "01310000"},
	To:      domain.PostalCode{PostalCode: "20040002"},
	Package: domain.PackageSpec{Weight: 2.5, Width: 15, Height: 10, Length: 20},
	Options: domain.PayloadOptions{InsuranceValue: 150},
}

func TestNewMelhorEnvioClient_RequiresToken(t *testing.T) {
	_, err := NewMelhorEnvioClient("  ")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestMelhorEnvioClient_SendsAuthenticatedJSON(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer segredo", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "loja (contato@loja.com.br)", r.Header.Get("User-Agent"))

		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_, _ = io.WriteString(w, `{"data": []}`)
	}))
	defer srv.Close()

	c, err := NewMelhorEnvioClient("segredo", WithURL(srv.URL), WithUserAgent("loja (contato@loja.com.br)"))
	require.NoError(t, err)

	body, err := c.Calculate(context.Background(), payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data": []}`, string(body))

	assert.Equal(t, map[string]any{
		"from":    map[string]any{"postal_code": "01310000"},
		"to":      map[string]any{"postal_code": "20040002"},
		"package": map[string]any{"weight": 2.5, "width": 15.0, "height": 10.0, "length": 20.0},
		"options": map[string]any{"insurance_value": 150.0},
	}, gotBody)
}

func TestMelhorEnvioClient_NonOKIsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Unauthenticated."}`)
	}))
	defer srv.Close()

	c, err := NewMelhorEnvioClient("segredo", WithURL(srv.URL))
	require.NoError(t, err)

	_, err = c.Calculate(context.Background(), payload)
	var httpErr *domain.UpstreamHTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
	assert.Equal(t, `{"message":"Unauthenticated."}`, httpErr.Body)
}

func TestMelhorEnvioClient_TimeoutIsDistinct(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewMelhorEnvioClient("segredo", WithURL(srv.URL), WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = c.Calculate(context.Background(), payload)
	var toErr *domain.UpstreamTimeoutError
	require.True(t, errors.As(err, &toErr), "got %v", err)
	assert.Equal(t, 20*time.Millisecond, toErr.Timeout)
	assert.Equal(t, domain.KindUpstreamTimeout, domain.KindOf(err))
}

func TestMelhorEnvioClient_ConnectionRefusedIsNotTimeout(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewMelhorEnvioClient("segredo", WithURL(url))
	require.NoError(t, err)

	_, err = c.Calculate(context.Background(), payload)
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}
