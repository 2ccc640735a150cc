package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"frete-proxy/frete/domain"
)

const (
	DefaultMelhorEnvioURL  = "https://www.melhorenvio.com.br/api/v2/me/shipment/calculate"
	DefaultUpstreamTimeout = 15 * time.Second

	maxResponseBody = 1 << 20
	maxErrorBody    = 64 << 10
)

var ErrMissingToken = errors.New("token da Melhor Envio não configurado")

// MelhorEnvioClient chama a API de cálculo de frete.
//
// Não há retry: a API é cobrada por cotação e o pedido não é idempotente do
// ponto de vista de custo. Falhas sobem na hora.
type MelhorEnvioClient struct {
	url       string
	token     string
	userAgent string
	timeout   time.Duration
	http      *http.Client
}

type ClientOption func(*MelhorEnvioClient)

func WithURL(u string) ClientOption {
	return func(c *MelhorEnvioClient) {
		if u = strings.TrimSpace(u); u != "" {
			c.url = u
		}
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *MelhorEnvioClient) { c.timeout = d }
}

func WithUserAgent(ua string) ClientOption {
	return func(c *MelhorEnvioClient) { c.userAgent = ua }
}

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *MelhorEnvioClient) { c.http = h }
}

// NewMelhorEnvioClient falha sem token: não mandamos requisição sem autenticação.
func NewMelhorEnvioClient(token string, opts ...ClientOption) (*MelhorEnvioClient, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	c := &MelhorEnvioClient{
		url:       DefaultMelhorEnvioURL,
		token:     token,
		userAgent: "frete-proxy",
		timeout:   DefaultUpstreamTimeout,
		http:      &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Calculate implementa domain.QuoteClient.
func (c *MelhorEnvioClient) Calculate(ctx context.Context, payload domain.UpstreamPayload) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializar payload: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("criar requisição: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.UpstreamHTTPError{Status: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	return body, nil
}

// transportError separa o estouro do nosso prazo de qualquer outra falha de rede.
func (c *MelhorEnvioClient) transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &domain.UpstreamTimeoutError{Timeout: c.timeout, Err: err}
	}
	return fmt.Errorf("chamada à transportadora: %w", err)
}
