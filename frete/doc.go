// Package frete fornece os handlers HTTP (net/http) do relay de fretes.
//
// Visão geral (camadas):
//
//   - domain: tipos e contratos (pedido, frete, slot, erros) sem net/http
//   - application: casos de uso (cotação, cache do último resultado, amostrador)
//   - infra: implementações concretas (arquivo, redis, memória, cliente Melhor Envio)
//   - frete (este pacote): rotas, middlewares e tradução de erro para status/JSON
//
// Fluxo:
//
//  1. POST /calcular-frete valida o pedido e chama a transportadora
//  2. o resultado é gravado no cache e devolvido ao cliente
//  3. GET /consultar-frete devolve o último resultado com até 5 minutos
//  4. o amostrador (cmd/frete-proxy) grava no mesmo cache em segundo plano
//
// Variáveis de ambiente do binário (cmd/frete-proxy) controlam o comportamento,
// como MELHOR_ENVIO_TOKEN, CACHE_BACKEND, SAMPLER_INTERVAL e CONCURRENCY_MAX.
package frete
