// Package infra contém implementações concretas para os contratos do pacote domain.
//
// Exemplos:
//   - FileSlot / RedisSlot: slot durável do último resultado
//   - MemorySlot: fallback em memória (troca atômica de ponteiro)
//   - MelhorEnvioClient: chamada HTTP à API de cálculo de frete
//   - MemoryStatsStore / RedisStatsStore: contadores de cotação
//   - ChanSlots: vagas de chamada à transportadora (channel bufferizado)
package infra
