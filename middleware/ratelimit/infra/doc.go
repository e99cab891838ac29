// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - FixedWindowStore: contador de janela fixa por chave, com janitor opcional
//   - MemoryStatsStore / RedisStatsStore / PrometheusStatsStore: estatísticas de decisão
//   - ChanPool: semáforo simples para limite de concorrência
package infra
