// Package ratelimit fornece adapters HTTP (net/http) para rate limit de janela fixa
// e limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela fixa, semáforo, estatísticas)
//   - ratelimit (este pacote): middlewares HTTP + resolução do identificador +
//     tradução para status/headers
//
// Fluxo no gateway:
//
//  1. Verifica se o path está no escopo (por padrão /api/); fora do escopo segue direto
//  2. Resolve o identificador do cliente (X-Client-ID + IP via headers)
//  3. Chama a camada application para obter a decisão
//  4. Se bloqueado, responde 429 com corpo JSON e headers de cota
//  5. Se permitido, chama o próximo handler e carimba os headers de cota na resposta
//
// Headers escritos em toda resposta no escopo: X-RateLimit-Remaining,
// X-RateLimit-Reset (epoch em ms) e Retry-After (segundos).
package ratelimit
