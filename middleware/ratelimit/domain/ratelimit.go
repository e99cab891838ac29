package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"errors"
	"time"
)

// Key identifica quem está sendo limitado (ex: "<client-id>-<ip>").
type Key string

// UnknownAddress é usado quando nenhum endereço de rede pode ser resolvido.
// Todos os clientes sem endereço caem no mesmo bucket.
const UnknownAddress = "unknown"

var (
	ErrInvalidWindow      = errors.New("ratelimit: window must be > 0")
	ErrInvalidMaxRequests = errors.New("ratelimit: max requests must be > 0")
)

// WindowStore é o contador de janela fixa por chave.
//
// CheckAndRecord lê, decide e incrementa numa única seção crítica.
// Status é somente leitura.
type WindowStore interface {
	CheckAndRecord(Key) bool
	Status(Key) Status
}

// Status é a cota restante da chave na janela atual.
// ResetAt zero significa que ainda não existe registro para a chave.
type Status struct {
	Remaining int
	ResetAt   time.Time
}

// HasReset informa se existe janela aberta para a chave.
func (s Status) HasReset() bool { return !s.ResetAt.IsZero() }

type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	// RetryAfter é o tempo até o fim da janela, arredondado para cima em segundos.
	// Nunca é negativo.
	RetryAfter time.Duration
}
