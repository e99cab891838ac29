package domain

import "context"

// SlotPool representa um recurso com capacidade finita (ex: chamadas simultâneas
// ao modelo generativo).
//
// Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar.
// Ao adquirir, retorna uma função de release.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}
