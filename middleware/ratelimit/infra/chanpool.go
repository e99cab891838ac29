package infra

import (
	"context"

	"assistant-gateway/middleware/ratelimit/domain"
)

type chanPool struct {
	sem chan struct{}
}

// NewChanPool cria um pool baseado em channel com capacidade `size`.
// Um pool com size <= 0 nunca entrega vaga.
func NewChanPool(size int) domain.SlotPool {
	if size < 0 {
		size = 0
	}
	return &chanPool{sem: make(chan struct{}, size)}
}

func (p *chanPool) Acquire(ctx context.Context) (func(), bool) {
	if cap(p.sem) == 0 {
		return nil, false
	}
	select {
	case p.sem <- struct{}{}:
		return func() { <-p.sem }, true
	case <-ctx.Done():
		return nil, false
	}
}
