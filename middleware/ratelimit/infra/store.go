package infra

import (
	"context"
	"fmt"
	"sync"
	"time"

	"assistant-gateway/middleware/ratelimit/domain"
)

// FixedWindowStore é o contador de janela fixa por chave, em memória.
//
// Cada chave tem no máximo um registro. A janela começa no primeiro request e
// termina em resetAt; o próximo request em ou depois de resetAt recria o registro
// com count=1. Requests negados não incrementam o contador.
//
// Perto da virada da janela passam até 2x maxRequests num intervalo curto
// (N antes do reset, N logo depois). Esse é o comportamento esperado de janela fixa.
type FixedWindowStore struct {
	mu          sync.Mutex
	records     map[domain.Key]*windowRecord
	window      time.Duration
	maxRequests int
	sweepEvery  time.Duration
	now         func() time.Time
}

type windowRecord struct {
	count   int
	resetAt time.Time
}

type StoreOption func(*FixedWindowStore)

// WithClock troca a fonte de tempo (testes).
func WithClock(now func() time.Time) StoreOption {
	return func(s *FixedWindowStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSweepEvery define o intervalo do janitor. 0 desliga a varredura periódica;
// a expiração preguiçosa no acesso continua valendo.
func WithSweepEvery(d time.Duration) StoreOption {
	return func(s *FixedWindowStore) { s.sweepEvery = d }
}

func NewFixedWindowStore(window time.Duration, maxRequests int, opts ...StoreOption) (*FixedWindowStore, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w (got %s)", domain.ErrInvalidWindow, window)
	}
	if maxRequests <= 0 {
		return nil, fmt.Errorf("%w (got %d)", domain.ErrInvalidMaxRequests, maxRequests)
	}
	s := &FixedWindowStore{
		records:     make(map[domain.Key]*windowRecord),
		window:      window,
		maxRequests: maxRequests,
		sweepEvery:  window,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *FixedWindowStore) Window() time.Duration { return s.window }
func (s *FixedWindowStore) MaxRequests() int { return s.maxRequests }
func (s *FixedWindowStore) SweepEvery() time.Duration { return s.sweepEvery }

// CheckAndRecord implementa domain.WindowStore.
func (s *FixedWindowStore) CheckAndRecord(key domain.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.records[key]
	if !ok || !now.Before(rec.resetAt) {
		s.records[key] = &windowRecord{count: 1, resetAt: now.Add(s.window)}
		return true
	}
	if rec.count >= s.maxRequests {
		return false
	}
	rec.count++
	return true
}

// Status implementa domain.WindowStore. Não altera o registro.
func (s *FixedWindowStore) Status(key domain.Key) domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return domain.Status{Remaining: s.maxRequests}
	}
	return domain.Status{
		Remaining: max(0, s.maxRequests-rec.count),
		ResetAt:   rec.resetAt,
	}
}

// Len devolve quantas chaves estão sendo rastreadas.
func (s *FixedWindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Sweep remove registros cuja janela já terminou e devolve quantos removeu.
func (s *FixedWindowStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for k, rec := range s.records {
		if !now.Before(rec.resetAt) {
			delete(s.records, k)
			removed++
		}
	}
	return removed
}

// StartJanitor inicia uma goroutine que varre registros expirados periodicamente.
// Pare cancelando o contexto.
func (s *FixedWindowStore) StartJanitor(ctx context.Context) {
	if s.sweepEvery <= 0 {
		return
	}

	t := time.NewTicker(s.sweepEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Sweep()
			}
		}
	}()
}
