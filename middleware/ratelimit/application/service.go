package application

import (
	"time"

	"assistant-gateway/middleware/ratelimit/domain"
)

// Service concentra a regra de admissão do rate limit.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
// A mesma chave é usada para a decisão e para a leitura do status.
type Service struct {
	Store domain.WindowStore
	Now   func() time.Time
}

func (s Service) Decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	allowed := s.Store.CheckAndRecord(key)
	st := s.Store.Status(key)

	dec := domain.Decision{
		Allowed:    allowed,
		Remaining:  st.Remaining,
		ResetAt:    st.ResetAt,
		RetryAfter: RetryAfter(st.ResetAt, now()),
	}
	if !allowed {
		dec.Remaining = 0
	}
	return dec
}

// RetryAfter devolve ceil(resetAt-now) em segundos inteiros.
// Sem janela (resetAt zero) ou janela vencida, devolve 0.
func RetryAfter(resetAt, now time.Time) time.Duration {
	if resetAt.IsZero() {
		return 0
	}
	d := resetAt.Sub(now)
	if d <= 0 {
		return 0
	}
	secs := d / time.Second
	if d%time.Second != 0 {
		secs++
	}
	return secs * time.Second
}
