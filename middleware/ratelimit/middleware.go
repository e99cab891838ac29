package ratelimit

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"assistant-gateway/middleware/ratelimit/application"
	"assistant-gateway/middleware/ratelimit/domain"
)

const (
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"

	// ErrRateLimitExceeded é o motivo devolvido no corpo do 429.
	ErrRateLimitExceeded = "Rate limit exceeded"
)

type Options struct {
	Store domain.WindowStore
	Stats domain.StatsStore

	IdentifierFn IdentifierFunc
	Identifier   IdentifierConfig

	// Scope define os paths limitados. Padrão: PathPrefixScope("/api/").
	Scope ScopeFunc

	Logger *zap.Logger
	// DenialLogEvery limita os logs de negação a um por intervalo. Padrão 1s;
	// negativo loga toda negação.
	DenialLogEvery time.Duration

	Now func() time.Time
}

// DeniedBody é o corpo JSON da resposta 429.
type DeniedBody struct {
	Error             string `json:"error"`
	ResetTime         int64  `json:"resetTime"`
	RemainingRequests int    `json:"remainingRequests"`
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.IdentifierFn == nil {
		opts.IdentifierFn = DefaultIdentifierFunc(opts.Identifier)
	}
	if opts.Scope == nil {
		opts.Scope = PathPrefixScope("/api/")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	denialLog := &rate.Sometimes{Interval: opts.DenialLogEvery}
	switch {
	case opts.DenialLogEvery == 0:
		denialLog.Interval = time.Second
	case opts.DenialLogEvery < 0:
		denialLog = &rate.Sometimes{Every: 1}
	}

	svc := application.Service{
		Store: opts.Store,
		Now:   opts.Now,
	}
	log := opts.Logger

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.Store == nil || !opts.Scope(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := opts.IdentifierFn(r)
			log.Debug("rate limiting request", zap.String("identifier", key), zap.String("path", r.URL.Path))

			dec := svc.Decide(domain.Key(key))
			if opts.Stats != nil {
				err := opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:       domain.Key(key),
					Allowed:   dec.Allowed,
					Remaining: dec.Remaining,
					Method:    r.Method,
					Path:      r.URL.Path,
					At:        opts.Now(),
				})
				if err != nil {
					log.Warn("rate limit stats failed", zap.Error(err))
				}
			}

			if !dec.Allowed {
				denialLog.Do(func() {
					log.Info("rate limit exceeded",
						zap.String("identifier", key),
						zap.String("path", r.URL.Path),
						zap.Time("reset_at", dec.ResetAt))
				})
				writeDenied(w, dec)
				return
			}

			qw := &quotaWriter{ResponseWriter: w, dec: dec}
			next.ServeHTTP(qw, r)
			// handler que não escreveu nada ainda recebe os headers antes do 200 implícito
			qw.stamp()
		})
	}
}

func setQuotaHeaders(h http.Header, dec domain.Decision) {
	h.Set(HeaderRemaining, formatInt(dec.Remaining))
	if dec.ResetAt.IsZero() {
		h.Del(HeaderReset)
	} else {
		h.Set(HeaderReset, formatMillis(dec.ResetAt))
	}
	h.Set(HeaderRetryAfter, formatSeconds(dec.RetryAfter))
}

func writeDenied(w http.ResponseWriter, dec domain.Decision) {
	body := DeniedBody{
		Error:             ErrRateLimitExceeded,
		RemainingRequests: 0,
	}
	if !dec.ResetAt.IsZero() {
		body.ResetTime = dec.ResetAt.UnixMilli()
	}

	setQuotaHeaders(w.Header(), dec)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(body)
}

// quotaWriter carimba os headers de cota na resposta do handler seguinte,
// no momento em que o status é escrito.
type quotaWriter struct {
	http.ResponseWriter
	dec     domain.Decision
	stamped bool
}

func (qw *quotaWriter) stamp() {
	if qw.stamped {
		return
	}
	qw.stamped = true
	setQuotaHeaders(qw.ResponseWriter.Header(), qw.dec)
}

func (qw *quotaWriter) WriteHeader(code int) {
	qw.stamp()
	qw.ResponseWriter.WriteHeader(code)
}

func (qw *quotaWriter) Write(b []byte) (int, error) {
	qw.stamp()
	return qw.ResponseWriter.Write(b)
}

func (qw *quotaWriter) Flush() {
	qw.stamp()
	if f, ok := qw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (qw *quotaWriter) Unwrap() http.ResponseWriter { return qw.ResponseWriter }
