package assistant

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ResumeSource devolve o PDF do currículo.
type ResumeSource interface {
	Resume(ctx context.Context) ([]byte, error)
}

// ResumeCache baixa o currículo de uma URL e guarda os bytes por ttl.
type ResumeCache struct {
	url    string
	ttl    time.Duration
	client *http.Client
	now    func() time.Time

	mu        sync.Mutex
	data      []byte
	fetchedAt time.Time
}

type ResumeOption func(*ResumeCache)

func WithHTTPClient(c *http.Client) ResumeOption {
	return func(r *ResumeCache) { r.client = c }
}

func WithResumeClock(now func() time.Time) ResumeOption {
	return func(r *ResumeCache) { r.now = now }
}

func NewResumeCache(url string, ttl time.Duration, opts ...ResumeOption) *ResumeCache {
	r := &ResumeCache{
		url:    url,
		ttl:    ttl,
		client: &http.Client{Timeout: 30 * time.Second},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resume implementa ResumeSource. O lock fica preso durante o download para
// que requests simultâneos não baixem o mesmo arquivo várias vezes.
func (r *ResumeCache) Resume(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.data != nil && now.Sub(r.fetchedAt) < r.ttl {
		return r.data, nil
	}

	data, err := r.download(ctx)
	if err != nil {
		return nil, err
	}
	r.data = data
	r.fetchedAt = now
	return data, nil
}

func (r *ResumeCache) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("resume request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download resume: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download resume: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}
	return data, nil
}
