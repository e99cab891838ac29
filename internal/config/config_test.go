package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("RESUME_URL", "https://example.com/resume.pdf")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, int64(60_000), cfg.RateLimiter.WindowMs)
	assert.Equal(t, time.Minute, cfg.RateLimiter.Window())
	assert.Equal(t, 10, cfg.RateLimiter.MaxRequestsPerWindow)
	assert.Equal(t, []string{"/api/"}, cfg.RateLimiter.ScopePrefixes)
	assert.Equal(t, []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}, cfg.RateLimiter.AddressHeaders)
	assert.Equal(t, "X-Client-ID", cfg.RateLimiter.ClientIDHeader)
	assert.Equal(t, time.Hour, cfg.Assistant.ResumeCacheDuration())
	assert.Equal(t, "test-key", cfg.Assistant.GoogleAPIKey)
}

func TestLoad_RateLimiterFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RATE_LIMITER_WINDOW_MS", "30000")
	t.Setenv("RATE_LIMITER_MAX_REQUESTS_PER_WINDOW", "3")
	t.Setenv("GOOGLE_AI_MODEL_ID", "gemini-1.5-pro")
	t.Setenv("RESUME_CACHE_DURATION", "1000")

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.RateLimiter.Window())
	assert.Equal(t, 3, cfg.RateLimiter.MaxRequestsPerWindow)
	assert.Equal(t, "gemini-1.5-pro", cfg.Assistant.ModelID)
	assert.Equal(t, time.Second, cfg.Assistant.ResumeCacheDuration())
}

func TestLoad_RejectsNonPositiveWindowAndThreshold(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RATE_LIMITER_WINDOW_MS", "0")
	t.Setenv("RATE_LIMITER_MAX_REQUESTS_PER_WINDOW", "-1")

	_, err := Load("", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidWindow)
	assert.ErrorIs(t, err, ErrInvalidMaxRequests)
}

func TestLoad_AssistantRequiresKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("RESUME_URL", "https://example.com/resume.pdf")

	_, err := Load("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")

	t.Setenv("ASSISTANT_ENABLED", "false")
	_, err = Load("", "")
	assert.NoError(t, err)
}

func TestLoad_RedisStatsRequiresAddr(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STATS_REDIS_ENABLED", "true")

	_, err := Load("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stats.redis.addr")
}

func TestLoad_FileAndDotenv(t *testing.T) {
	dir := t.TempDir()

	cfgPath := filepath.Join(dir, "gateway.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
rate_limiter:
  window_ms: 5000
  max_requests_per_window: 2
  scope_prefixes: ["/api/", "/internal/"]
site:
  origin: https://example.com
`), 0o600))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("GOOGLE_API_KEY=from-dotenv\nRESUME_URL=https://example.com/cv.pdf\n"), 0o600))
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("RESUME_URL", "")
	os.Unsetenv("GOOGLE_API_KEY")
	os.Unsetenv("RESUME_URL")

	cfg, err := Load(cfgPath, envPath)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.RateLimiter.Window())
	assert.Equal(t, 2, cfg.RateLimiter.MaxRequestsPerWindow)
	assert.Equal(t, []string{"/api/", "/internal/"}, cfg.RateLimiter.ScopePrefixes)
	assert.Equal(t, "https://example.com", cfg.Site.Origin)
	assert.Equal(t, "from-dotenv", cfg.Assistant.GoogleAPIKey)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	setRequiredEnv(t)

	_, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoad_MissingConfigFileIsError(t *testing.T) {
	setRequiredEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)
}
