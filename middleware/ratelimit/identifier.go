package ratelimit

import (
	"net"
	"net/http"
	"strings"

	"assistant-gateway/middleware/ratelimit/domain"
)

type IdentifierFunc func(r *http.Request) string

// ScopeFunc decide se o request passa pelo rate limit.
type ScopeFunc func(r *http.Request) bool

// IdentifierConfig controla como o identificador do cliente é montado.
type IdentifierConfig struct {
	// ClientIDHeader é o ID opaco declarado pelo cliente. Padrão: X-Client-ID.
	ClientIDHeader string
	// AddressHeaders são consultados em ordem; o primeiro não vazio vence.
	// Em listas (X-Forwarded-For) vale o primeiro item.
	AddressHeaders []string
	// UseRemoteAddr usa o host de r.RemoteAddr quando nenhum header resolve.
	UseRemoteAddr bool
	// Separator junta client ID e endereço. Padrão: "-".
	Separator string
}

var DefaultAddressHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

const DefaultClientIDHeader = "X-Client-ID"

func (c IdentifierConfig) withDefaults() IdentifierConfig {
	if c.ClientIDHeader == "" {
		c.ClientIDHeader = DefaultClientIDHeader
	}
	if len(c.AddressHeaders) == 0 {
		c.AddressHeaders = DefaultAddressHeaders
	}
	if c.Separator == "" {
		c.Separator = "-"
	}
	return c
}

// DefaultIdentifierFunc monta "<client-id><sep><endereço>", ou só o endereço quando
// o cliente não manda ID. Sem endereço resolvido usa domain.UnknownAddress.
func DefaultIdentifierFunc(cfg IdentifierConfig) IdentifierFunc {
	cfg = cfg.withDefaults()
	return func(r *http.Request) string {
		addr := resolveAddress(r, cfg)
		if id := strings.TrimSpace(r.Header.Get(cfg.ClientIDHeader)); id != "" {
			return id + cfg.Separator + addr
		}
		return addr
	}
}

func resolveAddress(r *http.Request, cfg IdentifierConfig) string {
	for _, h := range cfg.AddressHeaders {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		// pega o primeiro IP da lista (cliente original)
		first, _, _ := strings.Cut(v, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if cfg.UseRemoteAddr {
		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
	}
	return domain.UnknownAddress
}

// PathPrefixScope aplica o rate limit apenas a paths com um dos prefixos.
// Sem prefixos, nada fica no escopo.
func PathPrefixScope(prefixes ...string) ScopeFunc {
	return func(r *http.Request) bool {
		for _, p := range prefixes {
			if p != "" && strings.HasPrefix(r.URL.Path, p) {
				return true
			}
		}
		return false
	}
}
