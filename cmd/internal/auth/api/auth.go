package authapi

import (
	"net"
	"net/http"
	"strings"

	"cadastro/cmd/internal/auth/policy"
)

// requireAuth resolves the bearer token into a principal or writes the error.
// A missing token is 403 and a rejected one is 401.
func (h *Handler) requireAuth(w http.ResponseWriter, r *http.Request) (policy.Principal, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusForbidden, "not_authenticated", "Não autenticado.")
		return policy.Principal{}, false
	}

	p, ok := h.principalFromToken(r, token)
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "invalid_token", "Token inválido ou expirado.")
		return policy.Principal{}, false
	}
	return p, true
}

// readPrincipal gates read endpoints. When reads are public a valid token is
// still used to attribute the activity; anything else reads anonymously.
func (h *Handler) readPrincipal(w http.ResponseWriter, r *http.Request) (policy.Principal, bool) {
	if h.cfg.ReadsRequireToken {
		return h.requireAuth(w, r)
	}
	if token := bearerToken(r); token != "" {
		if p, ok := h.principalFromToken(r, token); ok {
			return p, true
		}
	}
	return policy.Principal{}, true
}

func (h *Handler) principalFromToken(r *http.Request, token string) (policy.Principal, bool) {
	ctx := r.Context()

	claims, err := h.tokens.Validate(ctx, token, h.now())
	if err != nil {
		h.log.Info("auth.token.reject", "ip", ipString(clientIP(r, h.cfg.TrustProxy)))
		return policy.Principal{}, false
	}

	p := policy.Principal{Username: claims.Subject}
	if u, found := h.store.FindByUsername(ctx, claims.Subject); found {
		p.UserID = u.ID
	}
	return p, true
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func clientIP(r *http.Request, trustProxy bool) net.IP {
	if trustProxy {
		if ip := parseForwardedIP(r.Header.Get("X-Forwarded-For")); ip != nil {
			return ip
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip
		}
	}
	return nil
}

func parseForwardedIP(raw string) net.IP {
	if raw == "" {
		return nil
	}
	for _, p := range strings.Split(raw, ",") {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			return ip
		}
	}
	return nil
}

func ipString(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}
