package auth

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HeaderName is the request header carrying the caller's API key.
const HeaderName = "X-API-Key"

// Middleware checks API keys against configured bcrypt hashes. With no
// hashes configured the middleware passes everything through, so local
// setups work without credentials.
type Middleware struct {
	Hashes []string
}

// Enabled reports whether any key hashes are configured.
func (m Middleware) Enabled() bool {
	return len(m.Hashes) > 0
}

// RequireKey rejects requests without a matching key.
func (m Middleware) RequireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		key := strings.TrimSpace(r.Header.Get(HeaderName))
		if key == "" {
			unauthorized(w)
			return
		}
		for _, hash := range m.Hashes {
			if bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil {
				next.ServeHTTP(w, r)
				return
			}
		}
		unauthorized(w)
	})
}

// HashKey produces a bcrypt hash suitable for the API_KEY_HASHES setting.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"valid X-API-Key header required"}`))
}
