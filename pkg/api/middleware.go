package api

import (
	"net/http"

	"github.com/rostra-dev/rostra/pkg/identity"
)

const (
	apiVersionHeader = "X-Rostra-Api-Version"
	secretHeader     = "X-Rostra-Id-Secret"
	supportedVersion = "0"
)

// requireAPIVersion rejects any request not declaring the supported
// X-Rostra-Api-Version, before it reaches route matching.
func (s *Server) requireAPIVersion(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(apiVersionHeader) != supportedVersion {
			writeError(w, http.StatusBadRequest, "missing or unsupported "+apiVersionHeader)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate recovers the identity named by X-Rostra-Id-Secret and checks
// it matches pathID, the author a write endpoint is acting as. Callers get
// back the recovered identity so they never re-derive it from the header.
func authenticate(r *http.Request, pathID string) (*identity.Identity, int, string) {
	secret := r.Header.Get(secretHeader)
	if secret == "" {
		return nil, http.StatusUnauthorized, "missing " + secretHeader
	}

	ident, err := identity.FromMnemonic(secret)
	if err != nil {
		return nil, http.StatusUnauthorized, "invalid identity secret"
	}

	want, err := identity.Parse(pathID)
	if err != nil {
		return nil, http.StatusBadRequest, "invalid rostra id"
	}
	if ident.Public != want {
		return nil, http.StatusForbidden, "secret does not match id"
	}

	return ident, 0, ""
}
