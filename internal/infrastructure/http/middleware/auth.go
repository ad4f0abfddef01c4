package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ngjiaxun/platter/internal/domain"
)

// TokenVerifier validates an access token and returns the identity it
// carries.
type TokenVerifier interface {
	ValidateAccessToken(tokenString string) (userID, email string, err error)
}

// AuthValidator validates the JWT and sets the actor in context (see
// ActorFromContext).
type AuthValidator struct {
	verifier TokenVerifier
}

func NewAuthValidator(verifier TokenVerifier) *AuthValidator {
	return &AuthValidator{verifier: verifier}
}

func (m *AuthValidator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			writeAuthErr(w, "missing or invalid authorization")
			return
		}
		tokenString := strings.TrimPrefix(auth, "Bearer ")
		userIDStr, email, err := m.verifier.ValidateAccessToken(tokenString)
		if err != nil {
			writeAuthErr(w, "invalid token")
			return
		}
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			writeAuthErr(w, "invalid token")
			return
		}
		actor := domain.Actor{ID: domain.NewUserID(userID), Email: email}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

func writeAuthErr(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": "unauthorized"})
}
