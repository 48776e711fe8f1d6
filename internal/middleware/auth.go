package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"sqllab/internal/config"
	"sqllab/internal/domain"
)

// AnonymousUser is the caller identity used when authentication is disabled.
const AnonymousUser = "anonymous"

// Authenticator resolves the domain.Caller of each request from its bearer
// token.
type Authenticator struct {
	validator JWTValidator
	nameClaim string
	admins    map[string]bool
	logger    *slog.Logger
}

// NewAuthenticator creates an Authenticator. A nil validator disables
// authentication: every request runs as AnonymousUser.
func NewAuthenticator(validator JWTValidator, cfg config.AuthConfig, logger *slog.Logger) *Authenticator {
	admins := make(map[string]bool, len(cfg.AdminSubjects))
	for _, s := range cfg.AdminSubjects {
		admins[s] = true
	}
	nameClaim := cfg.NameClaim
	if nameClaim == "" {
		nameClaim = "email"
	}
	return &Authenticator{
		validator: validator,
		nameClaim: nameClaim,
		admins:    admins,
		logger:    logger.With("component", "auth"),
	}
}

// Middleware stores the resolved caller in the request context. Requests
// without a valid token get 401.
func (a *Authenticator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if a.validator == nil {
				caller := domain.Caller{UserID: AnonymousUser, Username: AnonymousUser, IsAdmin: a.admins[AnonymousUser]}
				next.ServeHTTP(w, r.WithContext(domain.WithCaller(r.Context(), caller)))
				return
			}

			auth := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || token == "" {
				writeUnauthorized(w, "unauthorized: provide a valid JWT Bearer token")
				return
			}
			claims, err := a.validator.Validate(r.Context(), token)
			if err != nil {
				a.logger.Debug("token rejected", "error", err, "request_id", RequestIDFromContext(r.Context()))
				writeUnauthorized(w, "unauthorized: invalid or expired token")
				return
			}
			if claims.Subject == "" {
				writeUnauthorized(w, "unauthorized: token has no subject")
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithCaller(r.Context(), a.caller(claims))))
		})
	}
}

func (a *Authenticator) caller(claims *JWTClaims) domain.Caller {
	name := claims.Claim(a.nameClaim)
	if name == "" {
		name = claims.Subject
	}
	return domain.Caller{
		UserID:   claims.Subject,
		Username: name,
		IsAdmin:  a.admins[claims.Subject] || a.admins[name],
	}
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    http.StatusUnauthorized,
		"message": msg,
	})
}
