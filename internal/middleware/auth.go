package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vancomm/sweeper/internal/config"
)

type ctxKey int

const ctxPlayerClaims ctxKey = iota

// Auth attaches player claims from the auth cookies to the request context.
// Requests without valid cookies pass through anonymously and get their
// stale cookies cleared.
func Auth(logger *slog.Logger, cookies *config.Cookies) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := cookies.ParsePlayerClaims(r)
			if err != nil {
				if _, cookieErr := r.Cookie("auth"); cookieErr == nil {
					logger.Debug("clearing invalid auth cookies", slog.Any("error", err))
					cookies.Clear(w)
				}
				h.ServeHTTP(w, r)
				return
			}
			h.ServeHTTP(w, r.WithContext(WithPlayerClaims(r.Context(), claims)))
		})
	}
}

func WithPlayerClaims(ctx context.Context, claims *config.PlayerClaims) context.Context {
	return context.WithValue(ctx, ctxPlayerClaims, claims)
}

func PlayerClaims(ctx context.Context) (*config.PlayerClaims, bool) {
	claims, ok := ctx.Value(ctxPlayerClaims).(*config.PlayerClaims)
	return claims, ok && claims != nil
}
