package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jakechorley/coffee-rota/pkg/auth"
	apperr "github.com/jakechorley/coffee-rota/pkg/errors"
)

type contextKey string

const ctxSession contextKey = "session"

// SessionFromContext returns the session stored by the auth middleware
func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	s, ok := ctx.Value(ctxSession).(auth.Session)
	return s, ok
}

// WithSession stores a session on the context
func WithSession(ctx context.Context, s auth.Session) context.Context {
	return context.WithValue(ctx, ctxSession, s)
}

func recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("panic: %v", rec)
					logger.Error("Panic recovered", zap.Any("panic", rec), zap.String("path", r.URL.Path))
					writeError(logger, w, r, apperr.Wrap(apperr.CodeInternal, err, "panic"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("Request handled",
				zap.String("request_id", chimw.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

// authenticate verifies the bearer token and resolves the caller's session once per request
func authenticate(verifier *auth.Verifier, profiles auth.ProfileGetter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
				raw = strings.TrimSpace(raw[7:])
			} else {
				raw = ""
			}
			if raw == "" {
				writeError(logger, w, r, apperr.New(apperr.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				writeError(logger, w, r, apperr.Wrap(apperr.CodeUnauthorized, err, "invalid token"))
				return
			}

			session, err := auth.ResolveSession(r.Context(), profiles, claims)
			if err != nil {
				writeError(logger, w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}
