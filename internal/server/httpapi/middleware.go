package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/dmitrijs2005/notehub/internal/server/auth"
	"github.com/dmitrijs2005/notehub/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger stores a request-scoped logger in the context and records
// one log line and one metric sample per request.
func RequestLogger(base logging.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := base.With(
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
			)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				route := "unmatched"
				if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				elapsed := time.Since(start)
				m.RecordHTTPRequest(r.Method, route, ww.Status(), elapsed.Seconds())
				log.Info(r.Context(), "request completed",
					"status", ww.Status(), "bytes", ww.BytesWritten(), "duration", elapsed)
			}()

			next.ServeHTTP(ww, r.WithContext(logging.WithLogger(r.Context(), log)))
		})
	}
}

// tokenFromRequest reads "Authorization: Bearer <jwt>" or, failing that,
// the access_token header.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
	}
	return strings.TrimSpace(r.Header.Get(common.AccessTokenHeaderName))
}

// Authenticator rejects requests without a valid access token and puts the
// caller into the context.
func Authenticator(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := tokenFromRequest(r)
			if tok == "" {
				writeError(w, r, logging.Discard(), common.ErrorUnauthorized)
				return
			}

			caller, err := auth.ParseToken(tok, secret)
			if err != nil {
				writeError(w, r, logging.Discard(), err)
				return
			}

			ctx := auth.WithCaller(r.Context(), *caller)
			if log := logging.FromContext(ctx, nil); log != nil {
				ctx = logging.WithLogger(ctx, log.With("user_id", caller.ID))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
