package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/hicomm/internal/server/auth"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

type ctxKey string

const requestIDKey ctxKey = "requestID"

const requestIDHeader = "X-Request-ID"

// RequestIDFromContext returns the id assigned by the request-id middleware.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (a *API) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (a *API) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		a.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
			"request_id", RequestIDFromContext(r.Context()),
		)
	})
}

func (a *API) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				a.logger.Error(r.Context(), "panic in handler", "path", r.URL.Path, "panic", p)
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withSession resolves the session cookie into an identity and stores it in
// the request context. A missing or unusable token leaves the request
// anonymous; only a storage failure aborts it. Routes that never look at
// the caller (logout, health) are registered without it.
func (a *API) withSession(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		identity, err := a.sessions.Resolve(r.Context(), a.cookie.Token(r))
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		next(w, r.WithContext(auth.WithIdentity(r.Context(), identity)), ps)
	}
}

// requireLogin answers 401 for anonymous requests.
func requireLogin(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if auth.IdentityFromContext(r.Context()) == nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "login required"})
			return
		}
		next(w, r, ps)
	}
}

// authed is withSession followed by requireLogin.
func (a *API) authed(next httprouter.Handle) httprouter.Handle {
	return a.withSession(requireLogin(next))
}
