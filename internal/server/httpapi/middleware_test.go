package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/hicomm/internal/logging"
	"github.com/google/uuid"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	env := newTestEnv(t)

	res := env.api().Get("/healthz").Expect(t).Status(http.StatusOK).Body(`{"status":"ok"}`).End()
	_, err := uuid.Parse(res.Response.Header.Get("X-Request-ID"))
	require.NoError(t, err)

	id := uuid.NewString()
	env.api().Get("/healthz").Header("X-Request-ID", id).Expect(t).Header("X-Request-ID", id).End()

	res = env.api().Get("/healthz").Header("X-Request-ID", "not-a-uuid").Expect(t).End()
	assert.NotEqual(t, "not-a-uuid", res.Response.Header.Get("X-Request-ID"))

	assert.Contains(t, env.logs.String(), id)
}

func TestUnknownRoutes(t *testing.T) {
	env := newTestEnv(t)

	env.api().Get("/nope").Expect(t).Status(http.StatusNotFound).Body(`{"error":"not found"}`).End()
	env.api().Put("/api/auth/me").Expect(t).Status(http.StatusMethodNotAllowed).End()
}

func TestSessionStorageFailureIs500(t *testing.T) {
	env := newTestEnv(t)
	tok := env.signup(t, "alice", "pw1234", "Alice")

	env.rm.FailWith(errors.New("db down"))

	env.api().
		Get("/api/auth/me").
		Cookie(cookieName, tok).
		Expect(t).
		Status(http.StatusInternalServerError).
		Body(`{"error":"internal server error"}`).
		End()

	// Anonymous requests never touch storage in the session layer.
	env.api().Get("/healthz").Expect(t).Status(http.StatusOK).End()

	assert.Contains(t, env.logs.String(), "db down")
}

func TestLogoutAndHealthSkipSessionLookup(t *testing.T) {
	env := newTestEnv(t)
	tok := env.signup(t, "alice", "pw1234", "Alice")

	env.rm.FailWith(errors.New("db down"))

	res := env.api().
		Post("/api/auth/logout").
		Cookie(cookieName, tok).
		Expect(t).
		Status(http.StatusOK).
		Body(`{"success":true}`).
		End()
	assert.Less(t, sessionCookieFrom(t, res).MaxAge, 0)

	env.api().
		Get("/healthz").
		Cookie(cookieName, tok).
		Expect(t).
		Status(http.StatusOK).
		End()

	env.api().
		Post("/api/posts").
		Cookie(cookieName, tok).
		JSON(`{"title":"t","content":"c"}`).
		Expect(t).
		Status(http.StatusInternalServerError).
		End()
}

func TestRecover(t *testing.T) {
	a := &API{logger: logging.Nop{}}
	h := a.withRecover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	env := newTestEnv(t)

	env.api().
		Post("/api/auth/signup").
		JSON(`{"username":"al"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Contains("$.error", "username")).
		End()

	status, msg := statusFor(errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", msg)
}
