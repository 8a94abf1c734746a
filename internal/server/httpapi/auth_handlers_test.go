package httpapi

import (
	"net/http"
	"strings"
	"testing"

	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/assert"
)

func TestSignupLoginMe(t *testing.T) {
	env := newTestEnv(t)

	res := env.api().
		Post("/api/auth/signup").
		JSON(`{"username":"alice","password":"pw1234","nickname":"Alice"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.user.username", "alice")).
		Assert(jsonpath.Equal("$.user.nickname", "Alice")).
		Assert(jsonpath.Equal("$.user.isAdmin", false)).
		Assert(jsonpath.NotPresent("$.user.password")).
		CookiePresent(cookieName).
		End()

	c := sessionCookieFrom(t, res)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 7*24*60*60, c.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Len(t, strings.Split(c.Value, "."), 3)

	env.api().
		Get("/api/auth/me").
		Cookie(cookieName, c.Value).
		Expect(t).
		Status(http.StatusOK).
		Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate").
		Header("Pragma", "no-cache").
		Header("Expires", "0").
		Assert(jsonpath.Equal("$.user.username", "alice")).
		End()

	res = env.api().
		Post("/api/auth/login").
		JSON(`{"username":"alice","password":"pw1234"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.user.nickname", "Alice")).
		End()
	fresh := tokenFrom(t, res)

	env.api().
		Get("/api/auth/me").
		Cookie(cookieName, fresh).
		Expect(t).
		Assert(jsonpath.Equal("$.user.username", "alice")).
		End()

	assert.NotContains(t, env.logs.String(), c.Value, "tokens never reach the log")
	assert.NotContains(t, env.logs.String(), "pw1234")
	assert.NotContains(t, env.logs.String(), testSecret)
}

func TestMe_Anonymous(t *testing.T) {
	env := newTestEnv(t)

	env.api().
		Get("/api/auth/me").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"user":null}`).
		End()
}

func TestMe_UnusableTokensAreAnonymous(t *testing.T) {
	env := newTestEnv(t)
	tok := env.signup(t, "alice", "pw1234", "Alice")

	parts := strings.Split(tok, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	for _, bad := range []string{"garbage", tampered, tok[:len(tok)-2]} {
		env.api().
			Get("/api/auth/me").
			Cookie(cookieName, bad).
			Expect(t).
			Status(http.StatusOK).
			Body(`{"user":null}`).
			End()
	}
}

func TestSignup_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "alice", "pw1234", "Alice")

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing nickname", `{"username":"bob","password":"pw1234"}`, http.StatusBadRequest},
		{"short username", `{"username":"bo","password":"pw1234","nickname":"B"}`, http.StatusBadRequest},
		{"short password", `{"username":"bob","password":"pw","nickname":"B"}`, http.StatusBadRequest},
		{"not json", `{`, http.StatusBadRequest},
		{"empty body", ``, http.StatusBadRequest},
		{"taken username", `{"username":"alice","password":"pw1234","nickname":"Other"}`, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.api().
				Post("/api/auth/signup").
				Body(tt.body).
				Header("Content-Type", "application/json").
				Expect(t).
				Status(tt.status).
				Assert(jsonpath.Present("$.error")).
				CookieNotPresent(cookieName).
				End()
		})
	}
}

func TestLogin_FailuresLookAlike(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "alice", "pw1234", "Alice")

	want := `{"error":"invalid username or password"}`

	env.api().
		Post("/api/auth/login").
		JSON(`{"username":"alice","password":"wrong"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		Body(want).
		CookieNotPresent(cookieName).
		End()

	env.api().
		Post("/api/auth/login").
		JSON(`{"username":"nobody","password":"pw1234"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		Body(want).
		CookieNotPresent(cookieName).
		End()

	env.api().
		Post("/api/auth/login").
		JSON(`{"username":"alice"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestLogout_ClearsCookie(t *testing.T) {
	env := newTestEnv(t)
	tok := env.signup(t, "alice", "pw1234", "Alice")

	res := env.api().
		Post("/api/auth/logout").
		Cookie(cookieName, tok).
		Expect(t).
		Status(http.StatusOK).
		Body(`{"success":true}`).
		End()

	c := sessionCookieFrom(t, res)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)

	// No revocation: a copy of the token kept by the client still works.
	env.api().
		Get("/api/auth/me").
		Cookie(cookieName, tok).
		Expect(t).
		Assert(jsonpath.Equal("$.user.username", "alice")).
		End()
}

func TestWithdraw_KillsZombieToken(t *testing.T) {
	env := newTestEnv(t)
	tok := env.signup(t, "alice", "pw1234", "Alice")

	res := env.api().
		Delete("/api/auth/withdraw").
		Cookie(cookieName, tok).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.success", true)).
		End()
	assert.Less(t, sessionCookieFrom(t, res).MaxAge, 0)

	env.api().
		Get("/api/auth/me").
		Cookie(cookieName, tok).
		Expect(t).
		Body(`{"user":null}`).
		End()

	env.api().
		Post("/api/posts").
		Cookie(cookieName, tok).
		JSON(`{"title":"t","content":"c"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	env.api().
		Post("/api/auth/login").
		JSON(`{"username":"alice","password":"pw1234"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestWithdraw_RequiresLogin(t *testing.T) {
	env := newTestEnv(t)

	env.api().
		Delete("/api/auth/withdraw").
		Expect(t).
		Status(http.StatusUnauthorized).
		Body(`{"error":"login required"}`).
		End()
}

func TestPrivilegeChangeAppliesToExistingSession(t *testing.T) {
	env := newTestEnv(t)
	tok := env.admin(t, "root")

	env.api().
		Get("/api/auth/me").
		Cookie(cookieName, tok).
		Expect(t).
		Assert(jsonpath.Equal("$.user.isAdmin", true)).
		End()
}

func TestSecureCookieInProduction(t *testing.T) {
	env := newTestEnvWith(t, true)

	res := env.api().
		Post("/api/auth/signup").
		JSON(`{"username":"alice","password":"pw1234","nickname":"Alice"}`).
		Expect(t).
		Status(http.StatusOK).
		Cookies(apitest.NewCookie(cookieName).Secure(true).HttpOnly(true).Path("/")).
		End()
	assert.True(t, sessionCookieFrom(t, res).Secure)
}
