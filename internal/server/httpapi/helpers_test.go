package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/hicomm/internal/logging"
	"github.com/dmitrijs2005/hicomm/internal/server/auth"
	"github.com/dmitrijs2005/hicomm/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hicomm/internal/server/services"
	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

const (
	testSecret = "http-test-secret"
	cookieName = "hicomm-token"
)

type testEnv struct {
	handler http.Handler
	rm      *repomanager.InMemoryRepositoryManager
	users   *services.UserService
	logs    *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, false)
}

func newTestEnvWith(t *testing.T, secure bool) *testEnv {
	t.Helper()

	// Only used for BEGIN/COMMIT; the repositories are in memory.
	db, err := sql.Open("sqlite", "file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var logs bytes.Buffer
	logger := logging.NewJSON(&logs, "debug")

	rm := repomanager.NewInMemoryRepositoryManager()
	us := services.NewUserService(db, rm, auth.NewHasher(bcrypt.MinCost))
	bs := services.NewBoardService(db, rm)

	codec := auth.NewTokenCodec([]byte(testSecret), 7*24*time.Hour)
	resolver := auth.NewSessionResolver(codec, us, logger)
	cookie := NewSessionCookie(cookieName, secure, resolver)

	return &testEnv{
		handler: NewAPI(us, bs, resolver, cookie, logger).Handler(),
		rm:      rm,
		users:   us,
		logs:    &logs,
	}
}

func (e *testEnv) api() *apitest.APITest {
	return apitest.New().Handler(e.handler)
}

// signup registers a user over HTTP and returns the session token.
func (e *testEnv) signup(t *testing.T, username, password, nickname string) string {
	t.Helper()
	res := e.api().
		Post("/api/auth/signup").
		JSON(map[string]string{"username": username, "password": password, "nickname": nickname}).
		Expect(t).
		Status(http.StatusOK).
		End()
	return tokenFrom(t, res)
}

// admin registers a user and promotes it out of band.
func (e *testEnv) admin(t *testing.T, username string) string {
	t.Helper()
	tok := e.signup(t, username, "pw1234", username)
	u, err := e.rm.Users(nil).FindByLogin(context.Background(), username)
	require.NoError(t, err)
	require.NoError(t, e.rm.Users(nil).SetAdmin(context.Background(), u.ID, true))
	return tok
}

func sessionCookieFrom(t *testing.T, res apitest.Result) *http.Cookie {
	t.Helper()
	for _, c := range res.Response.Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	t.Fatalf("response has no %s cookie", cookieName)
	return nil
}

func tokenFrom(t *testing.T, res apitest.Result) string {
	t.Helper()
	c := sessionCookieFrom(t, res)
	require.NotEmpty(t, c.Value)
	return c.Value
}
