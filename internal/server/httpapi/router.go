package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/hicomm/internal/logging"
	"github.com/dmitrijs2005/hicomm/internal/server/auth"
	"github.com/dmitrijs2005/hicomm/internal/server/services"
	"github.com/julienschmidt/httprouter"
)

// API holds the handlers' dependencies.
type API struct {
	users    *services.UserService
	board    *services.BoardService
	sessions *auth.SessionResolver
	cookie   *SessionCookie
	logger   logging.Logger
}

func NewAPI(us *services.UserService, bs *services.BoardService, sessions *auth.SessionResolver, cookie *SessionCookie, l logging.Logger) *API {
	return &API{
		users:    us,
		board:    bs,
		sessions: sessions,
		cookie:   cookie,
		logger:   l.With("module", "http_api"),
	}
}

// Handler returns the routed API wrapped in its middleware chain.
func (a *API) Handler() http.Handler {
	router := httprouter.New()

	router.POST("/api/auth/signup", a.signup)
	router.POST("/api/auth/login", a.login)
	router.POST("/api/auth/logout", a.logout)
	router.GET("/api/auth/me", a.withSession(a.me))
	router.DELETE("/api/auth/withdraw", a.authed(a.withdraw))

	router.GET("/api/posts", a.listPosts)
	router.POST("/api/posts", a.authed(a.createPost))
	router.GET("/api/posts/:id", a.getPost)
	router.DELETE("/api/posts/:id", a.authed(a.deletePost))
	router.PATCH("/api/posts/:id", a.withSession(a.setNotice))

	router.GET("/api/comments", a.listComments)
	router.POST("/api/comments", a.authed(a.createComment))
	router.DELETE("/api/comments/:id", a.authed(a.deleteComment))

	router.GET("/healthz", a.health)

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	var h http.Handler = router
	h = a.withRecover(h)
	h = a.withLogging(h)
	h = a.withRequestID(h)
	return h
}

func (a *API) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
