package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/hicomm/internal/server/auth"
	"github.com/dmitrijs2005/hicomm/internal/server/models"
	"github.com/dmitrijs2005/hicomm/internal/server/services"
	"github.com/julienschmidt/httprouter"
)

type userResponse struct {
	User *models.Identity `json:"user"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (a *API) signup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req services.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	identity, err := a.users.Signup(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.startSession(w, r, identity)
}

func (a *API) login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req services.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	identity, err := a.users.Login(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.startSession(w, r, identity)
}

func (a *API) startSession(w http.ResponseWriter, r *http.Request, identity *models.Identity) {
	if err := a.cookie.Establish(w, identity.ID); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: identity})
}

func (a *API) logout(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	a.cookie.Clear(w)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// me reports the current session. Anonymous callers get {"user": null}.
func (a *API) me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h := w.Header()
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")

	writeJSON(w, http.StatusOK, userResponse{User: auth.IdentityFromContext(r.Context())})
}

func (a *API) withdraw(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := a.users.Withdraw(r.Context(), auth.IdentityFromContext(r.Context())); err != nil {
		a.writeError(w, r, err)
		return
	}

	a.cookie.Clear(w)
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "account withdrawn"})
}
