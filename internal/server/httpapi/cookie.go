package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/hicomm/internal/server/auth"
)

// SessionCookie stores session tokens in an HTTP-only cookie and is the only
// place handlers go through to start or end a session.
type SessionCookie struct {
	Name     string
	Secure   bool
	resolver *auth.SessionResolver
}

func NewSessionCookie(name string, secure bool, resolver *auth.SessionResolver) *SessionCookie {
	return &SessionCookie{Name: name, Secure: secure, resolver: resolver}
}

// Token returns the stored token, or "" when the request carries none.
func (c *SessionCookie) Token(r *http.Request) string {
	cookie, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Establish mints a token for userID and stores it on the client.
func (c *SessionCookie) Establish(w http.ResponseWriter, userID int64) error {
	token, err := c.resolver.Establish(userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, c.cookie(token, c.resolver.MaxAge()))
	return nil
}

// Clear tells the client to drop the cookie. The token itself stays valid
// until it expires.
func (c *SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

func (c *SessionCookie) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
