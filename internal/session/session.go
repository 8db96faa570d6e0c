// Package session carries the cart identifier and bearer token of one
// storefront visitor. A Context is read from the request cookies, handed
// explicitly to every cart operation, and any cookie changes it collects are
// written back with Apply.
package session

import (
	"net/http"
	"strconv"
	"time"
)

const (
	CartCookie  = "nexstore_cart_id"
	TokenCookie = "access_token"

	CartMaxAge  = 7 * 24 * time.Hour
	TokenMaxAge = time.Hour
)

type Context struct {
	CartID int64
	Token  string

	secure  bool
	pending []*http.Cookie
}

func New(cartID int64, token string) *Context {
	return &Context{CartID: cartID, Token: token}
}

// FromRequest reads the session cookies. A cart cookie that is not a
// positive integer is ignored.
func FromRequest(r *http.Request, secure bool) *Context {
	s := &Context{secure: secure}
	if c, err := r.Cookie(CartCookie); err == nil {
		if id, err := strconv.ParseInt(c.Value, 10, 64); err == nil && id > 0 {
			s.CartID = id
		}
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		s.Token = c.Value
	}
	return s
}

func (s *Context) HasCart() bool {
	return s.CartID > 0
}

func (s *Context) Authenticated() bool {
	return s.Token != ""
}

// Key identifies the visitor for duplicate-submission checks. It is empty
// for a visitor with neither a cart nor a token.
func (s *Context) Key() string {
	switch {
	case s.HasCart():
		return "cart:" + strconv.FormatInt(s.CartID, 10)
	case s.Authenticated():
		return "token:" + s.Token
	}
	return ""
}

func (s *Context) SetCartID(id int64) {
	s.CartID = id
	s.write(s.cookie(CartCookie, strconv.FormatInt(id, 10), CartMaxAge))
}

func (s *Context) ClearCartID() {
	s.CartID = 0
	s.write(s.cookie(CartCookie, "", -1))
}

func (s *Context) SetToken(token string) {
	s.Token = token
	s.write(s.cookie(TokenCookie, token, TokenMaxAge))
}

func (s *Context) ClearToken() {
	s.Token = ""
	s.write(s.cookie(TokenCookie, "", -1))
}

// Pending returns the cookie writes collected so far.
func (s *Context) Pending() []*http.Cookie {
	return s.pending
}

func (s *Context) Apply(w http.ResponseWriter) {
	for _, c := range s.pending {
		http.SetCookie(w, c)
	}
	s.pending = nil
}

// write queues c, replacing an earlier write of the same cookie.
func (s *Context) write(c *http.Cookie) {
	for i, p := range s.pending {
		if p.Name == c.Name {
			s.pending[i] = c
			return
		}
	}
	s.pending = append(s.pending, c)
}

func (s *Context) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		c.MaxAge = -1
	} else {
		c.MaxAge = int(maxAge.Seconds())
	}
	return c
}
