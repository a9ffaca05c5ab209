// Package identity issues anonymous user handles.
//
// A visitor gets an opaque random handle stored in a cookie on first
// contact and keeps it for the cookie's lifetime. There are no accounts
// and no credentials; the handle only scopes data to one browser.
package identity

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"time"
)

const (
	// CookieName holds the anonymous handle on the client.
	CookieName = "fintrack_uid"

	handleBytes  = 16
	cookieMaxAge = 400 * 24 * time.Hour
)

var validHandle = regexp.MustCompile(`^[0-9a-f]{32}$`)

// Provider mints and recognizes anonymous handles.
type Provider struct {
	secure bool
}

// NewProvider returns a Provider. When secure is true the cookie is
// only sent over HTTPS.
func NewProvider(secure bool) *Provider {
	return &Provider{secure: secure}
}

// Acquire returns the caller's handle, minting and setting a new one
// when the request carries none or an unrecognizable one. The second
// return reports whether a fresh handle was issued.
func (p *Provider) Acquire(w http.ResponseWriter, r *http.Request) (string, bool, error) {
	if c, err := r.Cookie(CookieName); err == nil && validHandle.MatchString(c.Value) {
		return c.Value, false, nil
	}

	handle, err := newHandle()
	if err != nil {
		return "", false, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    handle,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return handle, true, nil
}

// IsValidHandle reports whether s looks like a minted handle.
func IsValidHandle(s string) bool {
	return validHandle.MatchString(s)
}

func newHandle() (string, error) {
	buf := make([]byte, handleBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate handle: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
