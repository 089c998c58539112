package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/Simplici0/supportquote/internal/session"
)

const sessionCookieName = "lacos_session"

// cookieSigner binds a session ID to the browser with an HMAC so that a
// client cannot pick another session's ID.
type cookieSigner struct {
	sessionSecret []byte
	ttl           time.Duration
	secure        bool
}

func newCookieSigner(sessionSecret string, ttl time.Duration, secure bool) *cookieSigner {
	return &cookieSigner{sessionSecret: []byte(sessionSecret), ttl: ttl, secure: secure}
}

func (c *cookieSigner) createSessionValue(id string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(id))
	mac := hmac.New(sha256.New, c.sessionSecret)
	_, _ = mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))
	return payload + "." + signature
}

func (c *cookieSigner) verifySessionValue(value string) (string, bool) {
	payload, signature, ok := strings.Cut(value, ".")
	if !ok {
		return "", false
	}

	mac := hmac.New(sha256.New, c.sessionSecret)
	_, _ = mac.Write([]byte(payload))
	expected := mac.Sum(nil)

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return "", false
	}
	if !hmac.Equal(provided, expected) {
		return "", false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", false
	}
	id := string(decoded)
	if !session.ValidID(id) {
		return "", false
	}

	return id, true
}

func (c *cookieSigner) sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	return c.verifySessionValue(cookie.Value)
}

func (c *cookieSigner) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    c.createSessionValue(id),
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *cookieSigner) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
