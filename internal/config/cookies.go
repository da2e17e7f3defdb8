package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// Cookies splits a JWT between a script-readable "auth" cookie holding the
// header and payload and an HttpOnly "sign" cookie holding the signature.
type Cookies struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	jwt      *JWT
}

func parseSameSite(s string) (http.SameSite, error) {
	switch strings.ToUpper(s) {
	case "DEFAULT":
		return http.SameSiteDefaultMode, nil
	case "LAX":
		return http.SameSiteLaxMode, nil
	case "", "STRICT":
		return http.SameSiteStrictMode, nil
	case "NONE":
		return http.SameSiteNoneMode, nil
	}
	return 0, fmt.Errorf("unknown COOKIES_SAMESITE value %q", s)
}

func NewCookies(jwt *JWT) (*Cookies, error) {
	secure, ok := envFlag("COOKIES_SECURE")
	if !ok {
		secure = true
	}

	sameSite, err := parseSameSite(os.Getenv("COOKIES_SAMESITE"))
	if err != nil {
		return nil, err
	}

	cookies := &Cookies{
		Domain:   os.Getenv("COOKIES_DOMAIN"),
		Secure:   secure,
		SameSite: sameSite,
		jwt:      jwt,
	}

	return cookies, nil
}

func (c *Cookies) set(w http.ResponseWriter, name, value string, httpOnly bool, expires time.Time, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     "/",
		Value:    value,
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

func (c *Cookies) Clear(w http.ResponseWriter) {
	c.set(w, "auth", "delete", false, time.Time{}, -1)
	c.set(w, "sign", "delete", true, time.Time{}, -1)
}

// Refresh signs claims and writes them as a fresh pair of cookies.
func (c *Cookies) Refresh(w http.ResponseWriter, claims *PlayerClaims) error {
	token, err := c.jwt.Sign(claims)
	if err != nil {
		return fmt.Errorf("unable to sign token: %w", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("malformed JWT token generated")
	}
	header, payload, signature := parts[0], parts[1], parts[2]
	expires := time.Now().Add(c.jwt.Lifetime())
	c.set(w, "auth", header+"."+payload, false, expires, 0)
	c.set(w, "sign", signature, true, expires, 0)
	return nil
}

func (c *Cookies) ParsePlayerClaims(r *http.Request) (*PlayerClaims, error) {
	authCookie, err := r.Cookie("auth")
	if err != nil {
		return nil, err
	}
	signCookie, err := r.Cookie("sign")
	if err != nil {
		return nil, err
	}
	token, err := c.jwt.ParseWithClaims(
		authCookie.Value+"."+signCookie.Value, &PlayerClaims{},
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*PlayerClaims)
	if !ok {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}
