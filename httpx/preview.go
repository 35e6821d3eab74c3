package httpx

import (
	"errors"
	"net/url"
	"time"

	"github.com/go-chi/jwtauth"
)

const previewSubject = "preview"

var ErrPreviewMismatch = errors.New("preview token does not match the requested form")

// Previewer signs short lived links that let editors see draft forms on the
// public site.
type Previewer struct {
	auth    *jwtauth.JWTAuth
	siteURL string
	ttl     time.Duration
}

func NewPreviewer(secret, siteURL string, ttl time.Duration) *Previewer {
	return &Previewer{
		auth:    jwtauth.New("HS256", []byte(secret), nil),
		siteURL: siteURL,
		ttl:     ttl,
	}
}

// URL returns the site address previewing slug in locale.
func (p *Previewer) URL(slug, locale string) (string, error) {
	claims := map[string]interface{}{
		"sub":    previewSubject,
		"slug":   slug,
		"locale": locale,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, p.ttl)

	_, token, err := p.auth.Encode(claims)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(p.siteURL)
	if err != nil {
		return "", err
	}
	u = u.JoinPath(locale, slug)
	u.RawQuery = url.Values{"preview": {token}}.Encode()
	return u.String(), nil
}

// Verify checks that token is a valid, unexpired preview of slug.
func (p *Previewer) Verify(token, slug string) error {
	t, err := jwtauth.VerifyToken(p.auth, token)
	if err != nil {
		return err
	}
	if t.Subject() != previewSubject {
		return ErrPreviewMismatch
	}
	if v, ok := t.Get("slug"); !ok || v != slug {
		return ErrPreviewMismatch
	}
	return nil
}
