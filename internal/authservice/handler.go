package authservice

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"github.com/sushihentaime/portfolio/internal/common"
)

var (
	ErrAuthenticationFailure = errors.New("invalid authentication credentials")
	ErrMissingSecret         = errors.New("admin secret hash must be provided")
	ErrWeakSigningKey        = errors.New("session signing key must be at least 32 bytes")
)

func NewGate(opts Options) (*Gate, error) {
	if len(opts.SecretHash) == 0 {
		return nil, ErrMissingSecret
	}
	if _, err := bcrypt.Cost(opts.SecretHash); err != nil {
		return nil, fmt.Errorf("invalid admin secret hash: %w", err)
	}
	if len(opts.SigningKey) < 32 {
		return nil, ErrWeakSigningKey
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	store := sessions.NewCookieStore(opts.SigningKey)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	// MaxAge also bounds the signed timestamp accepted by the cookie codec.
	store.MaxAge(int(ttl.Seconds()))

	return &Gate{
		secret: secret{hash: opts.SecretHash},
		store:  store,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Login checks the shared secret and, on success, writes a signed session cookie.
// A wrong secret yields ErrAuthenticationFailure and nothing else.
func (g *Gate) Login(w http.ResponseWriter, r *http.Request, plain string) error {
	v := common.NewValidator()
	validateSecret(v, plain)
	if !v.Valid() {
		return v.ValidationError()
	}

	ok, err := g.secret.compare(plain)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAuthenticationFailure
	}

	// An undecodable cookie from an older key still yields a usable fresh session.
	sess, _ := g.store.New(r, SessionName)
	sess.Values = map[interface{}]interface{}{
		authenticatedKey: true,
		expiresAtKey:     g.now().Add(g.ttl).Unix(),
	}

	return sess.Save(r, w)
}

// Verify reports whether r carries a valid, unexpired session cookie. It never fails loudly.
func (g *Gate) Verify(r *http.Request) bool {
	if _, err := r.Cookie(SessionName); err != nil {
		return false
	}

	sess, err := g.store.New(r, SessionName)
	if err != nil || sess.IsNew {
		return false
	}

	authenticated, _ := sess.Values[authenticatedKey].(bool)
	expiresAt, _ := sess.Values[expiresAtKey].(int64)

	return authenticated && g.now().Before(time.Unix(expiresAt, 0))
}

// Logout expires the session cookie. It is idempotent.
func (g *Gate) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, _ := g.store.New(r, SessionName)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1

	return sess.Save(r, w)
}

// TTL is the lifetime of an issued session.
func (g *Gate) TTL() time.Duration {
	return g.ttl
}
